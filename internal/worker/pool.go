package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"qurba-backend/internal/models"
	"qurba-backend/internal/progress"
	"qurba-backend/internal/services"
)

const (
	maxAttempts    = 3
	lockTTL        = 2 * time.Minute
	lockRetryDelay = 5 * time.Second
)

type leaderboardRefresher interface {
	Refresh(ctx context.Context, batch int) ([]progress.Topper, error)
}

// Pool drains the background job queue. Today the only job type rebuilds
// a batch leaderboard after quiz submissions or on the cron schedule.
type Pool struct {
	redis       *redis.Client
	queue       jobQueue
	leaderboard leaderboardRefresher
	workerCount int
	stopChan    chan struct{}
}

// jobQueue is the locking and re-queue side of the Redis queue.
type jobQueue interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string)
	Requeue(job models.Job, delay time.Duration)
}

type redisQueue struct {
	client *redis.Client
}

func (q redisQueue) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return q.client.SetNX(ctx, key, "1", ttl).Result()
}

func (q redisQueue) Unlock(ctx context.Context, key string) {
	q.client.Del(ctx, key)
}

func (q redisQueue) Requeue(job models.Job, delay time.Duration) {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		log.Printf("Job %s could not be re-queued: %v", job.ID, err)
		return
	}
	time.AfterFunc(delay, func() {
		q.client.RPush(context.Background(), queueFor(job.Type), string(jobBytes))
	})
}

func NewPool(redisClient *redis.Client, leaderboard leaderboardRefresher, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		queue:       redisQueue{client: redisClient},
		leaderboard: leaderboard,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{services.LeaderboardQueue}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 5s timeout so Stop is noticed quickly
		result, err := p.redis.BLPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		p.run(ctx, job)
	}
}

// run executes one job under its lock. A job that finds the lock held goes
// back on the queue; the running refresh may predate the write that queued it.
func (p *Pool) run(ctx context.Context, job models.Job) {
	lockKey := lockKeyFor(job)
	locked, err := p.queue.Lock(ctx, lockKey, lockTTL)
	if err != nil || !locked {
		p.queue.Requeue(job, lockRetryDelay)
		return
	}
	defer p.queue.Unlock(ctx, lockKey)

	if err := p.process(ctx, &job); err != nil {
		p.handleFailure(&job, err)
	}
}

func (p *Pool) process(ctx context.Context, job *models.Job) error {
	switch job.Type {
	case models.JobLeaderboardRefresh:
		toppers, err := p.leaderboard.Refresh(ctx, job.BatchNumber)
		if err != nil {
			return err
		}
		log.Printf("Refreshed leaderboard for batch %d (%d toppers)", job.BatchNumber, len(toppers))
		return nil
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Pool) handleFailure(job *models.Job, err error) {
	job.RetryCount++

	if job.RetryCount >= maxAttempts {
		log.Printf("Job %s failed permanently: %v", job.ID, err)
		return
	}

	log.Printf("Job %s failed (attempt %d): %v, retrying", job.ID, job.RetryCount, err)
	p.queue.Requeue(*job, backoff(job.RetryCount))
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

func lockKeyFor(job models.Job) string {
	if job.Type == models.JobLeaderboardRefresh {
		return fmt.Sprintf("leaderboard_lock:%d", job.BatchNumber)
	}
	return fmt.Sprintf("job_lock:%s", job.ID.String())
}

func queueFor(jobType string) string {
	switch jobType {
	case models.JobLeaderboardRefresh:
		return services.LeaderboardQueue
	default:
		return "queue:" + jobType
	}
}
