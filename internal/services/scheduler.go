package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type batchLister interface {
	ListBatches(ctx context.Context) ([]int, error)
}

type refreshEnqueuer interface {
	EnqueueLeaderboardRefresh(ctx context.Context, batch int) error
}

// LeaderboardScheduler enqueues a leaderboard rebuild for every batch on a
// cron schedule, so cached rankings never drift further than one period.
type LeaderboardScheduler struct {
	batches batchLister
	queue   refreshEnqueuer
	cron    *cron.Cron
}

func NewLeaderboardScheduler(batches batchLister, queue refreshEnqueuer, spec, timezone string) (*LeaderboardScheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("scheduler: unknown timezone %q, using UTC", timezone)
		loc = time.UTC
	}

	s := &LeaderboardScheduler{
		batches: batches,
		queue:   queue,
		cron:    cron.New(cron.WithLocation(loc)),
	}
	if _, err := s.cron.AddFunc(spec, s.enqueueAll); err != nil {
		return nil, fmt.Errorf("invalid leaderboard schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *LeaderboardScheduler) Start() {
	// Warm the caches once at startup as well as on schedule.
	go s.enqueueAll()
	s.cron.Start()
	log.Printf("Leaderboard scheduler started")
}

func (s *LeaderboardScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *LeaderboardScheduler) enqueueAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	batches, err := s.batches.ListBatches(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list batches: %v", err)
		return
	}
	for _, batch := range batches {
		if err := s.queue.EnqueueLeaderboardRefresh(ctx, batch); err != nil {
			log.Printf("scheduler: %v", err)
		}
	}
}
