package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"qurba-backend/internal/models"
	"qurba-backend/internal/progress"
)

type learnerStore interface {
	ListLearners(ctx context.Context, batch *int) ([]*models.Profile, error)
}

type quizResultStore interface {
	ListQuizzesForUsers(ctx context.Context, userIDs []uuid.UUID) ([]models.QuizSubmission, error)
}

// LeaderboardService ranks learners of a batch by quiz percentage. Rankings
// are cached in Redis and rebuilt by the worker pool after quiz submissions
// and on a schedule.
type LeaderboardService struct {
	learners learnerStore
	results  quizResultStore
	redis    *redis.Client
	ttl      time.Duration
}

func NewLeaderboardService(learners learnerStore, results quizResultStore, redisClient *redis.Client, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{learners: learners, results: results, redis: redisClient, ttl: ttl}
}

func LeaderboardKey(batch int) string {
	return fmt.Sprintf("leaderboard:batch:%d", batch)
}

// Toppers serves the cached ranking when present and computes it otherwise.
func (s *LeaderboardService) Toppers(ctx context.Context, batch int) ([]progress.Topper, error) {
	if batch < 1 {
		batch = progress.DefaultBatch
	}

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, LeaderboardKey(batch)).Bytes()
		if err == nil {
			var toppers []progress.Topper
			if json.Unmarshal(cached, &toppers) == nil {
				return toppers, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("leaderboard: cache read failed for batch %d: %v", batch, err)
		}
	}

	return s.Refresh(ctx, batch)
}

// Refresh recomputes the ranking for one batch and stores it in the cache.
func (s *LeaderboardService) Refresh(ctx context.Context, batch int) ([]progress.Topper, error) {
	toppers, err := s.compute(ctx, batch)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		data, err := json.Marshal(toppers)
		if err == nil {
			if err := s.redis.Set(ctx, LeaderboardKey(batch), data, s.ttl).Err(); err != nil {
				log.Printf("leaderboard: cache write failed for batch %d: %v", batch, err)
			}
		}
	}
	return toppers, nil
}

func (s *LeaderboardService) compute(ctx context.Context, batch int) ([]progress.Topper, error) {
	profiles, err := s.learners.ListLearners(ctx, &batch)
	if err != nil {
		return nil, fmt.Errorf("failed to list learners: %w", err)
	}
	learners := toLearners(profiles)

	ids := make([]uuid.UUID, len(learners))
	for i, l := range learners {
		ids[i] = l.UserID
	}
	submissions, err := s.results.ListQuizzesForUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz submissions: %w", err)
	}

	return progress.Toppers(learners, submissions, progress.ToppersLimit), nil
}

func toLearners(profiles []*models.Profile) []progress.Learner {
	learners := make([]progress.Learner, len(profiles))
	for i, p := range profiles {
		learners[i] = progress.Learner{
			UserID:      p.UserID,
			FullName:    p.FullName,
			Phone:       p.Phone,
			BatchNumber: p.BatchNumber,
		}
	}
	return learners
}
