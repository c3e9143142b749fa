package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"qurba-backend/internal/models"
)

const LeaderboardQueue = "queue:leaderboard-refresh"

// Publisher pushes user-facing events to the websocket hub over Redis pub/sub
// and enqueues background jobs.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

func (p *Publisher) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("publisher: failed to encode %s message: %v", msg.Type, err)
		return
	}
	if err := p.redis.Publish(ctx, UserChannel(userID), string(data)).Err(); err != nil {
		log.Printf("publisher: failed to publish to user %s: %v", userID, err)
	}
}

func (p *Publisher) EnqueueLeaderboardRefresh(ctx context.Context, batch int) error {
	job := models.Job{
		ID:          uuid.New(),
		Type:        models.JobLeaderboardRefresh,
		BatchNumber: batch,
		CreatedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := p.redis.RPush(ctx, LeaderboardQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue leaderboard refresh: %w", err)
	}
	return nil
}
