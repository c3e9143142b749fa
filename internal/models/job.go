package models

import (
	"time"

	"github.com/google/uuid"
)

const JobLeaderboardRefresh = "leaderboard-refresh"

// Job is a queued background task. Jobs live only in Redis.
type Job struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	BatchNumber int       `json:"batch_number"`
	RetryCount  int       `json:"retry_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
