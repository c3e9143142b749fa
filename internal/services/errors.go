package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct {
	Code    string
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// PartiallyRecordedError means a submission was saved but the completion
// marker was not. Retrying the same request is safe.
type PartiallyRecordedError struct {
	SubmissionID string
	Err          error
}

func (e *PartiallyRecordedError) Error() string {
	return fmt.Sprintf("submission %s saved but completion was not recorded: %v", e.SubmissionID, e.Err)
}

func (e *PartiallyRecordedError) Unwrap() error { return e.Err }

// notFound turns pgx.ErrNoRows into a NotFoundError and leaves other errors alone.
func notFound(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Message: message}
	}
	return err
}
