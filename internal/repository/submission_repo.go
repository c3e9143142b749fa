package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qurba-backend/internal/models"
)

// SubmissionRepo stores form and quiz submissions. Both tables are unique on
// (user_id, material_id); saving again replaces the previous submission.
type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) UpsertForm(ctx context.Context, s *models.FormSubmission) error {
	responses, err := json.Marshal(s.Responses)
	if err != nil {
		return fmt.Errorf("failed to encode form responses: %w", err)
	}

	query := `
		INSERT INTO form_submissions (id, user_id, material_id, form_id, responses)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, material_id) DO UPDATE
		SET form_id = EXCLUDED.form_id, responses = EXCLUDED.responses, submitted_at = NOW()
		RETURNING id, submitted_at`

	return r.pool.QueryRow(ctx, query, uuid.New(), s.UserID, s.MaterialID, s.FormID, responses).Scan(&s.ID, &s.SubmittedAt)
}

// UpdateFormResponses edits a submission in place. Only the owner's row matches.
func (r *SubmissionRepo) UpdateFormResponses(ctx context.Context, id, userID uuid.UUID, responses map[string]json.RawMessage) error {
	body, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("failed to encode form responses: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		"UPDATE form_submissions SET responses = $1 WHERE id = $2 AND user_id = $3", body, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanFormSubmission(row pgx.Row) (*models.FormSubmission, error) {
	s := &models.FormSubmission{}
	var responses []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.MaterialID, &s.FormID, &responses, &s.SubmittedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(responses, &s.Responses); err != nil {
		return nil, fmt.Errorf("failed to decode responses of submission %s: %w", s.ID, err)
	}
	return s, nil
}

const formSubmissionColumns = "id, user_id, material_id, form_id, responses, submitted_at"

func (r *SubmissionRepo) GetFormByID(ctx context.Context, id uuid.UUID) (*models.FormSubmission, error) {
	return scanFormSubmission(r.pool.QueryRow(ctx,
		"SELECT "+formSubmissionColumns+" FROM form_submissions WHERE id = $1", id))
}

func (r *SubmissionRepo) GetForm(ctx context.Context, userID, materialID uuid.UUID) (*models.FormSubmission, error) {
	return scanFormSubmission(r.pool.QueryRow(ctx,
		"SELECT "+formSubmissionColumns+" FROM form_submissions WHERE user_id = $1 AND material_id = $2", userID, materialID))
}

func (r *SubmissionRepo) ListFormsByUser(ctx context.Context, userID uuid.UUID) ([]*models.FormSubmission, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+formSubmissionColumns+" FROM form_submissions WHERE user_id = $1 ORDER BY submitted_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.FormSubmission
	for rows.Next() {
		s, err := scanFormSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecordQuiz stores the first attempt at a quiz. A later attempt leaves the
// stored row untouched and s is filled from it, so scores cannot be replaced
// once the answer key has been shown.
func (r *SubmissionRepo) RecordQuiz(ctx context.Context, s *models.QuizSubmission) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode quiz answers: %w", err)
	}

	query := `
		INSERT INTO quiz_submissions (id, user_id, material_id, quiz_id, answers, score, max_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, material_id) DO UPDATE SET quiz_id = quiz_submissions.quiz_id
		RETURNING id, quiz_id, answers, score, max_score, submitted_at`

	var stored []byte
	err = r.pool.QueryRow(ctx, query,
		uuid.New(), s.UserID, s.MaterialID, s.QuizID, answers, s.Score, s.MaxScore,
	).Scan(&s.ID, &s.QuizID, &stored, &s.Score, &s.MaxScore, &s.SubmittedAt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(stored, &s.Answers); err != nil {
		return fmt.Errorf("failed to decode answers of submission %s: %w", s.ID, err)
	}
	return nil
}

const quizSubmissionColumns = "id, user_id, material_id, quiz_id, answers, score, max_score, submitted_at"

func scanQuizSubmission(row pgx.Row) (*models.QuizSubmission, error) {
	s := &models.QuizSubmission{}
	var answers []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.MaterialID, &s.QuizID, &answers, &s.Score, &s.MaxScore, &s.SubmittedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers of submission %s: %w", s.ID, err)
	}
	return s, nil
}

func (r *SubmissionRepo) GetQuiz(ctx context.Context, userID, materialID uuid.UUID) (*models.QuizSubmission, error) {
	return scanQuizSubmission(r.pool.QueryRow(ctx,
		"SELECT "+quizSubmissionColumns+" FROM quiz_submissions WHERE user_id = $1 AND material_id = $2", userID, materialID))
}

func (r *SubmissionRepo) ListQuizzesForUsers(ctx context.Context, userIDs []uuid.UUID) ([]models.QuizSubmission, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		"SELECT "+quizSubmissionColumns+" FROM quiz_submissions WHERE user_id = ANY($1) ORDER BY submitted_at", userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QuizSubmission
	for rows.Next() {
		s, err := scanQuizSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
