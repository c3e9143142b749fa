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

type QuizRepo struct {
	pool *pgxpool.Pool
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

const quizColumns = "id, name, description, points_per_question, questions, created_by, created_at, updated_at"

func scanQuiz(row pgx.Row) (*models.Quiz, error) {
	q := &models.Quiz{}
	var questions []byte
	err := row.Scan(&q.ID, &q.Name, &q.Description, &q.PointsPerQuestion, &questions, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions of quiz %s: %w", q.ID, err)
	}
	return q, nil
}

func (r *QuizRepo) Create(ctx context.Context, q *models.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode quiz questions: %w", err)
	}

	q.ID = uuid.New()
	query := `INSERT INTO quizzes (id, name, description, points_per_question, questions, created_by)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		q.ID, q.Name, q.Description, q.PointsPerQuestion, questions, q.CreatedBy,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

func (r *QuizRepo) Update(ctx context.Context, q *models.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode quiz questions: %w", err)
	}

	query := `UPDATE quizzes SET name = $1, description = $2, points_per_question = $3, questions = $4, updated_at = NOW()
		WHERE id = $5 RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		q.Name, q.Description, q.PointsPerQuestion, questions, q.ID,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

func (r *QuizRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM quizzes WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *QuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx, "SELECT "+quizColumns+" FROM quizzes WHERE id = $1", id))
}

func (r *QuizRepo) List(ctx context.Context) ([]*models.Quiz, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+quizColumns+" FROM quizzes ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []*models.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}
