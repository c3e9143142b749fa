package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qurba-backend/internal/models"
)

const materialColumns = `id, day_number, title, details, kind, media_url, form_id, quiz_id,
	min_completion_time, order_index, created_by, created_at, updated_at`

// MaterialRepo is the catalog reader. Every list is ordered by day, then
// order_index, then creation time.
type MaterialRepo struct {
	pool *pgxpool.Pool
}

func NewMaterialRepo(pool *pgxpool.Pool) *MaterialRepo {
	return &MaterialRepo{pool: pool}
}

func scanMaterial(row pgx.Row) (*models.Material, error) {
	m := &models.Material{}
	err := row.Scan(
		&m.ID, &m.DayNumber, &m.Title, &m.Details, &m.Kind, &m.MediaURL, &m.FormID, &m.QuizID,
		&m.MinCompletionTime, &m.OrderIndex, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MaterialRepo) Create(ctx context.Context, m *models.Material) error {
	query := `
		INSERT INTO course_materials (id, day_number, title, details, kind, media_url, form_id, quiz_id,
			min_completion_time, order_index, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	m.ID = uuid.New()
	return r.pool.QueryRow(ctx, query,
		m.ID, m.DayNumber, m.Title, m.Details, m.Kind, m.MediaURL, m.FormID, m.QuizID,
		m.MinCompletionTime, m.OrderIndex, m.CreatedBy,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MaterialRepo) Update(ctx context.Context, m *models.Material) error {
	query := `
		UPDATE course_materials
		SET day_number = $1, title = $2, details = $3, kind = $4, media_url = $5, form_id = $6, quiz_id = $7,
			min_completion_time = $8, order_index = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		m.DayNumber, m.Title, m.Details, m.Kind, m.MediaURL, m.FormID, m.QuizID,
		m.MinCompletionTime, m.OrderIndex, m.ID,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MaterialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM course_materials WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MaterialRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	return scanMaterial(r.pool.QueryRow(ctx, "SELECT "+materialColumns+" FROM course_materials WHERE id = $1", id))
}

// ListUpToDay loads every material of days 1..day, enough to decide whether
// day is reachable.
func (r *MaterialRepo) ListUpToDay(ctx context.Context, day int) ([]*models.Material, error) {
	return r.list(ctx,
		"SELECT "+materialColumns+" FROM course_materials WHERE day_number <= $1 ORDER BY day_number, order_index, created_at, id", day)
}

func (r *MaterialRepo) ListAll(ctx context.Context) ([]*models.Material, error) {
	return r.list(ctx,
		"SELECT "+materialColumns+" FROM course_materials ORDER BY day_number, order_index, created_at, id")
}

func (r *MaterialRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Material, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []*models.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}
