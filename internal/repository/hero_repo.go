package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qurba-backend/internal/models"
)

const heroColumns = "id, media_type, media_url, title, subtitle, display_duration, is_active, order_index, created_by, created_at"

type HeroRepo struct {
	pool *pgxpool.Pool
}

func NewHeroRepo(pool *pgxpool.Pool) *HeroRepo {
	return &HeroRepo{pool: pool}
}

func scanHero(row pgx.Row) (*models.HeroSlide, error) {
	s := &models.HeroSlide{}
	err := row.Scan(&s.ID, &s.MediaType, &s.MediaURL, &s.Title, &s.Subtitle, &s.DisplayDuration,
		&s.IsActive, &s.OrderIndex, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *HeroRepo) Create(ctx context.Context, s *models.HeroSlide) error {
	s.ID = uuid.New()
	query := `INSERT INTO hero_slides (id, media_type, media_url, title, subtitle, display_duration, is_active, order_index, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.MediaType, s.MediaURL, s.Title, s.Subtitle, s.DisplayDuration, s.IsActive, s.OrderIndex, s.CreatedBy,
	).Scan(&s.CreatedAt)
}

func (r *HeroRepo) Update(ctx context.Context, s *models.HeroSlide) error {
	query := `UPDATE hero_slides SET media_type = $1, media_url = $2, title = $3, subtitle = $4,
		display_duration = $5, is_active = $6, order_index = $7
		WHERE id = $8 RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.MediaType, s.MediaURL, s.Title, s.Subtitle, s.DisplayDuration, s.IsActive, s.OrderIndex, s.ID,
	).Scan(&s.CreatedAt)
}

func (r *HeroRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, "UPDATE hero_slides SET is_active = $1 WHERE id = $2", active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *HeroRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM hero_slides WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *HeroRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.HeroSlide, error) {
	return scanHero(r.pool.QueryRow(ctx, "SELECT "+heroColumns+" FROM hero_slides WHERE id = $1", id))
}

func (r *HeroRepo) List(ctx context.Context, activeOnly bool) ([]*models.HeroSlide, error) {
	query := "SELECT " + heroColumns + " FROM hero_slides"
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY order_index, created_at"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slides []*models.HeroSlide
	for rows.Next() {
		s, err := scanHero(rows)
		if err != nil {
			return nil, err
		}
		slides = append(slides, s)
	}
	return slides, rows.Err()
}

func (r *HeroRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM hero_slides").Scan(&n)
	return n, err
}
