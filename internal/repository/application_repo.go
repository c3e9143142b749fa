package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qurba-backend/internal/models"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

func (r *ApplicationRepo) Create(ctx context.Context, a *models.Application) error {
	a.ID = uuid.New()
	query := `INSERT INTO applications (id, full_name, place, gender, age, whatsapp_number, screenshot_url, referred_by_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		a.ID, a.FullName, a.Place, a.Gender, a.Age, a.WhatsAppNumber, a.ScreenshotURL, a.ReferredByCode,
	).Scan(&a.CreatedAt)
}

func (r *ApplicationRepo) List(ctx context.Context, limit, offset int) ([]*models.Application, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM applications").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, full_name, place, gender, age, whatsapp_number, screenshot_url, referred_by_code, created_at
		FROM applications ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		a := &models.Application{}
		if err := rows.Scan(&a.ID, &a.FullName, &a.Place, &a.Gender, &a.Age, &a.WhatsAppNumber, &a.ScreenshotURL, &a.ReferredByCode, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		apps = append(apps, a)
	}
	return apps, total, rows.Err()
}
