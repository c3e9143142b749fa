package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qurba-backend/internal/models"
)

type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	s := &models.Setting{}
	err := r.pool.QueryRow(ctx, "SELECT key, value, updated_at FROM settings WHERE key = $1", key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, key, value)
	return err
}

// Stats counts the rows shown on the admin overview in one batch.
func (r *SettingsRepo) Stats(ctx context.Context) (*models.AdminStats, error) {
	stats := &models.AdminStats{}
	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM profiles WHERE role = 'user'", &stats.TotalUsers},
		{"SELECT COUNT(*) FROM whitelist", &stats.WhitelistedEntries},
		{"SELECT COUNT(*) FROM course_materials", &stats.TotalMaterials},
		{"SELECT COUNT(*) FROM custom_forms", &stats.TotalForms},
		{"SELECT COUNT(*) FROM quizzes", &stats.TotalQuizzes},
		{"SELECT COUNT(*) FROM applications", &stats.TotalApplications},
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.sql)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, q := range queries {
		if err := results.QueryRow().Scan(q.dest); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
