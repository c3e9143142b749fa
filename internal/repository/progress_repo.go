package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qurba-backend/internal/models"
)

// ProgressRepo stores completion records, one per (user, material).
type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

// MarkComplete records the completion. Repeating it keeps the first
// completed_at, which is returned either way.
func (r *ProgressRepo) MarkComplete(ctx context.Context, userID, materialID uuid.UUID) (*models.CompletionRecord, error) {
	rec := &models.CompletionRecord{UserID: userID, MaterialID: materialID}
	query := `
		INSERT INTO user_progress (user_id, material_id, completed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, material_id) DO UPDATE SET completed_at = user_progress.completed_at
		RETURNING completed_at`

	if err := r.pool.QueryRow(ctx, query, userID, materialID).Scan(&rec.CompletedAt); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *ProgressRepo) CompletedMaterialIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, "SELECT material_id FROM user_progress WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProgressRepo) ListForUsers(ctx context.Context, userIDs []uuid.UUID) ([]models.CompletionRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		"SELECT user_id, material_id, completed_at FROM user_progress WHERE user_id = ANY($1) ORDER BY completed_at", userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.CompletionRecord
	for rows.Next() {
		var rec models.CompletionRecord
		if err := rows.Scan(&rec.UserID, &rec.MaterialID, &rec.CompletedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
