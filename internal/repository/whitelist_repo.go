package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qurba-backend/internal/models"
)

const whitelistColumns = "id, email, phone_number, batch_number, password_reset_enabled, added_by, created_at"

type WhitelistRepo struct {
	pool *pgxpool.Pool
}

func NewWhitelistRepo(pool *pgxpool.Pool) *WhitelistRepo {
	return &WhitelistRepo{pool: pool}
}

func scanWhitelist(row pgx.Row) (*models.WhitelistEntry, error) {
	e := &models.WhitelistEntry{}
	if err := row.Scan(&e.ID, &e.Email, &e.PhoneNumber, &e.BatchNumber, &e.PasswordResetEnabled, &e.AddedBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Add inserts the entry unless its email or phone is already listed. It
// reports whether a row was written.
func (r *WhitelistRepo) Add(ctx context.Context, e *models.WhitelistEntry) (bool, error) {
	e.ID = uuid.New()
	query := `
		INSERT INTO whitelist (id, email, phone_number, batch_number, added_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, e.ID, e.Email, e.PhoneNumber, e.BatchNumber, e.AddedBy).Scan(&e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddMany inserts every entry in one round trip and returns how many rows
// were new.
func (r *WhitelistRepo) AddMany(ctx context.Context, entries []*models.WhitelistEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		e.ID = uuid.New()
		batch.Queue(`INSERT INTO whitelist (id, email, phone_number, batch_number, added_by)
			VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
			e.ID, e.Email, e.PhoneNumber, e.BatchNumber, e.AddedBy)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	added := 0
	for range entries {
		tag, err := results.Exec()
		if err != nil {
			return added, err
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

func (r *WhitelistRepo) Remove(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM whitelist WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *WhitelistRepo) List(ctx context.Context) ([]*models.WhitelistEntry, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+whitelistColumns+" FROM whitelist ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.WhitelistEntry
	for rows.Next() {
		e, err := scanWhitelist(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Find matches an entry by email (case-insensitive) or any of the phone
// candidates.
func (r *WhitelistRepo) Find(ctx context.Context, email string, phones []string) (*models.WhitelistEntry, error) {
	query := "SELECT " + whitelistColumns + ` FROM whitelist
		WHERE ($1 <> '' AND lower(email) = lower($1)) OR phone_number = ANY($2)
		ORDER BY created_at LIMIT 1`
	return scanWhitelist(r.pool.QueryRow(ctx, query, email, phones))
}

func (r *WhitelistRepo) SetPasswordReset(ctx context.Context, id uuid.UUID, enabled bool) error {
	tag, err := r.pool.Exec(ctx, "UPDATE whitelist SET password_reset_enabled = $1 WHERE id = $2", enabled, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
