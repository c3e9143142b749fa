package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qurba-backend/internal/models"
)

const profileColumns = `user_id, email, phone, password_hash, full_name, gender, place, batch_number,
	referral_code, referred_by, signup_source, is_blocked, role, created_at, last_login_at`

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.UserID, &p.Email, &p.Phone, &p.PasswordHash, &p.FullName, &p.Gender, &p.Place, &p.BatchNumber,
		&p.ReferralCode, &p.ReferredBy, &p.SignupSource, &p.IsBlocked, &p.Role, &p.CreatedAt, &p.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, email, phone, password_hash, full_name, gender, place, batch_number,
			referral_code, referred_by, signup_source, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	p.UserID = uuid.New()
	if p.Role == "" {
		p.Role = models.RoleUser
	}

	return r.pool.QueryRow(ctx, query,
		p.UserID, p.Email, p.Phone, p.PasswordHash, p.FullName, p.Gender, p.Place, p.BatchNumber,
		p.ReferralCode, p.ReferredBy, p.SignupSource, p.Role,
	).Scan(&p.CreatedAt)
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", id))
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE lower(email) = lower($1)", email))
}

// GetByPhone returns the first profile whose phone matches any candidate.
func (r *ProfileRepo) GetByPhone(ctx context.Context, candidates []string) (*models.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE phone = ANY($1) ORDER BY created_at LIMIT 1", candidates))
}

func (r *ProfileRepo) GetByReferralCode(ctx context.Context, code string) (*models.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE referral_code = $1", code))
}

func (r *ProfileRepo) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM profiles WHERE referral_code = $1)", code).Scan(&exists)
	return exists, err
}

func (r *ProfileRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE profiles SET last_login_at = $1 WHERE user_id = $2", time.Now(), userID)
	return err
}

func (r *ProfileRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	_, err := r.pool.Exec(ctx, "UPDATE profiles SET password_hash = $1 WHERE user_id = $2", hash, userID)
	return err
}

func (r *ProfileRepo) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	tag, err := r.pool.Exec(ctx, "UPDATE profiles SET is_blocked = $1 WHERE user_id = $2", blocked, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListLearners returns non-admin profiles, optionally limited to one batch,
// in signup order.
func (r *ProfileRepo) ListLearners(ctx context.Context, batch *int) ([]*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE role = 'user'"
	args := []interface{}{}
	if batch != nil {
		query += " AND batch_number = $1"
		args = append(args, *batch)
	}
	query += " ORDER BY created_at, user_id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepo) ListBatches(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, "SELECT DISTINCT batch_number FROM profiles WHERE role = 'user' ORDER BY batch_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []int
	for rows.Next() {
		var b int
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
