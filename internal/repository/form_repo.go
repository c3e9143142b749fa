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

type FormRepo struct {
	pool *pgxpool.Pool
}

func NewFormRepo(pool *pgxpool.Pool) *FormRepo {
	return &FormRepo{pool: pool}
}

func scanForm(row pgx.Row) (*models.Form, error) {
	f := &models.Form{}
	var fields []byte
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &fields, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &f.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields of form %s: %w", f.ID, err)
	}
	return f, nil
}

func (r *FormRepo) Create(ctx context.Context, f *models.Form) error {
	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode form fields: %w", err)
	}

	f.ID = uuid.New()
	query := `INSERT INTO custom_forms (id, name, description, fields, created_by)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query, f.ID, f.Name, f.Description, fields, f.CreatedBy).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (r *FormRepo) Update(ctx context.Context, f *models.Form) error {
	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode form fields: %w", err)
	}

	query := `UPDATE custom_forms SET name = $1, description = $2, fields = $3, updated_at = NOW()
		WHERE id = $4 RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query, f.Name, f.Description, fields, f.ID).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (r *FormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM custom_forms WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *FormRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	return scanForm(r.pool.QueryRow(ctx,
		"SELECT id, name, description, fields, created_by, created_at, updated_at FROM custom_forms WHERE id = $1", id))
}

func (r *FormRepo) List(ctx context.Context) ([]*models.Form, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name, description, fields, created_by, created_at, updated_at FROM custom_forms ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []*models.Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}
