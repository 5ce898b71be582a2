package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rajac/admission-portal/internal/models"
)

// AdminRepository reaches admin_users only through its stored procedures.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// VerifyAdminLogin calls verify_admin_login. No matching row yields sql.ErrNoRows.
func (r *AdminRepository) VerifyAdminLogin(ctx context.Context, email, password string) (*models.AdminUser, error) {
	const query = `SELECT id, email, name FROM verify_admin_login($1, $2)`
	var rows []models.AdminUser
	if err := r.db.SelectContext(ctx, &rows, query, email, password); err != nil {
		return nil, fmt.Errorf("verify admin login: %w", err)
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	return &rows[0], nil
}

// IsAdmin calls is_admin for the given identifier.
func (r *AdminRepository) IsAdmin(ctx context.Context, id string) (bool, error) {
	const query = `SELECT is_admin($1)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, id); err != nil {
		return false, fmt.Errorf("is admin: %w", err)
	}
	return ok, nil
}

// UpsertAdmin creates or updates a staff account with an already-hashed password.
func (r *AdminRepository) UpsertAdmin(ctx context.Context, email, name, passwordHash string) (*models.AdminUser, error) {
	const query = `INSERT INTO admin_users (id, email, name, password_hash) VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash
		RETURNING id, email, name`
	var admin models.AdminUser
	if err := r.db.GetContext(ctx, &admin, query, uuid.NewString(), email, name, passwordHash); err != nil {
		return nil, fmt.Errorf("upsert admin: %w", err)
	}
	return &admin, nil
}
