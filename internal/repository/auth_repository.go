package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rajac/admission-portal/internal/models"
)

// AuthRepository reads and writes the auth schema.
type AuthRepository struct {
	db *sqlx.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sqlx.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// CreateUser inserts a credential record. A taken email yields ErrDuplicate.
func (r *AuthRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if len(user.RawUserMetaData) == 0 {
		user.RawUserMetaData = []byte(`{}`)
	}

	const query = `INSERT INTO auth.users (id, email, encrypted_password, raw_user_meta_data, created_at, updated_at)
		VALUES (:id, :email, :encrypted_password, :raw_user_meta_data, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindUserByEmail returns a user by email address.
func (r *AuthRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, encrypted_password, raw_user_meta_data, created_at, updated_at FROM auth.users WHERE lower(email) = lower($1) LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindUserByID returns a user by identifier.
func (r *AuthRepository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, encrypted_password, raw_user_meta_data, created_at, updated_at FROM auth.users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// CreateSession persists a server-side session.
func (r *AuthRepository) CreateSession(ctx context.Context, session *models.AuthSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO auth.sessions (id, user_id, refresh_token, expires_at, created_at)
		VALUES (:id, :user_id, :refresh_token, :expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindSession returns a session by identifier.
func (r *AuthRepository) FindSession(ctx context.Context, id string) (*models.AuthSession, error) {
	const query = `SELECT id, user_id, refresh_token, expires_at, created_at FROM auth.sessions WHERE id = $1 LIMIT 1`
	var session models.AuthSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// FindSessionByRefreshToken returns the session owning a refresh token.
func (r *AuthRepository) FindSessionByRefreshToken(ctx context.Context, token string) (*models.AuthSession, error) {
	const query = `SELECT id, user_id, refresh_token, expires_at, created_at FROM auth.sessions WHERE refresh_token = $1 LIMIT 1`
	var session models.AuthSession
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session by refresh token: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (r *AuthRepository) DeleteSession(ctx context.Context, id string) error {
	const query = `DELETE FROM auth.sessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
