package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Noviath61/finsight/internal/model"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrDuplicateUsername is returned when a username is already registered
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository handles database operations for local users and sessions
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *model.LocalUser) error {
	query := `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.GetContext(ctx, &user.CreatedAt, query, user.ID, user.Username, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		r.logger.Error("failed to create user", zap.Error(err), zap.String("username", user.Username))
		return err
	}

	return nil
}

// GetByUsername retrieves a user by username, or nil when absent
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.LocalUser, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	var user model.LocalUser
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, err
	}

	return &user, nil
}

// CreateSession stores a session token for userID
func (r *UserRepository) CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error {
	query := `INSERT INTO user_sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, token, userID, expiresAt); err != nil {
		r.logger.Error("failed to create session", zap.Error(err), zap.String("userID", userID))
		return err
	}
	return nil
}

// GetSessionUser returns the user owning an unexpired session token, or nil
func (r *UserRepository) GetSessionUser(ctx context.Context, token string) (*model.User, error) {
	query := `
		SELECT u.id, u.username, u.created_at
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > NOW()
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get session user", zap.Error(err))
		return nil, err
	}

	return &user, nil
}

// DeleteSession removes a session token
func (r *UserRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE token = $1`, token); err != nil {
		r.logger.Error("failed to delete session", zap.Error(err))
		return err
	}
	return nil
}
