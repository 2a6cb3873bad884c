package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists local users and their sessions
type UserStore interface {
	Create(ctx context.Context, user *model.LocalUser) error
	GetByUsername(ctx context.Context, username string) (*model.LocalUser, error)
	CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error
	GetSessionUser(ctx context.Context, token string) (*model.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// LocalProvider keeps users in Postgres with bcrypt password hashes
type LocalProvider struct {
	users      UserStore
	sessionTTL time.Duration
	cost       int
	logger     *zap.Logger
}

// NewLocalProvider creates a provider backed by users
func NewLocalProvider(users UserStore, sessionTTL time.Duration, logger *zap.Logger) *LocalProvider {
	return &LocalProvider{
		users:      users,
		sessionTTL: sessionTTL,
		cost:       bcrypt.DefaultCost,
		logger:     logger,
	}
}

// SignUp implements Provider
func (p *LocalProvider) SignUp(ctx context.Context, creds model.Credentials) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), p.cost)
	if err != nil {
		p.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	user := &model.LocalUser{
		User: model.User{
			ID:       uuid.NewString(),
			Username: creds.Username,
		},
		PasswordHash: string(hash),
	}
	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrUsernameTaken, creds.Username)
		}
		return nil, err
	}

	return p.newSession(ctx, user.User)
}

// LogIn implements Provider
func (p *LocalProvider) LogIn(ctx context.Context, creds model.Credentials) (*Session, error) {
	user, err := p.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		p.logger.Debug("password verification failed", zap.Error(err))
		return nil, apperr.ErrInvalidCredentials
	}

	return p.newSession(ctx, user.User)
}

// CurrentSession implements Provider
func (p *LocalProvider) CurrentSession(ctx context.Context, token string) (*Session, error) {
	user, err := p.users.GetSessionUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrSessionInvalid
	}
	return &Session{User: *user, Token: token}, nil
}

// LogOut implements Provider
func (p *LocalProvider) LogOut(ctx context.Context, token string) error {
	return p.users.DeleteSession(ctx, token)
}

func (p *LocalProvider) newSession(ctx context.Context, user model.User) (*Session, error) {
	token := uuid.NewString()
	if err := p.users.CreateSession(ctx, token, user.ID, time.Now().Add(p.sessionTTL)); err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
