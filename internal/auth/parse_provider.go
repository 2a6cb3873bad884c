package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/client"
	"github.com/Noviath61/finsight/internal/model"
	"go.uber.org/zap"
)

// ParseAPI is the subset of the Parse REST client used by ParseProvider
type ParseAPI interface {
	SignUp(ctx context.Context, username, password string) (*model.ParseUser, error)
	LogIn(ctx context.Context, username, password string) (*model.ParseUser, error)
	Me(ctx context.Context, sessionToken string) (*model.ParseUser, error)
	LogOut(ctx context.Context, sessionToken string) error
}

// ParseProvider delegates identity to a Back4app / Parse server
type ParseProvider struct {
	api    ParseAPI
	logger *zap.Logger
}

// NewParseProvider creates a new Parse backed provider
func NewParseProvider(api ParseAPI, logger *zap.Logger) *ParseProvider {
	return &ParseProvider{
		api:    api,
		logger: logger,
	}
}

// SignUp implements Provider
func (p *ParseProvider) SignUp(ctx context.Context, creds model.Credentials) (*Session, error) {
	user, err := p.api.SignUp(ctx, creds.Username, creds.Password)
	if err != nil {
		p.logger.Info("Parse signup failed", zap.String("username", creds.Username), zap.Error(err))
		return nil, mapParseError(err, apperr.ErrUsernameTaken)
	}
	return toSession(user), nil
}

// LogIn implements Provider
func (p *ParseProvider) LogIn(ctx context.Context, creds model.Credentials) (*Session, error) {
	user, err := p.api.LogIn(ctx, creds.Username, creds.Password)
	if err != nil {
		p.logger.Info("Parse login failed", zap.String("username", creds.Username), zap.Error(err))
		return nil, mapParseError(err, apperr.ErrInvalidCredentials)
	}
	return toSession(user), nil
}

// CurrentSession implements Provider
func (p *ParseProvider) CurrentSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperr.ErrSessionInvalid
	}
	user, err := p.api.Me(ctx, token)
	if err != nil {
		return nil, mapParseError(err, apperr.ErrSessionInvalid)
	}
	return toSession(user), nil
}

// LogOut implements Provider. An already invalid session is not an error.
func (p *ParseProvider) LogOut(ctx context.Context, token string) error {
	err := p.api.LogOut(ctx, token)
	if err != nil && client.ParseErrorCode(err) == model.ParseErrInvalidSessionToken {
		return nil
	}
	if err != nil {
		return mapParseError(err, apperr.ErrSessionInvalid)
	}
	return nil
}

func toSession(user *model.ParseUser) *Session {
	return &Session{
		User: model.User{
			ID:        user.ObjectID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
		},
		Token: user.SessionToken,
	}
}

// mapParseError translates Parse error codes; unrecognized codes become fallback
func mapParseError(err error, fallback error) error {
	if errors.Is(err, apperr.ErrProviderUnavailable) {
		return err
	}
	switch client.ParseErrorCode(err) {
	case model.ParseErrObjectNotFound:
		return fmt.Errorf("%w: %v", apperr.ErrInvalidCredentials, err)
	case model.ParseErrUsernameTaken:
		return fmt.Errorf("%w: %v", apperr.ErrUsernameTaken, err)
	case model.ParseErrInvalidSessionToken:
		return fmt.Errorf("%w: %v", apperr.ErrSessionInvalid, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
