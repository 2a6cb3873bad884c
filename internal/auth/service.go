package auth

import (
	"context"

	"github.com/Noviath61/finsight/internal/events"
	"github.com/Noviath61/finsight/internal/model"
	"go.uber.org/zap"
)

// Service combines the identity provider with access tokens
type Service struct {
	provider  Provider
	tokens    *TokenService
	publisher events.Publisher
	logger    *zap.Logger
}

// NewService creates a new auth service
func NewService(provider Provider, tokens *TokenService, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		provider:  provider,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
	}
}

// Tokens returns the token service used to validate requests
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// SignUp registers a user and signs them in
func (s *Service) SignUp(ctx context.Context, creds model.Credentials) (*model.TokenResponse, error) {
	session, err := s.provider.SignUp(ctx, creds)
	if err != nil {
		return nil, err
	}
	s.emit(events.TypeUserSignedUp, session.User.Username)
	return s.respond(session)
}

// LogIn authenticates a user
func (s *Service) LogIn(ctx context.Context, creds model.Credentials) (*model.TokenResponse, error) {
	session, err := s.provider.LogIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	s.emit(events.TypeUserLoggedIn, session.User.Username)
	return s.respond(session)
}

// Me returns the user of the provider session behind claims
func (s *Service) Me(ctx context.Context, claims *Claims) (*model.User, error) {
	session, err := s.provider.CurrentSession(ctx, claims.SessionToken)
	if err != nil {
		return nil, err
	}
	return &session.User, nil
}

// LogOut revokes the access token and ends the provider session
func (s *Service) LogOut(ctx context.Context, claims *Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		s.logger.Error("failed to revoke token", zap.Error(err))
		return err
	}
	if err := s.provider.LogOut(ctx, claims.SessionToken); err != nil {
		s.logger.Warn("provider logout failed", zap.String("username", claims.Subject), zap.Error(err))
	}
	s.emit(events.TypeUserLoggedOut, claims.Subject)
	return nil
}

func (s *Service) respond(session *Session) (*model.TokenResponse, error) {
	token, expiresAt, err := s.tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        session.User,
	}, nil
}

func (s *Service) emit(eventType, username string) {
	events.Emit(s.publisher, s.logger, events.TopicAuth, username, events.Event{
		Type:     eventType,
		Username: username,
	})
}
