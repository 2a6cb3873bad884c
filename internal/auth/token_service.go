package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const accessTokenType = "access"

// Claims are the access token claims. SessionToken carries the provider
// session the token was issued for.
type Claims struct {
	UserID       string `json:"uid"`
	SessionToken string `json:"sid"`
	Type         string `json:"type"`
	jwt.RegisteredClaims
}

// Revoker tracks revoked token IDs
type Revoker interface {
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// TokenService issues and validates HS256 access tokens
type TokenService struct {
	secret   []byte
	duration time.Duration
	revoked  Revoker
	logger   *zap.Logger
}

// NewTokenService creates a new token service
func NewTokenService(secret string, duration time.Duration, revoked Revoker, logger *zap.Logger) *TokenService {
	if duration <= 0 {
		duration = 24 * time.Hour
	}
	return &TokenService{
		secret:   []byte(secret),
		duration: duration,
		revoked:  revoked,
		logger:   logger,
	}
}

// Issue signs an access token for session
func (s *TokenService) Issue(session *Session) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.duration)

	claims := Claims{
		UserID:       session.User.ID,
		SessionToken: session.Token,
		Type:         accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   session.User.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate parses tokenString and checks that it has not been revoked
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrSessionInvalid, err)
	}
	if !token.Valid || claims.Type != accessTokenType {
		return nil, apperr.ErrSessionInvalid
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("Revocation check failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, apperr.ErrSessionInvalid
		}
	}
	return claims, nil
}

// Revoke invalidates the token identified by claims until it expires
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if s.revoked == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
