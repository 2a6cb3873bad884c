package middleware

import (
	"context"
	"strings"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/auth"
	"github.com/Noviath61/finsight/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	ClaimsKey   = "claims"
	UsernameKey = "username"
)

// TokenValidator validates bearer access tokens
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" || headerParts[1] == "" {
		return "", false
	}
	return headerParts[1], true
}

// AuthMiddleware creates middleware requiring a valid access token
func AuthMiddleware(tokens TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.SendError(c, apperr.ErrSessionInvalid)
			return
		}

		claims, err := tokens.Validate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("token validation failed", zap.Error(err))
			utils.SendError(c, apperr.ErrSessionInvalid)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UsernameKey, claims.Subject)
		c.Next()
	}
}

// OptionalAuth attaches the user of a valid access token and otherwise
// lets the request through anonymously
func OptionalAuth(tokens TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := tokens.Validate(c.Request.Context(), token); err == nil {
				c.Set(ClaimsKey, claims)
				c.Set(UsernameKey, claims.Subject)
			} else {
				logger.Debug("ignoring invalid token", zap.Error(err))
			}
		}
		c.Next()
	}
}

// GetClaims returns the claims attached by the auth middleware
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
