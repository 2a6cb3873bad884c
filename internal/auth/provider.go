// Package auth puts the identity provider behind a narrow interface and
// issues the access tokens the API accepts.
package auth

import (
	"context"

	"github.com/Noviath61/finsight/internal/model"
)

// Session is a provider session for a signed-in user
type Session struct {
	User  model.User
	Token string
}

// Provider is an external identity and session backend
type Provider interface {
	SignUp(ctx context.Context, creds model.Credentials) (*Session, error)
	LogIn(ctx context.Context, creds model.Credentials) (*Session, error)
	CurrentSession(ctx context.Context, token string) (*Session, error)
	LogOut(ctx context.Context, token string) error
}
