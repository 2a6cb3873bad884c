package model

import (
	"time"
)

// Credentials represents data needed for signup and login
type Credentials struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
}

// User is an account known to the identity provider
type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LocalUser is a user row of the local identity provider
type LocalUser struct {
	User
	PasswordHash string `db:"password_hash"`
}

// TokenResponse represents the response sent after successful authentication
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}
