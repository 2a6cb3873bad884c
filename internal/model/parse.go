package model

import (
	"time"
)

// ParseUser represents a Parse (Back4app) user object
type ParseUser struct {
	ObjectID     string    `json:"objectId"`
	Username     string    `json:"username"`
	SessionToken string    `json:"sessionToken"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ParseError is the error body returned by the Parse REST API
type ParseError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *ParseError) Error() string {
	return e.Message
}

// Parse error codes used by the auth provider
const (
	ParseErrObjectNotFound      = 101
	ParseErrInvalidSessionToken = 209
	ParseErrUsernameTaken       = 202
)
