package domain

import (
	"context"
	"errors"
	"time"
)

type LoginRequest struct {
	Username string
	Password string
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Operator  Operator  `json:"operator"`
}

type CreateOperatorRequest struct {
	Username    string
	DisplayName string
	Role        Role
	Password    string
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	// Authenticate resolves a bearer token to an active operator.
	Authenticate(ctx context.Context, token string) (Operator, error)
	Create(ctx context.Context, req CreateOperatorRequest) (Operator, error)
	List(ctx context.Context) ([]Operator, error)
	// EnsureAdmin creates the bootstrap admin when no operator with that username exists.
	EnsureAdmin(ctx context.Context, username, password string) error
}

const MinPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrNotFound           = errors.New("not_found")
)
