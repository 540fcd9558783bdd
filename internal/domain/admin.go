package domain

import (
	"context"
	"time"
)

// AdminAccount is an HR operator allowed to sign in.
type AdminAccount struct {
	Username     string
	PasswordHash string // bcrypt
	TOTPSecret   string // optional base32 secret; empty disables the second factor
}

// LoginInput is the admin sign-in request.
type LoginInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=128"`
	OTP      string `json:"otp,omitempty" validate:"omitempty,numeric,len=6"`
}

// LoginResult carries the bearer token for subsequent /admin calls.
type LoginResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

type AdminAccountRepository interface {
	// GetByUsername returns ErrNotFound for unknown operators.
	GetByUsername(ctx context.Context, username string) (*AdminAccount, error)
}

type AuthUsecase interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}
