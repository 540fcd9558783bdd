package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/apperror"
	"go-hr-tracker/pkg/auth"
	"go-hr-tracker/pkg/validation"
)

// TokenIssuer signs admin bearer tokens.
type TokenIssuer interface {
	Issue(username, role string) (string, time.Time, error)
}

// dummyHash keeps the bcrypt cost on unknown usernames so timing does not leak
// which accounts exist.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z.6SLuzeYVEnx0cZ3NwcN8Jy"

type authUsecase struct {
	accounts domain.AdminAccountRepository
	issuer   TokenIssuer
	now      func() time.Time
}

func NewAuthUsecase(accounts domain.AdminAccountRepository, issuer TokenIssuer) domain.AuthUsecase {
	return &authUsecase{accounts: accounts, issuer: issuer, now: time.Now}
}

func (u *authUsecase) Login(ctx context.Context, input domain.LoginInput) (*domain.LoginResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.OTP = strings.TrimSpace(input.OTP)
	if err := validation.Validator().Struct(input); err != nil {
		return nil, apperror.Validation(validationFailed, validation.FieldErrors(err))
	}

	account, err := u.accounts.GetByUsername(ctx, input.Username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
		_ = auth.CheckCredentials(auth.Account{PasswordHash: dummyHash}, input.Password, "", u.now())
		return nil, apperror.Unauthorized("Invalid username or password")
	}

	err = auth.CheckCredentials(auth.Account{
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		TOTPSecret:   account.TOTPSecret,
	}, input.Password, input.OTP, u.now())
	switch {
	case errors.Is(err, auth.ErrOTPRequired):
		e := apperror.Unauthorized("One-time code required")
		e.Fields = map[string]string{"otp": "This field is required."}
		return nil, e
	case errors.Is(err, auth.ErrInvalidOTP):
		return nil, apperror.Unauthorized("Invalid one-time code")
	case err != nil:
		return nil, apperror.Unauthorized("Invalid username or password")
	}

	token, expiresAt, err := u.issuer.Issue(account.Username, domain.RoleAdmin)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		Username:  account.Username,
	}, nil
}
