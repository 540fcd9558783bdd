package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go-hr-tracker/internal/domain"
	"go-hr-tracker/internal/repository/memory"
	"go-hr-tracker/internal/usecase"
	"go-hr-tracker/pkg/auth"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthUsecase(t *testing.T) (domain.AuthUsecase, *auth.TokenVerifier) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := memory.NewAdminAccountRepository([]auth.Account{
		{Username: "alice", PasswordHash: string(hash)},
		{Username: "bob", PasswordHash: string(hash), TOTPSecret: "JBSWY3DPEHPK3PXP"},
	})
	issuer := auth.NewTokenIssuer("test-secret", "hr-tracker", time.Hour)
	return usecase.NewAuthUsecase(repo, issuer), auth.NewTokenVerifier("test-secret", "hr-tracker", nil)
}

func TestLogin(t *testing.T) {
	uc, verifier := newAuthUsecase(t)
	ctx := context.Background()

	t.Run("Should issue an admin token", func(t *testing.T) {
		res, err := uc.Login(ctx, domain.LoginInput{Username: " alice ", Password: "hunter22"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", res.TokenType)
		claims, err := verifier.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("Should reject wrong password and unknown user alike", func(t *testing.T) {
		_, err := uc.Login(ctx, domain.LoginInput{Username: "alice", Password: "nope"})
		wrong := requireAppError(t, err, http.StatusUnauthorized)
		_, err = uc.Login(ctx, domain.LoginInput{Username: "mallory", Password: "nope"})
		unknown := requireAppError(t, err, http.StatusUnauthorized)
		assert.Equal(t, wrong.Message, unknown.Message)
	})

	t.Run("Should validate input", func(t *testing.T) {
		_, err := uc.Login(ctx, domain.LoginInput{})
		appErr := requireAppError(t, err, http.StatusBadRequest)
		assert.Contains(t, appErr.Fields, "username")
		assert.Contains(t, appErr.Fields, "password")
	})

	t.Run("Should require the second factor when configured", func(t *testing.T) {
		_, err := uc.Login(ctx, domain.LoginInput{Username: "bob", Password: "hunter22"})
		appErr := requireAppError(t, err, http.StatusUnauthorized)
		assert.Contains(t, appErr.Fields, "otp")

		code, err := totp.GenerateCode("JBSWY3DPEHPK3PXP", time.Now())
		require.NoError(t, err)
		res, err := uc.Login(ctx, domain.LoginInput{Username: "bob", Password: "hunter22", OTP: code})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
	})
}
