package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", "hr-tracker", time.Hour)
	verifier := NewTokenVerifier("s3cret", "hr-tracker", nil)

	token, expiresAt, err := issuer.Issue("alice", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", "hr-tracker", time.Hour)
	token, _, err := issuer.Issue("alice", "admin")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenVerifier("other", "hr-tracker", nil).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewTokenVerifier("s3cret", "someone-else", nil).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenIssuer("s3cret", "hr-tracker", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		expired, _, err := old.Issue("alice", "admin")
		require.NoError(t, err)
		_, err = NewTokenVerifier("s3cret", "hr-tracker", nil).Verify(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewTokenVerifier("s3cret", "", nil).Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("verifier without keys", func(t *testing.T) {
		v := NewTokenVerifier("", "", nil)
		assert.False(t, v.Enabled())
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("issuer without secret", func(t *testing.T) {
		_, _, err := NewTokenIssuer("", "x", time.Hour).Issue("alice", "admin")
		assert.Error(t, err)
	})
}

func TestVerifyRS256ViaJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(JWKS{Keys: []JSONWebKey{{
			Kid: "k1",
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	defer srv.Close()

	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "carol",
			Issuer:    "idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString(key)
	require.NoError(t, err)

	verifier := NewTokenVerifier("", "idp", NewProvider(srv.URL))
	got, err := verifier.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Subject)

	tok.Header["kid"] = "unknown"
	unknown, err := tok.SignedString(key)
	require.NoError(t, err)
	_, err = verifier.Verify(unknown)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccounts(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	accounts, err := ParseAccounts(" alice:" + string(hash) + ", bob:" + string(hash) + ":JBSWY3DPEHPK3PXP ,")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Username)
	assert.Empty(t, accounts[0].TOTPSecret)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", accounts[1].TOTPSecret)

	empty, err := ParseAccounts("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseAccounts("alice")
	assert.Error(t, err)
	_, err = ParseAccounts("alice:plaintext")
	assert.Error(t, err)
	_, err = ParseAccounts("alice:" + string(hash) + ",alice:" + string(hash))
	assert.Error(t, err)
}

func TestCheckCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()

	plain := Account{Username: "alice", PasswordHash: string(hash)}
	assert.NoError(t, CheckCredentials(plain, "correct horse", "", now))
	assert.ErrorIs(t, CheckCredentials(plain, "wrong", "", now), ErrInvalidCredentials)

	secret := "JBSWY3DPEHPK3PXP"
	withOTP := Account{Username: "bob", PasswordHash: string(hash), TOTPSecret: secret}
	code, err := totp.GenerateCode(secret, now)
	require.NoError(t, err)

	assert.ErrorIs(t, CheckCredentials(withOTP, "correct horse", "", now), ErrOTPRequired)
	assert.ErrorIs(t, CheckCredentials(withOTP, "correct horse", "000000x", now), ErrInvalidOTP)
	assert.NoError(t, CheckCredentials(withOTP, "correct horse", code, now))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}
