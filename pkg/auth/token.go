package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by admin bearer tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 admin tokens after a successful login.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for username with the given role.
func (ti *TokenIssuer) Issue(username, role string) (string, time.Time, error) {
	if len(ti.secret) == 0 {
		return "", time.Time{}, errors.New("auth: JWT secret not configured")
	}
	now := ti.now()
	expiresAt := now.Add(ti.ttl).Truncate(time.Second)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// TokenVerifier accepts HS256 tokens signed with the shared secret and, when a
// JWKS provider is set, RS256 tokens from an external identity provider.
type TokenVerifier struct {
	secret []byte
	issuer string
	jwks   *Provider
}

func NewTokenVerifier(secret, issuer string, jwks *Provider) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer, jwks: jwks}
}

// Enabled reports whether any verification key is configured.
func (tv *TokenVerifier) Enabled() bool {
	return tv != nil && (len(tv.secret) > 0 || tv.jwks != nil)
}

func (tv *TokenVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(tv.secret) == 0 {
			return nil, errors.New("HS256 tokens not accepted")
		}
		return tv.secret, nil
	case *jwt.SigningMethodRSA:
		if tv.jwks == nil {
			return nil, errors.New("RS256 tokens not accepted")
		}
		return tv.jwks.KeyFunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

// Verify parses and validates tokenString and returns its claims.
func (tv *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	if !tv.Enabled() {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
	}
	if tv.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tv.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, tv.keyFunc, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
