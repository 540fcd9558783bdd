package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOTPRequired        = errors.New("one-time code required")
	ErrInvalidOTP         = errors.New("invalid one-time code")
)

// Account is one configured operator entry.
type Account struct {
	Username     string
	PasswordHash string
	TOTPSecret   string
}

// ParseAccounts reads "user:bcrypt-hash[:totp-secret]" entries separated by commas.
// bcrypt hashes contain '$' but never ':' so the split is unambiguous.
func ParseAccounts(raw string) ([]Account, error) {
	var out []Account
	seen := map[string]bool{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("auth: malformed admin account entry %q", entry)
		}
		acc := Account{Username: strings.TrimSpace(parts[0]), PasswordHash: strings.TrimSpace(parts[1])}
		if len(parts) == 3 {
			acc.TOTPSecret = strings.TrimSpace(parts[2])
		}
		if acc.Username == "" || !strings.HasPrefix(acc.PasswordHash, "$2") {
			return nil, fmt.Errorf("auth: admin account %q needs a bcrypt hash", acc.Username)
		}
		if seen[acc.Username] {
			return nil, fmt.Errorf("auth: duplicate admin account %q", acc.Username)
		}
		seen[acc.Username] = true
		out = append(out, acc)
	}
	return out, nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_ACCOUNTS.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckCredentials verifies password against the bcrypt hash and, when the
// account has a TOTP secret, the one-time code at time now.
func CheckCredentials(acc Account, password, otpCode string, now time.Time) error {
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	if acc.TOTPSecret == "" {
		return nil
	}
	if otpCode == "" {
		return ErrOTPRequired
	}
	ok, err := totp.ValidateCustom(otpCode, acc.TOTPSecret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !ok {
		return ErrInvalidOTP
	}
	return nil
}
