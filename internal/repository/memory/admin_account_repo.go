package memory

import (
	"context"

	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/auth"
)

// adminAccountRepo serves operator accounts parsed from ADMIN_ACCOUNTS.
type adminAccountRepo struct {
	accounts map[string]domain.AdminAccount
}

func NewAdminAccountRepository(accounts []auth.Account) domain.AdminAccountRepository {
	m := make(map[string]domain.AdminAccount, len(accounts))
	for _, a := range accounts {
		m[a.Username] = domain.AdminAccount{
			Username:     a.Username,
			PasswordHash: a.PasswordHash,
			TOTPSecret:   a.TOTPSecret,
		}
	}
	return &adminAccountRepo{accounts: m}
}

func (r *adminAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.AdminAccount, error) {
	a, ok := r.accounts[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}
