package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
// Every lookup is scoped to a tenant.
type AccountReader interface {
	// FindAccountByID retrieves a specific account. Accounts of other tenants are reported as not found.
	FindAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.ChartOfAccount, error)

	// FindAccountsByIDs retrieves the subset of accountIDs that exist for the tenant.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.ChartOfAccount, error)

	// ListAccounts retrieves every account of the tenant ordered by code.
	ListAccounts(ctx context.Context, tenantID string) ([]domain.ChartOfAccount, error)
}

// AccountWriter defines write operations for the chart of accounts.
type AccountWriter interface {
	// SaveAccount persists a new account. Account ids are unique across all tenants;
	// a reused id, or a code already used by the tenant, yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.ChartOfAccount) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
