package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetAccountActivity sums debits and credits per account over posted (or since reversed)
	// entries of the tenant with from <= entryDate <= to. A nil from means no lower bound.
	// Accounts with no activity are omitted.
	GetAccountActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time) ([]domain.AccountActivity, error)
}
