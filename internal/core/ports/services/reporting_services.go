package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// GetTrialBalance folds posted activity up to asOf into one row per account with a non-zero balance
	GetTrialBalance(ctx context.Context, tenantID string, asOf time.Time, userID string) (*domain.TrialBalance, error)

	// GetProfitAndLoss generates a profit and loss report for the inclusive period
	GetProfitAndLoss(ctx context.Context, tenantID string, startDate, endDate time.Time, userID string) (*domain.ProfitAndLossReport, error)

	// GetBalanceSheet generates a balance sheet as of the given date
	GetBalanceSheet(ctx context.Context, tenantID string, asOf time.Time, userID string) (*domain.BalanceSheetReport, error)
}
