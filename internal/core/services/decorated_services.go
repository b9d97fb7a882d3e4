package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// Operation names reported by the interceptors.
const (
	OpCreateJournalEntry  = "journal_entry.create"
	OpUpdateJournalEntry  = "journal_entry.update"
	OpDeleteJournalEntry  = "journal_entry.delete"
	OpPostJournalEntry    = "journal_entry.post"
	OpReverseJournalEntry = "journal_entry.reverse"
	OpGetJournalEntry     = "journal_entry.get"
	OpListJournalEntries  = "journal_entry.list"
	OpCreateAccount       = "account.create"
	OpGetAccount          = "account.get"
	OpListAccounts        = "account.list"
	OpTrialBalance        = "report.trial_balance"
	OpProfitAndLoss       = "report.profit_and_loss"
	OpBalanceSheet        = "report.balance_sheet"
)

type interceptedJournalEntryService struct {
	next  portssvc.JournalEntrySvcFacade
	chain Chain
}

// NewInterceptedJournalEntryService runs every call of next through chain.
func NewInterceptedJournalEntryService(next portssvc.JournalEntrySvcFacade, chain Chain) portssvc.JournalEntrySvcFacade {
	return &interceptedJournalEntryService{next: next, chain: chain}
}

func (s *interceptedJournalEntryService) CreateJournalEntry(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	op := Operation{Name: OpCreateJournalEntry, TenantID: tenantID, UserID: userID, Access: domain.AccessWrite}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.JournalEntry, error) {
		return s.next.CreateJournalEntry(ctx, tenantID, req, userID)
	})
}

func (s *interceptedJournalEntryService) UpdateJournalEntry(ctx context.Context, tenantID string, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	op := Operation{Name: OpUpdateJournalEntry, TenantID: tenantID, UserID: userID, Access: domain.AccessWrite}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.JournalEntry, error) {
		return s.next.UpdateJournalEntry(ctx, tenantID, entryID, req, userID)
	})
}

func (s *interceptedJournalEntryService) DeleteJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) error {
	op := Operation{Name: OpDeleteJournalEntry, TenantID: tenantID, UserID: userID, Access: domain.AccessWrite}
	return s.chain.Run(ctx, op, func(ctx context.Context) error {
		return s.next.DeleteJournalEntry(ctx, tenantID, entryID, userID)
	})
}

func (s *interceptedJournalEntryService) PostJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error) {
	op := Operation{Name: OpPostJournalEntry, TenantID: tenantID, UserID: userID, Access: domain.AccessWrite}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.JournalEntry, error) {
		return s.next.PostJournalEntry(ctx, tenantID, entryID, userID)
	})
}

func (s *interceptedJournalEntryService) ReverseJournalEntry(ctx context.Context, tenantID string, entryID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	op := Operation{Name: OpReverseJournalEntry, TenantID: tenantID, UserID: userID, Access: domain.AccessWrite}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.JournalEntry, error) {
		return s.next.ReverseJournalEntry(ctx, tenantID, entryID, req, userID)
	})
}

func (s *interceptedJournalEntryService) GetJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error) {
	op := Operation{Name: OpGetJournalEntry, TenantID: tenantID, UserID: userID, Access: domain.AccessRead}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.JournalEntry, error) {
		return s.next.GetJournalEntry(ctx, tenantID, entryID, userID)
	})
}

type entryPage struct {
	entries   []domain.JournalEntry
	nextToken *string
}

func (s *interceptedJournalEntryService) ListJournalEntries(ctx context.Context, tenantID string, params dto.ListJournalEntriesParams, userID string) ([]domain.JournalEntry, *string, error) {
	op := Operation{Name: OpListJournalEntries, TenantID: tenantID, UserID: userID, Access: domain.AccessRead}
	page, err := invoke(ctx, s.chain, op, func(ctx context.Context) (entryPage, error) {
		entries, token, err := s.next.ListJournalEntries(ctx, tenantID, params, userID)
		return entryPage{entries: entries, nextToken: token}, err
	})
	if err != nil {
		return nil, nil, err
	}
	return page.entries, page.nextToken, nil
}

type interceptedAccountService struct {
	next  portssvc.AccountSvcFacade
	chain Chain
}

// NewInterceptedAccountService runs every call of next through chain.
func NewInterceptedAccountService(next portssvc.AccountSvcFacade, chain Chain) portssvc.AccountSvcFacade {
	return &interceptedAccountService{next: next, chain: chain}
}

func (s *interceptedAccountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.ChartOfAccount, error) {
	op := Operation{Name: OpCreateAccount, TenantID: tenantID, UserID: userID, Access: domain.AccessWrite}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.ChartOfAccount, error) {
		return s.next.CreateAccount(ctx, tenantID, req, userID)
	})
}

func (s *interceptedAccountService) GetAccount(ctx context.Context, tenantID string, accountID string, userID string) (*domain.ChartOfAccount, error) {
	op := Operation{Name: OpGetAccount, TenantID: tenantID, UserID: userID, Access: domain.AccessRead}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.ChartOfAccount, error) {
		return s.next.GetAccount(ctx, tenantID, accountID, userID)
	})
}

func (s *interceptedAccountService) ListAccounts(ctx context.Context, tenantID string, userID string) ([]domain.ChartOfAccount, error) {
	op := Operation{Name: OpListAccounts, TenantID: tenantID, UserID: userID, Access: domain.AccessRead}
	return invoke(ctx, s.chain, op, func(ctx context.Context) ([]domain.ChartOfAccount, error) {
		return s.next.ListAccounts(ctx, tenantID, userID)
	})
}

type interceptedReportingService struct {
	next  portssvc.ReportingService
	chain Chain
}

// NewInterceptedReportingService runs every call of next through chain.
func NewInterceptedReportingService(next portssvc.ReportingService, chain Chain) portssvc.ReportingService {
	return &interceptedReportingService{next: next, chain: chain}
}

func (s *interceptedReportingService) GetTrialBalance(ctx context.Context, tenantID string, asOf time.Time, userID string) (*domain.TrialBalance, error) {
	op := Operation{Name: OpTrialBalance, TenantID: tenantID, UserID: userID, Access: domain.AccessRead}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.TrialBalance, error) {
		return s.next.GetTrialBalance(ctx, tenantID, asOf, userID)
	})
}

func (s *interceptedReportingService) GetProfitAndLoss(ctx context.Context, tenantID string, startDate, endDate time.Time, userID string) (*domain.ProfitAndLossReport, error) {
	op := Operation{Name: OpProfitAndLoss, TenantID: tenantID, UserID: userID, Access: domain.AccessRead}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.ProfitAndLossReport, error) {
		return s.next.GetProfitAndLoss(ctx, tenantID, startDate, endDate, userID)
	})
}

func (s *interceptedReportingService) GetBalanceSheet(ctx context.Context, tenantID string, asOf time.Time, userID string) (*domain.BalanceSheetReport, error) {
	op := Operation{Name: OpBalanceSheet, TenantID: tenantID, UserID: userID, Access: domain.AccessRead}
	return invoke(ctx, s.chain, op, func(ctx context.Context) (*domain.BalanceSheetReport, error) {
		return s.next.GetBalanceSheet(ctx, tenantID, asOf, userID)
	})
}

var (
	_ portssvc.JournalEntrySvcFacade = (*interceptedJournalEntryService)(nil)
	_ portssvc.AccountSvcFacade      = (*interceptedAccountService)(nil)
	_ portssvc.ReportingService      = (*interceptedReportingService)(nil)
)
