package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// UnclosedEarningsName labels the derived equity line carrying revenue less expenses.
const UnclosedEarningsName = "Unclosed Earnings"

// reportingService folds posted activity into trial balance and statement views.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountReader
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock sets the time source
func WithReportingClock(c portssvc.Clock) ReportingServiceOption {
	return func(s *reportingService) {
		s.Clock = c
	}
}

// WithReportingPublisher sets the publisher notified when a report is generated
func WithReportingPublisher(p portssvc.EventPublisher) ReportingServiceOption {
	return func(s *reportingService) {
		s.Publisher = p
	}
}

// NewReportingService creates a new reporting service
func NewReportingService(reportingRepo portsrepo.ReportingRepository, accountRepo portsrepo.AccountReader, opts ...ReportingServiceOption) portssvc.ReportingService {
	s := &reportingService{
		BaseService:   newBaseService(),
		reportingRepo: reportingRepo,
		accountRepo:   accountRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// accountBalance pairs an account with its activity in the report window.
type accountBalance struct {
	account  domain.ChartOfAccount
	activity domain.AccountActivity
}

// GetTrialBalance presents, for every account with a non-zero net balance as of
// asOf, whichever side of the balance is non-zero. The two column totals must agree.
func (s *reportingService) GetTrialBalance(ctx context.Context, tenantID string, asOf time.Time, userID string) (*domain.TrialBalance, error) {
	asOf = domain.DateOnly(asOf)
	balances, err := s.loadBalances(ctx, tenantID, nil, asOf)
	if err != nil {
		return nil, err
	}

	tb := &domain.TrialBalance{
		TenantID:    tenantID,
		AsOf:        asOf,
		Rows:        make([]domain.TrialBalanceRow, 0, len(balances)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, b := range balances {
		if b.activity.Net().IsZero() {
			continue
		}
		debit, credit := accounting.SplitNet(b.activity)
		tb.Rows = append(tb.Rows, domain.TrialBalanceRow{
			AccountID:     b.account.AccountID,
			AccountCode:   b.account.Code,
			AccountName:   b.account.Name,
			AccountType:   b.account.AccountType,
			DebitBalance:  debit,
			CreditBalance: credit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(debit)
		tb.TotalCredit = tb.TotalCredit.Add(credit)
	}

	if !tb.TotalDebit.Equal(tb.TotalCredit) {
		integrityErr := &apperrors.IntegrityError{
			Reason:      "trial balance totals differ",
			TotalDebit:  tb.TotalDebit,
			TotalCredit: tb.TotalCredit,
		}
		s.LogError(ctx, integrityErr, "Trial balance does not balance",
			slog.String("tenant_id", tenantID),
			slog.String("total_debit", utils.FormatAmount(tb.TotalDebit)),
			slog.String("total_credit", utils.FormatAmount(tb.TotalCredit)))
		return nil, integrityErr
	}

	s.reportGenerated(ctx, tenantID, domain.ReportTrialBalance, userID)
	return tb, nil
}

// GetProfitAndLoss re-classifies revenue and expense activity in [startDate, endDate].
func (s *reportingService) GetProfitAndLoss(ctx context.Context, tenantID string, startDate, endDate time.Time, userID string) (*domain.ProfitAndLossReport, error) {
	startDate, endDate = domain.DateOnly(startDate), domain.DateOnly(endDate)
	if startDate.After(endDate) {
		return nil, apperrors.NewValidationError("startDate %s is after endDate %s", startDate.Format(time.DateOnly), endDate.Format(time.DateOnly))
	}

	balances, err := s.loadBalances(ctx, tenantID, &startDate, endDate)
	if err != nil {
		return nil, err
	}

	report := &domain.ProfitAndLossReport{
		TenantID:      tenantID,
		StartDate:     startDate,
		EndDate:       endDate,
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
		Items:         []domain.ReportItem{},
	}
	for _, b := range balances {
		switch b.account.AccountType {
		case domain.Revenue:
			amount := accounting.NormalAmount(b.activity, domain.Revenue)
			report.TotalRevenue = report.TotalRevenue.Add(amount)
			report.Items = appendItem(report.Items, b, amount)
		case domain.Expense:
			amount := accounting.NormalAmount(b.activity, domain.Expense)
			report.TotalExpenses = report.TotalExpenses.Add(amount)
			report.Items = appendItem(report.Items, b, amount)
		}
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)

	s.reportGenerated(ctx, tenantID, domain.ReportProfitAndLoss, userID)
	return report, nil
}

// GetBalanceSheet re-classifies activity up to asOf into assets, liabilities and
// equity. Revenue less expenses not yet closed to equity is carried as a derived
// equity item. A broken accounting identity is reported as a warning.
func (s *reportingService) GetBalanceSheet(ctx context.Context, tenantID string, asOf time.Time, userID string) (*domain.BalanceSheetReport, error) {
	asOf = domain.DateOnly(asOf)
	balances, err := s.loadBalances(ctx, tenantID, nil, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		TenantID:         tenantID,
		AsOf:             asOf,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		Items:            []domain.ReportItem{},
	}
	earnings := decimal.Zero
	for _, b := range balances {
		amount := accounting.NormalAmount(b.activity, b.account.AccountType)
		switch b.account.AccountType {
		case domain.Asset:
			report.TotalAssets = report.TotalAssets.Add(amount)
			report.Items = appendItem(report.Items, b, amount)
		case domain.Liability:
			report.TotalLiabilities = report.TotalLiabilities.Add(amount)
			report.Items = appendItem(report.Items, b, amount)
		case domain.Equity:
			report.TotalEquity = report.TotalEquity.Add(amount)
			report.Items = appendItem(report.Items, b, amount)
		case domain.Revenue:
			earnings = earnings.Add(amount)
		case domain.Expense:
			earnings = earnings.Sub(amount)
		}
	}
	if !earnings.IsZero() {
		report.TotalEquity = report.TotalEquity.Add(earnings)
		report.Items = append(report.Items, domain.ReportItem{
			AccountName: UnclosedEarningsName,
			AccountType: domain.Equity,
			Amount:      earnings,
			Derived:     true,
		})
	}

	liabilitiesAndEquity := report.TotalLiabilities.Add(report.TotalEquity)
	report.Balanced = report.TotalAssets.Equal(liabilitiesAndEquity)
	if !report.Balanced {
		warning := fmt.Sprintf("total assets %s do not equal total liabilities and equity %s",
			utils.FormatAmount(report.TotalAssets), utils.FormatAmount(liabilitiesAndEquity))
		report.Warnings = append(report.Warnings, warning)
		s.GetLogger(ctx).Warn("Balance sheet identity violated",
			slog.String("tenant_id", tenantID),
			slog.String("total_assets", utils.FormatAmount(report.TotalAssets)),
			slog.String("total_liabilities_and_equity", utils.FormatAmount(liabilitiesAndEquity)))
	}

	s.reportGenerated(ctx, tenantID, domain.ReportBalanceSheet, userID)
	return report, nil
}

// loadBalances joins posted activity in the window with the chart of accounts,
// ordered by account code. Activity on an account the registry does not know is
// an IntegrityError.
func (s *reportingService) loadBalances(ctx context.Context, tenantID string, from *time.Time, to time.Time) ([]accountBalance, error) {
	activity, err := s.reportingRepo.GetAccountActivity(ctx, tenantID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate account activity", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to aggregate account activity: %w", err)
	}
	if len(activity) == 0 {
		return nil, nil
	}

	ids := make([]string, len(activity))
	for i, a := range activity {
		ids[i] = a.AccountID
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for report", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	balances := make([]accountBalance, 0, len(activity))
	for _, a := range activity {
		acc, ok := accounts[a.AccountID]
		if !ok {
			integrityErr := &apperrors.IntegrityError{Reason: fmt.Sprintf("posted lines reference unknown account %s", a.AccountID)}
			s.LogError(ctx, integrityErr, "Report references unknown account", slog.String("tenant_id", tenantID), slog.String("account_id", a.AccountID))
			return nil, integrityErr
		}
		balances = append(balances, accountBalance{account: acc, activity: a})
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].account.Code != balances[j].account.Code {
			return balances[i].account.Code < balances[j].account.Code
		}
		return balances[i].account.AccountID < balances[j].account.AccountID
	})
	return balances, nil
}

func appendItem(items []domain.ReportItem, b accountBalance, amount decimal.Decimal) []domain.ReportItem {
	if amount.IsZero() {
		return items
	}
	return append(items, domain.ReportItem{
		AccountID:    b.account.AccountID,
		AccountCode:  b.account.Code,
		AccountName:  b.account.Name,
		AccountType:  b.account.AccountType,
		AccountClass: b.account.AccountClass,
		Amount:       amount,
	})
}

func (s *reportingService) reportGenerated(ctx context.Context, tenantID string, reportType domain.ReportType, userID string) {
	s.LogInfo(ctx, "Report generated", slog.String("tenant_id", tenantID), slog.String("report_type", string(reportType)))
	s.Emit(ctx, domain.ReportGenerated{
		TenantID:    tenantID,
		ReportType:  reportType,
		GeneratedAt: s.Clock.Now(),
		GeneratedBy: userID,
	})
}
