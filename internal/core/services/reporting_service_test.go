package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func day(s string) time.Time {
	t, err := dto.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

type ReportingServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	entries   portssvc.JournalEntrySvcFacade
	publisher *recordingPublisher
	reporting portssvc.ReportingService
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.publisher = &recordingPublisher{}
	s.entries = services.NewJournalEntryService(s.store, s.store, services.WithClock(fixedClock{at: testNow}))
	s.reporting = services.NewReportingService(s.store, s.store,
		services.WithReportingClock(fixedClock{at: testNow}),
		services.WithReportingPublisher(s.publisher),
	)
	s.Require().NoError(seedAccounts(s.ctx, s.store, tenantA))

	s.post("2024-01-02", debit("1000", "10000.00"), credit("3000", "10000.00"))
	s.post("2024-01-10", debit("5000", "1500.00"), credit("1000", "1500.00"))
	s.post("2024-01-15", debit("1000", "4000.00"), credit("4000", "4000.00"))
	s.post("2024-02-05", debit("1500", "2000.00"), credit("2000", "2000.00"))

	_, err := s.entries.CreateJournalEntry(s.ctx, tenantA, entryRequest("2024-01-20",
		debit("1500", "999.00"), credit("2000", "999.00"),
	), userID)
	s.Require().NoError(err)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func (s *ReportingServiceTestSuite) post(date string, lines ...dto.JournalEntryLineRequest) {
	entry, err := s.entries.CreateJournalEntry(s.ctx, tenantA, entryRequest(date, lines...), userID)
	s.Require().NoError(err)
	_, err = s.entries.PostJournalEntry(s.ctx, tenantA, entry.EntryID, userID)
	s.Require().NoError(err)
}

func (s *ReportingServiceTestSuite) TestTrialBalance() {
	tb, err := s.reporting.GetTrialBalance(s.ctx, tenantA, day("2024-01-31"), userID)
	s.Require().NoError(err)

	codes := make([]string, len(tb.Rows))
	for i, r := range tb.Rows {
		codes[i] = r.AccountCode
	}
	s.Equal([]string{"1000", "3000", "4000", "5000"}, codes)

	s.Equal("12500.00", tb.Rows[0].DebitBalance.StringFixed(2))
	s.Equal("10000.00", tb.Rows[1].CreditBalance.StringFixed(2))
	s.Equal("4000.00", tb.Rows[2].CreditBalance.StringFixed(2))
	s.Equal("1500.00", tb.Rows[3].DebitBalance.StringFixed(2))
	for _, r := range tb.Rows {
		s.True(r.DebitBalance.IsZero() != r.CreditBalance.IsZero(), "exactly one side is set for %s", r.AccountCode)
	}
	s.Equal("14000.00", tb.TotalDebit.StringFixed(2))
	s.True(tb.TotalDebit.Equal(tb.TotalCredit))
	s.Equal(day("2024-01-31"), tb.AsOf)
}

func (s *ReportingServiceTestSuite) TestTrialBalance_ExcludesDraftsAndIsRepeatable() {
	first, err := s.reporting.GetTrialBalance(s.ctx, tenantA, day("2024-03-31"), userID)
	s.Require().NoError(err)
	second, err := s.reporting.GetTrialBalance(s.ctx, tenantA, day("2024-03-31"), userID)
	s.Require().NoError(err)

	s.Require().Len(second.Rows, len(first.Rows))
	for i := range first.Rows {
		s.Equal(first.Rows[i].AccountID, second.Rows[i].AccountID)
		s.True(first.Rows[i].DebitBalance.Equal(second.Rows[i].DebitBalance))
		s.True(first.Rows[i].CreditBalance.Equal(second.Rows[i].CreditBalance))
	}
	for _, r := range first.Rows {
		if r.AccountCode == "2000" {
			s.Equal("2000.00", r.CreditBalance.StringFixed(2), "draft amounts must not be counted")
		}
	}
}

func (s *ReportingServiceTestSuite) TestTrialBalance_TruncatesAsOfToDay() {
	tb, err := s.reporting.GetTrialBalance(s.ctx, tenantA, time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC), userID)
	s.Require().NoError(err)
	s.Equal(day("2024-01-15"), tb.AsOf)
	s.Equal("14000.00", tb.TotalDebit.StringFixed(2))
}

func (s *ReportingServiceTestSuite) TestProfitAndLoss() {
	report, err := s.reporting.GetProfitAndLoss(s.ctx, tenantA, day("2024-01-01"), day("2024-01-31"), userID)
	s.Require().NoError(err)

	s.Equal("4000.00", report.TotalRevenue.StringFixed(2))
	s.Equal("1500.00", report.TotalExpenses.StringFixed(2))
	s.Equal("2500.00", report.NetIncome.StringFixed(2))
	s.Require().Len(report.Items, 2)
	s.Equal("Sales", report.Items[0].AccountName)
	s.Equal(domain.RevenueClass, report.Items[0].AccountClass)
	s.Equal("Rent", report.Items[1].AccountName)
	s.Equal("1500.00", report.Items[1].Amount.StringFixed(2))
}

func (s *ReportingServiceTestSuite) TestProfitAndLoss_WindowExcludesEarlierActivity() {
	report, err := s.reporting.GetProfitAndLoss(s.ctx, tenantA, day("2024-01-12"), day("2024-02-29"), userID)
	s.Require().NoError(err)

	s.Equal("4000.00", report.TotalRevenue.StringFixed(2))
	s.True(report.TotalExpenses.IsZero())
	s.Len(report.Items, 1)
}

func (s *ReportingServiceTestSuite) TestProfitAndLoss_StartAfterEnd() {
	_, err := s.reporting.GetProfitAndLoss(s.ctx, tenantA, day("2024-02-01"), day("2024-01-01"), userID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReportingServiceTestSuite) TestBalanceSheet_CarriesUnclosedEarnings() {
	report, err := s.reporting.GetBalanceSheet(s.ctx, tenantA, day("2024-02-29"), userID)
	s.Require().NoError(err)

	s.Equal("14500.00", report.TotalAssets.StringFixed(2))
	s.Equal("2000.00", report.TotalLiabilities.StringFixed(2))
	s.Equal("12500.00", report.TotalEquity.StringFixed(2))
	s.True(report.Balanced)
	s.Empty(report.Warnings)

	last := report.Items[len(report.Items)-1]
	s.Equal(services.UnclosedEarningsName, last.AccountName)
	s.Equal(domain.Equity, last.AccountType)
	s.True(last.Derived)
	s.Equal("2500.00", last.Amount.StringFixed(2))
}

func (s *ReportingServiceTestSuite) TestReportsEmitEvents() {
	_, err := s.reporting.GetTrialBalance(s.ctx, tenantA, testNow, userID)
	s.Require().NoError(err)
	_, err = s.reporting.GetBalanceSheet(s.ctx, tenantA, testNow, userID)
	s.Require().NoError(err)

	s.Require().Len(s.publisher.events, 2)
	event, ok := s.publisher.events[1].(domain.ReportGenerated)
	s.Require().True(ok)
	s.Equal(domain.ReportBalanceSheet, event.ReportType)
	s.Equal(testNow, event.GeneratedAt)
	s.Equal(userID, event.GeneratedBy)
}

func (s *ReportingServiceTestSuite) TestEmptyTenant() {
	tb, err := s.reporting.GetTrialBalance(s.ctx, tenantB, testNow, userID)
	s.Require().NoError(err)
	s.Empty(tb.Rows)
	s.True(tb.TotalDebit.IsZero())

	bs, err := s.reporting.GetBalanceSheet(s.ctx, tenantB, testNow, userID)
	s.Require().NoError(err)
	s.True(bs.Balanced)
	s.Empty(bs.Items)
}

// --- Mock-backed tests for integrity failures ---

type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetAccountActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time) ([]domain.AccountActivity, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountActivity), args.Error(1)
}

func activity(accountID, debitAmt, creditAmt string) domain.AccountActivity {
	return domain.AccountActivity{
		AccountID:   accountID,
		TotalDebit:  decimal.RequireFromString(debitAmt),
		TotalCredit: decimal.RequireFromString(creditAmt),
	}
}

func newMockedReporting(t *testing.T, rows []domain.AccountActivity) (portssvc.ReportingService, *MockReportingRepository) {
	t.Helper()
	accounts := memory.NewStore()
	require.NoError(t, seedAccounts(context.Background(), accounts, tenantA))

	repo := new(MockReportingRepository)
	repo.On("GetAccountActivity", mock.Anything, tenantA, mock.Anything, mock.Anything).Return(rows, nil)
	return services.NewReportingService(repo, accounts), repo
}

func TestTrialBalance_UnknownAccountIsIntegrityError(t *testing.T) {
	svc, repo := newMockedReporting(t, []domain.AccountActivity{
		activity("1000", "10", "0"),
		activity("ghost", "0", "10"),
	})

	_, err := svc.GetTrialBalance(context.Background(), tenantA, testNow, userID)

	var integrityErr *apperrors.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Contains(t, integrityErr.Reason, "ghost")
	repo.AssertExpectations(t)
}

func TestTrialBalance_UnequalTotalsIsIntegrityError(t *testing.T) {
	svc, _ := newMockedReporting(t, []domain.AccountActivity{
		activity("1000", "100", "0"),
		activity("4000", "0", "90"),
	})

	_, err := svc.GetTrialBalance(context.Background(), tenantA, testNow, userID)

	var integrityErr *apperrors.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, "100.00", integrityErr.TotalDebit.StringFixed(2))
	assert.Equal(t, "90.00", integrityErr.TotalCredit.StringFixed(2))
	assert.Equal(t, apperrors.KindIntegrity, apperrors.Kind(err))
}

func TestBalanceSheet_IdentityViolationIsWarning(t *testing.T) {
	svc, _ := newMockedReporting(t, []domain.AccountActivity{
		activity("1000", "100", "0"),
		activity("2000", "0", "60"),
	})

	report, err := svc.GetBalanceSheet(context.Background(), tenantA, testNow, userID)

	require.NoError(t, err)
	assert.False(t, report.Balanced)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "100.00")
	assert.Contains(t, report.Warnings[0], "60.00")
}

func TestProfitAndLoss_PassesWindowToStore(t *testing.T) {
	accounts := memory.NewStore()
	require.NoError(t, seedAccounts(context.Background(), accounts, tenantA))

	start, end := day("2024-01-01"), day("2024-01-31")
	repo := new(MockReportingRepository)
	repo.On("GetAccountActivity", mock.Anything, tenantA, &start, end).Return([]domain.AccountActivity{
		activity("4000", "0", "300"),
		activity("1000", "300", "0"),
	}, nil)
	svc := services.NewReportingService(repo, accounts)

	report, err := svc.GetProfitAndLoss(context.Background(), tenantA, start, end, userID)

	require.NoError(t, err)
	assert.Equal(t, "300.00", report.NetIncome.StringFixed(2))
	require.Len(t, report.Items, 1)
	repo.AssertExpectations(t)
}
