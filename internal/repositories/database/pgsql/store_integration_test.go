//go:build integration

package pgsql_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_core/internal/repositories/migrations"
	"github.com/SscSPs/ledger_core/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PgxStoreIntegrationSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	dsn       string
	repos     *portsrepo.RepositoryProvider
	ctx       context.Context
	now       time.Time
	tenant    string
}

func TestPgxStoreIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PgxStoreIntegrationSuite))
}

func (s *PgxStoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ledger"),
		postgres.WithUsername("ledger"),
		postgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	s.dsn, err = container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(migrations.RunPostgres(s.dsn, slog.New(slog.NewTextHandler(io.Discard, nil))))

	pool, err := database.NewPgxPool(s.ctx, s.dsn, true)
	s.Require().NoError(err)
	s.T().Cleanup(func() { database.ClosePgxPool(pool) })
	s.repos = pgsql.NewRepositoryProvider(pool)
}

func (s *PgxStoreIntegrationSuite) TearDownSuite() {
	if s.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.container.Terminate(ctx); err != nil {
		s.T().Logf("warning: failed to terminate postgres container: %v", err)
	}
}

// SetupTest gives every test its own tenant so the shared database needs no truncation.
func (s *PgxStoreIntegrationSuite) SetupTest() {
	s.tenant = fmt.Sprintf("tenant-%d", time.Now().UnixNano())
	s.now = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

	for _, a := range []struct {
		suffix, code string
		typ          domain.AccountType
		class        domain.AccountClass
	}{
		{"cash", "1000", domain.Asset, domain.CurrentAsset},
		{"sales", "4000", domain.Revenue, domain.RevenueClass},
	} {
		err := s.repos.AccountRepo.SaveAccount(s.ctx, domain.ChartOfAccount{
			AccountID:      s.tenant + "-" + a.suffix,
			TenantID:       s.tenant,
			Code:           a.code,
			Name:           a.suffix,
			AccountType:    a.typ,
			AccountClass:   a.class,
			IsActive:       true,
			OpeningBalance: decimal.Zero,
			AuditFields:    domain.AuditFields{CreatedAt: s.now, CreatedBy: "user-1", LastUpdatedAt: s.now, LastUpdatedBy: "user-1"},
		})
		s.Require().NoError(err)
	}
}

func (s *PgxStoreIntegrationSuite) draft(entryID string, entryDate time.Time, amount string) domain.JournalEntry {
	amt := decimal.RequireFromString(amount)
	id := s.tenant + "-" + entryID
	return domain.JournalEntry{
		EntryID:     id,
		TenantID:    s.tenant,
		EntryDate:   entryDate,
		Description: "entry " + entryID,
		Status:      domain.Draft,
		TotalDebit:  amt,
		TotalCredit: amt,
		Lines: []domain.JournalEntryLine{
			{LineID: id + "-1", AccountID: s.tenant + "-cash", DebitAmount: amt, CreditAmount: decimal.Zero, LineNumber: 1},
			{LineID: id + "-2", AccountID: s.tenant + "-sales", DebitAmount: decimal.Zero, CreditAmount: amt, LineNumber: 2},
		},
		AuditFields: domain.AuditFields{CreatedAt: s.now, CreatedBy: "user-1", LastUpdatedAt: s.now, LastUpdatedBy: "user-1"},
	}
}

func jan(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func (s *PgxStoreIntegrationSuite) TestAccounts_DuplicateCodeAndLookup() {
	dup := domain.ChartOfAccount{
		AccountID: s.tenant + "-other", TenantID: s.tenant, Code: "1000", Name: "dup",
		AccountType: domain.Asset, AccountClass: domain.CurrentAsset, IsActive: true,
		AuditFields: domain.AuditFields{CreatedAt: s.now, LastUpdatedAt: s.now},
	}
	err := s.repos.AccountRepo.SaveAccount(s.ctx, dup)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Contains(err.Error(), "account code 1000 already exists")

	reused := dup
	reused.AccountID = s.tenant + "-cash"
	reused.TenantID = s.tenant + "-other-tenant"
	reused.Code = "1100"
	err = s.repos.AccountRepo.SaveAccount(s.ctx, reused)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Contains(err.Error(), "account id "+s.tenant+"-cash already exists")

	found, err := s.repos.AccountRepo.FindAccountsByIDs(s.ctx, s.tenant, []string{s.tenant + "-cash", "missing"})
	s.Require().NoError(err)
	s.Len(found, 1)

	_, err = s.repos.AccountRepo.FindAccountByID(s.ctx, "someone-else", s.tenant+"-cash")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PgxStoreIntegrationSuite) TestLifecycle_CreatePostReverse() {
	created, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("a", jan(15), "125.50"))
	s.Require().NoError(err)
	s.Equal("JE-000001", created.EntryNumber)
	s.Len(created.Lines, 2)
	s.True(created.EntryDate.Equal(jan(15)))

	posted, err := s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, s.tenant, created.EntryID, "user-2", s.now)
	s.Require().NoError(err)
	s.Equal(domain.Posted, posted.Status)

	_, err = s.repos.JournalEntryRepo.UpdateDraftJournalEntry(s.ctx, s.draft("a", jan(16), "1"))
	s.ErrorIs(err, apperrors.ErrImmutable)

	reversal := s.draft("r", jan(17), "125.50")
	reversal.Status = domain.Posted
	reversal.ReversalOfID = &created.EntryID
	reversal.Lines = domain.Mirror(reversal.Lines)
	reversal.Lines[0].LineID, reversal.Lines[1].LineID = reversal.EntryID+"-1", reversal.EntryID+"-2"

	saved, err := s.repos.JournalEntryRepo.SaveReversal(s.ctx, s.tenant, created.EntryID, reversal)
	s.Require().NoError(err)
	s.Equal("JE-000002", saved.EntryNumber)

	original, err := s.repos.JournalEntryRepo.FindJournalEntryByID(s.ctx, s.tenant, created.EntryID)
	s.Require().NoError(err)
	s.Equal(domain.Reversed, original.Status)
	s.Require().NotNil(original.ReversedByID)
	s.Equal(saved.EntryID, *original.ReversedByID)

	before, err := s.repos.ReportingRepo.GetAccountActivity(s.ctx, s.tenant, nil, jan(16))
	s.Require().NoError(err)
	s.Require().Len(before, 2)
	s.True(before[0].TotalDebit.Equal(decimal.RequireFromString("125.5")))

	after, err := s.repos.ReportingRepo.GetAccountActivity(s.ctx, s.tenant, nil, jan(31))
	s.Require().NoError(err)
	for _, a := range after {
		s.True(a.Net().IsZero(), a.AccountID)
	}
}

func (s *PgxStoreIntegrationSuite) TestListing_KeysetPages() {
	for i, d := range []int{10, 20, 15, 15} {
		_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft(fmt.Sprintf("e%d", i), jan(d), "10"))
		s.Require().NoError(err)
	}

	page1, err := s.repos.JournalEntryRepo.ListJournalEntries(s.ctx, s.tenant, domain.EntryFilter{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page1, 2)
	s.Equal(s.tenant+"-e1", page1[0].EntryID)
	s.Equal(s.tenant+"-e3", page1[1].EntryID)

	last := page1[1]
	cursor := domain.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID}
	page2, err := s.repos.JournalEntryRepo.ListJournalEntries(s.ctx, s.tenant, domain.EntryFilter{Limit: 2, After: &cursor})
	s.Require().NoError(err)
	s.Require().Len(page2, 2)
	s.Equal(s.tenant+"-e2", page2[0].EntryID)
	s.Equal(s.tenant+"-e0", page2[1].EntryID)
}

func (s *PgxStoreIntegrationSuite) TestPosting_ConcurrentCallersExactlyOneWins() {
	created, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("race", jan(15), "10"))
	s.Require().NoError(err)

	const callers = 16
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, s.tenant, created.EntryID, "user-1", s.now)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		s.ErrorIs(err, apperrors.ErrInvalidState)
	}
	s.Equal(1, wins)
}

func (s *PgxStoreIntegrationSuite) TestNumbering_ConcurrentCreatesAreDistinct() {
	const n = 20
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft(fmt.Sprintf("n%d", i), jan(15), "1"))
			if err == nil {
				numbers <- e.EntryNumber
			}
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for num := range numbers {
		s.False(seen[num], num)
		seen[num] = true
	}
	s.Len(seen, n)
}
