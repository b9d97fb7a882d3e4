package sqlite_test

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
	"github.com/SscSPs/ledger_core/internal/repositories/database/sqlite"
	"github.com/SscSPs/ledger_core/internal/repositories/migrations"
	"github.com/SscSPs/ledger_core/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SQLiteStoreTestSuite struct {
	suite.Suite
	repos *portsrepo.RepositoryProvider
	ctx   context.Context
	now   time.Time
}

func TestSQLiteStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreTestSuite))
}

func (s *SQLiteStoreTestSuite) SetupTest() {
	db, err := database.OpenSQLite(database.MemorySQLitePath)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })
	s.Require().NoError(migrations.RunSQLite(db, slog.New(slog.NewTextHandler(io.Discard, nil))))

	s.repos = sqlite.NewRepositoryProvider(db)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 20, 9, 0, 0, 123456789, time.UTC)

	for _, tenant := range []string{"t1", "t2"} {
		s.Require().NoError(s.repos.AccountRepo.SaveAccount(s.ctx, s.account(tenant, tenant+"-cash", "1000", domain.Asset, domain.CurrentAsset)))
		s.Require().NoError(s.repos.AccountRepo.SaveAccount(s.ctx, s.account(tenant, tenant+"-sales", "4000", domain.Revenue, domain.RevenueClass)))
	}
}

func (s *SQLiteStoreTestSuite) account(tenantID, id, code string, typ domain.AccountType, class domain.AccountClass) domain.ChartOfAccount {
	return domain.ChartOfAccount{
		AccountID:      id,
		TenantID:       tenantID,
		Code:           code,
		Name:           "account " + code,
		AccountType:    typ,
		AccountClass:   class,
		IsActive:       true,
		OpeningBalance: decimal.Zero,
		AuditFields:    domain.AuditFields{CreatedAt: s.now, CreatedBy: "user-1", LastUpdatedAt: s.now, LastUpdatedBy: "user-1"},
	}
}

func (s *SQLiteStoreTestSuite) draft(tenantID, entryID string, entryDate time.Time, amount string) domain.JournalEntry {
	amt := decimal.RequireFromString(amount)
	memo := "first line"
	return domain.JournalEntry{
		EntryID:     entryID,
		TenantID:    tenantID,
		EntryDate:   entryDate,
		Description: "entry " + entryID,
		Status:      domain.Draft,
		TotalDebit:  amt,
		TotalCredit: amt,
		Lines: []domain.JournalEntryLine{
			{LineID: entryID + "-1", JournalEntryID: entryID, AccountID: tenantID + "-cash", Description: &memo, DebitAmount: amt, CreditAmount: decimal.Zero, LineNumber: 1},
			{LineID: entryID + "-2", JournalEntryID: entryID, AccountID: tenantID + "-sales", DebitAmount: decimal.Zero, CreditAmount: amt, LineNumber: 2},
		},
		AuditFields: domain.AuditFields{CreatedAt: s.now, CreatedBy: "user-1", LastUpdatedAt: s.now, LastUpdatedBy: "user-1"},
	}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func (s *SQLiteStoreTestSuite) TestAccounts_RoundTripAndScoping() {
	found, err := s.repos.AccountRepo.FindAccountByID(s.ctx, "t1", "t1-cash")
	s.Require().NoError(err)
	s.Equal(domain.Asset, found.AccountType)
	s.Equal(domain.CurrentAsset, found.AccountClass)
	s.True(found.IsActive)
	s.Nil(found.ParentAccountID)
	s.True(found.CreatedAt.Equal(s.now))

	_, err = s.repos.AccountRepo.FindAccountByID(s.ctx, "t2", "t1-cash")
	s.ErrorIs(err, apperrors.ErrNotFound)

	byID, err := s.repos.AccountRepo.FindAccountsByIDs(s.ctx, "t1", []string{"t1-cash", "t2-cash", "missing"})
	s.Require().NoError(err)
	s.Len(byID, 1)
	s.Contains(byID, "t1-cash")

	listed, err := s.repos.AccountRepo.ListAccounts(s.ctx, "t1")
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal("1000", listed[0].Code)
	s.Equal("4000", listed[1].Code)
}

func (s *SQLiteStoreTestSuite) TestAccounts_DuplicateCode() {
	err := s.repos.AccountRepo.SaveAccount(s.ctx, s.account("t1", "t1-other", "1000", domain.Asset, domain.CurrentAsset))
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Contains(err.Error(), "account code 1000 already exists")
}

func (s *SQLiteStoreTestSuite) TestAccounts_IDsAreGlobal() {
	err := s.repos.AccountRepo.SaveAccount(s.ctx, s.account("t2", "t1-cash", "1100", domain.Asset, domain.CurrentAsset))
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Contains(err.Error(), "account id t1-cash already exists")
}

func (s *SQLiteStoreTestSuite) TestCreate_NumbersPerTenantAndKeepsLines() {
	first, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(15), "10.50"))
	s.Require().NoError(err)
	second, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_b", day(15), "10"))
	s.Require().NoError(err)
	other, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t2", "je_c", day(15), "10"))
	s.Require().NoError(err)

	s.Equal("JE-000001", first.EntryNumber)
	s.Equal("JE-000002", second.EntryNumber)
	s.Equal("JE-000001", other.EntryNumber)

	s.Equal(domain.Draft, first.Status)
	s.True(first.EntryDate.Equal(day(15)))
	s.True(first.CreatedAt.Equal(s.now))
	s.True(first.TotalDebit.Equal(decimal.RequireFromString("10.5")))
	s.Nil(first.PostedAt)
	s.Require().Len(first.Lines, 2)
	s.Equal(1, first.Lines[0].LineNumber)
	s.Require().NotNil(first.Lines[0].Description)
	s.Equal("first line", *first.Lines[0].Description)
	s.Nil(first.Lines[1].Description)
	s.True(first.Lines[1].CreditAmount.Equal(decimal.RequireFromString("10.50")))

	_, err = s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(16), "1"))
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *SQLiteStoreTestSuite) TestCreate_UnknownAccountLeavesNothingBehind() {
	entry := s.draft("t1", "je_bad", day(15), "10")
	entry.Lines[1].AccountID = "nowhere"

	_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, entry)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.repos.JournalEntryRepo.FindJournalEntryByID(s.ctx, "t1", "je_bad")
	s.ErrorIs(err, apperrors.ErrNotFound)

	next, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_ok", day(15), "10"))
	s.Require().NoError(err)
	s.Equal("JE-000001", next.EntryNumber)
}

func (s *SQLiteStoreTestSuite) TestFind_IsTenantScoped() {
	_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(15), "10"))
	s.Require().NoError(err)

	_, err = s.repos.JournalEntryRepo.FindJournalEntryByID(s.ctx, "t2", "je_a")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SQLiteStoreTestSuite) TestList_OrderFilterAndKeyset() {
	for i, d := range []int{10, 20, 15, 15} {
		_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", fmt.Sprintf("je_%d", i), day(d), "10"))
		s.Require().NoError(err)
	}

	all, err := s.repos.JournalEntryRepo.ListJournalEntries(s.ctx, "t1", domain.EntryFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 4)
	s.Equal([]string{"je_1", "je_3", "je_2", "je_0"}, entryIDs(all))
	for _, e := range all {
		s.Len(e.Lines, 2)
	}

	start, end := day(12), day(18)
	bounded, err := s.repos.JournalEntryRepo.ListJournalEntries(s.ctx, "t1", domain.EntryFilter{StartDate: &start, EndDate: &end})
	s.Require().NoError(err)
	s.Equal([]string{"je_3", "je_2"}, entryIDs(bounded))

	page1, err := s.repos.JournalEntryRepo.ListJournalEntries(s.ctx, "t1", domain.EntryFilter{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page1, 2)
	last := page1[1]
	cursor := domain.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID}
	page2, err := s.repos.JournalEntryRepo.ListJournalEntries(s.ctx, "t1", domain.EntryFilter{Limit: 2, After: &cursor})
	s.Require().NoError(err)
	s.Equal([]string{"je_2", "je_0"}, entryIDs(page2))

	empty, err := s.repos.JournalEntryRepo.ListJournalEntries(s.ctx, "t2", domain.EntryFilter{})
	s.Require().NoError(err)
	s.Empty(empty)
}

func entryIDs(entries []domain.JournalEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}
	return ids
}

func (s *SQLiteStoreTestSuite) TestUpdateAndDelete_OnlyWhileDraft() {
	_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(15), "10"))
	s.Require().NoError(err)

	changed := s.draft("t1", "je_a", day(16), "25")
	changed.Description = "changed"
	changed.Lines = changed.Lines[:1]
	changed.Lines = append(changed.Lines,
		domain.JournalEntryLine{LineID: "je_a-3", JournalEntryID: "je_a", AccountID: "t1-sales", CreditAmount: decimal.NewFromInt(20), DebitAmount: decimal.Zero, LineNumber: 2},
		domain.JournalEntryLine{LineID: "je_a-4", JournalEntryID: "je_a", AccountID: "t1-sales", CreditAmount: decimal.NewFromInt(5), DebitAmount: decimal.Zero, LineNumber: 3},
	)
	updated, err := s.repos.JournalEntryRepo.UpdateDraftJournalEntry(s.ctx, changed)
	s.Require().NoError(err)
	s.Equal("changed", updated.Description)
	s.Equal("JE-000001", updated.EntryNumber)
	s.True(updated.EntryDate.Equal(day(16)))
	s.True(updated.TotalDebit.Equal(decimal.NewFromInt(25)))
	s.Len(updated.Lines, 3)

	_, err = s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, "t1", "je_a", "user-1", s.now)
	s.Require().NoError(err)

	_, err = s.repos.JournalEntryRepo.UpdateDraftJournalEntry(s.ctx, changed)
	s.ErrorIs(err, apperrors.ErrImmutable)
	s.ErrorIs(s.repos.JournalEntryRepo.DeleteDraftJournalEntry(s.ctx, "t1", "je_a"), apperrors.ErrImmutable)
	s.ErrorIs(s.repos.JournalEntryRepo.DeleteDraftJournalEntry(s.ctx, "t1", "missing"), apperrors.ErrNotFound)
}

func (s *SQLiteStoreTestSuite) TestDelete_RemovesDraftAndLines() {
	_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(15), "10"))
	s.Require().NoError(err)

	s.Require().NoError(s.repos.JournalEntryRepo.DeleteDraftJournalEntry(s.ctx, "t1", "je_a"))
	_, err = s.repos.JournalEntryRepo.FindJournalEntryByID(s.ctx, "t1", "je_a")
	s.ErrorIs(err, apperrors.ErrNotFound)

	// the line ids are free again once the cascade removed them
	_, err = s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(15), "10"))
	s.NoError(err)
}

func (s *SQLiteStoreTestSuite) TestPost_CompareAndSwap() {
	_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(15), "10"))
	s.Require().NoError(err)

	posted, err := s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, "t1", "je_a", "user-2", s.now)
	s.Require().NoError(err)
	s.Equal(domain.Posted, posted.Status)
	s.Require().NotNil(posted.PostedAt)
	s.True(posted.PostedAt.Equal(s.now))
	s.Require().NotNil(posted.PostedBy)
	s.Equal("user-2", *posted.PostedBy)

	_, err = s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, "t1", "je_a", "user-2", s.now)
	var transitionErr *apperrors.InvalidStateTransitionError
	s.Require().ErrorAs(err, &transitionErr)
	s.Equal("POSTED", transitionErr.From)

	_, err = s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, "t1", "missing", "user-2", s.now)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SQLiteStoreTestSuite) TestPost_ConcurrentCallersExactlyOneWins() {
	_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(15), "10"))
	s.Require().NoError(err)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, "t1", "je_a", "user-1", s.now)
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

func (s *SQLiteStoreTestSuite) TestSaveReversal_FlipsOriginal() {
	_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", "je_a", day(15), "10"))
	s.Require().NoError(err)

	_, err = s.repos.JournalEntryRepo.SaveReversal(s.ctx, "t1", "je_a", s.draft("t1", "je_r0", day(15), "10"))
	s.ErrorIs(err, apperrors.ErrInvalidState)

	_, err = s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, "t1", "je_a", "user-1", s.now)
	s.Require().NoError(err)

	reversal := s.draft("t1", "je_r", day(17), "10")
	reversal.Status = domain.Posted
	reversal.PostedAt = &s.now
	originalID := "je_a"
	reversal.ReversalOfID = &originalID
	reversal.Lines = domain.Mirror(reversal.Lines)
	reversal.Lines[0].LineID, reversal.Lines[1].LineID = "je_r-1", "je_r-2"

	saved, err := s.repos.JournalEntryRepo.SaveReversal(s.ctx, "t1", "je_a", reversal)
	s.Require().NoError(err)
	s.Equal("JE-000002", saved.EntryNumber)
	s.Equal(domain.Posted, saved.Status)
	s.Require().NotNil(saved.ReversalOfID)
	s.Equal("je_a", *saved.ReversalOfID)
	s.True(saved.Lines[0].CreditAmount.Equal(decimal.NewFromInt(10)))

	original, err := s.repos.JournalEntryRepo.FindJournalEntryByID(s.ctx, "t1", "je_a")
	s.Require().NoError(err)
	s.Equal(domain.Reversed, original.Status)
	s.Require().NotNil(original.ReversedByID)
	s.Equal("je_r", *original.ReversedByID)

	_, err = s.repos.JournalEntryRepo.SaveReversal(s.ctx, "t1", "je_a", s.draft("t1", "je_r2", day(17), "10"))
	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func (s *SQLiteStoreTestSuite) TestAccountActivity_CountsOnlyFinalEntriesInWindow() {
	create := func(id string, d time.Time, amount string, post bool) {
		_, err := s.repos.JournalEntryRepo.CreateJournalEntry(s.ctx, s.draft("t1", id, d, amount))
		s.Require().NoError(err)
		if post {
			_, err = s.repos.JournalEntryRepo.MarkJournalEntryPosted(s.ctx, "t1", id, "user-1", s.now)
			s.Require().NoError(err)
		}
	}
	create("je_early", day(5), "0.25", true)
	create("je_posted", day(15), "100", true)
	create("je_draft", day(15), "7", false)
	create("je_late", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "50", true)

	activity, err := s.repos.ReportingRepo.GetAccountActivity(s.ctx, "t1", nil, day(31))
	s.Require().NoError(err)
	s.Require().Len(activity, 2)
	s.Equal("t1-cash", activity[0].AccountID)
	s.True(activity[0].TotalDebit.Equal(decimal.RequireFromString("100.25")))
	s.True(activity[0].TotalCredit.IsZero())
	s.Equal("t1-sales", activity[1].AccountID)
	s.True(activity[1].TotalCredit.Equal(decimal.RequireFromString("100.25")))

	from := day(10)
	windowed, err := s.repos.ReportingRepo.GetAccountActivity(s.ctx, "t1", &from, day(31))
	s.Require().NoError(err)
	s.Require().Len(windowed, 2)
	s.True(windowed[0].TotalDebit.Equal(decimal.NewFromInt(100)))

	none, err := s.repos.ReportingRepo.GetAccountActivity(s.ctx, "t2", nil, day(31))
	s.Require().NoError(err)
	s.Empty(none)
}
