// Package memory keeps the ledger in process memory. It backs tests and the
// STORE_DRIVER=memory demo mode and honours the same contracts as the SQL stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
)

// Store holds every tenant's accounts and journal entries behind one lock.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]map[string]domain.ChartOfAccount
	accountCodes map[string]map[string]string
	accountIDs   map[string]struct{}
	entries      map[string]map[string]domain.JournalEntry
	sequences    map[string]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]map[string]domain.ChartOfAccount),
		accountCodes: make(map[string]map[string]string),
		accountIDs:   make(map[string]struct{}),
		entries:      make(map[string]map[string]domain.JournalEntry),
		sequences:    make(map[string]int64),
	}
}

// NewRepositoryProvider exposes a fresh store through the repository ports.
func NewRepositoryProvider() *portsrepo.RepositoryProvider {
	s := NewStore()
	return &portsrepo.RepositoryProvider{
		AccountRepo:      s,
		JournalEntryRepo: s,
		ReportingRepo:    s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade      = (*Store)(nil)
	_ portsrepo.JournalEntryRepositoryFacade = (*Store)(nil)
	_ portsrepo.ReportingRepository          = (*Store)(nil)
)

// SaveAccount stores a new account; ids are unique across tenants, codes per tenant.
func (s *Store) SaveAccount(ctx context.Context, account domain.ChartOfAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.accountIDs[account.AccountID]; taken {
		return fmt.Errorf("%w: account id %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	codes := s.accountCodes[account.TenantID]
	if codes == nil {
		codes = make(map[string]string)
		s.accountCodes[account.TenantID] = codes
		s.accounts[account.TenantID] = make(map[string]domain.ChartOfAccount)
	}
	if _, taken := codes[account.Code]; taken {
		return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
	}
	s.accountIDs[account.AccountID] = struct{}{}
	codes[account.Code] = account.AccountID
	s.accounts[account.TenantID][account.AccountID] = account
	return nil
}

// FindAccountByID returns the tenant's account or a NotFoundError.
func (s *Store) FindAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.ChartOfAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[tenantID][accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError("account", accountID)
	}
	return &acc, nil
}

// FindAccountsByIDs returns the subset of ids that exist for the tenant.
func (s *Store) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.ChartOfAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]domain.ChartOfAccount, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[tenantID][id]; ok {
			found[id] = acc
		}
	}
	return found, nil
}

// ListAccounts returns the tenant's accounts ordered by code.
func (s *Store) ListAccounts(ctx context.Context, tenantID string) ([]domain.ChartOfAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]domain.ChartOfAccount, 0, len(s.accounts[tenantID]))
	for _, acc := range s.accounts[tenantID] {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

// CreateJournalEntry assigns the next entry number of the tenant and stores the entry.
func (s *Store) CreateJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.TenantID][entry.EntryID]; exists {
		return nil, apperrors.ErrDuplicate
	}
	s.insertLocked(&entry)
	out := cloneEntry(entry)
	return &out, nil
}

func (s *Store) insertLocked(entry *domain.JournalEntry) {
	s.sequences[entry.TenantID]++
	entry.EntryNumber = domain.FormatEntryNumber(s.sequences[entry.TenantID])
	if s.entries[entry.TenantID] == nil {
		s.entries[entry.TenantID] = make(map[string]domain.JournalEntry)
	}
	s.entries[entry.TenantID][entry.EntryID] = cloneEntry(*entry)
}

// FindJournalEntryByID returns the tenant's entry with its lines in line order.
func (s *Store) FindJournalEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[tenantID][entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry", entryID)
	}
	out := cloneEntry(entry)
	return &out, nil
}

// ListJournalEntries returns matching entries ordered by entry date, creation
// time and id, all descending.
func (s *Store) ListJournalEntries(ctx context.Context, tenantID string, filter domain.EntryFilter) ([]domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.JournalEntry, 0)
	for _, e := range s.entries[tenantID] {
		if !filter.Matches(e.EntryDate) {
			continue
		}
		if filter.After != nil && !filter.After.Precedes(e) {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		return domain.EntryCursor{EntryDate: out[i].EntryDate, CreatedAt: out[i].CreatedAt, EntryID: out[i].EntryID}.Precedes(out[j])
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// UpdateDraftJournalEntry replaces a DRAFT entry's header and lines. Identity,
// number and creation audit fields are kept.
func (s *Store) UpdateDraftJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[entry.TenantID][entry.EntryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry", entry.EntryID)
	}
	if current.Status != domain.Draft {
		return nil, &apperrors.ImmutableEntryError{EntryID: entry.EntryID, Status: string(current.Status)}
	}

	current.EntryDate = entry.EntryDate
	current.Description = entry.Description
	current.Reference = entry.Reference
	current.TotalDebit = entry.TotalDebit
	current.TotalCredit = entry.TotalCredit
	current.Lines = entry.Lines
	current.LastUpdatedAt = entry.LastUpdatedAt
	current.LastUpdatedBy = entry.LastUpdatedBy
	s.entries[entry.TenantID][entry.EntryID] = cloneEntry(current)

	out := cloneEntry(current)
	return &out, nil
}

// DeleteDraftJournalEntry removes a DRAFT entry.
func (s *Store) DeleteDraftJournalEntry(ctx context.Context, tenantID string, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[tenantID][entryID]
	if !ok {
		return apperrors.NewNotFoundError("journal entry", entryID)
	}
	if current.Status != domain.Draft {
		return &apperrors.ImmutableEntryError{EntryID: entryID, Status: string(current.Status)}
	}
	delete(s.entries[tenantID], entryID)
	return nil
}

// MarkJournalEntryPosted transitions DRAFT to POSTED atomically.
func (s *Store) MarkJournalEntryPosted(ctx context.Context, tenantID string, entryID string, userID string, postedAt time.Time) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[tenantID][entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry", entryID)
	}
	if !current.Status.CanTransitionTo(domain.Posted) {
		return nil, &apperrors.InvalidStateTransitionError{EntryID: entryID, From: string(current.Status), To: string(domain.Posted)}
	}

	current.Status = domain.Posted
	current.PostedAt = &postedAt
	current.PostedBy = &userID
	current.LastUpdatedAt = postedAt
	current.LastUpdatedBy = userID
	s.entries[tenantID][entryID] = cloneEntry(current)

	out := cloneEntry(current)
	return &out, nil
}

// SaveReversal stores the offsetting entry and flips the original from POSTED
// to REVERSED in one critical section.
func (s *Store) SaveReversal(ctx context.Context, tenantID string, originalID string, reversal domain.JournalEntry) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.entries[tenantID][originalID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry", originalID)
	}
	if !original.Status.CanTransitionTo(domain.Reversed) {
		return nil, &apperrors.InvalidStateTransitionError{EntryID: originalID, From: string(original.Status), To: string(domain.Reversed)}
	}

	s.insertLocked(&reversal)

	reversalID := reversal.EntryID
	original.Status = domain.Reversed
	original.ReversedByID = &reversalID
	original.LastUpdatedAt = reversal.CreatedAt
	original.LastUpdatedBy = reversal.CreatedBy
	s.entries[tenantID][originalID] = cloneEntry(original)

	out := cloneEntry(reversal)
	return &out, nil
}

// GetAccountActivity sums line amounts per account over POSTED and REVERSED
// entries dated within [from, to]. A nil from means no lower bound.
func (s *Store) GetAccountActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time) ([]domain.AccountActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := domain.EntryFilter{StartDate: from, EndDate: &to}
	totals := make(map[string]*domain.AccountActivity)
	for _, e := range s.entries[tenantID] {
		if !e.Status.IsFinal() || !filter.Matches(e.EntryDate) {
			continue
		}
		accounting.FoldLines(totals, e.Lines)
	}

	out := make([]domain.AccountActivity, 0, len(totals))
	for _, a := range totals {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	if e.Lines != nil {
		lines := make([]domain.JournalEntryLine, len(e.Lines))
		copy(lines, e.Lines)
		e.Lines = lines
	}
	return e
}
