package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// JournalEntryReader defines tenant-scoped read operations for journal entries.
// Returned entries always carry their lines ordered by line number.
type JournalEntryReader interface {
	// FindJournalEntryByID retrieves one entry. Absent and cross-tenant entries both yield a NotFoundError.
	FindJournalEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves entries ordered by entry date, creation time and id, all descending.
	ListJournalEntries(ctx context.Context, tenantID string, filter domain.EntryFilter) ([]domain.JournalEntry, error)
}

// JournalEntryWriter defines write operations. Each call is a single atomic unit:
// either the entry and all of its lines become visible, or nothing does.
type JournalEntryWriter interface {
	// CreateJournalEntry assigns the tenant's next entry number and stores the entry as DRAFT.
	CreateJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)

	// UpdateDraftJournalEntry replaces header fields, totals and lines of a DRAFT entry.
	// A non-draft entry yields an ImmutableEntryError.
	UpdateDraftJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)

	// DeleteDraftJournalEntry removes a DRAFT entry and its lines.
	// A non-draft entry yields an ImmutableEntryError.
	DeleteDraftJournalEntry(ctx context.Context, tenantID string, entryID string) error

	// MarkJournalEntryPosted moves an entry from DRAFT to POSTED only if it is still DRAFT.
	// A lost race or a non-draft entry yields an InvalidStateTransitionError.
	MarkJournalEntryPosted(ctx context.Context, tenantID string, entryID string, userID string, postedAt time.Time) (*domain.JournalEntry, error)

	// SaveReversal stores the offsetting entry (already POSTED) and moves the original
	// from POSTED to REVERSED in the same transaction.
	SaveReversal(ctx context.Context, tenantID string, originalID string, reversal domain.JournalEntry) (*domain.JournalEntry, error)
}

// JournalEntryRepositoryFacade combines all journal-entry repository interfaces
type JournalEntryRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
}
