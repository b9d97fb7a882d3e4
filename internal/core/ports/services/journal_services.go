package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// JournalEntryReaderSvc defines read operations for journal entries
type JournalEntryReaderSvc interface {
	// GetJournalEntry retrieves one entry of the tenant with its lines.
	GetJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves entries ordered by entry date descending, optionally bounded and paginated.
	// It returns the entries and a token for the next page when one exists.
	ListJournalEntries(ctx context.Context, tenantID string, params dto.ListJournalEntriesParams, userID string) ([]domain.JournalEntry, *string, error)
}

// JournalEntryWriterSvc defines the lifecycle operations on journal entries
type JournalEntryWriterSvc interface {
	// CreateJournalEntry validates the lines and stores a balanced DRAFT entry.
	CreateJournalEntry(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// UpdateJournalEntry replaces the content of a DRAFT entry.
	UpdateJournalEntry(ctx context.Context, tenantID string, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// DeleteJournalEntry removes a DRAFT entry.
	DeleteJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) error

	// PostJournalEntry moves a DRAFT entry to POSTED exactly once.
	PostJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error)

	// ReverseJournalEntry records a mirrored offsetting entry and marks the original REVERSED.
	// It returns the offsetting entry.
	ReverseJournalEntry(ctx context.Context, tenantID string, entryID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error)
}

// JournalEntrySvcFacade combines all journal-entry service interfaces
type JournalEntrySvcFacade interface {
	JournalEntryReaderSvc
	JournalEntryWriterSvc
}
