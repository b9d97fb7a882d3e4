package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
// DRAFT -> POSTED -> REVERSED; nothing leaves REVERSED.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case Draft:
		return next == Posted
	case Posted:
		return next == Reversed
	default:
		return false
	}
}

// IsFinal reports whether entries in this status count toward reports.
func (s EntryStatus) IsFinal() bool {
	return s == Posted || s == Reversed
}

// JournalEntry is a balanced set of lines recorded for one tenant.
type JournalEntry struct {
	EntryID      string             `json:"entryID"`
	TenantID     string             `json:"tenantID"`
	EntryNumber  string             `json:"entryNumber"`
	EntryDate    time.Time          `json:"entryDate"`
	Description  string             `json:"description"`
	Reference    *string            `json:"reference,omitempty"`
	Status       EntryStatus        `json:"status"`
	TotalDebit   decimal.Decimal    `json:"totalDebit"`
	TotalCredit  decimal.Decimal    `json:"totalCredit"`
	Lines        []JournalEntryLine `json:"lines"`
	PostedAt     *time.Time         `json:"postedAt,omitempty"`
	PostedBy     *string            `json:"postedBy,omitempty"`
	ReversalOfID *string            `json:"reversalOfID,omitempty"` // set on the offsetting entry
	ReversedByID *string            `json:"reversedByID,omitempty"` // set on the original once reversed
	AuditFields
}

// JournalEntryLine is a single debit or credit against one account.
type JournalEntryLine struct {
	LineID         string          `json:"lineID"`
	JournalEntryID string          `json:"journalEntryID"`
	AccountID      string          `json:"accountID"`
	Description    *string         `json:"description,omitempty"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	LineNumber     int             `json:"lineNumber"`
}

// ProposedLine is caller input for a line; nil amounts are treated as zero.
type ProposedLine struct {
	AccountID    string
	Description  *string
	DebitAmount  *decimal.Decimal
	CreditAmount *decimal.Decimal
}

// LinePolicy controls how strictly line structure is checked.
type LinePolicy struct {
	// Strict rejects lines that carry both a debit and a credit, or neither.
	Strict bool
}

// EntryNumberPrefix prefixes every generated entry number.
const EntryNumberPrefix = "JE-"

// FormatEntryNumber renders a tenant sequence value as an entry number.
func FormatEntryNumber(seq int64) string {
	return fmt.Sprintf("%s%06d", EntryNumberPrefix, seq)
}

// Mirror returns lines with debit and credit swapped, renumbered from 1.
func Mirror(lines []JournalEntryLine) []JournalEntryLine {
	mirrored := make([]JournalEntryLine, len(lines))
	for i, l := range lines {
		mirrored[i] = JournalEntryLine{
			AccountID:    l.AccountID,
			Description:  l.Description,
			DebitAmount:  l.CreditAmount,
			CreditAmount: l.DebitAmount,
			LineNumber:   i + 1,
		}
	}
	return mirrored
}
