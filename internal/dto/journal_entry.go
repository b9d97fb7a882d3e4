package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/shopspring/decimal"
)

// JournalEntryLineRequest is one proposed line. Absent amounts are treated as zero.
type JournalEntryLineRequest struct {
	AccountID    string           `json:"accountID" binding:"required"`
	Description  *string          `json:"description,omitempty"`
	DebitAmount  *decimal.Decimal `json:"debitAmount,omitempty" binding:"omitempty,decimal_gte0"`
	CreditAmount *decimal.Decimal `json:"creditAmount,omitempty" binding:"omitempty,decimal_gte0"`
}

// CreateJournalEntryRequest defines the data needed to create a draft journal entry.
type CreateJournalEntryRequest struct {
	EntryDate   string                    `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Description string                    `json:"description" binding:"required,max=500"`
	Reference   *string                   `json:"reference,omitempty" binding:"omitempty,max=100"`
	Lines       []JournalEntryLineRequest `json:"lines" binding:"dive"`
}

// UpdateJournalEntryRequest replaces the content of a draft entry.
type UpdateJournalEntryRequest = CreateJournalEntryRequest

// ReverseJournalEntryRequest optionally dates the offsetting entry. Defaults to today.
type ReverseJournalEntryRequest struct {
	ReversalDate *string `json:"reversalDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// ListJournalEntriesParams holds the optional listing filters and pagination.
type ListJournalEntriesParams struct {
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken string `form:"nextToken"`
}

// ProposedLines converts the request lines for validation.
func (r CreateJournalEntryRequest) ProposedLines() []domain.ProposedLine {
	lines := make([]domain.ProposedLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.ProposedLine{
			AccountID:    l.AccountID,
			Description:  l.Description,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
		}
	}
	return lines
}

// JournalEntryLineResponse defines the data returned for a line.
type JournalEntryLineResponse struct {
	LineID       string  `json:"lineID"`
	LineNumber   int     `json:"lineNumber"`
	AccountID    string  `json:"accountID"`
	Description  *string `json:"description,omitempty"`
	DebitAmount  string  `json:"debitAmount"`
	CreditAmount string  `json:"creditAmount"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID       string                     `json:"entryID"`
	TenantID      string                     `json:"tenantID"`
	EntryNumber   string                     `json:"entryNumber"`
	EntryDate     string                     `json:"entryDate"`
	Description   string                     `json:"description"`
	Reference     *string                    `json:"reference,omitempty"`
	Status        string                     `json:"status"`
	TotalDebit    string                     `json:"totalDebit"`
	TotalCredit   string                     `json:"totalCredit"`
	Lines         []JournalEntryLineResponse `json:"lines"`
	PostedAt      *time.Time                 `json:"postedAt,omitempty"`
	PostedBy      *string                    `json:"postedBy,omitempty"`
	ReversalOfID  *string                    `json:"reversalOfID,omitempty"`
	ReversedByID  *string                    `json:"reversedByID,omitempty"`
	CreatedAt     time.Time                  `json:"createdAt"`
	CreatedBy     string                     `json:"createdBy"`
	LastUpdatedAt time.Time                  `json:"lastUpdatedAt"`
	LastUpdatedBy string                     `json:"lastUpdatedBy"`
}

// ListJournalEntriesResponse wraps a page of entries.
type ListJournalEntriesResponse struct {
	JournalEntries []JournalEntryResponse `json:"journalEntries"`
	NextToken      *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalEntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalEntryLineResponse{
			LineID:       l.LineID,
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			Description:  l.Description,
			DebitAmount:  utils.FormatAmount(l.DebitAmount),
			CreditAmount: utils.FormatAmount(l.CreditAmount),
		}
	}
	return JournalEntryResponse{
		EntryID:       e.EntryID,
		TenantID:      e.TenantID,
		EntryNumber:   e.EntryNumber,
		EntryDate:     FormatDate(e.EntryDate),
		Description:   e.Description,
		Reference:     e.Reference,
		Status:        string(e.Status),
		TotalDebit:    utils.FormatAmount(e.TotalDebit),
		TotalCredit:   utils.FormatAmount(e.TotalCredit),
		Lines:         lines,
		PostedAt:      e.PostedAt,
		PostedBy:      e.PostedBy,
		ReversalOfID:  e.ReversalOfID,
		ReversedByID:  e.ReversedByID,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		LastUpdatedAt: e.LastUpdatedAt,
		LastUpdatedBy: e.LastUpdatedBy,
	}
}

// ToListJournalEntriesResponse converts a page of entries.
func ToListJournalEntriesResponse(entries []domain.JournalEntry, nextToken *string) ListJournalEntriesResponse {
	resp := ListJournalEntriesResponse{
		JournalEntries: make([]JournalEntryResponse, len(entries)),
		NextToken:      nextToken,
	}
	for i := range entries {
		resp.JournalEntries[i] = ToJournalEntryResponse(&entries[i])
	}
	return resp
}
