package domain

import "time"

// Event type names published by the ledger.
const (
	EventJournalEntryCreated  = "JournalEntryCreated"
	EventJournalEntryPosted   = "JournalEntryPosted"
	EventJournalEntryReversed = "JournalEntryReversed"
	EventReportGenerated      = "ReportGenerated"
)

// DomainEvent is a notification emitted after a ledger change has committed.
type DomainEvent interface {
	EventType() string
	Tenant() string
	AggregateID() string
}

// JournalEntryCreated is emitted after a draft entry is stored.
type JournalEntryCreated struct {
	TenantID       string    `json:"tenantId"`
	JournalEntryID string    `json:"journalEntryId"`
	EntryNumber    string    `json:"entryNumber"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      string    `json:"createdBy"`
}

func (e JournalEntryCreated) EventType() string   { return EventJournalEntryCreated }
func (e JournalEntryCreated) Tenant() string      { return e.TenantID }
func (e JournalEntryCreated) AggregateID() string { return e.JournalEntryID }

// JournalEntryPosted is emitted after the DRAFT -> POSTED transition commits.
type JournalEntryPosted struct {
	TenantID       string    `json:"tenantId"`
	JournalEntryID string    `json:"journalEntryId"`
	EntryNumber    string    `json:"entryNumber"`
	PostedAt       time.Time `json:"postedAt"`
	PostedBy       string    `json:"postedBy"`
}

func (e JournalEntryPosted) EventType() string   { return EventJournalEntryPosted }
func (e JournalEntryPosted) Tenant() string      { return e.TenantID }
func (e JournalEntryPosted) AggregateID() string { return e.JournalEntryID }

// JournalEntryReversed is emitted after an entry and its offsetting entry commit.
type JournalEntryReversed struct {
	TenantID        string    `json:"tenantId"`
	JournalEntryID  string    `json:"journalEntryId"`
	ReversalEntryID string    `json:"reversalEntryId"`
	ReversedAt      time.Time `json:"reversedAt"`
	ReversedBy      string    `json:"reversedBy"`
}

func (e JournalEntryReversed) EventType() string   { return EventJournalEntryReversed }
func (e JournalEntryReversed) Tenant() string      { return e.TenantID }
func (e JournalEntryReversed) AggregateID() string { return e.JournalEntryID }

// ReportGenerated is emitted after a report has been produced.
type ReportGenerated struct {
	TenantID    string     `json:"tenantId"`
	ReportType  ReportType `json:"reportType"`
	GeneratedAt time.Time  `json:"generatedAt"`
	GeneratedBy string     `json:"generatedBy"`
}

func (e ReportGenerated) EventType() string   { return EventReportGenerated }
func (e ReportGenerated) Tenant() string      { return e.TenantID }
func (e ReportGenerated) AggregateID() string { return e.TenantID + ":" + string(e.ReportType) }
