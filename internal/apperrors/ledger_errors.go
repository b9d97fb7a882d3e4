package apperrors

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/shopspring/decimal"
)

// UnbalancedEntryError is returned when the debit and credit sums of an entry differ.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("Total debits must equal total credits: debits %s, credits %s",
		utils.FormatAmount(e.TotalDebit), utils.FormatAmount(e.TotalCredit))
}

func (e *UnbalancedEntryError) Is(target error) bool { return target == ErrValidation }

// EmptyEntryError is returned when an entry has no lines.
type EmptyEntryError struct{}

func (e *EmptyEntryError) Error() string { return "journal entry must contain at least one line" }

func (e *EmptyEntryError) Is(target error) bool { return target == ErrValidation }

// InvalidLineError reports a structurally invalid line. LineNumber is 1-based.
type InvalidLineError struct {
	LineNumber int
	Reason     string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.LineNumber, e.Reason)
}

func (e *InvalidLineError) Is(target error) bool { return target == ErrValidation }

// NotFoundError is returned when a resource is absent for the requesting tenant.
// It never distinguishes "absent" from "owned by another tenant".
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError for the given resource and id.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateTransitionError is returned when a lifecycle transition is not legal from the current status.
type InvalidStateTransitionError struct {
	EntryID string
	From    string
	To      string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("journal entry %s cannot transition from %s to %s", e.EntryID, e.From, e.To)
}

func (e *InvalidStateTransitionError) Is(target error) bool { return target == ErrInvalidState }

// ImmutableEntryError is returned when a non-draft entry is edited or deleted.
type ImmutableEntryError struct {
	EntryID string
	Status  string
}

func (e *ImmutableEntryError) Error() string {
	return fmt.Sprintf("journal entry %s is %s and can no longer be modified", e.EntryID, e.Status)
}

func (e *ImmutableEntryError) Is(target error) bool { return target == ErrImmutable }

// IntegrityError reports a violated aggregation post-condition.
type IntegrityError struct {
	Reason      string
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *IntegrityError) Error() string {
	if e.TotalDebit.IsZero() && e.TotalCredit.IsZero() {
		return "ledger integrity violation: " + e.Reason
	}
	return fmt.Sprintf("ledger integrity violation: %s (debits %s, credits %s)",
		e.Reason, utils.FormatAmount(e.TotalDebit), utils.FormatAmount(e.TotalCredit))
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// NewValidationError wraps a message as an ErrValidation.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
