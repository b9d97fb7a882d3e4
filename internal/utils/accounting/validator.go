package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/shopspring/decimal"
)

// EntryTotals holds the debit and credit sums of a set of lines.
type EntryTotals struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// ValidateLines checks a proposed set of lines for double-entry balance and
// structure, and returns the computed totals. Missing amounts count as zero;
// amounts finer than utils.AmountPrecision are rejected.
// It has no side effects.
func ValidateLines(lines []domain.ProposedLine, policy domain.LinePolicy) (EntryTotals, error) {
	if len(lines) == 0 {
		return EntryTotals{}, &apperrors.EmptyEntryError{}
	}

	totals := EntryTotals{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for i, line := range lines {
		lineNumber := i + 1
		if line.AccountID == "" {
			return EntryTotals{}, &apperrors.InvalidLineError{LineNumber: lineNumber, Reason: "account is required"}
		}

		debit := amountOrZero(line.DebitAmount)
		credit := amountOrZero(line.CreditAmount)
		if debit.IsNegative() || credit.IsNegative() {
			return EntryTotals{}, &apperrors.InvalidLineError{LineNumber: lineNumber, Reason: "amounts must not be negative"}
		}
		if !utils.FitsAmountPrecision(debit) || !utils.FitsAmountPrecision(credit) {
			return EntryTotals{}, &apperrors.InvalidLineError{
				LineNumber: lineNumber,
				Reason:     fmt.Sprintf("amounts must have at most %d decimal places", utils.AmountPrecision),
			}
		}
		if policy.Strict {
			if !debit.IsZero() && !credit.IsZero() {
				return EntryTotals{}, &apperrors.InvalidLineError{LineNumber: lineNumber, Reason: "a line must be either a debit or a credit, not both"}
			}
			if debit.IsZero() && credit.IsZero() {
				return EntryTotals{}, &apperrors.InvalidLineError{LineNumber: lineNumber, Reason: "a line must carry a non-zero debit or credit"}
			}
		}

		totals.TotalDebit = totals.TotalDebit.Add(debit)
		totals.TotalCredit = totals.TotalCredit.Add(credit)
	}

	if !totals.TotalDebit.Equal(totals.TotalCredit) {
		return EntryTotals{}, &apperrors.UnbalancedEntryError{
			TotalDebit:  totals.TotalDebit,
			TotalCredit: totals.TotalCredit,
		}
	}
	return totals, nil
}

// BuildLines turns validated proposals into entry lines numbered from 1 in input order.
func BuildLines(lines []domain.ProposedLine) []domain.JournalEntryLine {
	built := make([]domain.JournalEntryLine, len(lines))
	for i, l := range lines {
		built[i] = domain.JournalEntryLine{
			AccountID:    l.AccountID,
			Description:  l.Description,
			DebitAmount:  amountOrZero(l.DebitAmount),
			CreditAmount: amountOrZero(l.CreditAmount),
			LineNumber:   i + 1,
		}
	}
	return built
}

func amountOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
