package accounting

import (
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func debit(account, amount string) domain.ProposedLine {
	return domain.ProposedLine{AccountID: account, DebitAmount: amt(amount)}
}

func credit(account, amount string) domain.ProposedLine {
	return domain.ProposedLine{AccountID: account, CreditAmount: amt(amount)}
}

var (
	lenient = domain.LinePolicy{}
	strict  = domain.LinePolicy{Strict: true}
)

func TestValidateLines_Balanced(t *testing.T) {
	totals, err := ValidateLines([]domain.ProposedLine{
		debit("cash", "60"),
		debit("bank", "40.5"),
		credit("sales", "100.50"),
	}, strict)

	require.NoError(t, err)
	assert.Equal(t, "100.5", totals.TotalDebit.String())
	assert.True(t, totals.TotalDebit.Equal(totals.TotalCredit))
}

func TestValidateLines_Rejections(t *testing.T) {
	testCases := []struct {
		name   string
		lines  []domain.ProposedLine
		policy domain.LinePolicy
		line   int
		reason string
	}{
		{"missing account", []domain.ProposedLine{debit("", "10"), credit("sales", "10")}, lenient, 1, "account is required"},
		{"negative debit", []domain.ProposedLine{debit("cash", "-10"), credit("sales", "-10")}, lenient, 1, "amounts must not be negative"},
		{"negative credit", []domain.ProposedLine{debit("cash", "10"), credit("sales", "-10")}, lenient, 2, "amounts must not be negative"},
		{"sub-cent debit", []domain.ProposedLine{debit("cash", "100.004"), credit("sales", "100.004")}, lenient, 1, "amounts must have at most 2 decimal places"},
		{"sub-cent credit", []domain.ProposedLine{debit("cash", "100"), credit("sales", "99.999")}, strict, 2, "amounts must have at most 2 decimal places"},
		{"both sides under strict policy", []domain.ProposedLine{
			{AccountID: "cash", DebitAmount: amt("10"), CreditAmount: amt("10")},
		}, strict, 1, "a line must be either a debit or a credit, not both"},
		{"neither side under strict policy", []domain.ProposedLine{
			debit("cash", "10"), credit("sales", "10"), {AccountID: "misc"},
		}, strict, 3, "a line must carry a non-zero debit or credit"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateLines(tc.lines, tc.policy)

			var lineErr *apperrors.InvalidLineError
			require.ErrorAs(t, err, &lineErr)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Equal(t, tc.line, lineErr.LineNumber)
			assert.Equal(t, tc.reason, lineErr.Reason)
		})
	}
}

func TestValidateLines_Empty(t *testing.T) {
	for _, lines := range [][]domain.ProposedLine{nil, {}} {
		_, err := ValidateLines(lines, lenient)
		var empty *apperrors.EmptyEntryError
		assert.ErrorAs(t, err, &empty)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestValidateLines_Unbalanced(t *testing.T) {
	_, err := ValidateLines([]domain.ProposedLine{debit("cash", "100.01"), credit("sales", "100.00")}, lenient)

	var unbalanced *apperrors.UnbalancedEntryError
	require.ErrorAs(t, err, &unbalanced)
	assert.Equal(t, "100.01", unbalanced.TotalDebit.StringFixed(2))
	assert.Equal(t, "100.00", unbalanced.TotalCredit.StringFixed(2))
	assert.Contains(t, err.Error(), "100.01")
	assert.Contains(t, err.Error(), "100.00")
}

func TestValidateLines_NilAmountsAreZero(t *testing.T) {
	lines := []domain.ProposedLine{
		debit("cash", "25"),
		credit("sales", "25"),
		{AccountID: "memo"},
	}

	totals, err := ValidateLines(lines, lenient)
	require.NoError(t, err)
	assert.True(t, totals.TotalDebit.Equal(decimal.NewFromInt(25)))

	_, err = ValidateLines(lines, strict)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateLines_LenientAcceptsTwoSidedLine(t *testing.T) {
	totals, err := ValidateLines([]domain.ProposedLine{
		{AccountID: "suspense", DebitAmount: amt("5"), CreditAmount: amt("5")},
	}, lenient)

	require.NoError(t, err)
	assert.True(t, totals.TotalCredit.Equal(decimal.NewFromInt(5)))
}

func TestValidateLines_TrailingZerosFitPrecision(t *testing.T) {
	_, err := ValidateLines([]domain.ProposedLine{debit("cash", "12.3400"), credit("sales", "12.34")}, strict)
	assert.NoError(t, err)
}

func TestBuildLines_NumbersInInputOrderAndZeroesNilAmounts(t *testing.T) {
	built := BuildLines([]domain.ProposedLine{credit("sales", "10"), debit("cash", "10")})

	require.Len(t, built, 2)
	assert.Equal(t, 1, built[0].LineNumber)
	assert.Equal(t, "sales", built[0].AccountID)
	assert.True(t, built[0].DebitAmount.IsZero())
	assert.Equal(t, 2, built[1].LineNumber)
	assert.True(t, built[1].CreditAmount.IsZero())
}
