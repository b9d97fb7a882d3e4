package accounting

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NormalAmount presents an account's activity on the side that is normal for its type:
// debits minus credits for ASSET/EXPENSE, credits minus debits for LIABILITY/EQUITY/REVENUE.
func NormalAmount(activity domain.AccountActivity, accountType domain.AccountType) decimal.Decimal {
	if accountType.IsDebitNormal() {
		return activity.TotalDebit.Sub(activity.TotalCredit)
	}
	return activity.TotalCredit.Sub(activity.TotalDebit)
}

// SplitNet returns the net activity as a (debitBalance, creditBalance) pair with
// at most one side non-zero.
func SplitNet(activity domain.AccountActivity) (decimal.Decimal, decimal.Decimal) {
	net := activity.Net()
	if net.IsNegative() {
		return decimal.Zero, net.Neg()
	}
	return net, decimal.Zero
}

// FoldLines accumulates line amounts per account. Used by stores that aggregate in memory.
func FoldLines(into map[string]*domain.AccountActivity, lines []domain.JournalEntryLine) {
	for _, l := range lines {
		a, ok := into[l.AccountID]
		if !ok {
			a = &domain.AccountActivity{AccountID: l.AccountID, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
			into[l.AccountID] = a
		}
		a.TotalDebit = a.TotalDebit.Add(l.DebitAmount)
		a.TotalCredit = a.TotalCredit.Add(l.CreditAmount)
	}
}
