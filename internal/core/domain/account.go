package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether a net debit balance is the normal side for the type.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// AccountClass refines an AccountType for statement presentation.
type AccountClass string

const (
	CurrentAsset        AccountClass = "CURRENT_ASSET"
	FixedAsset          AccountClass = "FIXED_ASSET"
	CurrentLiability    AccountClass = "CURRENT_LIABILITY"
	LongTermLiability   AccountClass = "LONG_TERM_LIABILITY"
	OwnersEquity        AccountClass = "OWNERS_EQUITY"
	RevenueClass        AccountClass = "REVENUE"
	OperatingExpense    AccountClass = "OPERATING_EXPENSE"
	NonOperatingExpense AccountClass = "NON_OPERATING_EXPENSE"
)

var accountClassTypes = map[AccountClass]AccountType{
	CurrentAsset:        Asset,
	FixedAsset:          Asset,
	CurrentLiability:    Liability,
	LongTermLiability:   Liability,
	OwnersEquity:        Equity,
	RevenueClass:        Revenue,
	OperatingExpense:    Expense,
	NonOperatingExpense: Expense,
}

// BelongsTo reports whether the class is a valid refinement of t.
func (c AccountClass) BelongsTo(t AccountType) bool {
	owner, ok := accountClassTypes[c]
	return ok && owner == t
}

// ChartOfAccount is an account in a tenant's chart of accounts.
// Code is unique per tenant.
type ChartOfAccount struct {
	AccountID       string          `json:"accountID"`
	TenantID        string          `json:"tenantID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	AccountClass    AccountClass    `json:"accountClass"`
	ParentAccountID *string         `json:"parentAccountID,omitempty"`
	Description     *string         `json:"description,omitempty"`
	IsActive        bool            `json:"isActive"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	AuditFields
}
