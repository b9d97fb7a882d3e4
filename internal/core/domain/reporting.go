package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountActivity is the summed debit and credit activity of one account over a window.
type AccountActivity struct {
	AccountID   string
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Net returns debits minus credits.
func (a AccountActivity) Net() decimal.Decimal {
	return a.TotalDebit.Sub(a.TotalCredit)
}

// TrialBalanceRow represents a single row in a trial balance report.
// Exactly one of DebitBalance and CreditBalance is non-zero.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// TrialBalance is the full trial balance as of a date.
type TrialBalance struct {
	TenantID    string            `json:"tenantID"`
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// ReportItem is an account amount presented on its normal side.
type ReportItem struct {
	AccountID    string          `json:"accountID,omitempty"`
	AccountCode  string          `json:"accountCode,omitempty"`
	AccountName  string          `json:"accountName"`
	AccountType  AccountType     `json:"accountType"`
	AccountClass AccountClass    `json:"accountClass,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Derived      bool            `json:"derived,omitempty"` // computed, not backed by an account
}

// ProfitAndLossReport represents a profit and loss report.
type ProfitAndLossReport struct {
	TenantID      string          `json:"tenantID"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"` // TotalRevenue - TotalExpenses
	Items         []ReportItem    `json:"items"`
}

// BalanceSheetReport represents a balance sheet report.
type BalanceSheetReport struct {
	TenantID         string          `json:"tenantID"`
	AsOf             time.Time       `json:"asOf"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	Items            []ReportItem    `json:"items"`
	Balanced         bool            `json:"balanced"`
	Warnings         []string        `json:"warnings,omitempty"`
}

// ReportType names a generated report.
type ReportType string

const (
	ReportTrialBalance  ReportType = "TRIAL_BALANCE"
	ReportProfitAndLoss ReportType = "PROFIT_AND_LOSS"
	ReportBalanceSheet  ReportType = "BALANCE_SHEET"
)
