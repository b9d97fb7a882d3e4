package dto

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/utils"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID     string `json:"accountID"`
	AccountCode   string `json:"accountCode"`
	AccountName   string `json:"accountName"`
	AccountType   string `json:"accountType"`
	DebitBalance  string `json:"debitBalance"`
	CreditBalance string `json:"creditBalance"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  string `json:"debit"`
		Credit string `json:"credit"`
	} `json:"totals"`
}

// ReportItemResponse represents an account with its amount in a financial report
type ReportItemResponse struct {
	AccountID    string `json:"accountID,omitempty"`
	AccountCode  string `json:"accountCode,omitempty"`
	AccountName  string `json:"accountName"`
	AccountType  string `json:"accountType"`
	AccountClass string `json:"accountClass,omitempty"`
	Amount       string `json:"amount"`
	Derived      bool   `json:"derived,omitempty"`
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	StartDate     string               `json:"startDate"`
	EndDate       string               `json:"endDate"`
	TotalRevenue  string               `json:"totalRevenue"`
	TotalExpenses string               `json:"totalExpenses"`
	NetIncome     string               `json:"netIncome"`
	Items         []ReportItemResponse `json:"items"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf             string               `json:"asOf"`
	TotalAssets      string               `json:"totalAssets"`
	TotalLiabilities string               `json:"totalLiabilities"`
	TotalEquity      string               `json:"totalEquity"`
	Items            []ReportItemResponse `json:"items"`
	Balanced         bool                 `json:"balanced"`
	Warnings         []string             `json:"warnings,omitempty"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf: FormatDate(tb.AsOf),
		Rows: make([]TrialBalanceRowResponse, len(tb.Rows)),
	}
	for i, row := range tb.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountID:     row.AccountID,
			AccountCode:   row.AccountCode,
			AccountName:   row.AccountName,
			AccountType:   string(row.AccountType),
			DebitBalance:  utils.FormatAmount(row.DebitBalance),
			CreditBalance: utils.FormatAmount(row.CreditBalance),
		}
	}
	response.Totals.Debit = utils.FormatAmount(tb.TotalDebit)
	response.Totals.Credit = utils.FormatAmount(tb.TotalCredit)
	return response
}

// ToProfitAndLossResponse converts a domain P&L report to a DTO response
func ToProfitAndLossResponse(report *domain.ProfitAndLossReport) ProfitAndLossResponse {
	return ProfitAndLossResponse{
		StartDate:     FormatDate(report.StartDate),
		EndDate:       FormatDate(report.EndDate),
		TotalRevenue:  utils.FormatAmount(report.TotalRevenue),
		TotalExpenses: utils.FormatAmount(report.TotalExpenses),
		NetIncome:     utils.FormatAmount(report.NetIncome),
		Items:         toReportItemResponses(report.Items),
	}
}

// ToBalanceSheetResponse converts a domain balance sheet report to a DTO response
func ToBalanceSheetResponse(report *domain.BalanceSheetReport) BalanceSheetResponse {
	return BalanceSheetResponse{
		AsOf:             FormatDate(report.AsOf),
		TotalAssets:      utils.FormatAmount(report.TotalAssets),
		TotalLiabilities: utils.FormatAmount(report.TotalLiabilities),
		TotalEquity:      utils.FormatAmount(report.TotalEquity),
		Items:            toReportItemResponses(report.Items),
		Balanced:         report.Balanced,
		Warnings:         report.Warnings,
	}
}

func toReportItemResponses(items []domain.ReportItem) []ReportItemResponse {
	out := make([]ReportItemResponse, len(items))
	for i, item := range items {
		out[i] = ReportItemResponse{
			AccountID:    item.AccountID,
			AccountCode:  item.AccountCode,
			AccountName:  item.AccountName,
			AccountType:  string(item.AccountType),
			AccountClass: string(item.AccountClass),
			Amount:       utils.FormatAmount(item.Amount),
			Derived:      item.Derived,
		}
	}
	return out
}
