package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to register an account in the chart of accounts.
type CreateAccountRequest struct {
	Code            string              `json:"code" binding:"required,max=20"`
	Name            string              `json:"name" binding:"required,max=200"`
	AccountType     domain.AccountType  `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	AccountClass    domain.AccountClass `json:"accountClass" binding:"required"`
	ParentAccountID *string             `json:"parentAccountID,omitempty"`
	Description     *string             `json:"description,omitempty"`
	OpeningBalance  *decimal.Decimal    `json:"openingBalance,omitempty" binding:"omitempty,decimal_gte0"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string    `json:"accountID"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	AccountType     string    `json:"accountType"`
	AccountClass    string    `json:"accountClass"`
	ParentAccountID *string   `json:"parentAccountID,omitempty"`
	Description     *string   `json:"description,omitempty"`
	IsActive        bool      `json:"isActive"`
	OpeningBalance  string    `json:"openingBalance"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatedBy       string    `json:"createdBy"`
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.ChartOfAccount to AccountResponse DTO
func ToAccountResponse(acc *domain.ChartOfAccount) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     string(acc.AccountType),
		AccountClass:    string(acc.AccountClass),
		ParentAccountID: acc.ParentAccountID,
		Description:     acc.Description,
		IsActive:        acc.IsActive,
		OpeningBalance:  utils.FormatAmount(acc.OpeningBalance),
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
	}
}

// ToListAccountsResponse converts a slice of accounts.
func ToListAccountsResponse(accounts []domain.ChartOfAccount) ListAccountsResponse {
	resp := ListAccountsResponse{Accounts: make([]AccountResponse, len(accounts))}
	for i := range accounts {
		resp.Accounts[i] = ToAccountResponse(&accounts[i])
	}
	return resp
}
