package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/shopspring/decimal"
)

// accountService maintains the tenant's chart of accounts.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountClock sets the time source
func WithAccountClock(c portssvc.Clock) AccountServiceOption {
	return func(s *accountService) {
		s.Clock = c
	}
}

// WithAccountIDGenerator sets the id generator
func WithAccountIDGenerator(g portssvc.IDGenerator) AccountServiceOption {
	return func(s *accountService) {
		s.IDs = g
	}
}

// NewAccountService creates a new account service with the given options
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, opts ...AccountServiceOption) portssvc.AccountSvcFacade {
	s := &accountService{
		BaseService: newBaseService(),
		accountRepo: accountRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account for the tenant.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.ChartOfAccount, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, apperrors.NewValidationError("code is required")
	}
	if !req.AccountType.IsValid() {
		return nil, apperrors.NewValidationError("unknown account type %q", req.AccountType)
	}
	if !req.AccountClass.BelongsTo(req.AccountType) {
		return nil, apperrors.NewValidationError("account class %s does not belong to account type %s", req.AccountClass, req.AccountType)
	}

	if req.ParentAccountID != nil {
		parent, err := s.accountRepo.FindAccountByID(ctx, tenantID, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("parent account %s does not exist", *req.ParentAccountID)
			}
			s.LogError(ctx, err, "Failed to load parent account", slog.String("parent_account_id", *req.ParentAccountID))
			return nil, fmt.Errorf("failed to load parent account: %w", err)
		}
		if parent.AccountType != req.AccountType {
			return nil, apperrors.NewValidationError("parent account %s is %s, not %s", parent.Code, parent.AccountType, req.AccountType)
		}
	}

	opening := decimal.Zero
	if req.OpeningBalance != nil {
		opening = *req.OpeningBalance
		if !utils.FitsAmountPrecision(opening) {
			return nil, apperrors.NewValidationError("opening balance must have at most %d decimal places", utils.AmountPrecision)
		}
	}

	now := s.Clock.Now()
	account := domain.ChartOfAccount{
		AccountID:       s.IDs.NewID(domain.IDPrefixAccount),
		TenantID:        tenantID,
		Code:            code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		AccountClass:    req.AccountClass,
		ParentAccountID: req.ParentAccountID,
		Description:     req.Description,
		IsActive:        true,
		OpeningBalance:  opening,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("account code %s: %w", code, err)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", code), slog.String("tenant_id", tenantID))
	return &account, nil
}

// GetAccount retrieves a specific account of the tenant.
func (s *accountService) GetAccount(ctx context.Context, tenantID string, accountID string, userID string) (*domain.ChartOfAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// ListAccounts retrieves the tenant's chart of accounts.
func (s *accountService) ListAccounts(ctx context.Context, tenantID string, userID string) ([]domain.ChartOfAccount, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
