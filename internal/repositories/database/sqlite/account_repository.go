package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	sqlite3 "github.com/mattn/go-sqlite3"
)

type AccountRepository struct {
	BaseRepository
}

func newAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

const accountColumns = `account_id, tenant_id, code, name, account_type, account_class, parent_account_id,
	description, is_active, opening_balance, created_at, created_by, last_updated_at, last_updated_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.ChartOfAccount, error) {
	var a domain.ChartOfAccount
	err := row.Scan(
		&a.AccountID,
		&a.TenantID,
		&a.Code,
		&a.Name,
		&a.AccountType,
		&a.AccountClass,
		&a.ParentAccountID,
		&a.Description,
		&a.IsActive,
		&a.OpeningBalance,
		timestampCol(&a.CreatedAt),
		&a.CreatedBy,
		timestampCol(&a.LastUpdatedAt),
		&a.LastUpdatedBy,
	)
	return a, err
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.ChartOfAccount) error {
	query := `INSERT INTO chart_of_accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := r.DB.ExecContext(ctx, query,
		account.AccountID,
		account.TenantID,
		account.Code,
		account.Name,
		account.AccountType,
		account.AccountClass,
		account.ParentAccountID,
		account.Description,
		account.IsActive,
		account.OpeningBalance,
		formatTimestamp(account.CreatedAt),
		account.CreatedBy,
		formatTimestamp(account.LastUpdatedAt),
		account.LastUpdatedBy,
	)
	if err != nil {
		switch constraintCode(err) {
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		case sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: account id %s already exists", apperrors.ErrDuplicate, account.AccountID)
		case sqlite3.ErrConstraintForeignKey:
			return apperrors.NewValidationError("parent account of %s does not exist", account.Code)
		}
		return internalError("failed to save account %s", err, account.AccountID)
	}
	return nil
}

func (r *AccountRepository) FindAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.ChartOfAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts WHERE tenant_id = ? AND account_id = ?;`
	account, err := scanAccount(r.DB.QueryRowContext(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", accountID)
		}
		return nil, internalError("failed to find account by ID %s", err, accountID)
	}
	return &account, nil
}

func (r *AccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.ChartOfAccount, error) {
	found := make(map[string]domain.ChartOfAccount, len(accountIDs))
	if len(accountIDs) == 0 {
		return found, nil
	}

	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts WHERE tenant_id = ? AND account_id IN (` + placeholders(len(accountIDs)) + `);`
	args := append([]any{tenantID}, stringArgs(accountIDs)...)
	accounts, err := r.queryAccounts(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		found[a.AccountID] = a
	}
	return found, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.ChartOfAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts WHERE tenant_id = ? ORDER BY code;`
	return r.queryAccounts(ctx, query, tenantID)
}

func (r *AccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.ChartOfAccount, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, internalError("failed to query accounts", err)
	}
	defer rows.Close()

	accounts := []domain.ChartOfAccount{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, internalError("failed to scan account row", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError("error iterating account rows", err)
	}
	return accounts, nil
}
