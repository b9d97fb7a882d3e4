package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for the chart of accounts.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// accountPrimaryKey is the default name postgres gives the account_id primary key.
const accountPrimaryKey = "chart_of_accounts_pkey"

const accountColumns = `account_id, tenant_id, code, name, account_type, account_class, parent_account_id,
	description, is_active, opening_balance, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.ChartOfAccount, error) {
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
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	return a, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.ChartOfAccount) error {
	query := `
		INSERT INTO chart_of_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
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
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			if pgConstraintName(err) == accountPrimaryKey {
				return fmt.Errorf("%w: account id %s already exists", apperrors.ErrDuplicate, account.AccountID)
			}
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		}
		return internalError("failed to save account %s", err, account.AccountID)
	}
	return nil
}

// FindAccountByID retrieves an account of the tenant by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.ChartOfAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts WHERE tenant_id = $1 AND account_id = $2;`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", accountID)
		}
		return nil, internalError("failed to find account by ID %s", err, accountID)
	}
	return &account, nil
}

// FindAccountsByIDs retrieves the accounts of the tenant among accountIDs, keyed by ID.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.ChartOfAccount, error) {
	found := make(map[string]domain.ChartOfAccount, len(accountIDs))
	if len(accountIDs) == 0 {
		return found, nil
	}

	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts WHERE tenant_id = $1 AND account_id = ANY($2);`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountIDs)
	if err != nil {
		return nil, internalError("failed to query accounts", err)
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, internalError("failed to scan account row", err)
		}
		found[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, internalError("error iterating account rows", err)
	}
	return found, nil
}

// ListAccounts retrieves the tenant's chart of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.ChartOfAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts WHERE tenant_id = $1 ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, internalError("failed to list accounts for tenant %s", err, tenantID)
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
