package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportingRepository implements the portsrepo.ReportingRepository interface
type ReportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(pool *pgxpool.Pool) *ReportingRepository {
	return &ReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

// GetAccountActivity sums line amounts per account over final entries in the window.
func (r *ReportingRepository) GetAccountActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT l.account_id, COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.tenant_id = $1
		  AND e.status IN ('POSTED', 'REVERSED')
		  AND e.entry_date <= $2
		  AND ($3::date IS NULL OR e.entry_date >= $3::date)
		GROUP BY l.account_id
		ORDER BY l.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, domain.DateOnly(to), from)
	if err != nil {
		return nil, internalError("failed to query account activity for tenant %s", err, tenantID)
	}
	defer rows.Close()

	activity := []domain.AccountActivity{}
	for rows.Next() {
		var a domain.AccountActivity
		if err := rows.Scan(&a.AccountID, &a.TotalDebit, &a.TotalCredit); err != nil {
			return nil, internalError("failed to scan account activity row", err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError("error iterating account activity rows", err)
	}
	return activity, nil
}
