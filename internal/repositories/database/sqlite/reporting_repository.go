package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
)

type ReportingRepository struct {
	BaseRepository
}

func newReportingRepository(db *sql.DB) *ReportingRepository {
	return &ReportingRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

// GetAccountActivity reads the lines of final entries in the window and sums
// them in Go, since amounts are stored as decimal text.
func (r *ReportingRepository) GetAccountActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT l.account_id, l.debit_amount, l.credit_amount
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.tenant_id = ?
		  AND e.status IN ('POSTED', 'REVERSED')
		  AND e.entry_date <= ?`
	args := []any{tenantID, formatDate(to)}
	if from != nil {
		query += ` AND e.entry_date >= ?`
		args = append(args, formatDate(*from))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, internalError("failed to query account activity for tenant %s", err, tenantID)
	}
	defer rows.Close()

	var lines []domain.JournalEntryLine
	for rows.Next() {
		var l domain.JournalEntryLine
		if err := rows.Scan(&l.AccountID, &l.DebitAmount, &l.CreditAmount); err != nil {
			return nil, internalError("failed to scan account activity row", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError("error iterating account activity rows", err)
	}

	totals := make(map[string]*domain.AccountActivity)
	accounting.FoldLines(totals, lines)
	activity := make([]domain.AccountActivity, 0, len(totals))
	for _, a := range totals {
		activity = append(activity, *a)
	}
	sort.Slice(activity, func(i, j int) bool { return activity[i].AccountID < activity[j].AccountID })
	return activity, nil
}
