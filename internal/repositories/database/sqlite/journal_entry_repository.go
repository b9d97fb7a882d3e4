package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	sqlite3 "github.com/mattn/go-sqlite3"
)

type JournalEntryRepository struct {
	BaseRepository
}

func newJournalEntryRepository(db *sql.DB) *JournalEntryRepository {
	return &JournalEntryRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.JournalEntryRepositoryFacade = (*JournalEntryRepository)(nil)

const entryColumns = `entry_id, tenant_id, entry_number, entry_date, description, reference, status,
	total_debit, total_credit, posted_at, posted_by, reversal_of_id, reversed_by_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row rowScanner) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.EntryID,
		&e.TenantID,
		&e.EntryNumber,
		dateCol(&e.EntryDate),
		&e.Description,
		&e.Reference,
		&e.Status,
		&e.TotalDebit,
		&e.TotalCredit,
		nullTimestampCol(&e.PostedAt),
		&e.PostedBy,
		&e.ReversalOfID,
		&e.ReversedByID,
		timestampCol(&e.CreatedAt),
		&e.CreatedBy,
		timestampCol(&e.LastUpdatedAt),
		&e.LastUpdatedBy,
	)
	return e, err
}

func (r *JournalEntryRepository) CreateJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	var created *domain.JournalEntry
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertEntry(ctx, tx, &entry); err != nil {
			return err
		}
		var err error
		created, err = findEntry(ctx, tx, entry.TenantID, entry.EntryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry *domain.JournalEntry) error {
	var seq int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO journal_entry_counters (tenant_id, last_value) VALUES (?, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_value = last_value + 1
		RETURNING last_value;`, entry.TenantID).Scan(&seq)
	if err != nil {
		return internalError("failed to allocate entry number for tenant %s", err, entry.TenantID)
	}
	entry.EntryNumber = domain.FormatEntryNumber(seq)

	query := `INSERT INTO journal_entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err = tx.ExecContext(ctx, query,
		entry.EntryID,
		entry.TenantID,
		entry.EntryNumber,
		formatDate(entry.EntryDate),
		entry.Description,
		entry.Reference,
		entry.Status,
		entry.TotalDebit,
		entry.TotalCredit,
		formatNullTimestamp(entry.PostedAt),
		entry.PostedBy,
		entry.ReversalOfID,
		entry.ReversedByID,
		formatTimestamp(entry.CreatedAt),
		entry.CreatedBy,
		formatTimestamp(entry.LastUpdatedAt),
		entry.LastUpdatedBy,
	)
	if err != nil {
		switch constraintCode(err) {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
		}
		return internalError("failed to insert journal entry %s", err, entry.EntryID)
	}
	return insertLines(ctx, tx, entry.EntryID, entry.Lines)
}

func insertLines(ctx context.Context, tx *sql.Tx, entryID string, lines []domain.JournalEntryLine) error {
	if len(lines) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_entry_lines (line_id, entry_id, account_id, line_number, description, debit_amount, credit_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return internalError("failed to prepare line insert", err)
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx, l.LineID, entryID, l.AccountID, l.LineNumber, l.Description, l.DebitAmount, l.CreditAmount); err != nil {
			if constraintCode(err) == sqlite3.ErrConstraintForeignKey {
				return apperrors.NewValidationError("journal entry %s references an unknown account", entryID)
			}
			return internalError("failed to insert line %d of journal entry %s", err, l.LineNumber, entryID)
		}
	}
	return nil
}

func (r *JournalEntryRepository) FindJournalEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	return findEntry(ctx, r.DB, tenantID, entryID)
}

func findEntry(ctx context.Context, q querier, tenantID string, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = ? AND entry_id = ?;`
	entry, err := scanEntry(q.QueryRowContext(ctx, query, tenantID, entryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal entry", entryID)
		}
		return nil, internalError("failed to find journal entry by ID %s", err, entryID)
	}

	entries := []domain.JournalEntry{entry}
	if err := attachLines(ctx, q, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// attachLines loads the lines of every entry in one query, each set in line order.
func attachLines(ctx context.Context, q querier, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}

	query := `
		SELECT line_id, entry_id, account_id, line_number, description, debit_amount, credit_amount
		FROM journal_entry_lines
		WHERE entry_id IN (` + placeholders(len(ids)) + `)
		ORDER BY entry_id, line_number;`
	rows, err := q.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return internalError("failed to query journal entry lines", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.JournalEntryLine, len(ids))
	for rows.Next() {
		var l domain.JournalEntryLine
		if err := rows.Scan(&l.LineID, &l.JournalEntryID, &l.AccountID, &l.LineNumber, &l.Description, &l.DebitAmount, &l.CreditAmount); err != nil {
			return internalError("failed to scan journal entry line", err)
		}
		grouped[l.JournalEntryID] = append(grouped[l.JournalEntryID], l)
	}
	if err := rows.Err(); err != nil {
		return internalError("error iterating journal entry lines", err)
	}

	for i := range entries {
		entries[i].Lines = grouped[entries[i].EntryID]
		if entries[i].Lines == nil {
			entries[i].Lines = []domain.JournalEntryLine{}
		}
	}
	return nil
}

func (r *JournalEntryRepository) ListJournalEntries(ctx context.Context, tenantID string, filter domain.EntryFilter) ([]domain.JournalEntry, error) {
	conditions := []string{"tenant_id = ?"}
	args := []any{tenantID}

	if filter.StartDate != nil {
		conditions = append(conditions, "entry_date >= ?")
		args = append(args, formatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "entry_date <= ?")
		args = append(args, formatDate(*filter.EndDate))
	}
	if filter.After != nil {
		conditions = append(conditions, "(entry_date, created_at, entry_id) < (?, ?, ?)")
		args = append(args, formatDate(filter.After.EntryDate), formatTimestamp(filter.After.CreatedAt), filter.After.EntryID)
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY entry_date DESC, created_at DESC, entry_id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := attachLines(ctx, r.DB, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// queryEntries reads entry headers and releases the connection before lines are loaded.
func (r *JournalEntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, internalError("failed to list journal entries", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, internalError("failed to scan journal entry row", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError("error iterating journal entry rows", err)
	}
	return entries, nil
}

func (r *JournalEntryRepository) UpdateDraftJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	var updated *domain.JournalEntry
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE journal_entries
			SET entry_date = ?, description = ?, reference = ?, total_debit = ?, total_credit = ?,
			    last_updated_at = ?, last_updated_by = ?
			WHERE tenant_id = ? AND entry_id = ? AND status = 'DRAFT';`,
			formatDate(entry.EntryDate), entry.Description, entry.Reference, entry.TotalDebit, entry.TotalCredit,
			formatTimestamp(entry.LastUpdatedAt), entry.LastUpdatedBy,
			entry.TenantID, entry.EntryID,
		)
		if err != nil {
			return internalError("failed to update journal entry %s", err, entry.EntryID)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return immutableOrMissing(ctx, tx, entry.TenantID, entry.EntryID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = ?;`, entry.EntryID); err != nil {
			return internalError("failed to replace lines of journal entry %s", err, entry.EntryID)
		}
		if err := insertLines(ctx, tx, entry.EntryID, entry.Lines); err != nil {
			return err
		}

		updated, err = findEntry(ctx, tx, entry.TenantID, entry.EntryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *JournalEntryRepository) DeleteDraftJournalEntry(ctx context.Context, tenantID string, entryID string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM journal_entries WHERE tenant_id = ? AND entry_id = ? AND status = 'DRAFT';`, tenantID, entryID)
		if err != nil {
			return internalError("failed to delete journal entry %s", err, entryID)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return immutableOrMissing(ctx, tx, tenantID, entryID)
		}
		return nil
	})
}

// MarkJournalEntryPosted flips DRAFT to POSTED with a conditional UPDATE; a
// caller that loses a race sees zero affected rows.
func (r *JournalEntryRepository) MarkJournalEntryPosted(ctx context.Context, tenantID string, entryID string, userID string, postedAt time.Time) (*domain.JournalEntry, error) {
	var posted *domain.JournalEntry
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		ts := formatTimestamp(postedAt)
		res, err := tx.ExecContext(ctx, `
			UPDATE journal_entries
			SET status = 'POSTED', posted_at = ?, posted_by = ?, last_updated_at = ?, last_updated_by = ?
			WHERE tenant_id = ? AND entry_id = ? AND status = 'DRAFT';`,
			ts, userID, ts, userID, tenantID, entryID,
		)
		if err != nil {
			return internalError("failed to post journal entry %s", err, entryID)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			status, err := currentStatus(ctx, tx, tenantID, entryID)
			if err != nil {
				return err
			}
			return &apperrors.InvalidStateTransitionError{EntryID: entryID, From: string(status), To: string(domain.Posted)}
		}

		posted, err = findEntry(ctx, tx, tenantID, entryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

func (r *JournalEntryRepository) SaveReversal(ctx context.Context, tenantID string, originalID string, reversal domain.JournalEntry) (*domain.JournalEntry, error) {
	var saved *domain.JournalEntry
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		status, err := currentStatus(ctx, tx, tenantID, originalID)
		if err != nil {
			return err
		}
		if !status.CanTransitionTo(domain.Reversed) {
			return &apperrors.InvalidStateTransitionError{EntryID: originalID, From: string(status), To: string(domain.Reversed)}
		}

		if err := insertEntry(ctx, tx, &reversal); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE journal_entries
			SET status = 'REVERSED', reversed_by_id = ?, last_updated_at = ?, last_updated_by = ?
			WHERE tenant_id = ? AND entry_id = ? AND status = 'POSTED';`,
			reversal.EntryID, formatTimestamp(reversal.CreatedAt), reversal.CreatedBy, tenantID, originalID,
		)
		if err != nil {
			return internalError("failed to mark journal entry %s reversed", err, originalID)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &apperrors.InvalidStateTransitionError{EntryID: originalID, From: string(status), To: string(domain.Reversed)}
		}

		saved, err = findEntry(ctx, tx, tenantID, reversal.EntryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func currentStatus(ctx context.Context, q querier, tenantID string, entryID string) (domain.EntryStatus, error) {
	var status domain.EntryStatus
	err := q.QueryRowContext(ctx, `SELECT status FROM journal_entries WHERE tenant_id = ? AND entry_id = ?;`, tenantID, entryID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.NewNotFoundError("journal entry", entryID)
		}
		return "", internalError("failed to read status of journal entry %s", err, entryID)
	}
	return status, nil
}

func immutableOrMissing(ctx context.Context, q querier, tenantID string, entryID string) error {
	status, err := currentStatus(ctx, q, tenantID, entryID)
	if err != nil {
		return err
	}
	return &apperrors.ImmutableEntryError{EntryID: entryID, Status: string(status)}
}
