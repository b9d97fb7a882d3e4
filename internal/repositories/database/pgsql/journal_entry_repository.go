package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJournalEntryRepository struct {
	BaseRepository
}

// newPgxJournalEntryRepository creates a new repository for journal entries and their lines.
func newPgxJournalEntryRepository(pool *pgxpool.Pool) *PgxJournalEntryRepository {
	return &PgxJournalEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalEntryRepositoryFacade = (*PgxJournalEntryRepository)(nil)

const entryColumns = `entry_id, tenant_id, entry_number, entry_date, description, reference, status,
	total_debit, total_credit, posted_at, posted_by, reversal_of_id, reversed_by_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.EntryID,
		&e.TenantID,
		&e.EntryNumber,
		&e.EntryDate,
		&e.Description,
		&e.Reference,
		&e.Status,
		&e.TotalDebit,
		&e.TotalCredit,
		&e.PostedAt,
		&e.PostedBy,
		&e.ReversalOfID,
		&e.ReversedByID,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	return e, err
}

// CreateJournalEntry numbers the entry from the tenant counter and inserts it with its lines.
func (r *PgxJournalEntryRepository) CreateJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	var created *domain.JournalEntry
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := r.insertEntry(ctx, tx, &entry); err != nil {
			return err
		}
		var err error
		created, err = r.findEntry(ctx, tx, entry.TenantID, entry.EntryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// insertEntry assigns the next entry number and writes header and lines on tx.
func (r *PgxJournalEntryRepository) insertEntry(ctx context.Context, tx pgx.Tx, entry *domain.JournalEntry) error {
	seq, err := nextEntrySequence(ctx, tx, entry.TenantID)
	if err != nil {
		return err
	}
	entry.EntryNumber = domain.FormatEntryNumber(seq)

	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, query,
		entry.EntryID,
		entry.TenantID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.Description,
		entry.Reference,
		entry.Status,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.PostedAt,
		entry.PostedBy,
		entry.ReversalOfID,
		entry.ReversedByID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
		}
		return internalError("failed to insert journal entry %s", err, entry.EntryID)
	}
	return insertLines(ctx, tx, entry.EntryID, entry.Lines)
}

// nextEntrySequence increments the tenant's counter row. The row lock is held
// until the surrounding transaction ends, which serialises numbering per tenant.
func nextEntrySequence(ctx context.Context, tx pgx.Tx, tenantID string) (int64, error) {
	query := `
		INSERT INTO journal_entry_counters (tenant_id, last_value)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_value = journal_entry_counters.last_value + 1
		RETURNING last_value;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, tenantID).Scan(&seq); err != nil {
		return 0, internalError("failed to allocate entry number for tenant %s", err, tenantID)
	}
	return seq, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, entryID string, lines []domain.JournalEntryLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO journal_entry_lines (line_id, entry_id, account_id, line_number, description, debit_amount, credit_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.LineID, entryID, l.AccountID, l.LineNumber, l.Description, l.DebitAmount, l.CreditAmount)
	}

	// Close surfaces the first failing statement of the batch.
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewValidationError("journal entry %s references an unknown account", entryID)
		}
		return internalError("failed to insert lines for journal entry %s", err, entryID)
	}
	return nil
}

// FindJournalEntryByID retrieves an entry of the tenant with its lines.
func (r *PgxJournalEntryRepository) FindJournalEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	return r.findEntry(ctx, r.Pool, tenantID, entryID)
}

func (r *PgxJournalEntryRepository) findEntry(ctx context.Context, q querier, tenantID string, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`
	entry, err := scanEntry(q.QueryRow(ctx, query, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal entry", entryID)
		}
		return nil, internalError("failed to find journal entry by ID %s", err, entryID)
	}

	lines, err := findLines(ctx, q, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry.Lines = lines[entryID]
	if entry.Lines == nil {
		entry.Lines = []domain.JournalEntryLine{}
	}
	return &entry, nil
}

// findLines loads the lines of entryIDs grouped by entry, each group in line order.
func findLines(ctx context.Context, q querier, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, line_number, description, debit_amount, credit_amount
		FROM journal_entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_number;
	`
	rows, err := q.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, internalError("failed to query journal entry lines", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.JournalEntryLine, len(entryIDs))
	for rows.Next() {
		var l domain.JournalEntryLine
		if err := rows.Scan(&l.LineID, &l.JournalEntryID, &l.AccountID, &l.LineNumber, &l.Description, &l.DebitAmount, &l.CreditAmount); err != nil {
			return nil, internalError("failed to scan journal entry line", err)
		}
		grouped[l.JournalEntryID] = append(grouped[l.JournalEntryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError("error iterating journal entry lines", err)
	}
	return grouped, nil
}

// ListJournalEntries retrieves entries ordered by entry date, creation time and id, all descending.
func (r *PgxJournalEntryRepository) ListJournalEntries(ctx context.Context, tenantID string, filter domain.EntryFilter) ([]domain.JournalEntry, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{tenantID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StartDate != nil {
		conditions = append(conditions, "entry_date >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "entry_date <= "+arg(*filter.EndDate))
	}
	if filter.After != nil {
		// row comparison matches the all-descending sort order
		conditions = append(conditions, fmt.Sprintf("(entry_date, created_at, entry_id) < (%s, %s, %s)",
			arg(filter.After.EntryDate), arg(filter.After.CreatedAt), arg(filter.After.EntryID)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY entry_date DESC, created_at DESC, entry_id DESC`
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, internalError("failed to list journal entries for tenant %s", err, tenantID)
	}
	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, internalError("failed to scan journal entry row", err)
		}
		entries = append(entries, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, internalError("error iterating journal entry rows", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}
	lines, err := findLines(ctx, r.Pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].EntryID]
		if entries[i].Lines == nil {
			entries[i].Lines = []domain.JournalEntryLine{}
		}
	}
	return entries, nil
}

// UpdateDraftJournalEntry replaces header fields, totals and lines while the entry is still DRAFT.
func (r *PgxJournalEntryRepository) UpdateDraftJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	var updated *domain.JournalEntry
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE journal_entries
			SET entry_date = $3, description = $4, reference = $5, total_debit = $6, total_credit = $7,
			    last_updated_at = $8, last_updated_by = $9
			WHERE tenant_id = $1 AND entry_id = $2 AND status = 'DRAFT';
		`
		tag, err := tx.Exec(ctx, query,
			entry.TenantID, entry.EntryID,
			entry.EntryDate, entry.Description, entry.Reference, entry.TotalDebit, entry.TotalCredit,
			entry.LastUpdatedAt, entry.LastUpdatedBy,
		)
		if err != nil {
			return internalError("failed to update journal entry %s", err, entry.EntryID)
		}
		if tag.RowsAffected() == 0 {
			return immutableOrMissing(ctx, tx, entry.TenantID, entry.EntryID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
			return internalError("failed to replace lines of journal entry %s", err, entry.EntryID)
		}
		if err := insertLines(ctx, tx, entry.EntryID, entry.Lines); err != nil {
			return err
		}

		updated, err = r.findEntry(ctx, tx, entry.TenantID, entry.EntryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDraftJournalEntry removes a DRAFT entry; its lines go with it.
func (r *PgxJournalEntryRepository) DeleteDraftJournalEntry(ctx context.Context, tenantID string, entryID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2 AND status = 'DRAFT';`, tenantID, entryID)
		if err != nil {
			return internalError("failed to delete journal entry %s", err, entryID)
		}
		if tag.RowsAffected() == 0 {
			return immutableOrMissing(ctx, tx, tenantID, entryID)
		}
		return nil
	})
}

// MarkJournalEntryPosted moves the entry from DRAFT to POSTED with a single
// conditional UPDATE, so of several concurrent posts exactly one matches a row.
func (r *PgxJournalEntryRepository) MarkJournalEntryPosted(ctx context.Context, tenantID string, entryID string, userID string, postedAt time.Time) (*domain.JournalEntry, error) {
	var posted *domain.JournalEntry
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE journal_entries
			SET status = 'POSTED', posted_at = $3, posted_by = $4, last_updated_at = $3, last_updated_by = $4
			WHERE tenant_id = $1 AND entry_id = $2 AND status = 'DRAFT';
		`
		tag, err := tx.Exec(ctx, query, tenantID, entryID, postedAt, userID)
		if err != nil {
			return internalError("failed to post journal entry %s", err, entryID)
		}
		if tag.RowsAffected() == 0 {
			status, err := currentStatus(ctx, tx, tenantID, entryID)
			if err != nil {
				return err
			}
			return &apperrors.InvalidStateTransitionError{EntryID: entryID, From: string(status), To: string(domain.Posted)}
		}

		posted, err = r.findEntry(ctx, tx, tenantID, entryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

// SaveReversal inserts the offsetting entry and flips the original from POSTED
// to REVERSED in one transaction. The original row is locked first.
func (r *PgxJournalEntryRepository) SaveReversal(ctx context.Context, tenantID string, originalID string, reversal domain.JournalEntry) (*domain.JournalEntry, error) {
	var saved *domain.JournalEntry
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var status domain.EntryStatus
		err := tx.QueryRow(ctx, `SELECT status FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2 FOR UPDATE;`, tenantID, originalID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFoundError("journal entry", originalID)
			}
			return internalError("failed to lock journal entry %s", err, originalID)
		}
		if !status.CanTransitionTo(domain.Reversed) {
			return &apperrors.InvalidStateTransitionError{EntryID: originalID, From: string(status), To: string(domain.Reversed)}
		}

		if err := r.insertEntry(ctx, tx, &reversal); err != nil {
			return err
		}

		query := `
			UPDATE journal_entries
			SET status = 'REVERSED', reversed_by_id = $3, last_updated_at = $4, last_updated_by = $5
			WHERE tenant_id = $1 AND entry_id = $2 AND status = 'POSTED';
		`
		if _, err := tx.Exec(ctx, query, tenantID, originalID, reversal.EntryID, reversal.CreatedAt, reversal.CreatedBy); err != nil {
			return internalError("failed to mark journal entry %s reversed", err, originalID)
		}

		saved, err = r.findEntry(ctx, tx, tenantID, reversal.EntryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func currentStatus(ctx context.Context, q querier, tenantID string, entryID string) (domain.EntryStatus, error) {
	var status domain.EntryStatus
	err := q.QueryRow(ctx, `SELECT status FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`, tenantID, entryID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError("journal entry", entryID)
		}
		return "", internalError("failed to read status of journal entry %s", err, entryID)
	}
	return status, nil
}

// immutableOrMissing explains why a draft-only statement matched no row.
func immutableOrMissing(ctx context.Context, q querier, tenantID string, entryID string) error {
	status, err := currentStatus(ctx, q, tenantID, entryID)
	if err != nil {
		return err
	}
	return &apperrors.ImmutableEntryError{EntryID: entryID, Status: string(status)}
}
