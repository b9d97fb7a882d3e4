package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every SQLite-backed repository onto db.
// db is expected to come from database.OpenSQLite with migrations applied.
func NewRepositoryProvider(db *sql.DB) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		AccountRepo:      newAccountRepository(db),
		JournalEntryRepo: newJournalEntryRepository(db),
		ReportingRepo:    newReportingRepository(db),
	}
}
