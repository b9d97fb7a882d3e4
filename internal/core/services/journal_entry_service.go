package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
)

// journalEntryService owns the entry lifecycle: validation, drafts, posting and reversal.
type journalEntryService struct {
	BaseService
	entryRepo   portsrepo.JournalEntryRepositoryFacade
	accountRepo portsrepo.AccountReader
	policy      domain.LinePolicy
}

// JournalEntryServiceOption is a functional option for configuring the journal entry service
type JournalEntryServiceOption func(*journalEntryService)

// WithStrictLinePolicy rejects lines that carry both a debit and a credit, or neither.
func WithStrictLinePolicy(strict bool) JournalEntryServiceOption {
	return func(s *journalEntryService) {
		s.policy.Strict = strict
	}
}

// WithClock sets the time source
func WithClock(c portssvc.Clock) JournalEntryServiceOption {
	return func(s *journalEntryService) {
		s.Clock = c
	}
}

// WithIDGenerator sets the id generator
func WithIDGenerator(g portssvc.IDGenerator) JournalEntryServiceOption {
	return func(s *journalEntryService) {
		s.IDs = g
	}
}

// WithEventPublisher sets the publisher notified after each committed change
func WithEventPublisher(p portssvc.EventPublisher) JournalEntryServiceOption {
	return func(s *journalEntryService) {
		s.Publisher = p
	}
}

// NewJournalEntryService creates a new journal entry service with the given options
func NewJournalEntryService(entryRepo portsrepo.JournalEntryRepositoryFacade, accountRepo portsrepo.AccountReader, opts ...JournalEntryServiceOption) portssvc.JournalEntrySvcFacade {
	s := &journalEntryService{
		BaseService: newBaseService(),
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.JournalEntrySvcFacade = (*journalEntryService)(nil)

// CreateJournalEntry validates the proposed lines and stores a DRAFT entry.
func (s *journalEntryService) CreateJournalEntry(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.prepareEntry(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	entry.EntryID = s.IDs.NewID(domain.IDPrefixEntry)
	entry.Status = domain.Draft
	entry.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	s.assignLineIDs(entry)

	created, err := s.entryRepo.CreateJournalEntry(ctx, *entry)
	if err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", created.EntryID),
		slog.String("entry_number", created.EntryNumber),
		slog.String("tenant_id", tenantID))

	s.Emit(ctx, domain.JournalEntryCreated{
		TenantID:       tenantID,
		JournalEntryID: created.EntryID,
		EntryNumber:    created.EntryNumber,
		CreatedAt:      created.CreatedAt,
		CreatedBy:      userID,
	})
	return created, nil
}

// UpdateJournalEntry replaces the header and lines of a DRAFT entry.
func (s *journalEntryService) UpdateJournalEntry(ctx context.Context, tenantID string, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.prepareEntry(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	entry.EntryID = entryID
	entry.Status = domain.Draft
	entry.LastUpdatedAt = s.Clock.Now()
	entry.LastUpdatedBy = userID
	s.assignLineIDs(entry)

	updated, err := s.entryRepo.UpdateDraftJournalEntry(ctx, *entry)
	if err != nil {
		if !isExpectedLedgerError(err) {
			s.LogError(ctx, err, "Failed to update journal entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to update journal entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry updated", slog.String("entry_id", entryID), slog.String("tenant_id", tenantID))
	return updated, nil
}

// DeleteJournalEntry removes a DRAFT entry together with its lines.
func (s *journalEntryService) DeleteJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) error {
	if err := s.entryRepo.DeleteDraftJournalEntry(ctx, tenantID, entryID); err != nil {
		if !isExpectedLedgerError(err) {
			s.LogError(ctx, err, "Failed to delete journal entry", slog.String("entry_id", entryID))
		}
		return fmt.Errorf("failed to delete journal entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry deleted", slog.String("entry_id", entryID), slog.String("tenant_id", tenantID))
	return nil
}

// PostJournalEntry moves a DRAFT entry to POSTED. The store performs the
// transition as a compare-and-swap, so concurrent posts yield one success.
func (s *journalEntryService) PostJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error) {
	posted, err := s.entryRepo.MarkJournalEntryPosted(ctx, tenantID, entryID, userID, s.Clock.Now())
	if err != nil {
		if !isExpectedLedgerError(err) {
			s.LogError(ctx, err, "Failed to post journal entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to post journal entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entryID),
		slog.String("entry_number", posted.EntryNumber),
		slog.String("tenant_id", tenantID))

	postedAt := posted.LastUpdatedAt
	if posted.PostedAt != nil {
		postedAt = *posted.PostedAt
	}
	s.Emit(ctx, domain.JournalEntryPosted{
		TenantID:       tenantID,
		JournalEntryID: posted.EntryID,
		EntryNumber:    posted.EntryNumber,
		PostedAt:       postedAt,
		PostedBy:       userID,
	})
	return posted, nil
}

// ReverseJournalEntry records a mirrored offsetting entry, already POSTED, and
// marks the original REVERSED in the same transaction.
func (s *journalEntryService) ReverseJournalEntry(ctx context.Context, tenantID string, entryID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	original, err := s.entryRepo.FindJournalEntryByID(ctx, tenantID, entryID)
	if err != nil {
		if !isExpectedLedgerError(err) {
			s.LogError(ctx, err, "Failed to load journal entry for reversal", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to load journal entry %s: %w", entryID, err)
	}
	if !original.Status.CanTransitionTo(domain.Reversed) {
		return nil, &apperrors.InvalidStateTransitionError{EntryID: entryID, From: string(original.Status), To: string(domain.Reversed)}
	}

	now := s.Clock.Now()
	reversalDate := domain.DateOnly(now)
	if req.ReversalDate != nil {
		reversalDate, err = dto.ParseDate(*req.ReversalDate)
		if err != nil {
			return nil, apperrors.NewValidationError("reversalDate: %s", err.Error())
		}
	}
	if reversalDate.Before(original.EntryDate) {
		return nil, apperrors.NewValidationError("reversal date %s precedes entry date %s", dto.FormatDate(reversalDate), dto.FormatDate(original.EntryDate))
	}

	originalNumber := original.EntryNumber
	reversal := domain.JournalEntry{
		EntryID:      s.IDs.NewID(domain.IDPrefixEntry),
		TenantID:     tenantID,
		EntryDate:    reversalDate,
		Description:  "Reversal of " + originalNumber,
		Reference:    &originalNumber,
		Status:       domain.Posted,
		TotalDebit:   original.TotalCredit,
		TotalCredit:  original.TotalDebit,
		Lines:        domain.Mirror(original.Lines),
		PostedAt:     &now,
		PostedBy:     &userID,
		ReversalOfID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	s.assignLineIDs(&reversal)

	saved, err := s.entryRepo.SaveReversal(ctx, tenantID, entryID, reversal)
	if err != nil {
		if !isExpectedLedgerError(err) {
			s.LogError(ctx, err, "Failed to save reversal", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to reverse journal entry %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", saved.EntryID),
		slog.String("tenant_id", tenantID))

	s.Emit(ctx, domain.JournalEntryReversed{
		TenantID:        tenantID,
		JournalEntryID:  entryID,
		ReversalEntryID: saved.EntryID,
		ReversedAt:      now,
		ReversedBy:      userID,
	})
	return saved, nil
}

// GetJournalEntry retrieves an entry of the tenant with its lines in line order.
func (s *journalEntryService) GetJournalEntry(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindJournalEntryByID(ctx, tenantID, entryID)
	if err != nil {
		if !isExpectedLedgerError(err) {
			s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	s.LogDebug(ctx, "Journal entry retrieved", slog.String("entry_id", entryID), slog.Int("line_count", len(entry.Lines)))
	return entry, nil
}

// ListJournalEntries returns the tenant's entries newest first. Without a limit
// every matching entry is returned and no token is produced.
func (s *journalEntryService) ListJournalEntries(ctx context.Context, tenantID string, params dto.ListJournalEntriesParams, userID string) ([]domain.JournalEntry, *string, error) {
	filter, err := buildEntryFilter(params)
	if err != nil {
		return nil, nil, err
	}

	requested := filter.Limit
	if requested > 0 {
		// one extra row tells us whether another page exists
		filter.Limit = requested + 1
	}

	entries, err := s.entryRepo.ListJournalEntries(ctx, tenantID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("tenant_id", tenantID))
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	var nextToken *string
	if requested > 0 && len(entries) > requested {
		entries = entries[:requested]
		token := pagination.EncodeEntryCursor(pagination.CursorFor(entries[len(entries)-1]))
		nextToken = &token
	}

	s.LogDebug(ctx, "Journal entries listed", slog.String("tenant_id", tenantID), slog.Int("count", len(entries)))
	return entries, nextToken, nil
}

func buildEntryFilter(params dto.ListJournalEntriesParams) (domain.EntryFilter, error) {
	startDate, err := dto.ParseOptionalDate(params.StartDate)
	if err != nil {
		return domain.EntryFilter{}, apperrors.NewValidationError("startDate: %s", err.Error())
	}
	endDate, err := dto.ParseOptionalDate(params.EndDate)
	if err != nil {
		return domain.EntryFilter{}, apperrors.NewValidationError("endDate: %s", err.Error())
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return domain.EntryFilter{}, apperrors.NewValidationError("startDate %s is after endDate %s", params.StartDate, params.EndDate)
	}
	if params.Limit < 0 {
		return domain.EntryFilter{}, apperrors.NewValidationError("limit must not be negative")
	}

	filter := domain.EntryFilter{StartDate: startDate, EndDate: endDate, Limit: params.Limit}
	if params.NextToken != "" {
		cursor, err := pagination.DecodeEntryCursor(params.NextToken)
		if err != nil {
			return domain.EntryFilter{}, apperrors.NewValidationError("nextToken: %s", err.Error())
		}
		filter.After = &cursor
	}
	return filter, nil
}

// prepareEntry runs the pure validation and the account checks shared by create and update.
func (s *journalEntryService) prepareEntry(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error) {
	entryDate, err := dto.ParseDate(req.EntryDate)
	if err != nil {
		return nil, apperrors.NewValidationError("entryDate: %s", err.Error())
	}
	if req.Description == "" {
		return nil, apperrors.NewValidationError("description is required")
	}

	proposed := req.ProposedLines()
	totals, err := accounting.ValidateLines(proposed, s.policy)
	if err != nil {
		var unbalanced *apperrors.UnbalancedEntryError
		if errors.As(err, &unbalanced) {
			s.LogInfo(ctx, "Rejected unbalanced journal entry",
				slog.String("tenant_id", tenantID),
				slog.String("total_debit", unbalanced.TotalDebit.String()),
				slog.String("total_credit", unbalanced.TotalCredit.String()))
		}
		return nil, err
	}

	if err := s.checkAccounts(ctx, tenantID, proposed); err != nil {
		return nil, err
	}

	return &domain.JournalEntry{
		TenantID:    tenantID,
		EntryDate:   entryDate,
		Description: req.Description,
		Reference:   req.Reference,
		TotalDebit:  totals.TotalDebit,
		TotalCredit: totals.TotalCredit,
		Lines:       accounting.BuildLines(proposed),
	}, nil
}

// checkAccounts requires every referenced account to exist for the tenant and be active.
func (s *journalEntryService) checkAccounts(ctx context.Context, tenantID string, lines []domain.ProposedLine) error {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for journal entry", slog.String("tenant_id", tenantID))
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for i, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok {
			return &apperrors.InvalidLineError{LineNumber: i + 1, Reason: fmt.Sprintf("account %s does not exist", l.AccountID)}
		}
		if !acc.IsActive {
			return &apperrors.InvalidLineError{LineNumber: i + 1, Reason: fmt.Sprintf("account %s is inactive", acc.Code)}
		}
	}
	return nil
}

func (s *journalEntryService) assignLineIDs(entry *domain.JournalEntry) {
	for i := range entry.Lines {
		entry.Lines[i].LineID = s.IDs.NewID(domain.IDPrefixLine)
		entry.Lines[i].JournalEntryID = entry.EntryID
	}
}

// isExpectedLedgerError reports errors that are caller mistakes rather than failures worth an ERROR log.
func isExpectedLedgerError(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrInvalidState) ||
		errors.Is(err, apperrors.ErrImmutable)
}

