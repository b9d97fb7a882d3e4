package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// ServiceContainer holds instances of all the application services.
// Handlers receive their dependencies from here.
type ServiceContainer struct {
	Account      AccountSvcFacade
	JournalEntry JournalEntrySvcFacade
	Reporting    ReportingService
}

// TenantAuthorizer decides whether a user may perform an action on a tenant's ledger.
type TenantAuthorizer interface {
	AuthorizeUserAction(ctx context.Context, userID string, tenantID string, access domain.Access) error
}

// EventPublisher hands domain events to downstream consumers. Publish must not
// block on delivery; failures are the publisher's to log.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.DomainEvent)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces globally unique identifiers with a type prefix.
type IDGenerator interface {
	NewID(prefix string) string
}
