// Package messaging delivers ledger domain events outside the process. The
// AsyncPublisher decouples callers from delivery; a Sink does the delivery.
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event.
type Envelope struct {
	EventID     string          `json:"eventId"`
	EventType   string          `json:"eventType"`
	TenantID    string          `json:"tenantId"`
	AggregateID string          `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Payload     json.RawMessage `json:"payload"`
}

// NewEnvelope wraps event with a fresh event id.
func NewEnvelope(event domain.DomainEvent, occurredAt time.Time) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:     uuid.NewString(),
		EventType:   event.EventType(),
		TenantID:    event.Tenant(),
		AggregateID: event.AggregateID(),
		OccurredAt:  occurredAt.UTC(),
		Payload:     payload,
	}, nil
}

// Sink delivers envelopes to their destination.
type Sink interface {
	Deliver(ctx context.Context, envelope Envelope) error
	Close() error
}
