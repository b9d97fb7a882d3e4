package messaging

import (
	"context"
	"log/slog"
)

// LogSink writes every envelope to the structured log. Used when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, envelope Envelope) error {
	s.logger.InfoContext(ctx, "Domain event",
		slog.String("event_id", envelope.EventID),
		slog.String("event_type", envelope.EventType),
		slog.String("tenant_id", envelope.TenantID),
		slog.String("aggregate_id", envelope.AggregateID),
		slog.String("payload", string(envelope.Payload)),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
