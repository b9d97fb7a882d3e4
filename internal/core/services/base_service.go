package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/clock"
	"github.com/SscSPs/ledger_core/internal/platform/idgen"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Clock     portssvc.Clock
	IDs       portssvc.IDGenerator
	Publisher portssvc.EventPublisher
}

func newBaseService() BaseService {
	return BaseService{Clock: clock.System{}, IDs: idgen.TypeID{}}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Emit hands an event to the publisher. Must only be called once the change it
// describes is committed.
func (s *BaseService) Emit(ctx context.Context, event domain.DomainEvent) {
	if s.Publisher == nil {
		s.LogDebug(ctx, "No event publisher configured, dropping event", slog.String("event_type", event.EventType()))
		return
	}
	s.Publisher.Publish(ctx, event)
}
