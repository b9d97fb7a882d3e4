package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Operation describes one service call as seen by interceptors.
type Operation struct {
	Name     string
	TenantID string
	UserID   string
	Access   domain.Access
}

// Handler is the remainder of an intercepted call.
type Handler func(ctx context.Context) error

// Interceptor wraps an operation. It must call next exactly once to let the call proceed.
type Interceptor func(ctx context.Context, op Operation, next Handler) error

// Chain is an ordered list of interceptors; the first one is outermost.
type Chain []Interceptor

// Run executes final wrapped by every interceptor in the chain.
func (c Chain) Run(ctx context.Context, op Operation, final Handler) error {
	h := final
	for i := len(c) - 1; i >= 0; i-- {
		interceptor, next := c[i], h
		h = func(ctx context.Context) error {
			return interceptor(ctx, op, next)
		}
	}
	return h(ctx)
}

// invoke runs fn through the chain and hands back its result.
func invoke[T any](ctx context.Context, chain Chain, op Operation, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := chain.Run(ctx, op, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// LoggingInterceptor logs the start and the outcome of every operation.
func LoggingInterceptor() Interceptor {
	return func(ctx context.Context, op Operation, next Handler) error {
		logger := middleware.GetLoggerFromCtx(ctx).With(
			slog.String("operation", op.Name),
			slog.String("tenant_id", op.TenantID),
		)
		logger.Debug("Operation started")

		start := time.Now()
		err := next(middleware.WithLogger(ctx, logger))
		elapsed := time.Since(start)

		if err != nil {
			logger.Info("Operation failed",
				slog.Duration("duration", elapsed),
				slog.String("error_kind", apperrors.Kind(err)),
				slog.String("error", err.Error()))
			return err
		}
		logger.Debug("Operation completed", slog.Duration("duration", elapsed))
		return nil
	}
}

// MetricsInterceptor records operation latency and failures, and warns about
// operations slower than slowThreshold. A zero threshold disables the warning.
func MetricsInterceptor(meter metric.Meter, slowThreshold time.Duration) (Interceptor, error) {
	duration, err := meter.Float64Histogram(
		"ledger.operation.duration",
		metric.WithDescription("Duration of ledger service operations."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	failures, err := meter.Int64Counter(
		"ledger.operation.errors",
		metric.WithDescription("Ledger service operations that returned an error, by kind."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	return func(ctx context.Context, op Operation, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		outcome := "ok"
		if err != nil {
			outcome = apperrors.Kind(err)
			failures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("operation", op.Name),
				attribute.String("kind", outcome),
			))
		}
		duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			attribute.String("operation", op.Name),
			attribute.String("outcome", outcome),
		))

		if slowThreshold > 0 && elapsed > slowThreshold {
			middleware.GetLoggerFromCtx(ctx).Warn("Slow ledger operation",
				slog.String("operation", op.Name),
				slog.String("tenant_id", op.TenantID),
				slog.Duration("duration", elapsed),
				slog.Duration("threshold", slowThreshold))
		}
		return err
	}, nil
}

// AuthorizationInterceptor rejects operations the caller may not perform on the tenant.
func AuthorizationInterceptor(authorizer portssvc.TenantAuthorizer) Interceptor {
	return func(ctx context.Context, op Operation, next Handler) error {
		if err := authorizer.AuthorizeUserAction(ctx, op.UserID, op.TenantID, op.Access); err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Authorization failed",
				slog.String("operation", op.Name),
				slog.String("user_id", op.UserID),
				slog.String("tenant_id", op.TenantID),
				slog.String("error", err.Error()))
			return err
		}
		return next(ctx)
	}
}

// ClaimsAuthorizer authorizes against the principal the auth middleware placed in the context.
type ClaimsAuthorizer struct{}

var _ portssvc.TenantAuthorizer = ClaimsAuthorizer{}

// AuthorizeUserAction requires an authenticated principal matching userID that
// belongs to tenantID and holds a role granting access.
func (ClaimsAuthorizer) AuthorizeUserAction(ctx context.Context, userID string, tenantID string, access domain.Access) error {
	principal, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated principal", apperrors.ErrUnauthorized)
	}
	if principal.UserID != userID {
		return fmt.Errorf("%w: principal does not match acting user", apperrors.ErrForbidden)
	}
	if tenantID == "" {
		return apperrors.NewValidationError("tenant id is required")
	}
	if !principal.HasTenant(tenantID) {
		return fmt.Errorf("%w: user %s is not a member of tenant %s", apperrors.ErrForbidden, userID, tenantID)
	}
	if !principal.Allows(access) {
		return fmt.Errorf("%w: user %s lacks the role required for this operation", apperrors.ErrForbidden, userID)
	}
	return nil
}
