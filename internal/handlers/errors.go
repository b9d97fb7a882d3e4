package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

var kindStatus = map[string]int{
	apperrors.KindValidation:   http.StatusBadRequest,
	apperrors.KindNotFound:     http.StatusNotFound,
	apperrors.KindDuplicate:    http.StatusConflict,
	apperrors.KindUnauthorized: http.StatusUnauthorized,
	apperrors.KindForbidden:    http.StatusForbidden,
	apperrors.KindConflict:     http.StatusConflict,
	apperrors.KindInvalidState: http.StatusConflict,
	apperrors.KindImmutable:    http.StatusConflict,
	apperrors.KindIntegrity:    http.StatusInternalServerError,
	apperrors.KindInternal:     http.StatusInternalServerError,
}

// respondError renders err as {"error": kind, "message": ...} with the status for its kind.
// Internal failures are logged and their detail is withheld from the caller.
func respondError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kind := apperrors.Kind(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	switch {
	case kind == apperrors.KindInternal:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		message = "Failed to " + action
	case kind == apperrors.KindIntegrity:
		logger.Error("Ledger integrity violation while trying to "+action, slog.String("error", err.Error()))
	case status >= http.StatusInternalServerError:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
	default:
		logger.Warn("Request rejected", slog.String("action", action), slog.String("kind", kind), slog.String("error", err.Error()))
	}

	c.JSON(status, dto.ErrorResponse{Error: kind, Message: message})
}

// respondBindError reports a request body or query that failed to bind.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: apperrors.KindValidation, Message: err.Error()})
}

// requestScope returns the tenant and user the request acts for. It writes the
// error response itself when either is missing.
func requestScope(c *gin.Context) (tenantID string, userID string, ok bool) {
	userID, ok = middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthorized, "resolve the caller")
		return "", "", false
	}
	tenantID, ok = middleware.GetTenantIDFromContext(c)
	if !ok {
		respondError(c, apperrors.NewValidationError("%s header required", middleware.TenantHeader), "resolve the tenant")
		return "", "", false
	}
	return tenantID, userID, true
}
