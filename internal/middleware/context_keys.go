package middleware

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	principalKey = contextKey("principal")
	tenantIDKey  = contextKey("tenantID")
)

// WithPrincipal returns a copy of ctx carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal from a standard context.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

// WithTenantID returns a copy of ctx carrying the tenant the request operates on.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// GetUserIDFromContext retrieves the authenticated user ID from the request.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	p, ok := PrincipalFromContext(c.Request.Context())
	if !ok || p.UserID == "" {
		return "", false
	}
	return p.UserID, true
}

// GetTenantIDFromContext retrieves the tenant id resolved by TenantMiddleware.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	tenantID, ok := c.Request.Context().Value(tenantIDKey).(string)
	if !ok || tenantID == "" {
		return "", false
	}
	return tenantID, true
}
