package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// TenantHeader names the header that selects the tenant a request operates on.
const TenantHeader = "X-Tenant-ID"

// TenantMiddleware resolves the tenant from the X-Tenant-ID header. Whether the
// caller may act on that tenant is decided by the service layer.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(TenantHeader))
		if tenantID == "" {
			GetLoggerFromCtx(c.Request.Context()).Warn("Tenant header missing")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   apperrors.KindValidation,
				"message": TenantHeader + " header required",
			})
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context()).With(slog.String("tenant_id", tenantID))
		ctx := WithTenantID(c.Request.Context(), tenantID)
		c.Request = c.Request.WithContext(WithLogger(ctx, logger))

		c.Next()
	}
}
