package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const secret = "middleware-test-secret"

func sign(t *testing.T, key string, claims middleware.LedgerClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func claimsFor(subject string, expiresIn time.Duration) middleware.LedgerClaims {
	return middleware.LedgerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "identity",
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Tenants: []string{"t1"},
		Roles:   []string{"accountant", "superuser"},
	}
}

func newAuthRouter(issuer string, seen *domain.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(secret, issuer), func(c *gin.Context) {
		p, _ := middleware.PrincipalFromContext(c.Request.Context())
		*seen = p
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware_AcceptsValidToken(t *testing.T) {
	var seen domain.Principal
	r := newAuthRouter("identity", &seen)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, secret, claimsFor("user-1", time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", seen.UserID)
	assert.Equal(t, []string{"t1"}, seen.Tenants)
	assert.Equal(t, []domain.Role{domain.RoleAccountant}, seen.Roles)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	noSubject := claimsFor("", time.Hour)
	wrongIssuer := claimsFor("user-1", time.Hour)
	wrongIssuer.Issuer = "someone-else"

	cases := map[string]struct {
		header  string
		message string
	}{
		"missing header":  {"", "Authorization header required"},
		"wrong scheme":    {"Basic abc", "Authorization header format must be Bearer {token}"},
		"expired":         {"Bearer " + sign(t, secret, claimsFor("user-1", -time.Minute)), "Token has expired"},
		"wrong secret":    {"Bearer " + sign(t, "other-secret", claimsFor("user-1", time.Hour)), "Invalid token"},
		"no subject":      {"Bearer " + sign(t, secret, noSubject), "Invalid token claims"},
		"issuer mismatch": {"Bearer " + sign(t, secret, wrongIssuer), "Invalid token"},
	}

	var seen domain.Principal
	r := newAuthRouter("identity", &seen)
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.message)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestAuthMiddleware_RejectsOtherSigningMethods(t *testing.T) {
	var seen domain.Principal
	r := newAuthRouter("", &seen)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claimsFor("user-1", time.Hour)).SignedString([]byte(secret))
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTenantMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var tenant string
	r.GET("/scoped", middleware.TenantMiddleware(), func(c *gin.Context) {
		tenant, _ = middleware.GetTenantIDFromContext(c)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set(middleware.TenantHeader, "  t1 ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", tenant)

	req, _ = http.NewRequest(http.MethodGet, "/scoped", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestStructuredLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewJSONHandler(&logs, nil))))
	r.GET("/ping", middleware.TenantMiddleware(), func(c *gin.Context) {
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("handler ran")
		c.Status(http.StatusNoContent)
	})

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.TenantHeader, "t1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	requestID := w.Header().Get(middleware.RequestIDHeader)
	require.NotEmpty(t, requestID)
	assert.Contains(t, logs.String(), `"request_id":"`+requestID+`"`)
	assert.Contains(t, logs.String(), `"msg":"Request completed"`)
	assert.Contains(t, logs.String(), `"status":204`)
	assert.Contains(t, logs.String(), `"tenant_id":"t1"`)
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), middleware.GetLoggerFromCtx(context.Background()))
}

func TestHTTPMetrics_RecordsRoute(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	handler, err := middleware.HTTPMetrics(provider.Meter("test"))
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler)
	r.GET("/accounts/:accountID", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/accounts/acc_1", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	hist, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	route, _ := hist.DataPoints[0].Attributes.Value("http.route")
	assert.Equal(t, "/accounts/:accountID", route.AsString())
	assert.EqualValues(t, 1, hist.DataPoints[0].Count)
}

func TestRateLimit_PerUser(t *testing.T) {
	limiter, err := middleware.NewRateLimiter("1-M")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/limited", func(c *gin.Context) {
		ctx := middleware.WithPrincipal(c.Request.Context(), domain.Principal{UserID: c.GetHeader("X-User")})
		c.Request = c.Request.WithContext(ctx)
	}, middleware.RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(user string) int {
		req, _ := http.NewRequest(http.MethodGet, "/limited", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusOK, call("b"))

	_, err = middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}
