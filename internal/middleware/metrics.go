package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records request latency per route, method and status.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	duration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests handled by the ledger API."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration.Record(c.Request.Context(), time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.response.status_code", strconv.Itoa(c.Writer.Status())),
		))
	}, nil
}
