// Package metrics wires the OpenTelemetry meter provider to a Prometheus
// scrape endpoint.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName scopes every instrument the ledger registers.
const MeterName = "github.com/SscSPs/ledger_core"

// Metrics bundles the meter provider and the handler serving /metrics.
type Metrics struct {
	Provider *sdkmetric.MeterProvider
	Handler  http.Handler
}

// InitMetrics initializes a Prometheus exporter on its own registry.
func InitMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return &Metrics{
		Provider: provider,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Meter returns the ledger meter.
func (m *Metrics) Meter() metric.Meter {
	return m.Provider.Meter(MeterName)
}

// Shutdown flushes and stops the provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.Provider.Shutdown(ctx)
}
