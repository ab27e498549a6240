package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/sitework"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Authentication metrics
	AuthnOutcomes metric.Int64Counter
	AuthzDenials  metric.Int64Counter

	// Tenant isolation metrics
	TenantViolations metric.Int64Counter
	ScopeEscapes     metric.Int64Counter

	// Credential lifecycle metrics
	RefreshRotations  metric.Int64Counter
	RefreshReuse      metric.Int64Counter
	RefreshMismatches metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.AuthnOutcomes, _ = meter.Int64Counter(
		"sitework.authn.outcomes",
		metric.WithDescription("Request authentication outcomes by result"),
		metric.WithUnit("{request}"),
	)

	m.AuthzDenials, _ = meter.Int64Counter(
		"sitework.authz.denials",
		metric.WithDescription("Requests rejected by route policy by reason"),
		metric.WithUnit("{request}"),
	)

	m.TenantViolations, _ = meter.Int64Counter(
		"sitework.tenant.violations",
		metric.WithDescription("Writes rejected by the tenant invariant guard"),
		metric.WithUnit("{violation}"),
	)

	m.ScopeEscapes, _ = meter.Int64Counter(
		"sitework.tenant.escapes",
		metric.WithDescription("Operations executed with tenant scoping suspended"),
		metric.WithUnit("{operation}"),
	)

	m.RefreshRotations, _ = meter.Int64Counter(
		"sitework.refresh.rotations",
		metric.WithDescription("Refresh tokens rotated"),
		metric.WithUnit("{token}"),
	)

	m.RefreshReuse, _ = meter.Int64Counter(
		"sitework.refresh.reuse",
		metric.WithDescription("Rotated refresh tokens presented again"),
		metric.WithUnit("{token}"),
	)

	m.RefreshMismatches, _ = meter.Int64Counter(
		"sitework.refresh.mismatches",
		metric.WithDescription("Refresh tokens presented with the wrong secret"),
		metric.WithUnit("{token}"),
	)

	return m
}
