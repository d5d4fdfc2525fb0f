package metrics

import (
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "medibook-api"

// Outcome attribute values recorded with the auth counters.
const (
	OutcomeSuccess             = "success"
	OutcomeDuplicate           = "duplicate"
	OutcomeInvalidCredentials  = "invalid_credentials"
	OutcomePendingVerification = "pending_verification"
	OutcomeError               = "error"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	RegisterRequestsTotal   metric.Int64Counter
	RegisterDurationSeconds metric.Float64Histogram
	LoginRequestsTotal      metric.Int64Counter
	LoginDurationSeconds    metric.Float64Histogram
	VerificationsTotal      metric.Int64Counter
	DbQueryDurationSeconds  metric.Float64Histogram
	DbQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider.
// Instruments created before the provider is installed follow it once it is.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter(meterName)
		m := &AppMetrics{}
		var errs []error
		var err error

		m.RegisterRequestsTotal, err = meter.Int64Counter("register_requests_total",
			metric.WithDescription("Total number of register requests completed"),
			metric.WithUnit("{request}"))
		errs = append(errs, err)

		m.RegisterDurationSeconds, err = meter.Float64Histogram("register_duration_seconds",
			metric.WithDescription("Duration of register requests in seconds"),
			metric.WithUnit("s"))
		errs = append(errs, err)

		m.LoginRequestsTotal, err = meter.Int64Counter("login_requests_total",
			metric.WithDescription("Total number of login attempts by outcome"),
			metric.WithUnit("{request}"))
		errs = append(errs, err)

		m.LoginDurationSeconds, err = meter.Float64Histogram("login_duration_seconds",
			metric.WithDescription("Duration of login requests in seconds"),
			metric.WithUnit("s"))
		errs = append(errs, err)

		m.VerificationsTotal, err = meter.Int64Counter("professional_verifications_total",
			metric.WithDescription("Total number of professional accounts verified"),
			metric.WithUnit("{identity}"))
		errs = append(errs, err)

		m.DbQueryDurationSeconds, err = meter.Float64Histogram("db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"))
		errs = append(errs, err)

		m.DbQueryErrorsTotal, err = meter.Int64Counter("db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"))
		errs = append(errs, err)

		if err := errors.Join(errs...); err != nil {
			slog.Error("Metrics: failed to create some instruments", slog.Any("error", err))
		}
		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// OutcomeAttr is the attribute set used with the auth counters.
func OutcomeAttr(outcome string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("outcome", outcome))
}

// QueryAttr is the attribute set used with the db instruments.
func QueryAttr(query string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("db.query", query))
}

// RoleAttr labels verification counts by professional role.
func RoleAttr(role string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("role", role))
}
