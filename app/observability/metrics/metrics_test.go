package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInstrumentsExportThroughGlobalProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	m := Get()
	require.NotNil(t, m)
	assert.Same(t, m, Get())

	ctx := context.Background()
	m.LoginRequestsTotal.Add(ctx, 1, OutcomeAttr(OutcomeInvalidCredentials))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name == "login_requests_total" {
				found = true
			}
		}
	}
	assert.True(t, found, "login_requests_total should be exported")
}
