package tracer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracingAndMetricsServesExporter(t *testing.T) {
	tel, err := InitTracingAndMetrics("medibook-test")
	require.NoError(t, err)
	defer func() { _ = tel.Shutdown(context.Background()) }()

	counter, err := otel.GetMeterProvider().Meter("test").Int64Counter("probe_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	srv := httptest.NewServer(tel.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "probe_total")
}
