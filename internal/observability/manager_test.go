package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/config"
)

func TestBuild_Exporters(t *testing.T) {
	testCases := map[string]struct {
		cfg         config.Observability
		wantTracing bool
		wantMetrics bool
		wantHandler bool
	}{
		"should disable everything": {
			cfg: config.Observability{ServiceName: "svc"},
		},
		"should build stdout providers": {
			cfg:         config.Observability{ServiceName: "svc", EnableTracing: true, TraceExporter: "stdout", EnableMetrics: true, MetricsExporter: "stdout"},
			wantTracing: true,
			wantMetrics: true,
		},
		"should build prometheus handler": {
			cfg:         config.Observability{ServiceName: "svc", EnableMetrics: true, MetricsExporter: "prometheus"},
			wantMetrics: true,
			wantHandler: true,
		},
		"should ignore unknown exporters": {
			cfg: config.Observability{ServiceName: "svc", EnableTracing: true, TraceExporter: "zipkin", EnableMetrics: true, MetricsExporter: "statsd"},
		},
		"should honour explicit none": {
			cfg: config.Observability{ServiceName: "svc", EnableTracing: true, TraceExporter: "none", EnableMetrics: true, MetricsExporter: "none"},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			mgr, err := Build(context.Background(), tc.cfg, zap.NewNop(), io.Discard)
			require.NoError(t, err)
			t.Cleanup(func() { _ = mgr.Shutdown(context.Background()) })

			assert.Equal(t, tc.wantTracing, mgr.TracingEnabled())
			assert.Equal(t, tc.wantMetrics, mgr.MetricsEnabled())
			assert.Equal(t, tc.wantHandler, mgr.MetricsHandler() != nil)
		})
	}
}

func TestBuild_OTLPRequiresEndpoint(t *testing.T) {
	_, err := Build(context.Background(), config.Observability{EnableTracing: true, TraceExporter: "otlp"}, nil, io.Discard)
	assert.EqualError(t, err, "OBS_OTLP_ENDPOINT must be set for otlp exporter")
}

func TestManager_PrometheusScrape(t *testing.T) {
	mgr, err := Build(context.Background(), config.Observability{ServiceName: "svc", EnableMetrics: true, MetricsExporter: "prometheus"}, zap.NewNop(), io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Shutdown(context.Background()) })

	counter, err := mgr.MeterProvider().Meter("test").Int64Counter("orders.created")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	mgr.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "orders_created")
	assert.Contains(t, body, "go_goroutines")
}

func TestManager_StdoutTraceWriter(t *testing.T) {
	var buf bytes.Buffer
	mgr, err := Build(context.Background(), config.Observability{ServiceName: "svc", EnableTracing: true, TraceExporter: "stdout"}, zap.NewNop(), &buf)
	require.NoError(t, err)

	_, span := mgr.tracerProvider.Tracer("test").Start(context.Background(), "kitchen.setStatus")
	span.End()
	require.NoError(t, mgr.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "kitchen.setStatus")
}
