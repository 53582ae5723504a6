package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nielsvanzon/SCIM-SDK/metrics"
)

func TestObserveIncrementsCounterWithStatusClassLabel(t *testing.T) {
	m := metrics.New("scim", "server")
	registry := prometheus.NewRegistry()
	require.NoError(t, m.Register(registry))

	m.Observe("Users", "POST", 201, 10*time.Millisecond)
	m.Observe("Users", "POST", 404, 5*time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)

	var requestsTotal *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "scim_server_requests_total" {
			requestsTotal = f
		}
	}
	require.NotNil(t, requestsTotal)
	require.Len(t, requestsTotal.Metric, 2)

	var sawSuccess, sawNotFound bool
	for _, metric := range requestsTotal.Metric {
		labels := map[string]string{}
		for _, lp := range metric.Label {
			labels[lp.GetName()] = lp.GetValue()
		}
		switch labels["status"] {
		case "2xx":
			sawSuccess = true
			assert.Equal(t, float64(1), metric.Counter.GetValue())
		case "4xx":
			sawNotFound = true
			assert.Equal(t, float64(1), metric.Counter.GetValue())
		}
	}
	assert.True(t, sawSuccess)
	assert.True(t, sawNotFound)
}

func TestObserveOnNilMetricsIsANoOp(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Observe("Users", "GET", 200, time.Millisecond)
	})
}
