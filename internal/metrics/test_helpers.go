package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// getMetricValue retrieves the current float64 value of a Prometheus GaugeVec metric
// for the given set of labels. Returns an error if the metric cannot be parsed.
func getMetricValue(metric *prometheus.GaugeVec, labels map[string]string) (float64, error) {
	c := make(chan prometheus.Metric, 1)
	metric.With(labels).Collect(c)
	m := <-c

	pb := &dto.Metric{}
	if err := m.Write(pb); err != nil {
		return 0, err
	}
	if pb.Gauge != nil {
		return pb.Gauge.GetValue(), nil
	}
	return 0, nil
}

// setupObaServer creates a new httptest.Server that responds with the given JSON string and status code.
// Used to simulate an OBA API server for testing.
func setupObaServer(t *testing.T, response string, statusCode int) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		// #nosec G104
		w.Write([]byte(response))
	}))
	t.Cleanup(ts.Close)
	return ts
}
