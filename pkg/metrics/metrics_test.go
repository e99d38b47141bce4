package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest("GET", "/api/meals", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "/api/meals", 200, 10*time.Millisecond)
	m.ObserveRequest("POST", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounter(mfs, "http_requests_total", map[string]string{"route": "/api/meals", "status": "200"}); err != nil {
		t.Fatalf("fetch counter: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}
	if _, err := fetchCounter(mfs, "http_requests_total", map[string]string{"route": "unmatched", "status": "404"}); err != nil {
		t.Fatalf("unmatched routes should be labelled: %v", err)
	}
}

func TestStoreMetricsCountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)
	m.ObserveCheckpoint(time.Millisecond, nil)
	m.ObserveCheckpoint(time.Millisecond, errors.New("disk full"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounter(mfs, "store_checkpoint_failures_total", nil); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 failure, got %f", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	NewHTTPMetrics(nil).ObserveRequest("GET", "/", 200, time.Second)
	NewStoreMetrics(nil).ObserveCheckpoint(time.Second, nil)
	var m *StoreMetrics
	m.ObserveCheckpoint(time.Second, nil)
}

func fetchCounter(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric, labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %s with labels %v not found", name, labels)
}

func matchesLabels(metric *dto.Metric, labels map[string]string) bool {
	for key, want := range labels {
		found := false
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == key && pair.GetValue() == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
