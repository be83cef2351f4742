package searchq

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserver_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now(), nil)
	obs.observe("search", time.Now(), errors.New("boom"))
	obs.scrollPage("books")

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("ok operations: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "error")); got != 1 {
		t.Errorf("error operations: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.scrollPages.WithLabelValues("books")); got != 1 {
		t.Errorf("scroll pages: got %v, want 1", got)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("search", time.Now(), nil)
	obs.scrollPage("books")

	obs, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("search", time.Now(), errors.New("boom"))
	obs.scrollPage("books")
}

func TestRegisterOrReuse_SharesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := newClientMetrics(reg)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	second, err := newClientMetrics(reg)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}

	if first.operations != second.operations {
		t.Error("operations collector not reused")
	}

	second.operations.WithLabelValues("search", "ok").Inc()
	if got := testutil.ToFloat64(first.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("shared counter: got %v, want 1", got)
	}
}
