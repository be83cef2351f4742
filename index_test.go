package searchq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/searchq/internal/metrics"
)

// newStubClient points a Client at a stub store. The product header is
// required by the go-elasticsearch transport's compatibility check.
func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := New(WithAddresses(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestStream_CountsBatchesAndClears(t *testing.T) {
	const index = "books-stream-metrics"

	cleared := false
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/"+index+"/_search"):
			w.Write([]byte(`{
				"_scroll_id": "c1",
				"hits": {
					"total": {"value": 2, "relation": "eq"},
					"hits": [
						{"_id": "a", "_source": {"title": "go"}},
						{"_id": "b", "_source": {"title": "rust"}}
					]
				}
			}`))
		case r.Method == http.MethodDelete:
			cleared = true
			w.Write([]byte(`{"succeeded": true}`))
		default: // scroll continuation
			w.Write([]byte(`{"_scroll_id": "c1", "hits": {"total": {"value": 2, "relation": "eq"}, "hits": []}}`))
		}
	})

	idx, err := NewIndex[book](client, index)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	it, err := idx.Search().
		Where(Where("title").StartsWith("go")).
		Stream(context.Background())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	seen := 0
	for {
		ok, err := it.HasNext()
		if err != nil {
			t.Fatalf("HasNext: %v", err)
		}
		if !ok {
			break
		}
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
		seen++
	}
	if seen != 2 {
		t.Errorf("hits: got %d, want 2", seen)
	}
	if !cleared {
		t.Error("cursor chain not released against the store")
	}

	// Open page plus the empty continuation batch.
	if got := testutil.ToFloat64(metrics.ScrollBatchesTotal.WithLabelValues(index)); got != 2 {
		t.Errorf("scroll batches: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.ScrollsClearedTotal.WithLabelValues(index)); got != 1 {
		t.Errorf("scrolls cleared: got %v, want 1", got)
	}
}
