package es

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient points a store client at a stub that replays the given
// handler. The product header is required by the go-elasticsearch
// transport's compatibility check.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_RequiresAddresses(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("expected error for empty address list")
	}
}

func TestSearch_DecodesPage(t *testing.T) {
	var gotPath, gotRouting string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRouting = r.URL.Query().Get("routing")
		w.Write([]byte(`{
			"_scroll_id": "cursor-1",
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"max_score": 1.7,
				"hits": [
					{"_id": "a", "_score": 1.7, "_routing": "r1", "_source": {"title": "go"}, "sort": ["go"]},
					{"_id": "b", "_score": 0.4, "_source": {"title": "rust"}, "highlight": {"title": ["<em>rust</em>"]}}
				]
			},
			"aggregations": {"genres": {"buckets": []}}
		}`))
	})

	page, err := client.Search(context.Background(), "books",
		map[string]any{"query": map[string]any{"match_all": map[string]any{}}},
		SearchParams{Routing: "r1", Preference: "_local"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/books/_search" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotRouting != "r1" {
		t.Errorf("routing param: got %q", gotRouting)
	}
	if page.ScrollID != "cursor-1" || page.Total != 2 || page.Relation != "eq" || page.MaxScore != 1.7 {
		t.Errorf("page envelope: %+v", page)
	}
	if len(page.Hits) != 2 {
		t.Fatalf("hits: got %d", len(page.Hits))
	}
	first := page.Hits[0]
	if first.ID != "a" || first.Score != 1.7 || first.Routing != "r1" {
		t.Errorf("first hit: %+v", first)
	}
	if !json.Valid(first.Source) || !strings.Contains(string(first.Source), "go") {
		t.Errorf("first source: %s", first.Source)
	}
	if got := page.Hits[1].Highlights["title"]; len(got) != 1 || got[0] != "<em>rust</em>" {
		t.Errorf("highlights: %v", page.Hits[1].Highlights)
	}
	if _, ok := page.Aggregations["genres"]; !ok {
		t.Errorf("aggregations lost: %v", page.Aggregations)
	}
}

func TestSearch_StoreErrorCarriesReason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "parsing_exception", "reason": "unknown field"}}`))
	})

	_, err := client.Search(context.Background(), "books", nil, SearchParams{})
	if err == nil || !strings.Contains(err.Error(), "parsing_exception") || !strings.Contains(err.Error(), "unknown field") {
		t.Errorf("got %v, want the store's type and reason", err)
	}
}

func TestOpenScroll_SendsKeepAlive(t *testing.T) {
	var gotScroll string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotScroll = r.URL.Query().Get("scroll")
		w.Write([]byte(`{"_scroll_id": "c1", "hits": {"total": {"value": 0, "relation": "eq"}, "hits": []}}`))
	})

	page, err := client.OpenScroll(context.Background(), "books", nil, 2*time.Minute, SearchParams{})
	if err != nil {
		t.Fatalf("OpenScroll: %v", err)
	}
	// esapi renders durations in milliseconds.
	if gotScroll != "120000ms" {
		t.Errorf("scroll param: got %q, want 120000ms", gotScroll)
	}
	if page.ScrollID != "c1" {
		t.Errorf("scroll id: got %q", page.ScrollID)
	}
}

func TestContinueScroll(t *testing.T) {
	var gotScrollID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotScrollID = r.URL.Query().Get("scroll_id")
		w.Write([]byte(`{"_scroll_id": "c2", "hits": {"total": {"value": 1, "relation": "eq"}, "hits": [{"_id": "a"}]}}`))
	})

	page, err := client.ContinueScroll(context.Background(), "c1", time.Minute)
	if err != nil {
		t.Fatalf("ContinueScroll: %v", err)
	}
	if gotScrollID != "c1" {
		t.Errorf("scroll_id param: got %q, want c1", gotScrollID)
	}
	if page.ScrollID != "c2" || len(page.Hits) != 1 {
		t.Errorf("page: %+v", page)
	}
}

func TestClearScroll(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"succeeded": true}`))
	})

	if err := client.ClearScroll(context.Background(), nil); err != nil {
		t.Fatalf("ClearScroll with no ids: %v", err)
	}
	if requests != 0 {
		t.Error("empty id list must not hit the store")
	}

	if err := client.ClearScroll(context.Background(), []string{"c1", "c2"}); err != nil {
		t.Fatalf("ClearScroll: %v", err)
	}
	if requests != 1 {
		t.Errorf("requests: got %d, want 1", requests)
	}
}

func TestCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 42}`))
	})

	n, err := client.Count(context.Background(), "books", map[string]any{"query": map[string]any{"match_all": map[string]any{}}})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 42 {
		t.Errorf("count: got %d, want 42", n)
	}
}

func TestDeleteByQuery_ParamsAndResult(t *testing.T) {
	var gotQuery, gotDf string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotDf = r.URL.Query().Get("df")
		w.Write([]byte(`{"deleted": 7}`))
	})

	deleted, err := client.DeleteByQuery(context.Background(), "books", nil, DeleteParams{
		LuceneQuery:  "genre:tech",
		DefaultField: "title",
		Refresh:      true,
	})
	if err != nil {
		t.Fatalf("DeleteByQuery: %v", err)
	}
	if deleted != 7 {
		t.Errorf("deleted: got %d, want 7", deleted)
	}
	if gotQuery != "genre:tech" || gotDf != "title" {
		t.Errorf("params: q=%q df=%q", gotQuery, gotDf)
	}
}

func TestSearchTemplate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"hits": {"total": {"value": 1, "relation": "eq"}, "hits": [{"_id": "a"}]}}`))
	})

	page, err := client.SearchTemplate(context.Background(), "books",
		map[string]any{"id": "popular-books", "params": map[string]any{"genre": "tech"}}, "")
	if err != nil {
		t.Fatalf("SearchTemplate: %v", err)
	}
	if gotPath != "/books/_search/template" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotBody["id"] != "popular-books" {
		t.Errorf("body: %v", gotBody)
	}
	if len(page.Hits) != 1 {
		t.Errorf("hits: got %d", len(page.Hits))
	}
}
