package searchq

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kailas-cloud/searchq/internal/es"
)

func TestSearchParams(t *testing.T) {
	q, err := NewBaseQueryBuilder().
		WithRoute("shard-1").
		WithPreference("_local").
		WithSearchType(DfsQueryThenFetch).
		WithRequestCache(true).
		WithIndicesOptions(&IndicesOptions{
			IgnoreUnavailable: true,
			ExpandWildcards:   []Wildcard{WildcardOpen, WildcardHidden},
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	p := searchParams(q)
	if p.Routing != "shard-1" || p.Preference != "_local" {
		t.Errorf("routing=%q preference=%q", p.Routing, p.Preference)
	}
	if p.SearchType != "dfs_query_then_fetch" {
		t.Errorf("search type: got %q", p.SearchType)
	}
	if p.RequestCache == nil || !*p.RequestCache {
		t.Error("request cache lost")
	}
	if p.IgnoreUnavailable == nil || !*p.IgnoreUnavailable {
		t.Error("ignore unavailable lost")
	}
	if p.AllowNoIndices == nil || *p.AllowNoIndices {
		t.Error("allow no indices should be an explicit false")
	}
	if p.ExpandWildcards != "open,hidden" {
		t.Errorf("expand wildcards: got %q", p.ExpandWildcards)
	}
}

func TestSearchParams_QueryLevelWildcards(t *testing.T) {
	q, err := NewBaseQueryBuilder().
		WithExpandWildcards(WildcardAll).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	p := searchParams(q)
	if p.ExpandWildcards != "all" {
		t.Errorf("expand wildcards: got %q, want all", p.ExpandWildcards)
	}
	if p.IgnoreUnavailable != nil {
		t.Error("no indices options means no tri-state overrides")
	}
}

func TestToSearchHits(t *testing.T) {
	page := &es.Page{
		Total:    2,
		Relation: "eq",
		MaxScore: 1.5,
		Hits: []es.Hit{
			{ID: "a", Score: 1.5, Source: json.RawMessage(`{"title": "go"}`)},
			{ID: "b", Score: 0.2, Source: json.RawMessage(`{"title": "rust"}`)},
		},
	}

	hits, err := toSearchHits[book](page)
	if err != nil {
		t.Fatalf("toSearchHits: %v", err)
	}
	if hits.TotalHits != 2 || hits.TotalHitsRelation != RelationEqualTo || hits.MaxScore != 1.5 {
		t.Errorf("envelope: %+v", hits)
	}
	if hits.Hits[0].Content.Title != "go" || hits.Hits[1].Content.Title != "rust" {
		t.Errorf("contents: %+v", hits.Hits)
	}
}

func TestToSearchHit_DecodeError(t *testing.T) {
	_, err := toSearchHit[book](es.Hit{ID: "bad", Source: json.RawMessage(`{"title": 7}`)})
	if err == nil || !strings.Contains(err.Error(), `decode hit bad`) {
		t.Errorf("got %v, want a decode error naming the hit", err)
	}
}

func TestToSearchHit_EmptySourceKeepsZeroContent(t *testing.T) {
	hit, err := toSearchHit[book](es.Hit{ID: "a"})
	if err != nil {
		t.Fatalf("toSearchHit: %v", err)
	}
	if hit.Content != (book{}) {
		t.Errorf("content: got %+v, want zero value", hit.Content)
	}
}

func TestDeleteParams(t *testing.T) {
	dq, err := NewDeleteQueryBuilder().
		WithLuceneQuery("genre:tech").
		WithDefaultField("title").
		WithDefaultOperator(OperatorAnd).
		WithRoute("shard-1").
		WithRefresh(true).
		WithBatchSize(250).
		WithMaxDocs(1000).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	p := deleteParams(dq)
	if p.LuceneQuery != "genre:tech" || p.DefaultField != "title" {
		t.Errorf("lucene=%q df=%q", p.LuceneQuery, p.DefaultField)
	}
	if p.DefaultOperator != "AND" {
		t.Errorf("default operator: got %q", p.DefaultOperator)
	}
	if !p.Refresh || p.Routing != "shard-1" || p.ScrollSize != 250 {
		t.Errorf("refresh=%v routing=%q scroll=%d", p.Refresh, p.Routing, p.ScrollSize)
	}
	if p.MaxDocs == nil || *p.MaxDocs != 1000 {
		t.Errorf("max docs: got %v", p.MaxDocs)
	}
}

func TestTemplateBody(t *testing.T) {
	t.Run("stored id wins", func(t *testing.T) {
		q, err := NewSearchTemplateQuery("popular-books", `{"query":{}}`, map[string]any{"genre": "tech"})
		if err != nil {
			t.Fatalf("NewSearchTemplateQuery: %v", err)
		}
		body := templateBody(q)
		if body["id"] != "popular-books" {
			t.Errorf("id: got %v", body["id"])
		}
		if _, ok := body["source"]; ok {
			t.Error("stored id must suppress the inline source")
		}
		if body["params"].(map[string]any)["genre"] != "tech" {
			t.Errorf("params: got %v", body["params"])
		}
	})

	t.Run("inline source", func(t *testing.T) {
		q, err := NewSearchTemplateQuery("", `{"query":{}}`, nil)
		if err != nil {
			t.Fatalf("NewSearchTemplateQuery: %v", err)
		}
		body := templateBody(q)
		if body["source"] != `{"query":{}}` {
			t.Errorf("source: got %v", body["source"])
		}
		if _, ok := body["params"]; ok {
			t.Error("empty params must not render")
		}
	})
}
