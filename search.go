package searchq

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/searchq/internal/es"
)

// searchParams extracts the request parameters that travel outside the
// body.
func searchParams(b *BaseQuery) es.SearchParams {
	p := es.SearchParams{
		Routing:      b.Route(),
		Preference:   b.Preference(),
		SearchType:   b.SearchType().String(),
		RequestCache: b.RequestCache(),
		Timeout:      b.Timeout(),
	}
	if opts := b.IndicesOptions(); opts != nil {
		ignore := opts.IgnoreUnavailable
		allow := opts.AllowNoIndices
		p.IgnoreUnavailable = &ignore
		p.AllowNoIndices = &allow
		p.ExpandWildcards = joinWildcards(opts.ExpandWildcards)
	}
	if p.ExpandWildcards == "" {
		p.ExpandWildcards = joinWildcards(b.ExpandWildcards())
	}
	return p
}

func joinWildcards(wildcards []Wildcard) string {
	out := ""
	for i, w := range wildcards {
		if i > 0 {
			out += ","
		}
		out += string(w)
	}
	return out
}

func toSearchHit[T any](h es.Hit) (SearchHit[T], error) {
	hit := SearchHit[T]{
		ID:         h.ID,
		Score:      h.Score,
		Routing:    h.Routing,
		Sort:       h.Sort,
		Highlights: h.Highlights,
	}
	if len(h.Source) > 0 {
		if err := json.Unmarshal(h.Source, &hit.Content); err != nil {
			return hit, fmt.Errorf("decode hit %s: %w", h.ID, err)
		}
	}
	return hit, nil
}

func toSearchHits[T any](page *es.Page) (SearchHits[T], error) {
	hits := SearchHits[T]{
		Hits:              make([]SearchHit[T], 0, len(page.Hits)),
		TotalHits:         page.Total,
		TotalHitsRelation: TotalHitsRelation(page.Relation),
		MaxScore:          page.MaxScore,
		Aggregations:      page.Aggregations,
	}
	for _, h := range page.Hits {
		hit, err := toSearchHit[T](h)
		if err != nil {
			return hits, err
		}
		hits.Hits = append(hits.Hits, hit)
	}
	return hits, nil
}

func toScrollPage[T any](page *es.Page) (ScrollPage[T], error) {
	hits, err := toSearchHits[T](page)
	if err != nil {
		return ScrollPage[T]{}, err
	}
	return ScrollPage[T]{
		Hits:              hits.Hits,
		ScrollID:          page.ScrollID,
		TotalHits:         hits.TotalHits,
		TotalHitsRelation: hits.TotalHitsRelation,
		MaxScore:          hits.MaxScore,
		Aggregations:      hits.Aggregations,
	}, nil
}

// deleteParams maps a delete query's parameters onto the store contract.
func deleteParams(q *DeleteQuery) es.DeleteParams {
	p := es.DeleteParams{
		LuceneQuery:     q.LuceneQuery(),
		DefaultField:    q.DefaultField(),
		Analyzer:        q.Analyzer(),
		AnalyzeWildcard: q.AnalyzeWildcard(),
		Lenient:         q.Lenient(),
		Routing:         q.Route(),
		Refresh:         q.Refresh(),
		ScrollSize:      q.BatchSize(),
		MaxDocs:         q.MaxDocs(),
		Timeout:         q.Timeout(),
	}
	if op := q.DefaultOperator(); op != nil {
		p.DefaultOperator = op.String()
	}
	return p
}

// templateBody renders the request body for a template invocation.
func templateBody(q *SearchTemplateQuery) map[string]any {
	body := make(map[string]any)
	if q.ID() != "" {
		body["id"] = q.ID()
	} else {
		body["source"] = q.TemplateSource()
	}
	if len(q.Params()) > 0 {
		body["params"] = q.Params()
	}
	return body
}
