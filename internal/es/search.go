package es

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Hit is one matched document as returned by the store.
type Hit struct {
	ID         string
	Score      float64
	Routing    string
	Source     json.RawMessage
	Sort       []any
	Highlights map[string][]string
}

// Page is one page or scroll batch of results.
type Page struct {
	Hits         []Hit
	ScrollID     string
	Total        int64
	Relation     string
	MaxScore     float64
	Aggregations map[string]json.RawMessage
}

// SearchParams carries the request parameters that travel outside the
// body.
type SearchParams struct {
	Routing           string
	Preference        string
	SearchType        string
	RequestCache      *bool
	Timeout           time.Duration
	IgnoreUnavailable *bool
	AllowNoIndices    *bool
	ExpandWildcards   string
}

// Search executes one paged search request.
func (c *Client) Search(ctx context.Context, index string, body map[string]any, p SearchParams) (*Page, error) {
	reader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	req := esapi.SearchRequest{
		Index:             []string{index},
		Body:              reader,
		Preference:        p.Preference,
		SearchType:        p.SearchType,
		RequestCache:      p.RequestCache,
		Timeout:           p.Timeout,
		IgnoreUnavailable: p.IgnoreUnavailable,
		AllowNoIndices:    p.AllowNoIndices,
		ExpandWildcards:   p.ExpandWildcards,
	}
	if p.Routing != "" {
		req.Routing = []string{p.Routing}
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("es: search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search "+index, res)
	}
	return decodePage(res)
}

// OpenScroll starts a scrolled search and returns the first batch with
// its cursor token.
func (c *Client) OpenScroll(ctx context.Context, index string, body map[string]any, keepAlive time.Duration, p SearchParams) (*Page, error) {
	reader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	req := esapi.SearchRequest{
		Index:             []string{index},
		Body:              reader,
		Scroll:            keepAlive,
		Preference:        p.Preference,
		SearchType:        p.SearchType,
		IgnoreUnavailable: p.IgnoreUnavailable,
		AllowNoIndices:    p.AllowNoIndices,
		ExpandWildcards:   p.ExpandWildcards,
	}
	if p.Routing != "" {
		req.Routing = []string{p.Routing}
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("es: open scroll %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("open scroll "+index, res)
	}
	return decodePage(res)
}

// ContinueScroll fetches the next batch for a cursor token.
func (c *Client) ContinueScroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*Page, error) {
	req := esapi.ScrollRequest{
		ScrollID: scrollID,
		Scroll:   keepAlive,
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("es: continue scroll: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("continue scroll", res)
	}
	return decodePage(res)
}

// ClearScroll releases the given cursor tokens.
func (c *Client) ClearScroll(ctx context.Context, scrollIDs []string) error {
	if len(scrollIDs) == 0 {
		return nil
	}
	req := esapi.ClearScrollRequest{ScrollID: scrollIDs}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("es: clear scroll: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("clear scroll", res)
	}
	return nil
}

// Count returns the number of documents matching the body's query.
func (c *Client) Count(ctx context.Context, index string, body map[string]any) (int64, error) {
	reader, err := encodeBody(body)
	if err != nil {
		return 0, err
	}
	req := esapi.CountRequest{
		Index: []string{index},
		Body:  reader,
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return 0, fmt.Errorf("es: count %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, responseError("count "+index, res)
	}
	var payload struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("es: decode count: %w", err)
	}
	return payload.Count, nil
}

// DeleteParams carries delete-by-query parameters that travel outside
// the body.
type DeleteParams struct {
	LuceneQuery     string
	DefaultField    string
	Analyzer        string
	AnalyzeWildcard *bool
	DefaultOperator string
	Lenient         *bool
	Routing         string
	Refresh         bool
	ScrollSize      int
	MaxDocs         *int
	Timeout         time.Duration
}

// DeleteByQuery removes matching documents and returns the deleted
// count.
func (c *Client) DeleteByQuery(ctx context.Context, index string, body map[string]any, p DeleteParams) (int64, error) {
	reader, err := encodeBody(body)
	if err != nil {
		return 0, err
	}
	req := esapi.DeleteByQueryRequest{
		Index:           []string{index},
		Body:            reader,
		Query:           p.LuceneQuery,
		Df:              p.DefaultField,
		Analyzer:        p.Analyzer,
		AnalyzeWildcard: p.AnalyzeWildcard,
		DefaultOperator: p.DefaultOperator,
		Lenient:         p.Lenient,
		Refresh:         &p.Refresh,
		Timeout:         p.Timeout,
		MaxDocs:         p.MaxDocs,
	}
	if p.Routing != "" {
		req.Routing = []string{p.Routing}
	}
	if p.ScrollSize > 0 {
		size := p.ScrollSize
		req.ScrollSize = &size
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return 0, fmt.Errorf("es: delete by query %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, responseError("delete by query "+index, res)
	}
	var payload struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("es: decode delete by query: %w", err)
	}
	return payload.Deleted, nil
}

// SearchTemplate invokes a stored or inline search template.
func (c *Client) SearchTemplate(ctx context.Context, index string, body map[string]any, routing string) (*Page, error) {
	reader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	req := esapi.SearchTemplateRequest{
		Index: []string{index},
		Body:  reader,
	}
	if routing != "" {
		req.Routing = []string{routing}
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("es: search template %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search template "+index, res)
	}
	return decodePage(res)
}

// searchResponse mirrors the store's search response envelope.
type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Total struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID        string              `json:"_id"`
			Score     *float64            `json:"_score"`
			Routing   string              `json:"_routing"`
			Source    json.RawMessage     `json:"_source"`
			Sort      []any               `json:"sort"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

func decodePage(res *esapi.Response) (*Page, error) {
	var payload searchResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("es: decode search response: %w", err)
	}
	page := &Page{
		ScrollID:     payload.ScrollID,
		Total:        payload.Hits.Total.Value,
		Relation:     payload.Hits.Total.Relation,
		Aggregations: payload.Aggregations,
		Hits:         make([]Hit, 0, len(payload.Hits.Hits)),
	}
	if payload.Hits.MaxScore != nil {
		page.MaxScore = *payload.Hits.MaxScore
	}
	for _, h := range payload.Hits.Hits {
		hit := Hit{
			ID:         h.ID,
			Routing:    h.Routing,
			Source:     h.Source,
			Sort:       h.Sort,
			Highlights: h.Highlight,
		}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		page.Hits = append(page.Hits, hit)
	}
	return page, nil
}
