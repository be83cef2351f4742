package searchq

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/searchq/internal/metrics"
)

// Index is a typed handle on one Elasticsearch index, backed by a
// searchq Client. Property names in criteria and sorts are translated
// through T's struct tags before rendering.
type Index[T any] struct {
	name    string
	client  *Client
	mapping *fieldMapping
}

// NewIndex creates a typed index handle for the given index name.
// The property mapping is parsed from T's tags once and cached.
func NewIndex[T any](client *Client, name string) (*Index[T], error) {
	if client == nil {
		return nil, fmt.Errorf("new index %q: client must not be nil", name)
	}
	if name == "" {
		return nil, fmt.Errorf("new index: name must not be empty")
	}
	return &Index[T]{name: name, client: client, mapping: parseMapping[T]()}, nil
}

// Name returns the index name.
func (idx *Index[T]) Name() string { return idx.name }

// Search returns a fluent search builder for this index.
func (idx *Index[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx, qb: NewBaseQueryBuilder()}
}

// Find executes a query and returns one page of typed hits.
func (idx *Index[T]) Find(ctx context.Context, q Query) (SearchHits[T], error) {
	start := time.Now()
	hits, err := idx.find(ctx, q)
	idx.client.obs.observe("search", start, err)
	return hits, err
}

func (idx *Index[T]) find(ctx context.Context, q Query) (SearchHits[T], error) {
	body, err := idx.render(q)
	if err != nil {
		return SearchHits[T]{}, err
	}
	page, err := idx.client.store.Search(ctx, idx.name, body, searchParams(q.base()))
	if err != nil {
		return SearchHits[T]{}, fmt.Errorf("search %q: %w", idx.name, err)
	}
	return toSearchHits[T](page)
}

// Stream executes a query as a scrolled search and returns an iterator
// over all matching hits. The caller must Close the iterator when done
// with it early; a fully drained iterator releases its cursor itself.
func (idx *Index[T]) Stream(ctx context.Context, q Query) (*SearchHitsIterator[T], error) {
	body, err := idx.render(q)
	if err != nil {
		return nil, err
	}

	b := q.base()
	// Scroll batches are sized by the batch hint, never by the page.
	delete(body, "from")
	body["size"] = b.ReactiveBatchSize()

	keepAlive := b.ScrollTime()
	if keepAlive <= 0 {
		keepAlive = idx.client.scrollKeepAlive
	}

	start := time.Now()
	page, err := idx.client.store.OpenScroll(ctx, idx.name, body, keepAlive, searchParams(b))
	idx.client.obs.observe("scroll_open", start, err)
	if err != nil {
		return nil, fmt.Errorf("open scroll %q: %w", idx.name, err)
	}
	first, err := toScrollPage[T](page)
	if err != nil {
		return nil, err
	}
	idx.client.obs.scrollPage(idx.name)
	metrics.ScrollBatchesTotal.WithLabelValues(idx.name).Inc()

	var maxCount int64
	if b.IsLimiting() {
		maxCount = int64(b.MaxResults())
	}

	continueFn := func(scrollID string) (ScrollPage[T], error) {
		next, err := idx.client.store.ContinueScroll(ctx, scrollID, keepAlive)
		if err != nil {
			return ScrollPage[T]{}, fmt.Errorf("continue scroll %q: %w", idx.name, err)
		}
		idx.client.obs.scrollPage(idx.name)
		metrics.ScrollBatchesTotal.WithLabelValues(idx.name).Inc()
		return toScrollPage[T](next)
	}
	clearFn := func(scrollIDs []string) error {
		start := time.Now()
		err := idx.client.store.ClearScroll(ctx, scrollIDs)
		idx.client.obs.observe("scroll_clear", start, err)
		if err == nil {
			metrics.ScrollsClearedTotal.WithLabelValues(idx.name).Add(float64(len(scrollIDs)))
		}
		return err
	}
	return StreamPages(maxCount, first, continueFn, clearFn)
}

// Count returns the number of documents matching the query. A nil query
// counts the whole index.
func (idx *Index[T]) Count(ctx context.Context, q Query) (int64, error) {
	start := time.Now()
	n, err := idx.count(ctx, q)
	idx.client.obs.observe("count", start, err)
	return n, err
}

func (idx *Index[T]) count(ctx context.Context, q Query) (int64, error) {
	if q == nil {
		q = NewBaseQuery()
	}
	idx.mapping.rewriteQuery(q)
	src, err := querySource(q)
	if err != nil {
		return 0, err
	}
	n, err := idx.client.store.Count(ctx, idx.name, map[string]any{"query": src})
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", idx.name, err)
	}
	return n, nil
}

// DeleteBy removes all documents matching the delete query and returns
// the deleted count.
func (idx *Index[T]) DeleteBy(ctx context.Context, dq *DeleteQuery) (int64, error) {
	start := time.Now()
	n, err := idx.deleteBy(ctx, dq)
	idx.client.obs.observe("delete_by_query", start, err)
	return n, err
}

func (idx *Index[T]) deleteBy(ctx context.Context, dq *DeleteQuery) (int64, error) {
	if dq == nil {
		return 0, fmt.Errorf("delete by query %q: query must not be nil", idx.name)
	}
	var body map[string]any
	if q := dq.Query(); q != nil {
		idx.mapping.rewriteQuery(q)
		src, err := querySource(q)
		if err != nil {
			return 0, err
		}
		body = map[string]any{"query": src}
	}
	n, err := idx.client.store.DeleteByQuery(ctx, idx.name, body, deleteParams(dq))
	if err != nil {
		return 0, fmt.Errorf("delete by query %q: %w", idx.name, err)
	}
	return n, nil
}

// SearchTemplate invokes a stored or inline search template and returns
// one page of typed hits.
func (idx *Index[T]) SearchTemplate(ctx context.Context, tq *SearchTemplateQuery) (SearchHits[T], error) {
	start := time.Now()
	hits, err := idx.searchTemplate(ctx, tq)
	idx.client.obs.observe("search_template", start, err)
	return hits, err
}

func (idx *Index[T]) searchTemplate(ctx context.Context, tq *SearchTemplateQuery) (SearchHits[T], error) {
	if tq == nil {
		return SearchHits[T]{}, fmt.Errorf("search template %q: query must not be nil", idx.name)
	}
	page, err := idx.client.store.SearchTemplate(ctx, idx.name, templateBody(tq), tq.Route())
	if err != nil {
		return SearchHits[T]{}, fmt.Errorf("search template %q: %w", idx.name, err)
	}
	return toSearchHits[T](page)
}

func (idx *Index[T]) render(q Query) (map[string]any, error) {
	if q == nil {
		return nil, fmt.Errorf("search %q: query must not be nil", idx.name)
	}
	idx.mapping.rewriteQuery(q)
	body, err := RenderQuery(q)
	if err != nil {
		return nil, fmt.Errorf("render query for %q: %w", idx.name, err)
	}
	return body, nil
}
