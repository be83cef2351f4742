package searchq

import (
	"context"
	"fmt"
)

// SearchBuilder is a fluent builder for typed criteria searches against
// one index. Obtain one from Index.Search.
type SearchBuilder[T any] struct {
	idx      *Index[T]
	criteria *Criteria
	qb       *BaseQueryBuilder
	source   map[string]any
}

// Where sets the criteria tree for the search. Later calls are joined
// conjunctively.
func (b *SearchBuilder[T]) Where(c *Criteria) *SearchBuilder[T] {
	if b.criteria == nil {
		b.criteria = c
	} else if c != nil {
		b.criteria = b.criteria.AndCriteria(c)
	}
	return b
}

// Native replaces criteria rendering with a raw query source.
func (b *SearchBuilder[T]) Native(source map[string]any) *SearchBuilder[T] {
	b.source = source
	return b
}

// Page requests one result page.
func (b *SearchBuilder[T]) Page(page, size int) *SearchBuilder[T] {
	b.qb.WithPageable(PageRequest(page, size))
	return b
}

// Sort merges more orders into the search's sort.
func (b *SearchBuilder[T]) Sort(sort *Sort) *SearchBuilder[T] {
	b.qb.WithSort(sort)
	return b
}

// Select restricts the returned source to the given fields.
func (b *SearchBuilder[T]) Select(fields ...string) *SearchBuilder[T] {
	b.qb.WithSourceFilter(&SourceFilter{Includes: fields})
	return b
}

// MinScore drops hits scoring below the threshold.
func (b *SearchBuilder[T]) MinScore(score float32) *SearchBuilder[T] {
	b.qb.WithMinScore(score)
	return b
}

// Limit caps the total number of hits returned.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.qb.WithMaxResults(n)
	return b
}

// Route sets the routing value for the request.
func (b *SearchBuilder[T]) Route(route string) *SearchBuilder[T] {
	b.qb.WithRoute(route)
	return b
}

// Highlight requests highlighted fragments for matching fields.
func (b *SearchBuilder[T]) Highlight(hq *HighlightQuery) *SearchBuilder[T] {
	b.qb.WithHighlightQuery(hq)
	return b
}

// TrackTotalHits requests an exact total hit count.
func (b *SearchBuilder[T]) TrackTotalHits(track bool) *SearchBuilder[T] {
	b.qb.WithTrackTotalHits(track)
	return b
}

// BatchSize sets the scroll batch size used by Stream.
func (b *SearchBuilder[T]) BatchSize(size int) *SearchBuilder[T] {
	b.qb.WithReactiveBatchSize(size)
	return b
}

func (b *SearchBuilder[T]) build() (Query, error) {
	if b.source != nil {
		return b.qb.BuildNativeQuery(b.source)
	}
	if b.criteria == nil {
		return nil, fmt.Errorf("search builder: criteria required (use Where or Native)")
	}
	return b.qb.BuildCriteriaQuery(b.criteria)
}

// Do executes the search and returns one page of typed hits.
func (b *SearchBuilder[T]) Do(ctx context.Context) (SearchHits[T], error) {
	q, err := b.build()
	if err != nil {
		return SearchHits[T]{}, err
	}
	return b.idx.Find(ctx, q)
}

// Stream executes the search as a scrolled iteration over all hits.
func (b *SearchBuilder[T]) Stream(ctx context.Context) (*SearchHitsIterator[T], error) {
	q, err := b.build()
	if err != nil {
		return nil, err
	}
	return b.idx.Stream(ctx, q)
}

// DoCount returns the number of matching documents.
func (b *SearchBuilder[T]) DoCount(ctx context.Context) (int64, error) {
	q, err := b.build()
	if err != nil {
		return 0, err
	}
	return b.idx.Count(ctx, q)
}
