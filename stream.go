package searchq

import (
	"encoding/json"
	"errors"
	"slices"
)

// TotalHitsRelation qualifies a total-hit count as exact or a lower
// bound.
type TotalHitsRelation string

const (
	RelationEqualTo              TotalHitsRelation = "eq"
	RelationGreaterThanOrEqualTo TotalHitsRelation = "gte"
)

// SearchHit is one matched document.
type SearchHit[T any] struct {
	ID         string
	Score      float64
	Routing    string
	Sort       []any
	Highlights map[string][]string
	Content    T
}

// SearchHits is one page of search results.
type SearchHits[T any] struct {
	Hits              []SearchHit[T]
	TotalHits         int64
	TotalHitsRelation TotalHitsRelation
	MaxScore          float64
	Aggregations      map[string]json.RawMessage
}

// ScrollPage is one batch of a scrolled result set together with the
// cursor token that continues it.
type ScrollPage[T any] struct {
	Hits              []SearchHit[T]
	ScrollID          string
	TotalHits         int64
	TotalHitsRelation TotalHitsRelation
	MaxScore          float64
	Aggregations      map[string]json.RawMessage
}

// ContinueScrollFunc fetches the next batch for the given cursor token.
// It is called repeatedly until it returns an empty page.
type ContinueScrollFunc[T any] func(scrollID string) (ScrollPage[T], error)

// ClearScrollFunc releases server-side cursors. It receives every cursor
// token the iterator observed and is invoked exactly once per iterator
// lifecycle.
type ClearScrollFunc func(scrollIDs []string) error

// ErrNoMoreHits is returned by Next once the iterator is exhausted or
// closed.
var ErrNoMoreHits = errors.New("searchq: no more hits")

// SearchHitsIterator lazily walks a scrolled result set. Batches are
// fetched on demand through the continuation function; the cursor chain
// is released exactly once, on exhaustion or Close, whichever comes
// first.
//
// The iterator is stateful and sequential: a single logical consumer at
// a time, no internal locking. Aggregations, max score and the total-hit
// count are captured from the initial page only and not updated by later
// pages.
type SearchHitsIterator[T any] struct {
	maxCount   int64
	continueFn ContinueScrollFunc[T]
	clearFn    ClearScrollFunc

	batch           []SearchHit[T]
	pos             int
	served          int64
	scrollIDs       []string
	currentScrollID string
	continues       bool
	closed          bool
	cleanupDone     bool

	totalHits         int64
	totalHitsRelation TotalHitsRelation
	maxScore          float64
	aggregations      map[string]json.RawMessage
}

// StreamPages creates an iterator over a scrolled result set, seeded
// with the first page. maxCount caps the number of hits served; zero or
// negative means unbounded. The continuation function and the clear
// consumer are required.
func StreamPages[T any](
	maxCount int64,
	first ScrollPage[T],
	continueFn ContinueScrollFunc[T],
	clearFn ClearScrollFunc,
) (*SearchHitsIterator[T], error) {
	if continueFn == nil {
		return nil, errors.New("searchq: continue scroll function must not be nil")
	}
	if clearFn == nil {
		return nil, errors.New("searchq: clear scroll consumer must not be nil")
	}
	it := &SearchHitsIterator[T]{
		maxCount:          maxCount,
		continueFn:        continueFn,
		clearFn:           clearFn,
		batch:             first.Hits,
		continues:         len(first.Hits) > 0,
		totalHits:         first.TotalHits,
		totalHitsRelation: first.TotalHitsRelation,
		maxScore:          first.MaxScore,
		aggregations:      first.Aggregations,
	}
	it.recordScrollID(first.ScrollID)
	return it, nil
}

func (it *SearchHitsIterator[T]) recordScrollID(id string) {
	if id == "" {
		return
	}
	it.currentScrollID = id
	if !slices.Contains(it.scrollIDs, id) {
		it.scrollIDs = append(it.scrollIDs, id)
	}
}

// cleanup releases the observed cursor chain, at most once. The done
// flag is set before invoking the consumer so a failed release is not
// retried.
func (it *SearchHitsIterator[T]) cleanup() error {
	if it.cleanupDone {
		return nil
	}
	it.cleanupDone = true
	ids := make([]string, len(it.scrollIDs))
	copy(ids, it.scrollIDs)
	return it.clearFn(ids)
}

// HasNext reports whether another hit is available, fetching the next
// batch when the current one is spent. On exhaustion the cursor chain is
// released; a continuation error is propagated unmodified and stops
// further fetching, leaving the iterator closeable.
func (it *SearchHitsIterator[T]) HasNext() (bool, error) {
	if it.closed {
		return false, nil
	}
	if it.maxCount > 0 && it.served >= it.maxCount {
		it.closed = true
		return false, it.cleanup()
	}
	if it.pos < len(it.batch) {
		return true, nil
	}
	for it.continues {
		page, err := it.continueFn(it.currentScrollID)
		if err != nil {
			it.continues = false
			return false, err
		}
		it.recordScrollID(page.ScrollID)
		it.batch = page.Hits
		it.pos = 0
		it.continues = len(page.Hits) > 0
		if it.pos < len(it.batch) {
			return true, nil
		}
	}
	it.closed = true
	return false, it.cleanup()
}

// Next returns the next hit. It drives HasNext, so batch fetching and
// exhaustion cleanup happen as side effects. Past exhaustion it returns
// ErrNoMoreHits.
func (it *SearchHitsIterator[T]) Next() (SearchHit[T], error) {
	var zero SearchHit[T]
	ok, err := it.HasNext()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrNoMoreHits
	}
	hit := it.batch[it.pos]
	it.pos++
	it.served++
	return hit, nil
}

// Close ends iteration early and releases the cursor chain. Close is
// idempotent: the cursors are released at most once per iterator,
// whether by Close or by natural exhaustion.
func (it *SearchHitsIterator[T]) Close() error {
	it.closed = true
	return it.cleanup()
}

// TotalHits returns the total-hit count of the initial page.
func (it *SearchHitsIterator[T]) TotalHits() int64 { return it.totalHits }

// TotalHitsRelation returns the relation qualifying TotalHits.
func (it *SearchHitsIterator[T]) TotalHitsRelation() TotalHitsRelation {
	return it.totalHitsRelation
}

// MaxScore returns the max score of the initial page.
func (it *SearchHitsIterator[T]) MaxScore() float64 { return it.maxScore }

// Aggregations returns the aggregation results of the initial page.
func (it *SearchHitsIterator[T]) Aggregations() map[string]json.RawMessage {
	return it.aggregations
}
