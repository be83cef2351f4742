package searchq

import (
	"errors"
	"time"
)

// DefaultReactiveBatchSize is the per-request batch size used by
// streaming consumers when none is set on the query.
const DefaultReactiveBatchSize = 500

// BaseQuery is the canonical query state shared by every query type. It
// is mutable until handed to an executor; executors must not mutate it.
type BaseQuery struct {
	pageable           Pageable
	sort               *Sort
	fields             []string
	storedFields       []string
	sourceFilter       *SourceFilter
	minScore           float32
	ids                []string
	idsWithRouting     []IDWithRoute
	route              string
	searchType         SearchType
	indicesOptions     *IndicesOptions
	trackScores        bool
	preference         string
	maxResults         *int
	highlightQuery     *HighlightQuery
	trackTotalHits     *bool
	trackTotalHitsUpTo *int
	scrollTime         time.Duration
	timeout            time.Duration
	explain            bool
	searchAfter        []any
	indicesBoost       []IndexBoost
	rescorerQueries    []RescorerQuery
	requestCache       *bool
	runtimeFields      []RuntimeField
	pointInTime        *PointInTime
	reactiveBatchSize  *int
	expandWildcards    []Wildcard
	docValueFields     []DocValueField
	scriptedFields     []ScriptedField
}

// NewBaseQuery creates a query with the store defaults: page size 10,
// query-then-fetch search type, everything else unset.
func NewBaseQuery() *BaseQuery {
	return &BaseQuery{
		pageable:   PageRequest(0, DefaultPageSize),
		searchType: QueryThenFetch,
	}
}

func (q *BaseQuery) base() *BaseQuery { return q }

// Pageable returns the requested page.
func (q *BaseQuery) Pageable() Pageable { return q.pageable }

// SetPageable sets the requested page and merges the pageable's sort
// into the query's sort. A zero pageable is a contract error.
func (q *BaseQuery) SetPageable(pageable Pageable) error {
	if pageable.IsZero() {
		return errors.New("query: pageable must not be zero")
	}
	q.pageable = pageable
	if !pageable.Sort().IsEmpty() {
		q.sort = q.sort.And(pageable.Sort())
	}
	return nil
}

// Sort returns the accumulated sort, which may be nil.
func (q *BaseQuery) Sort() *Sort { return q.sort }

// AddSort merges more orders into the query's sort. Sort accumulates and
// is never replaced wholesale.
func (q *BaseQuery) AddSort(sort *Sort) {
	if sort.IsEmpty() {
		return
	}
	q.sort = q.sort.And(sort)
}

// Fields returns the requested result field projection.
func (q *BaseQuery) Fields() []string { return q.fields }

// AddFields appends to the result field projection.
func (q *BaseQuery) AddFields(fields ...string) {
	q.fields = append(q.fields, fields...)
}

// StoredFields returns the requested stored fields.
func (q *BaseQuery) StoredFields() []string { return q.storedFields }

// SetStoredFields replaces the stored-field list.
func (q *BaseQuery) SetStoredFields(fields ...string) {
	q.storedFields = fields
}

// SourceFilter returns the source include/exclude patterns, or nil.
func (q *BaseQuery) SourceFilter() *SourceFilter { return q.sourceFilter }

// SetSourceFilter sets the source include/exclude patterns.
func (q *BaseQuery) SetSourceFilter(filter *SourceFilter) {
	q.sourceFilter = filter
}

// MinScore returns the minimum score threshold; 0 means unset.
func (q *BaseQuery) MinScore() float32 { return q.minScore }

// SetMinScore sets the minimum score threshold.
func (q *BaseQuery) SetMinScore(minScore float32) { q.minScore = minScore }

// IDs returns the plain id list.
func (q *BaseQuery) IDs() []string { return q.ids }

// SetIDs replaces the plain id list.
func (q *BaseQuery) SetIDs(ids ...string) { q.ids = ids }

// SetIDsWithRouting replaces the explicit id+routing pairs.
func (q *BaseQuery) SetIDsWithRouting(pairs ...IDWithRoute) {
	q.idsWithRouting = pairs
}

// IDsWithRouting returns the explicit id+routing pairs if set, else one
// pair per plain id carrying the query-level route (which may be empty),
// else nil.
func (q *BaseQuery) IDsWithRouting() []IDWithRoute {
	if len(q.idsWithRouting) > 0 {
		out := make([]IDWithRoute, len(q.idsWithRouting))
		copy(out, q.idsWithRouting)
		return out
	}
	if len(q.ids) > 0 {
		out := make([]IDWithRoute, len(q.ids))
		for i, id := range q.ids {
			out[i] = IDWithRoute{ID: id, Route: q.route}
		}
		return out
	}
	return nil
}

// Route returns the query-level routing value.
func (q *BaseQuery) Route() string { return q.route }

// SetRoute sets the query-level routing value.
func (q *BaseQuery) SetRoute(route string) { q.route = route }

// SearchType returns the search execution path.
func (q *BaseQuery) SearchType() SearchType { return q.searchType }

// SetSearchType sets the search execution path.
func (q *BaseQuery) SetSearchType(searchType SearchType) {
	q.searchType = searchType
}

// IndicesOptions returns the missing/closed index treatment, or nil.
func (q *BaseQuery) IndicesOptions() *IndicesOptions { return q.indicesOptions }

// SetIndicesOptions sets the missing/closed index treatment.
func (q *BaseQuery) SetIndicesOptions(opts *IndicesOptions) {
	q.indicesOptions = opts
}

// TrackScores reports whether scores are computed even when sorting on
// fields.
func (q *BaseQuery) TrackScores() bool { return q.trackScores }

// SetTrackScores toggles score tracking.
func (q *BaseQuery) SetTrackScores(track bool) { q.trackScores = track }

// Preference returns the shard routing preference string.
func (q *BaseQuery) Preference() string { return q.preference }

// SetPreference sets the shard routing preference string.
func (q *BaseQuery) SetPreference(preference string) {
	q.preference = preference
}

// IsLimiting reports whether a max-results cap is set.
func (q *BaseQuery) IsLimiting() bool { return q.maxResults != nil }

// MaxResults returns the max-results cap; only meaningful when
// IsLimiting.
func (q *BaseQuery) MaxResults() int {
	if q.maxResults == nil {
		return 0
	}
	return *q.maxResults
}

// SetMaxResults caps the total number of results.
func (q *BaseQuery) SetMaxResults(max int) { q.maxResults = &max }

// HighlightQuery returns the highlight configuration, or nil.
func (q *BaseQuery) HighlightQuery() *HighlightQuery { return q.highlightQuery }

// SetHighlightQuery sets the highlight configuration.
func (q *BaseQuery) SetHighlightQuery(hq *HighlightQuery) {
	q.highlightQuery = hq
}

// TrackTotalHits returns the total-hit tracking tri-state: nil leaves the
// store default in effect.
func (q *BaseQuery) TrackTotalHits() *bool { return q.trackTotalHits }

// SetTrackTotalHits sets total-hit tracking on or off.
func (q *BaseQuery) SetTrackTotalHits(track bool) { q.trackTotalHits = &track }

// TrackTotalHitsUpTo returns the accurate-count threshold, or nil.
func (q *BaseQuery) TrackTotalHitsUpTo() *int { return q.trackTotalHitsUpTo }

// SetTrackTotalHitsUpTo sets the accurate-count threshold.
func (q *BaseQuery) SetTrackTotalHitsUpTo(upTo int) {
	q.trackTotalHitsUpTo = &upTo
}

// ScrollTime returns the scroll cursor keep-alive; 0 means the query is
// not scrolled.
func (q *BaseQuery) ScrollTime() time.Duration { return q.scrollTime }

// SetScrollTime requests scrolled execution with the given cursor
// keep-alive.
func (q *BaseQuery) SetScrollTime(d time.Duration) { q.scrollTime = d }

// Timeout returns the request timeout for the executor to apply; the
// query layer itself enforces no timeouts.
func (q *BaseQuery) Timeout() time.Duration { return q.timeout }

// SetTimeout sets the request timeout.
func (q *BaseQuery) SetTimeout(d time.Duration) { q.timeout = d }

// Explain reports whether score explanations are requested.
func (q *BaseQuery) Explain() bool { return q.explain }

// SetExplain toggles score explanations.
func (q *BaseQuery) SetExplain(explain bool) { q.explain = explain }

// SearchAfter returns the search-after sort values, or nil.
func (q *BaseQuery) SearchAfter() []any { return q.searchAfter }

// SetSearchAfter sets the search-after sort values for deep pagination.
func (q *BaseQuery) SetSearchAfter(values []any) { q.searchAfter = values }

// IndicesBoost returns the per-index boosts.
func (q *BaseQuery) IndicesBoost() []IndexBoost { return q.indicesBoost }

// SetIndicesBoost replaces the per-index boosts.
func (q *BaseQuery) SetIndicesBoost(boosts ...IndexBoost) {
	q.indicesBoost = boosts
}

// RescorerQueries returns the rescorers in application order.
func (q *BaseQuery) RescorerQueries() []RescorerQuery {
	return q.rescorerQueries
}

// AddRescorerQuery appends a rescorer. Rescorers apply in insertion
// order.
func (q *BaseQuery) AddRescorerQuery(rescorer RescorerQuery) {
	q.rescorerQueries = append(q.rescorerQueries, rescorer)
}

// RequestCache returns the request-cache tri-state: nil leaves the store
// default in effect.
func (q *BaseQuery) RequestCache() *bool { return q.requestCache }

// SetRequestCache sets request caching on or off.
func (q *BaseQuery) SetRequestCache(cache bool) { q.requestCache = &cache }

// RuntimeFields returns the query-time computed fields.
func (q *BaseQuery) RuntimeFields() []RuntimeField { return q.runtimeFields }

// AddRuntimeField appends a query-time computed field.
func (q *BaseQuery) AddRuntimeField(field RuntimeField) {
	q.runtimeFields = append(q.runtimeFields, field)
}

// PointInTime returns the pinned index view, or nil.
func (q *BaseQuery) PointInTime() *PointInTime { return q.pointInTime }

// SetPointInTime pins the query to a point-in-time token.
func (q *BaseQuery) SetPointInTime(pit *PointInTime) { q.pointInTime = pit }

// ReactiveBatchSize returns the explicitly set batch size, or
// DefaultReactiveBatchSize when unset.
func (q *BaseQuery) ReactiveBatchSize() int {
	if q.reactiveBatchSize == nil {
		return DefaultReactiveBatchSize
	}
	return *q.reactiveBatchSize
}

// SetReactiveBatchSize sets the batch size for streaming consumers.
func (q *BaseQuery) SetReactiveBatchSize(size int) {
	q.reactiveBatchSize = &size
}

// ExpandWildcards returns the wildcard expansion states.
func (q *BaseQuery) ExpandWildcards() []Wildcard { return q.expandWildcards }

// SetExpandWildcards sets the wildcard expansion states.
func (q *BaseQuery) SetExpandWildcards(wildcards ...Wildcard) {
	q.expandWildcards = wildcards
}

// DocValueFields returns the requested doc-value fields.
func (q *BaseQuery) DocValueFields() []DocValueField { return q.docValueFields }

// SetDocValueFields replaces the doc-value field list.
func (q *BaseQuery) SetDocValueFields(fields ...DocValueField) {
	q.docValueFields = fields
}

// ScriptedFields returns the scripted result fields.
func (q *BaseQuery) ScriptedFields() []ScriptedField { return q.scriptedFields }

// AddScriptedField appends a scripted result field.
func (q *BaseQuery) AddScriptedField(field ScriptedField) {
	q.scriptedFields = append(q.scriptedFields, field)
}
