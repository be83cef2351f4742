package searchq

import (
	"errors"
	"fmt"
	"time"
)

// BaseQueryBuilder populates a BaseQuery in one pass. Every option
// defaults to the same value BaseQuery itself defaults to, so omitting an
// option is indistinguishable from setting its default. Contract
// violations are recorded at the offending call and reported by Build.
//
// The zero value is ready to use.
type BaseQueryBuilder struct {
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

	err error
}

// NewBaseQueryBuilder creates an empty builder.
func NewBaseQueryBuilder() *BaseQueryBuilder {
	return &BaseQueryBuilder{}
}

func (b *BaseQueryBuilder) fail(err error) *BaseQueryBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// WithPageable sets the requested page. A zero pageable is a contract
// error.
func (b *BaseQueryBuilder) WithPageable(pageable Pageable) *BaseQueryBuilder {
	if pageable.IsZero() {
		return b.fail(errors.New("query builder: pageable must not be zero"))
	}
	b.pageable = pageable
	return b
}

// WithSort merges more orders into the built query's sort.
func (b *BaseQueryBuilder) WithSort(sort *Sort) *BaseQueryBuilder {
	if sort.IsEmpty() {
		return b.fail(errors.New("query builder: sort must not be empty"))
	}
	b.sort = b.sort.And(sort)
	return b
}

// WithFields appends to the result field projection.
func (b *BaseQueryBuilder) WithFields(fields ...string) *BaseQueryBuilder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithStoredFields sets the stored-field list.
func (b *BaseQueryBuilder) WithStoredFields(fields ...string) *BaseQueryBuilder {
	b.storedFields = fields
	return b
}

// WithSourceFilter sets the source include/exclude patterns.
func (b *BaseQueryBuilder) WithSourceFilter(filter *SourceFilter) *BaseQueryBuilder {
	b.sourceFilter = filter
	return b
}

// WithMinScore sets the minimum score threshold.
func (b *BaseQueryBuilder) WithMinScore(minScore float32) *BaseQueryBuilder {
	if minScore < 0 {
		return b.fail(fmt.Errorf("query builder: min score must not be negative, got %v", minScore))
	}
	b.minScore = minScore
	return b
}

// WithIDs sets the plain id list.
func (b *BaseQueryBuilder) WithIDs(ids ...string) *BaseQueryBuilder {
	b.ids = ids
	return b
}

// WithIDsWithRouting sets explicit id+routing pairs.
func (b *BaseQueryBuilder) WithIDsWithRouting(pairs ...IDWithRoute) *BaseQueryBuilder {
	b.idsWithRouting = pairs
	return b
}

// WithRoute sets the query-level routing value.
func (b *BaseQueryBuilder) WithRoute(route string) *BaseQueryBuilder {
	b.route = route
	return b
}

// WithSearchType sets the search execution path.
func (b *BaseQueryBuilder) WithSearchType(searchType SearchType) *BaseQueryBuilder {
	b.searchType = searchType
	return b
}

// WithIndicesOptions sets the missing/closed index treatment.
func (b *BaseQueryBuilder) WithIndicesOptions(opts *IndicesOptions) *BaseQueryBuilder {
	b.indicesOptions = opts
	return b
}

// WithTrackScores toggles score tracking.
func (b *BaseQueryBuilder) WithTrackScores(track bool) *BaseQueryBuilder {
	b.trackScores = track
	return b
}

// WithPreference sets the shard routing preference string.
func (b *BaseQueryBuilder) WithPreference(preference string) *BaseQueryBuilder {
	b.preference = preference
	return b
}

// WithMaxResults caps the total number of results.
func (b *BaseQueryBuilder) WithMaxResults(max int) *BaseQueryBuilder {
	b.maxResults = &max
	return b
}

// WithHighlightQuery sets the highlight configuration.
func (b *BaseQueryBuilder) WithHighlightQuery(hq *HighlightQuery) *BaseQueryBuilder {
	b.highlightQuery = hq
	return b
}

// WithTrackTotalHits sets total-hit tracking on or off.
func (b *BaseQueryBuilder) WithTrackTotalHits(track bool) *BaseQueryBuilder {
	b.trackTotalHits = &track
	return b
}

// WithTrackTotalHitsUpTo sets the accurate-count threshold.
func (b *BaseQueryBuilder) WithTrackTotalHitsUpTo(upTo int) *BaseQueryBuilder {
	b.trackTotalHitsUpTo = &upTo
	return b
}

// WithScrollTime requests scrolled execution with the given cursor
// keep-alive.
func (b *BaseQueryBuilder) WithScrollTime(d time.Duration) *BaseQueryBuilder {
	b.scrollTime = d
	return b
}

// WithTimeout sets the request timeout.
func (b *BaseQueryBuilder) WithTimeout(d time.Duration) *BaseQueryBuilder {
	b.timeout = d
	return b
}

// WithExplain toggles score explanations.
func (b *BaseQueryBuilder) WithExplain(explain bool) *BaseQueryBuilder {
	b.explain = explain
	return b
}

// WithSearchAfter sets the search-after sort values.
func (b *BaseQueryBuilder) WithSearchAfter(values []any) *BaseQueryBuilder {
	b.searchAfter = values
	return b
}

// WithIndicesBoost sets per-index boosts.
func (b *BaseQueryBuilder) WithIndicesBoost(boosts ...IndexBoost) *BaseQueryBuilder {
	b.indicesBoost = boosts
	return b
}

// WithRescorerQuery appends a rescorer.
func (b *BaseQueryBuilder) WithRescorerQuery(rescorer RescorerQuery) *BaseQueryBuilder {
	b.rescorerQueries = append(b.rescorerQueries, rescorer)
	return b
}

// WithRequestCache sets request caching on or off.
func (b *BaseQueryBuilder) WithRequestCache(cache bool) *BaseQueryBuilder {
	b.requestCache = &cache
	return b
}

// WithRuntimeFields appends query-time computed fields.
func (b *BaseQueryBuilder) WithRuntimeFields(fields ...RuntimeField) *BaseQueryBuilder {
	b.runtimeFields = append(b.runtimeFields, fields...)
	return b
}

// WithPointInTime pins the query to a point-in-time token.
func (b *BaseQueryBuilder) WithPointInTime(pit *PointInTime) *BaseQueryBuilder {
	b.pointInTime = pit
	return b
}

// WithReactiveBatchSize sets the streaming batch size.
func (b *BaseQueryBuilder) WithReactiveBatchSize(size int) *BaseQueryBuilder {
	if size <= 0 {
		return b.fail(fmt.Errorf("query builder: reactive batch size must be positive, got %d", size))
	}
	b.reactiveBatchSize = &size
	return b
}

// WithExpandWildcards sets the wildcard expansion states.
func (b *BaseQueryBuilder) WithExpandWildcards(wildcards ...Wildcard) *BaseQueryBuilder {
	b.expandWildcards = wildcards
	return b
}

// WithDocValueFields sets the doc-value field list.
func (b *BaseQueryBuilder) WithDocValueFields(fields ...DocValueField) *BaseQueryBuilder {
	b.docValueFields = fields
	return b
}

// WithScriptedFields appends scripted result fields.
func (b *BaseQueryBuilder) WithScriptedFields(fields ...ScriptedField) *BaseQueryBuilder {
	b.scriptedFields = append(b.scriptedFields, fields...)
	return b
}

// Err returns the first error recorded on the builder.
func (b *BaseQueryBuilder) Err() error { return b.err }

// Build snapshots the builder state into a BaseQuery.
func (b *BaseQueryBuilder) Build() (*BaseQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	q := b.snapshot()
	return &q, nil
}

// snapshot copies the builder state into a BaseQuery value, applying the
// shared defaults for unset options.
func (b *BaseQueryBuilder) snapshot() BaseQuery {
	pageable := b.pageable
	if pageable.IsZero() {
		pageable = PageRequest(0, DefaultPageSize)
	}
	return BaseQuery{
		pageable:           pageable,
		sort:               b.sort,
		fields:             b.fields,
		storedFields:       b.storedFields,
		sourceFilter:       b.sourceFilter,
		minScore:           b.minScore,
		ids:                b.ids,
		idsWithRouting:     b.idsWithRouting,
		route:              b.route,
		searchType:         b.searchType,
		indicesOptions:     b.indicesOptions,
		trackScores:        b.trackScores,
		preference:         b.preference,
		maxResults:         b.maxResults,
		highlightQuery:     b.highlightQuery,
		trackTotalHits:     b.trackTotalHits,
		trackTotalHitsUpTo: b.trackTotalHitsUpTo,
		scrollTime:         b.scrollTime,
		timeout:            b.timeout,
		explain:            b.explain,
		searchAfter:        b.searchAfter,
		indicesBoost:       b.indicesBoost,
		rescorerQueries:    b.rescorerQueries,
		requestCache:       b.requestCache,
		runtimeFields:      b.runtimeFields,
		pointInTime:        b.pointInTime,
		reactiveBatchSize:  b.reactiveBatchSize,
		expandWildcards:    b.expandWildcards,
		docValueFields:     b.docValueFields,
		scriptedFields:     b.scriptedFields,
	}
}

// BuildCriteriaQuery snapshots the builder state into a query carrying
// the given criteria chain.
func (b *BaseQueryBuilder) BuildCriteriaQuery(criteria *Criteria) (*CriteriaQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	if criteria == nil {
		return nil, errors.New("query builder: criteria must not be nil")
	}
	if err := criteria.Err(); err != nil {
		return nil, err
	}
	return &CriteriaQuery{BaseQuery: b.snapshot(), criteria: criteria}, nil
}

// BuildNativeQuery snapshots the builder state into a query carrying the
// given native source body.
func (b *BaseQueryBuilder) BuildNativeQuery(source map[string]any) (*NativeQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	if source == nil {
		return nil, errors.New("query builder: native source must not be nil")
	}
	return &NativeQuery{BaseQuery: b.snapshot(), source: source}, nil
}
