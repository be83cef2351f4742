package searchq

import "time"

// Query is a fully configured search request. Implementations embed
// BaseQuery; built queries are read-only by contract and safe to share
// for concurrent reads.
type Query interface {
	base() *BaseQuery
}

// SearchType selects the distributed search execution path.
type SearchType int

const (
	// QueryThenFetch is the store default.
	QueryThenFetch SearchType = iota
	DfsQueryThenFetch
)

// String returns the wire-level search type name.
func (s SearchType) String() string {
	if s == DfsQueryThenFetch {
		return "dfs_query_then_fetch"
	}
	return "query_then_fetch"
}

// Wildcard controls which index states wildcard expressions expand to.
type Wildcard string

const (
	WildcardAll    Wildcard = "all"
	WildcardOpen   Wildcard = "open"
	WildcardClosed Wildcard = "closed"
	WildcardHidden Wildcard = "hidden"
	WildcardNone   Wildcard = "none"
)

// IndicesOptions controls treatment of missing or closed indices.
type IndicesOptions struct {
	IgnoreUnavailable bool
	AllowNoIndices    bool
	ExpandWildcards   []Wildcard
}

// SourceFilter holds include/exclude patterns for returned document
// fields.
type SourceFilter struct {
	Includes []string
	Excludes []string
}

// IsEmpty reports whether the filter selects nothing.
func (f SourceFilter) IsEmpty() bool {
	return len(f.Includes) == 0 && len(f.Excludes) == 0
}

// IDWithRoute pairs a document id with the routing value directing it to
// a shard. Route may be empty when no routing applies.
type IDWithRoute struct {
	ID    string
	Route string
}

// IndexBoost raises or lowers the weight of one index in a multi-index
// search.
type IndexBoost struct {
	Index string
	Boost float64
}

// RescoreScoreMode combines primary and rescore scores.
type RescoreScoreMode string

const (
	RescoreScoreModeTotal    RescoreScoreMode = "total"
	RescoreScoreModeMultiply RescoreScoreMode = "multiply"
	RescoreScoreModeAvg      RescoreScoreMode = "avg"
	RescoreScoreModeMax      RescoreScoreMode = "max"
	RescoreScoreModeMin      RescoreScoreMode = "min"
)

// RescorerQuery reorders a window of top results with a secondary query.
type RescorerQuery struct {
	Query              Query
	WindowSize         int
	QueryWeight        float64
	RescoreQueryWeight float64
	ScoreMode          RescoreScoreMode
}

// RuntimeField defines a field computed at query time.
type RuntimeField struct {
	Name   string
	Type   string
	Script string
}

// DocValueField requests a field from doc values with an optional format.
type DocValueField struct {
	Field  string
	Format string
}

// ScriptedField computes a result field from a script.
type ScriptedField struct {
	Name   string
	Script string
}

// PointInTime pins a consistent index view across paged requests.
type PointInTime struct {
	ID        string
	KeepAlive time.Duration
}

// HighlightField configures highlighting for one field.
type HighlightField struct {
	Name              string
	FragmentSize      int
	NumberOfFragments int
}

// Highlight configures hit highlighting for a query.
type Highlight struct {
	Fields   []HighlightField
	PreTags  []string
	PostTags []string
}

// HighlightQuery pairs highlight parameters with an optional query to
// highlight against instead of the search query itself.
type HighlightQuery struct {
	Highlight Highlight
	Query     Query
}
