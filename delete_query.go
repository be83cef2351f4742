package searchq

import (
	"errors"
	"fmt"
	"time"
)

// DeleteQuery removes every document matching either a structured query
// or a Lucene query string.
//
// The Lucene-only parameters (default field, analyzer, analyze-wildcard,
// default operator, lenient) shape how a Lucene query string is parsed
// and are therefore only valid together with one; Build rejects them
// otherwise.
type DeleteQuery struct {
	query       Query
	luceneQuery string

	defaultField    string
	analyzer        string
	analyzeWildcard *bool
	defaultOperator *Operator
	lenient         *bool

	route          string
	refresh        bool
	batchSize      int
	maxDocs        *int
	timeout        time.Duration
	indicesOptions *IndicesOptions
}

// Query returns the structured query, or nil.
func (q *DeleteQuery) Query() Query { return q.query }

// LuceneQuery returns the Lucene query string, or "".
func (q *DeleteQuery) LuceneQuery() string { return q.luceneQuery }

// DefaultField returns the default field for Lucene query parsing.
func (q *DeleteQuery) DefaultField() string { return q.defaultField }

// Analyzer returns the analyzer for Lucene query parsing.
func (q *DeleteQuery) Analyzer() string { return q.analyzer }

// AnalyzeWildcard returns the wildcard-analysis tri-state.
func (q *DeleteQuery) AnalyzeWildcard() *bool { return q.analyzeWildcard }

// DefaultOperator returns the default boolean operator for Lucene query
// parsing, or nil.
func (q *DeleteQuery) DefaultOperator() *Operator { return q.defaultOperator }

// Lenient returns the lenient-parsing tri-state.
func (q *DeleteQuery) Lenient() *bool { return q.lenient }

// Route returns the routing value.
func (q *DeleteQuery) Route() string { return q.route }

// Refresh reports whether affected shards refresh after the delete.
func (q *DeleteQuery) Refresh() bool { return q.refresh }

// BatchSize returns the per-batch document count, 0 for the store
// default.
func (q *DeleteQuery) BatchSize() int { return q.batchSize }

// MaxDocs returns the cap on deleted documents, or nil.
func (q *DeleteQuery) MaxDocs() *int { return q.maxDocs }

// Timeout returns the request timeout.
func (q *DeleteQuery) Timeout() time.Duration { return q.timeout }

// IndicesOptions returns the missing/closed index treatment, or nil.
func (q *DeleteQuery) IndicesOptions() *IndicesOptions { return q.indicesOptions }

// DeleteQueryBuilder populates a DeleteQuery. The zero value is ready to
// use.
type DeleteQueryBuilder struct {
	q DeleteQuery
}

// NewDeleteQueryBuilder creates an empty builder.
func NewDeleteQueryBuilder() *DeleteQueryBuilder {
	return &DeleteQueryBuilder{}
}

// WithQuery sets the structured query to delete by.
func (b *DeleteQueryBuilder) WithQuery(query Query) *DeleteQueryBuilder {
	b.q.query = query
	return b
}

// WithLuceneQuery sets the Lucene query string to delete by.
func (b *DeleteQueryBuilder) WithLuceneQuery(query string) *DeleteQueryBuilder {
	b.q.luceneQuery = query
	return b
}

// WithDefaultField sets the default field for Lucene query parsing.
func (b *DeleteQueryBuilder) WithDefaultField(field string) *DeleteQueryBuilder {
	b.q.defaultField = field
	return b
}

// WithAnalyzer sets the analyzer for Lucene query parsing.
func (b *DeleteQueryBuilder) WithAnalyzer(analyzer string) *DeleteQueryBuilder {
	b.q.analyzer = analyzer
	return b
}

// WithAnalyzeWildcard toggles wildcard analysis for Lucene query parsing.
func (b *DeleteQueryBuilder) WithAnalyzeWildcard(analyze bool) *DeleteQueryBuilder {
	b.q.analyzeWildcard = &analyze
	return b
}

// WithDefaultOperator sets the default boolean operator for Lucene query
// parsing.
func (b *DeleteQueryBuilder) WithDefaultOperator(op Operator) *DeleteQueryBuilder {
	b.q.defaultOperator = &op
	return b
}

// WithLenient toggles lenient Lucene query parsing.
func (b *DeleteQueryBuilder) WithLenient(lenient bool) *DeleteQueryBuilder {
	b.q.lenient = &lenient
	return b
}

// WithRoute sets the routing value.
func (b *DeleteQueryBuilder) WithRoute(route string) *DeleteQueryBuilder {
	b.q.route = route
	return b
}

// WithRefresh refreshes affected shards after the delete.
func (b *DeleteQueryBuilder) WithRefresh(refresh bool) *DeleteQueryBuilder {
	b.q.refresh = refresh
	return b
}

// WithBatchSize sets the per-batch document count.
func (b *DeleteQueryBuilder) WithBatchSize(size int) *DeleteQueryBuilder {
	b.q.batchSize = size
	return b
}

// WithMaxDocs caps the number of deleted documents.
func (b *DeleteQueryBuilder) WithMaxDocs(max int) *DeleteQueryBuilder {
	b.q.maxDocs = &max
	return b
}

// WithTimeout sets the request timeout.
func (b *DeleteQueryBuilder) WithTimeout(d time.Duration) *DeleteQueryBuilder {
	b.q.timeout = d
	return b
}

// WithIndicesOptions sets the missing/closed index treatment.
func (b *DeleteQueryBuilder) WithIndicesOptions(opts *IndicesOptions) *DeleteQueryBuilder {
	b.q.indicesOptions = opts
	return b
}

// Build validates the cross-field constraints and freezes the query.
func (b *DeleteQueryBuilder) Build() (*DeleteQuery, error) {
	if b.q.query == nil && b.q.luceneQuery == "" {
		return nil, errors.New("delete query: either a query or a lucene query string is required")
	}
	if b.q.luceneQuery == "" {
		if param := b.luceneOnlyParam(); param != "" {
			return nil, fmt.Errorf("delete query: %s requires a lucene query string", param)
		}
	}
	q := b.q
	return &q, nil
}

func (b *DeleteQueryBuilder) luceneOnlyParam() string {
	switch {
	case b.q.defaultField != "":
		return "default field"
	case b.q.analyzer != "":
		return "analyzer"
	case b.q.analyzeWildcard != nil:
		return "analyze wildcard"
	case b.q.defaultOperator != nil:
		return "default operator"
	case b.q.lenient != nil:
		return "lenient"
	default:
		return ""
	}
}
