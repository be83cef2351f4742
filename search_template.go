package searchq

import (
	"errors"
	"fmt"
)

// SearchTemplateQuery invokes a stored or inline search template. Sort
// and paging live inside the template itself, so the invoking query does
// not carry them.
type SearchTemplateQuery struct {
	id     string
	source string
	params map[string]any
	route  string
}

// NewSearchTemplateQuery creates a template query from a stored template
// id, an inline source, or both. At least one is required.
func NewSearchTemplateQuery(id, source string, params map[string]any) (*SearchTemplateQuery, error) {
	if id == "" && source == "" {
		return nil, errors.New("search template: either id or source is required")
	}
	return &SearchTemplateQuery{id: id, source: source, params: params}, nil
}

// ID returns the stored template id, or "".
func (q *SearchTemplateQuery) ID() string { return q.id }

// TemplateSource returns the inline template source, or "".
func (q *SearchTemplateQuery) TemplateSource() string { return q.source }

// Params returns the template parameters.
func (q *SearchTemplateQuery) Params() map[string]any { return q.params }

// Route returns the routing value.
func (q *SearchTemplateQuery) Route() string { return q.route }

// SearchTemplateQueryBuilder populates a SearchTemplateQuery. Sort and
// paging options are unsupported on template queries; calling WithSort
// or WithPageable records an error immediately rather than being
// silently ignored.
type SearchTemplateQueryBuilder struct {
	id     string
	source string
	params map[string]any
	route  string
	err    error
}

// NewSearchTemplateQueryBuilder creates an empty builder.
func NewSearchTemplateQueryBuilder() *SearchTemplateQueryBuilder {
	return &SearchTemplateQueryBuilder{}
}

func (b *SearchTemplateQueryBuilder) fail(err error) *SearchTemplateQueryBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// WithID sets the stored template id.
func (b *SearchTemplateQueryBuilder) WithID(id string) *SearchTemplateQueryBuilder {
	b.id = id
	return b
}

// WithSource sets the inline template source.
func (b *SearchTemplateQueryBuilder) WithSource(source string) *SearchTemplateQueryBuilder {
	b.source = source
	return b
}

// WithParams sets the template parameters.
func (b *SearchTemplateQueryBuilder) WithParams(params map[string]any) *SearchTemplateQueryBuilder {
	b.params = params
	return b
}

// WithParam sets a single template parameter.
func (b *SearchTemplateQueryBuilder) WithParam(name string, value any) *SearchTemplateQueryBuilder {
	if b.params == nil {
		b.params = make(map[string]any)
	}
	b.params[name] = value
	return b
}

// WithRoute sets the routing value.
func (b *SearchTemplateQueryBuilder) WithRoute(route string) *SearchTemplateQueryBuilder {
	b.route = route
	return b
}

// WithSort is unsupported: sort is defined inside the template.
func (b *SearchTemplateQueryBuilder) WithSort(*Sort) *SearchTemplateQueryBuilder {
	return b.fail(fmt.Errorf("search template: sort belongs in the template itself: %w", errors.ErrUnsupported))
}

// WithPageable is unsupported: paging is defined inside the template.
func (b *SearchTemplateQueryBuilder) WithPageable(Pageable) *SearchTemplateQueryBuilder {
	return b.fail(fmt.Errorf("search template: paging belongs in the template itself: %w", errors.ErrUnsupported))
}

// Err returns the first error recorded on the builder.
func (b *SearchTemplateQueryBuilder) Err() error { return b.err }

// Build validates and freezes the template query.
func (b *SearchTemplateQueryBuilder) Build() (*SearchTemplateQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	q, err := NewSearchTemplateQuery(b.id, b.source, b.params)
	if err != nil {
		return nil, err
	}
	q.route = b.route
	return q, nil
}
