package searchq

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NativeQuery carries a raw store-native query body, bypassing criteria
// translation. The source map becomes the "query" object of the request.
type NativeQuery struct {
	BaseQuery
	source map[string]any
}

// NewNativeQuery creates a native query from a query-body map.
func NewNativeQuery(source map[string]any) (*NativeQuery, error) {
	if source == nil {
		return nil, errors.New("query: native source must not be nil")
	}
	return &NativeQuery{BaseQuery: *NewBaseQuery(), source: source}, nil
}

// NewNativeQueryFromJSON creates a native query from a raw JSON query
// body.
func NewNativeQueryFromJSON(raw string) (*NativeQuery, error) {
	var source map[string]any
	if err := json.Unmarshal([]byte(raw), &source); err != nil {
		return nil, fmt.Errorf("query: parse native source: %w", err)
	}
	return NewNativeQuery(source)
}

// Source returns the raw query-body map.
func (q *NativeQuery) Source() map[string]any { return q.source }
