package searchq

import "errors"

// CriteriaQuery executes a criteria chain against the store.
type CriteriaQuery struct {
	BaseQuery
	criteria *Criteria
}

// NewCriteriaQuery creates a criteria query with default base options.
// A nil criteria or a chain with a recorded validation error is rejected.
func NewCriteriaQuery(criteria *Criteria) (*CriteriaQuery, error) {
	if criteria == nil {
		return nil, errors.New("query: criteria must not be nil")
	}
	if err := criteria.Err(); err != nil {
		return nil, err
	}
	return &CriteriaQuery{BaseQuery: *NewBaseQuery(), criteria: criteria}, nil
}

// Criteria returns the criteria chain.
func (q *CriteriaQuery) Criteria() *Criteria { return q.criteria }
