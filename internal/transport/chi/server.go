package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchq"
	"github.com/kailas-cloud/searchq/internal/metrics"
)

// Error codes returned in the error response body.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeStoreError       = "store_error"
	CodeInternalError    = "internal_error"
)

// SearchAPI executes queries against one index of the store.
type SearchAPI interface {
	Search(ctx context.Context, index string, q searchq.Query) (searchq.SearchHits[json.RawMessage], error)
	Count(ctx context.Context, index string, q searchq.Query) (int64, error)
	DeleteByQuery(ctx context.Context, index string, dq *searchq.DeleteQuery) (int64, error)
}

// Pinger reports store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Limits bounds client-supplied paging parameters.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Server exposes the query layer over HTTP.
type Server struct {
	api    SearchAPI
	pinger Pinger
	limits Limits
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(api SearchAPI, pinger Pinger, limits Limits, logger *zap.Logger) *Server {
	if limits.DefaultPageSize <= 0 {
		limits.DefaultPageSize = 10
	}
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = 100
	}
	return &Server{api: api, pinger: pinger, limits: limits, logger: logger}
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/v1/indexes/{index}/search", s.SearchIndex)
	r.Post("/api/v1/indexes/{index}/count", s.CountIndex)
	r.Post("/api/v1/indexes/{index}/delete", s.DeleteByQuery)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SortClause is one sort order in a search request.
type SortClause struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // asc (default) or desc
}

// FilterClause is one criteria predicate in a search request.
type FilterClause struct {
	Field  string   `json:"field"`
	Op     string   `json:"op"` // eq, contains, starts_with, ends_with, fuzzy, in, between, expression
	Value  any      `json:"value"`
	Values []any    `json:"values"`
	Lower  any      `json:"lower"`
	Upper  any      `json:"upper"`
	Not    bool     `json:"not"`
	Boost  *float64 `json:"boost"`
	Or     bool     `json:"or"` // join disjunctively with the previous clause
}

// SearchRequest is the JSON search request body. Either a raw query
// source or filter clauses may be given, not both.
type SearchRequest struct {
	Query          map[string]any `json:"query"`
	Filters        []FilterClause `json:"filters"`
	Page           *int           `json:"page"`
	Size           *int           `json:"size"`
	Sort           []SortClause   `json:"sort"`
	MinScore       *float32       `json:"min_score"`
	SourceIncludes []string       `json:"source_includes"`
	SourceExcludes []string       `json:"source_excludes"`
	TrackTotalHits *bool          `json:"track_total_hits"`
	Route          string         `json:"route"`
}

// SearchResultItem is one hit in the response.
type SearchResultItem struct {
	ID         string              `json:"id"`
	Score      float64             `json:"score"`
	Source     json.RawMessage     `json:"source,omitempty"`
	Highlights map[string][]string `json:"highlights,omitempty"`
	Sort       []any               `json:"sort,omitempty"`
}

// SearchResultListResponse is the search response envelope.
type SearchResultListResponse struct {
	Items    []SearchResultItem `json:"items"`
	Total    int64              `json:"total"`
	Relation string             `json:"relation"`
	MaxScore float64            `json:"max_score"`
}

// SearchIndex handles POST /api/v1/indexes/{index}/search.
func (s *Server) SearchIndex(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := s.buildQuery(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	start := time.Now()
	hits, err := s.api.Search(r.Context(), index, q)
	observeSearch(index, "search", start, err)
	if err != nil {
		s.handleError(w, err)
		return
	}
	metrics.SearchHitsReturned.WithLabelValues(index).Observe(float64(len(hits.Hits)))

	items := make([]SearchResultItem, len(hits.Hits))
	for i, h := range hits.Hits {
		items[i] = SearchResultItem{
			ID:         h.ID,
			Score:      h.Score,
			Source:     h.Content,
			Highlights: h.Highlights,
			Sort:       h.Sort,
		}
	}

	writeJSON(w, http.StatusOK, SearchResultListResponse{
		Items:    items,
		Total:    hits.TotalHits,
		Relation: string(hits.TotalHitsRelation),
		MaxScore: hits.MaxScore,
	})
}

// CountResponse is the count response envelope.
type CountResponse struct {
	Count int64 `json:"count"`
}

// CountIndex handles POST /api/v1/indexes/{index}/count.
func (s *Server) CountIndex(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := s.buildQuery(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	start := time.Now()
	count, err := s.api.Count(r.Context(), index, q)
	observeSearch(index, "count", start, err)
	if err != nil {
		s.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

// DeleteRequest is the JSON delete-by-query request body.
type DeleteRequest struct {
	Query   map[string]any `json:"query"`
	Filters []FilterClause `json:"filters"`
	Lucene  string         `json:"lucene"`
	Route   string         `json:"route"`
	Refresh bool           `json:"refresh"`
	MaxDocs *int           `json:"max_docs"`
}

// DeleteResponse is the delete-by-query response envelope.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// DeleteByQuery handles POST /api/v1/indexes/{index}/delete.
func (s *Server) DeleteByQuery(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")

	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	dq, err := s.buildDeleteQuery(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	start := time.Now()
	deleted, err := s.api.DeleteByQuery(r.Context(), index, dq)
	observeSearch(index, "delete", start, err)
	if err != nil {
		s.handleError(w, err)
		return
	}
	metrics.DeletedDocumentsTotal.WithLabelValues(index).Add(float64(deleted))

	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

// HealthResponse is the health response envelope.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"elasticsearch": "ok"}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := s.pinger.Ping(r.Context()); err != nil {
		s.logger.Warn("store ping failed", zap.Error(err))
		checks["elasticsearch"] = "unreachable"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: status, Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) buildQuery(req SearchRequest) (searchq.Query, error) {
	if req.Query != nil && len(req.Filters) > 0 {
		return nil, errors.New("request must have query or filters, not both")
	}

	page := 0
	if req.Page != nil {
		if *req.Page < 0 {
			return nil, errors.New("page must not be negative")
		}
		page = *req.Page
	}
	size := s.limits.DefaultPageSize
	if req.Size != nil {
		if *req.Size <= 0 || *req.Size > s.limits.MaxPageSize {
			return nil, fmt.Errorf("size must be between 1 and %d", s.limits.MaxPageSize)
		}
		size = *req.Size
	}

	qb := searchq.NewBaseQueryBuilder().
		WithPageable(searchq.PageRequest(page, size))

	if sort, err := sortFromClauses(req.Sort); err != nil {
		return nil, err
	} else if sort != nil {
		qb.WithSort(sort)
	}
	if req.MinScore != nil {
		qb.WithMinScore(*req.MinScore)
	}
	if len(req.SourceIncludes) > 0 || len(req.SourceExcludes) > 0 {
		qb.WithSourceFilter(&searchq.SourceFilter{
			Includes: req.SourceIncludes,
			Excludes: req.SourceExcludes,
		})
	}
	if req.TrackTotalHits != nil {
		qb.WithTrackTotalHits(*req.TrackTotalHits)
	}
	if req.Route != "" {
		qb.WithRoute(req.Route)
	}

	if len(req.Filters) > 0 {
		criteria, err := criteriaFromClauses(req.Filters)
		if err != nil {
			return nil, err
		}
		return qb.BuildCriteriaQuery(criteria)
	}

	source := req.Query
	if source == nil {
		source = map[string]any{"match_all": map[string]any{}}
	}
	return qb.BuildNativeQuery(source)
}

func (s *Server) buildDeleteQuery(req DeleteRequest) (*searchq.DeleteQuery, error) {
	db := searchq.NewDeleteQueryBuilder()

	switch {
	case req.Lucene != "":
		db.WithLuceneQuery(req.Lucene)
	case len(req.Filters) > 0:
		criteria, err := criteriaFromClauses(req.Filters)
		if err != nil {
			return nil, err
		}
		q, err := searchq.NewCriteriaQuery(criteria)
		if err != nil {
			return nil, err
		}
		db.WithQuery(q)
	case req.Query != nil:
		q, err := searchq.NewNativeQuery(req.Query)
		if err != nil {
			return nil, err
		}
		db.WithQuery(q)
	default:
		return nil, errors.New("delete request must have query, filters or lucene")
	}

	if req.Route != "" {
		db.WithRoute(req.Route)
	}
	if req.Refresh {
		db.WithRefresh(true)
	}
	if req.MaxDocs != nil {
		db.WithMaxDocs(*req.MaxDocs)
	}
	return db.Build()
}

func sortFromClauses(clauses []SortClause) (*searchq.Sort, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	orders := make([]searchq.Order, len(clauses))
	for i, c := range clauses {
		if c.Field == "" {
			return nil, errors.New("sort clause requires a field")
		}
		dir := searchq.Ascending
		switch c.Direction {
		case "", "asc":
		case "desc":
			dir = searchq.Descending
		default:
			return nil, fmt.Errorf("unknown sort direction %q", c.Direction)
		}
		orders[i] = searchq.Order{Property: c.Field, Direction: dir}
	}
	return searchq.SortBy(orders...), nil
}

func criteriaFromClauses(clauses []FilterClause) (*searchq.Criteria, error) {
	var criteria *searchq.Criteria
	for i, c := range clauses {
		if c.Field == "" {
			return nil, fmt.Errorf("filter %d: field is required", i)
		}

		var node *searchq.Criteria
		switch {
		case criteria == nil:
			node = searchq.Where(c.Field)
			criteria = node
		case c.Or:
			node = criteria.Or(c.Field)
		default:
			node = criteria.And(c.Field)
		}

		if err := applyFilterOp(node, c); err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		if c.Not {
			node.Not()
		}
		if c.Boost != nil {
			node.Boost(*c.Boost)
		}
		criteria = node
	}
	if err := criteria.Err(); err != nil {
		return nil, err
	}
	return criteria, nil
}

func applyFilterOp(node *searchq.Criteria, c FilterClause) error {
	switch c.Op {
	case "", "eq":
		node.Is(c.Value)
	case "contains":
		s, ok := c.Value.(string)
		if !ok {
			return errors.New("contains requires a string value")
		}
		node.Contains(s)
	case "starts_with":
		s, ok := c.Value.(string)
		if !ok {
			return errors.New("starts_with requires a string value")
		}
		node.StartsWith(s)
	case "ends_with":
		s, ok := c.Value.(string)
		if !ok {
			return errors.New("ends_with requires a string value")
		}
		node.EndsWith(s)
	case "fuzzy":
		s, ok := c.Value.(string)
		if !ok {
			return errors.New("fuzzy requires a string value")
		}
		node.Fuzzy(s)
	case "expression":
		s, ok := c.Value.(string)
		if !ok {
			return errors.New("expression requires a string value")
		}
		node.Expression(s)
	case "in":
		node.In(c.Values...)
	case "between":
		node.Between(c.Lower, c.Upper)
	default:
		return fmt.Errorf("unknown filter op %q", c.Op)
	}
	return nil
}

func observeSearch(index, kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(index, kind, status).Inc()
	metrics.SearchRequestDuration.WithLabelValues(index, kind).Observe(time.Since(start).Seconds())
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	s.logger.Error("store error", zap.Error(err))
	writeError(w, http.StatusBadGateway, CodeStoreError, "store error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
