package searchq

import (
	"fmt"
	"math"
)

// RenderQuery renders a query into a complete request body for an
// Elasticsearch-compatible search endpoint. Transport-level parameters
// (search type, preference, routing, scroll keep-alive, request cache)
// are not part of the body and are read off the query by the executor.
func RenderQuery(q Query) (map[string]any, error) {
	if q == nil {
		return nil, fmt.Errorf("render: query must not be nil")
	}
	body := make(map[string]any)

	source, err := querySource(q)
	if err != nil {
		return nil, err
	}
	body["query"] = source

	b := q.base()
	applyPaging(body, b)
	applySort(body, b.Sort())
	applySourceFiltering(body, b)
	applyFieldRequests(body, b)
	applyScoring(body, b)
	applyHighlight(body, b.HighlightQuery())

	if err := applyRescore(body, b.RescorerQueries()); err != nil {
		return nil, err
	}
	if len(b.SearchAfter()) > 0 {
		body["search_after"] = b.SearchAfter()
	}
	if pit := b.PointInTime(); pit != nil {
		p := map[string]any{"id": pit.ID}
		if pit.KeepAlive > 0 {
			p["keep_alive"] = pit.KeepAlive.String()
		}
		body["pit"] = p
	}
	return body, nil
}

// querySource renders the "query" object only.
func querySource(q Query) (map[string]any, error) {
	switch qt := q.(type) {
	case *CriteriaQuery:
		return criteriaSource(qt.Criteria())
	case *NativeQuery:
		return qt.Source(), nil
	case *BaseQuery:
		return map[string]any{"match_all": map[string]any{}}, nil
	default:
		return nil, fmt.Errorf("render: unsupported query type %T", q)
	}
}

// criteriaSource renders a criteria chain as a bool query. Each node
// becomes one clause placed by its own conjunction operator: AND nodes
// land in must (must_not when negating), OR nodes in should. A negated
// OR node stays disjunctive: the negation wraps inside its should
// clause, so "a OR NOT b" does not collapse into a conjunctive
// exclusion.
func criteriaSource(c *Criteria) (map[string]any, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}
	var must, should, mustNot []any
	for _, node := range c.Chain() {
		clause, err := nodeClause(node)
		if err != nil {
			return nil, err
		}
		if clause == nil {
			continue
		}
		switch {
		case node.IsOr():
			if node.Negating() {
				clause = map[string]any{"bool": map[string]any{"must_not": []any{clause}}}
			}
			should = append(should, clause)
		case node.Negating():
			mustNot = append(mustNot, clause)
		default:
			must = append(must, clause)
		}
	}
	boolQuery := make(map[string]any)
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(should) > 0 {
		boolQuery["should"] = should
	}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}
	if len(boolQuery) == 0 {
		return map[string]any{"match_all": map[string]any{}}, nil
	}
	return map[string]any{"bool": boolQuery}, nil
}

// nodeClause renders one chain node. Multiple entries on a node are
// conjunctive and wrap in a nested bool; entry order follows insertion
// order.
func nodeClause(node *Criteria) (map[string]any, error) {
	entries := node.Entries()
	if len(entries) == 0 {
		return nil, nil
	}
	clauses := make([]any, 0, len(entries))
	for _, entry := range entries {
		clause, err := entryClause(node, entry)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0].(map[string]any), nil
	}
	return map[string]any{"bool": map[string]any{"must": clauses}}, nil
}

func entryClause(node *Criteria, entry CriteriaEntry) (map[string]any, error) {
	field := node.Field().Name()
	switch entry.Key() {
	case OpEquals:
		return leaf("term", field, boosted(node, map[string]any{"value": entry.Value()})), nil
	case OpContains:
		return leaf("wildcard", field, boosted(node, map[string]any{
			"value": "*" + entry.Value().(string) + "*",
		})), nil
	case OpStartsWith:
		return leaf("wildcard", field, boosted(node, map[string]any{
			"value": entry.Value().(string) + "*",
		})), nil
	case OpEndsWith:
		return leaf("wildcard", field, boosted(node, map[string]any{
			"value": "*" + entry.Value().(string),
		})), nil
	case OpFuzzy:
		return leaf("fuzzy", field, boosted(node, map[string]any{"value": entry.Value()})), nil
	case OpExpression:
		qs := map[string]any{
			"query":  entry.Value(),
			"fields": []string{field},
		}
		if node.Boosted() {
			qs["boost"] = node.BoostValue()
		}
		return map[string]any{"query_string": qs}, nil
	case OpBetween:
		bounds := entry.Value().([2]any)
		r := make(map[string]any)
		if bounds[0] != nil {
			r["gte"] = bounds[0]
		}
		if bounds[1] != nil {
			r["lte"] = bounds[1]
		}
		if node.Boosted() {
			r["boost"] = node.BoostValue()
		}
		return map[string]any{"range": map[string]any{field: r}}, nil
	case OpIn:
		terms := map[string]any{field: entry.Value()}
		if node.Boosted() {
			terms["boost"] = node.BoostValue()
		}
		return map[string]any{"terms": terms}, nil
	default:
		return nil, fmt.Errorf("render: unknown criteria operation %s", entry.Key())
	}
}

func leaf(kind, field string, inner map[string]any) map[string]any {
	return map[string]any{kind: map[string]any{field: inner}}
}

func boosted(node *Criteria, inner map[string]any) map[string]any {
	if node.Boosted() && !math.IsNaN(node.BoostValue()) {
		inner["boost"] = node.BoostValue()
	}
	return inner
}

func applyPaging(body map[string]any, b *BaseQuery) {
	pageable := b.Pageable()
	size := pageable.Size()
	if b.IsLimiting() && b.MaxResults() < size {
		size = b.MaxResults()
	}
	body["from"] = pageable.Offset()
	body["size"] = size
}

func applySort(body map[string]any, sort *Sort) {
	if sort.IsEmpty() {
		return
	}
	orders := sort.Orders()
	rendered := make([]any, 0, len(orders))
	for _, order := range orders {
		spec := map[string]any{"order": order.Direction.String()}
		if order.Missing != "" {
			spec["missing"] = order.Missing
		}
		rendered = append(rendered, map[string]any{order.Property: spec})
	}
	body["sort"] = rendered
}

func applySourceFiltering(body map[string]any, b *BaseQuery) {
	if filter := b.SourceFilter(); filter != nil && !filter.IsEmpty() {
		src := make(map[string]any)
		if len(filter.Includes) > 0 {
			src["includes"] = filter.Includes
		}
		if len(filter.Excludes) > 0 {
			src["excludes"] = filter.Excludes
		}
		body["_source"] = src
		return
	}
	if fields := b.Fields(); len(fields) > 0 {
		body["_source"] = fields
	}
}

func applyFieldRequests(body map[string]any, b *BaseQuery) {
	if fields := b.StoredFields(); len(fields) > 0 {
		body["stored_fields"] = fields
	}
	if fields := b.DocValueFields(); len(fields) > 0 {
		rendered := make([]any, 0, len(fields))
		for _, f := range fields {
			if f.Format == "" {
				rendered = append(rendered, f.Field)
				continue
			}
			rendered = append(rendered, map[string]any{"field": f.Field, "format": f.Format})
		}
		body["docvalue_fields"] = rendered
	}
	if fields := b.ScriptedFields(); len(fields) > 0 {
		rendered := make(map[string]any, len(fields))
		for _, f := range fields {
			rendered[f.Name] = map[string]any{"script": map[string]any{"source": f.Script}}
		}
		body["script_fields"] = rendered
	}
	if fields := b.RuntimeFields(); len(fields) > 0 {
		rendered := make(map[string]any, len(fields))
		for _, f := range fields {
			spec := map[string]any{"type": f.Type}
			if f.Script != "" {
				spec["script"] = map[string]any{"source": f.Script}
			}
			rendered[f.Name] = spec
		}
		body["runtime_mappings"] = rendered
	}
}

func applyScoring(body map[string]any, b *BaseQuery) {
	if b.MinScore() > 0 {
		body["min_score"] = b.MinScore()
	}
	if b.TrackScores() {
		body["track_scores"] = true
	}
	if upTo := b.TrackTotalHitsUpTo(); upTo != nil {
		body["track_total_hits"] = *upTo
	} else if track := b.TrackTotalHits(); track != nil {
		body["track_total_hits"] = *track
	}
	if b.Explain() {
		body["explain"] = true
	}
	if boosts := b.IndicesBoost(); len(boosts) > 0 {
		rendered := make([]any, 0, len(boosts))
		for _, boost := range boosts {
			rendered = append(rendered, map[string]any{boost.Index: boost.Boost})
		}
		body["indices_boost"] = rendered
	}
}

func applyHighlight(body map[string]any, hq *HighlightQuery) {
	if hq == nil || len(hq.Highlight.Fields) == 0 {
		return
	}
	fields := make(map[string]any, len(hq.Highlight.Fields))
	for _, f := range hq.Highlight.Fields {
		spec := make(map[string]any)
		if f.FragmentSize > 0 {
			spec["fragment_size"] = f.FragmentSize
		}
		if f.NumberOfFragments > 0 {
			spec["number_of_fragments"] = f.NumberOfFragments
		}
		if hq.Query != nil {
			if source, err := querySource(hq.Query); err == nil {
				spec["highlight_query"] = source
			}
		}
		fields[f.Name] = spec
	}
	highlight := map[string]any{"fields": fields}
	if len(hq.Highlight.PreTags) > 0 {
		highlight["pre_tags"] = hq.Highlight.PreTags
	}
	if len(hq.Highlight.PostTags) > 0 {
		highlight["post_tags"] = hq.Highlight.PostTags
	}
	body["highlight"] = highlight
}

func applyRescore(body map[string]any, rescorers []RescorerQuery) error {
	if len(rescorers) == 0 {
		return nil
	}
	rendered := make([]any, 0, len(rescorers))
	for _, rescorer := range rescorers {
		if rescorer.Query == nil {
			return fmt.Errorf("render: rescorer query must not be nil")
		}
		source, err := querySource(rescorer.Query)
		if err != nil {
			return err
		}
		inner := map[string]any{"rescore_query": source}
		if rescorer.QueryWeight > 0 {
			inner["query_weight"] = rescorer.QueryWeight
		}
		if rescorer.RescoreQueryWeight > 0 {
			inner["rescore_query_weight"] = rescorer.RescoreQueryWeight
		}
		if rescorer.ScoreMode != "" {
			inner["score_mode"] = string(rescorer.ScoreMode)
		}
		entry := map[string]any{"query": inner}
		if rescorer.WindowSize > 0 {
			entry["window_size"] = rescorer.WindowSize
		}
		rendered = append(rendered, entry)
	}
	body["rescore"] = rendered
	return nil
}
