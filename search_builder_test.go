package searchq

import (
	"strings"
	"testing"
)

func testBuilder(t *testing.T) *SearchBuilder[book] {
	t.Helper()
	return &SearchBuilder[book]{
		idx: &Index[book]{name: "books", mapping: parseMapping[book]()},
		qb:  NewBaseQueryBuilder(),
	}
}

func TestSearchBuilder_BuildCriteria(t *testing.T) {
	b := testBuilder(t).
		Where(Where("genre").Is("tech")).
		Page(1, 20).
		Sort(Asc("title")).
		Limit(100).
		Route("shard-1")

	q, err := b.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	cq, ok := q.(*CriteriaQuery)
	if !ok {
		t.Fatalf("got %T, want *CriteriaQuery", q)
	}
	if cq.Pageable().Page() != 1 || cq.Pageable().Size() != 20 {
		t.Errorf("pageable: got page=%d size=%d", cq.Pageable().Page(), cq.Pageable().Size())
	}
	if !cq.IsLimiting() || cq.MaxResults() != 100 {
		t.Errorf("limit lost: max=%d", cq.MaxResults())
	}
	if cq.Route() != "shard-1" {
		t.Errorf("route: got %q", cq.Route())
	}
}

func TestSearchBuilder_WhereJoinsConjunctively(t *testing.T) {
	b := testBuilder(t).
		Where(Where("genre").Is("tech")).
		Where(Where("pages").GreaterThanEqual(100))

	q, err := b.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	chain := q.(*CriteriaQuery).Criteria().Chain()
	if len(chain) != 2 {
		t.Fatalf("chain: got %d nodes, want 2", len(chain))
	}
	if !chain[1].IsAnd() {
		t.Error("second criteria should join with AND")
	}
}

func TestSearchBuilder_NativeWins(t *testing.T) {
	src := map[string]any{"match_all": map[string]any{}}
	b := testBuilder(t).
		Where(Where("genre").Is("tech")).
		Native(src)

	q, err := b.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := q.(*NativeQuery); !ok {
		t.Errorf("got %T, want *NativeQuery", q)
	}
}

func TestSearchBuilder_RequiresQuery(t *testing.T) {
	_, err := testBuilder(t).build()
	if err == nil || !strings.Contains(err.Error(), "criteria required") {
		t.Errorf("got %v, want the missing-criteria error", err)
	}
}

func TestSearchBuilder_OptionErrorsSurface(t *testing.T) {
	b := testBuilder(t).
		Where(Where("genre").Is("tech")).
		MinScore(-1)

	if _, err := b.build(); err == nil || !strings.Contains(err.Error(), "min score") {
		t.Errorf("got %v, want the min score error", err)
	}
}
