package searchq

import (
	"reflect"
	"strings"
	"testing"
)

func TestWhere_SingleNode(t *testing.T) {
	c := Where("title").Is("go")

	if err := c.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(c.Chain()); got != 1 {
		t.Fatalf("chain length: got %d, want 1", got)
	}
	if !c.IsAnd() {
		t.Error("first node should join with AND")
	}
	entries := c.Entries()
	if len(entries) != 1 || entries[0].Key() != OpEquals || entries[0].Value() != "go" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestWhere_BlankField_Fails(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{"empty", ""},
		{"whitespace", "   "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Where(tc.field)
			if c.Err() == nil {
				t.Fatal("expected error for blank field name")
			}
			if !strings.Contains(c.Err().Error(), "blank") {
				t.Errorf("unexpected error: %v", c.Err())
			}
		})
	}
}

func TestChain_Operators(t *testing.T) {
	c := Where("a").Is(1).
		And("b").Is(2).
		Or("c").Is(3)

	chain := c.Chain()
	if len(chain) != 3 {
		t.Fatalf("chain length: got %d, want 3", len(chain))
	}

	wantOps := []Operator{OperatorAnd, OperatorAnd, OperatorOr}
	for i, node := range chain {
		if node.Operator() != wantOps[i] {
			t.Errorf("node %d operator: got %v, want %v", i, node.Operator(), wantOps[i])
		}
	}
	if chain[0].Field().Name() != "a" || chain[2].Field().Name() != "c" {
		t.Error("node fields out of order")
	}
}

func TestAndCriteria_SplicesNodes(t *testing.T) {
	first := Where("a").Is(1)
	second := Where("b").Is(2).Or("c").Is(3)

	joined := first.AndCriteria(second)

	chain := joined.Chain()
	if len(chain) != 3 {
		t.Fatalf("chain length: got %d, want 3", len(chain))
	}
	// Spliced nodes keep their own operators.
	if !chain[1].IsAnd() || !chain[2].IsOr() {
		t.Error("spliced nodes should keep their operators")
	}
	// Spliced nodes observe the merged chain.
	if len(chain[2].Chain()) != 3 {
		t.Error("spliced node should observe the merged chain")
	}
}

func TestAndCriteria_DonorErrorPropagates(t *testing.T) {
	bad := Where("title").Contains("a b")
	good := Where("status").Is("active").AndCriteria(bad)

	if good.Err() == nil {
		t.Fatal("donor chain error lost on splice")
	}
	if !strings.Contains(good.Err().Error(), "use Expression instead") {
		t.Errorf("got %v, want the donor's operand error", good.Err())
	}
	if _, err := NewCriteriaQuery(good); err == nil {
		t.Error("query build should reject the merged chain")
	}
}

func TestOrCriteria_DonorErrorPropagates(t *testing.T) {
	bad := Where("title").Contains("a b")
	c := Where("status").Is("active").OrCriteria(bad)

	if c.Err() == nil {
		t.Fatal("donor chain error lost on merge")
	}
	if _, err := NewCriteriaQuery(c); err == nil {
		t.Error("query build should reject the merged chain")
	}
}

func TestOrCriteria_CopiesValues(t *testing.T) {
	other := Where("b").Is(2).Not().Boost(1.5)
	c := Where("a").Is(1).OrCriteria(other)

	chain := c.Chain()
	if len(chain) != 2 {
		t.Fatalf("chain length: got %d, want 2", len(chain))
	}
	merged := chain[1]
	if !merged.IsOr() {
		t.Error("merged node should join with OR")
	}
	if !merged.Negating() {
		t.Error("merged node should keep negation")
	}
	if !merged.Boosted() || merged.BoostValue() != 1.5 {
		t.Errorf("merged node boost: got %v", merged.BoostValue())
	}
	// The original chain is untouched.
	if len(other.Chain()) != 1 {
		t.Error("source chain should not grow")
	}
}

func TestEntries_DuplicatesCollapse(t *testing.T) {
	c := Where("a").Is("x").Is("x").Is("y")

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].Value() != "x" || entries[1].Value() != "y" {
		t.Errorf("entries out of insertion order: %+v", entries)
	}
}

func TestContains_SpaceRejected(t *testing.T) {
	c := Where("title").Contains("go lang")

	err := c.Err()
	if err == nil {
		t.Fatal("expected error for operand with space")
	}
	if !strings.Contains(err.Error(), "Expression") {
		t.Errorf("error should point at Expression, got: %v", err)
	}
}

func TestWildcardOps(t *testing.T) {
	c := Where("title").StartsWith("go").EndsWith("lang").Contains("pher")

	if err := c.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := []OperationKey{}
	for _, e := range c.Entries() {
		keys = append(keys, e.Key())
	}
	want := []OperationKey{OpStartsWith, OpEndsWith, OpContains}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("entry keys: got %v, want %v", keys, want)
	}
}

func TestBetween_BothNil_Fails(t *testing.T) {
	c := Where("pages").Between(nil, nil)

	if c.Err() == nil {
		t.Fatal("expected error for unbounded between")
	}
}

func TestBetween_OneSided(t *testing.T) {
	lte := Where("pages").LessThanEqual(500)
	if err := lte.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := lte.Entries()
	if len(entries) != 1 || entries[0].Key() != OpBetween {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	bounds := entries[0].Value().([2]any)
	if bounds[0] != nil || bounds[1] != 500 {
		t.Errorf("bounds: got %v", bounds)
	}

	gte := Where("pages").GreaterThanEqual(100)
	bounds = gte.Entries()[0].Value().([2]any)
	if bounds[0] != 100 || bounds[1] != nil {
		t.Errorf("bounds: got %v", bounds)
	}
}

func TestLessThanEqual_Nil_Fails(t *testing.T) {
	if Where("pages").LessThanEqual(nil).Err() == nil {
		t.Error("expected error for nil upper bound")
	}
	if Where("pages").GreaterThanEqual(nil).Err() == nil {
		t.Error("expected error for nil lower bound")
	}
}

func TestIn_Variadic(t *testing.T) {
	c := Where("genre").In("tech", "science")

	if err := c.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	members := c.Entries()[0].Value().([]any)
	if !reflect.DeepEqual(members, []any{"tech", "science"}) {
		t.Errorf("members: got %v", members)
	}
}

func TestIn_SingleSliceExpands(t *testing.T) {
	c := Where("genre").In([]string{"tech", "science"})

	if err := c.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	members := c.Entries()[0].Value().([]any)
	if !reflect.DeepEqual(members, []any{"tech", "science"}) {
		t.Errorf("members: got %v", members)
	}
}

func TestIn_Empty_Fails(t *testing.T) {
	if Where("genre").In().Err() == nil {
		t.Error("expected error for empty in")
	}
}

func TestIn_CollectionAmongScalars_Fails(t *testing.T) {
	c := Where("genre").In("tech", []string{"science"})

	err := c.Err()
	if err == nil {
		t.Fatal("expected error for mixed scalar and collection values")
	}
	if !strings.Contains(err.Error(), "single slice") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBoost_Negative_Fails(t *testing.T) {
	if Where("a").Is(1).Boost(-2).Err() == nil {
		t.Error("expected error for negative boost")
	}
}

func TestErr_FirstErrorWins(t *testing.T) {
	c := Where("").Contains("a b")

	err := c.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "blank") {
		t.Errorf("first error should win, got: %v", err)
	}
}

func TestFailedChain_LaterCallsNoOp(t *testing.T) {
	c := Where("a").Contains("x y")
	c.Is("value")

	if len(c.Entries()) != 0 {
		t.Errorf("entries should not accumulate after a failure, got %+v", c.Entries())
	}
}
