package searchq

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Operator joins a criteria node to its predecessor in the chain.
type Operator int

const (
	// OperatorAnd joins a node conjunctively (the default).
	OperatorAnd Operator = iota
	// OperatorOr joins a node disjunctively.
	OperatorOr
)

// String returns the wire-level name of the operator.
func (o Operator) String() string {
	if o == OperatorOr {
		return "OR"
	}
	return "AND"
}

// OperationKey identifies the predicate operation of a criteria entry.
type OperationKey int

const (
	OpEquals OperationKey = iota
	OpContains
	OpStartsWith
	OpEndsWith
	OpExpression
	OpBetween
	OpFuzzy
	OpIn
)

var operationNames = map[OperationKey]string{
	OpEquals:     "equals",
	OpContains:   "contains",
	OpStartsWith: "starts_with",
	OpEndsWith:   "ends_with",
	OpExpression: "expression",
	OpBetween:    "between",
	OpFuzzy:      "fuzzy",
	OpIn:         "in",
}

// String returns the operation name.
func (k OperationKey) String() string {
	if n, ok := operationNames[k]; ok {
		return n
	}
	return fmt.Sprintf("operation(%d)", int(k))
}

// CriteriaEntry is a single (operation, operand) pair on a criteria node.
// Between operands are a [2]any with at least one non-nil element; In
// operands are a []any with at least one element.
type CriteriaEntry struct {
	key   OperationKey
	value any
}

// Key returns the entry operation.
func (e CriteriaEntry) Key() OperationKey { return e.key }

// Value returns the entry operand.
func (e CriteriaEntry) Value() any { return e.value }

// criteriaValueSeparator is the token separator of the downstream query
// language. Wildcard operands must not contain it; use Expression for
// operands with embedded spaces.
const criteriaValueSeparator = " "

// criteriaChain owns the ordered node sequence of one chain. All nodes
// created from the same Where share a single chain instance, so appending
// a node is O(1) and every node observes the full sequence.
type criteriaChain struct {
	nodes []*Criteria
	err   error
}

// Criteria is one field-scoped predicate node in a chain. Nodes are
// created with Where and extended with And/Or; entry methods accumulate
// predicates on the current node and return it for fluent composition.
//
// Validation failures (blank field names, malformed operands, negative
// boost) are recorded on the chain at the offending call; the first error
// wins, later calls on a failed chain are no-ops. The error surfaces via
// Err and again when the criteria is built into a query.
type Criteria struct {
	chain    *criteriaChain
	field    *Field
	operator Operator
	negating bool
	boost    float64 // NaN = unset
	entries  []CriteriaEntry
}

// Where starts a new criteria chain scoped to the named field.
func Where(fieldName string) *Criteria {
	return WhereField(NewField(fieldName))
}

// WhereField starts a new criteria chain scoped to the given field.
func WhereField(field *Field) *Criteria {
	ch := &criteriaChain{}
	c := newNode(ch, field, OperatorAnd)
	if field == nil || strings.TrimSpace(field.Name()) == "" {
		c.fail(errors.New("criteria: field name must not be blank"))
	}
	return c
}

func newNode(ch *criteriaChain, field *Field, op Operator) *Criteria {
	c := &Criteria{
		chain:    ch,
		field:    field,
		operator: op,
		boost:    math.NaN(),
	}
	ch.nodes = append(ch.nodes, c)
	return c
}

func (c *Criteria) fail(err error) *Criteria {
	if c.chain.err == nil {
		c.chain.err = err
	}
	return c
}

// Err returns the first validation error recorded anywhere on the chain.
func (c *Criteria) Err() error { return c.chain.err }

// Field returns the field this node is scoped to.
func (c *Criteria) Field() *Field { return c.field }

// Operator returns how this node joins to its predecessor. The first
// node's operator is OperatorAnd by convention.
func (c *Criteria) Operator() Operator { return c.operator }

// IsAnd reports whether this node joins conjunctively.
func (c *Criteria) IsAnd() bool { return c.operator == OperatorAnd }

// IsOr reports whether this node joins disjunctively.
func (c *Criteria) IsOr() bool { return c.operator == OperatorOr }

// Negating reports whether the node's predicates are negated.
func (c *Criteria) Negating() bool { return c.negating }

// Boosted reports whether a boost has been set on this node.
func (c *Criteria) Boosted() bool { return !math.IsNaN(c.boost) }

// BoostValue returns the boost, or NaN when unset.
func (c *Criteria) BoostValue() float64 { return c.boost }

// Entries returns a copy of the node's accumulated entries in insertion
// order. Duplicate (operation, operand) pairs are collapsed.
func (c *Criteria) Entries() []CriteriaEntry {
	out := make([]CriteriaEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Chain returns a copy of the full node sequence from the first node.
func (c *Criteria) Chain() []*Criteria {
	out := make([]*Criteria, len(c.chain.nodes))
	copy(out, c.chain.nodes)
	return out
}

// And appends a new conjunctive node for the named field and returns it.
func (c *Criteria) And(fieldName string) *Criteria {
	return c.AndField(NewField(fieldName))
}

// AndField appends a new conjunctive node for the given field.
func (c *Criteria) AndField(field *Field) *Criteria {
	n := newNode(c.chain, field, OperatorAnd)
	if field == nil || strings.TrimSpace(field.Name()) == "" {
		n.fail(errors.New("criteria: field name must not be blank"))
	}
	return n
}

// AndCriteria splices the given nodes into this chain as-is, keeping each
// node's own operator, and returns the current node.
func (c *Criteria) AndCriteria(others ...*Criteria) *Criteria {
	for _, other := range others {
		if other == nil {
			return c.fail(errors.New("criteria: and criteria must not be nil"))
		}
		// A donor's recorded error travels with its nodes.
		if err := other.chain.err; err != nil {
			c.fail(err)
		}
		for _, node := range other.chain.nodes {
			node.chain = c.chain
			c.chain.nodes = append(c.chain.nodes, node)
		}
	}
	return c
}

// Or appends a new disjunctive node for the named field and returns it.
func (c *Criteria) Or(fieldName string) *Criteria {
	return c.OrField(NewField(fieldName))
}

// OrField appends a new disjunctive node for the given field.
func (c *Criteria) OrField(field *Field) *Criteria {
	n := newNode(c.chain, field, OperatorOr)
	if field == nil || strings.TrimSpace(field.Name()) == "" {
		n.fail(errors.New("criteria: field name must not be blank"))
	}
	return n
}

// OrCriteria merges the given node's predicates into a new disjunctive
// node on this chain. This copies values, unlike AndCriteria which
// splices node references.
func (c *Criteria) OrCriteria(other *Criteria) *Criteria {
	if other == nil {
		c.fail(errors.New("criteria: or criteria must not be nil"))
		return c
	}
	if err := other.chain.err; err != nil {
		c.fail(err)
	}
	n := newNode(c.chain, other.field, OperatorOr)
	n.negating = other.negating
	n.boost = other.boost
	n.entries = append(n.entries, other.entries...)
	return n
}

func (c *Criteria) addEntry(key OperationKey, value any) *Criteria {
	if c.chain.err != nil {
		return c
	}
	for _, e := range c.entries {
		if e.key == key && reflect.DeepEqual(e.value, value) {
			return c
		}
	}
	c.entries = append(c.entries, CriteriaEntry{key: key, value: value})
	return c
}

// Is adds an exact-match predicate.
func (c *Criteria) Is(value any) *Criteria {
	return c.addEntry(OpEquals, value)
}

func (c *Criteria) wildcardEntry(key OperationKey, value string) *Criteria {
	if strings.Contains(value, criteriaValueSeparator) {
		return c.fail(fmt.Errorf(
			"criteria: %s operand %q must not contain %q, use Expression instead",
			key, value, criteriaValueSeparator))
	}
	return c.addEntry(key, value)
}

// Contains adds a substring wildcard predicate. The operand must not
// contain a space.
func (c *Criteria) Contains(value string) *Criteria {
	return c.wildcardEntry(OpContains, value)
}

// StartsWith adds a prefix wildcard predicate. The operand must not
// contain a space.
func (c *Criteria) StartsWith(value string) *Criteria {
	return c.wildcardEntry(OpStartsWith, value)
}

// EndsWith adds a suffix wildcard predicate. The operand must not
// contain a space.
func (c *Criteria) EndsWith(value string) *Criteria {
	return c.wildcardEntry(OpEndsWith, value)
}

// Fuzzy adds a fuzzy-match predicate.
func (c *Criteria) Fuzzy(value string) *Criteria {
	return c.addEntry(OpFuzzy, value)
}

// Expression adds a raw query-language predicate. The operand is passed
// through unvalidated.
func (c *Criteria) Expression(expr string) *Criteria {
	return c.addEntry(OpExpression, expr)
}

// Between adds a range predicate. At least one of lower and upper must be
// non-nil; a nil side leaves that side unbounded.
func (c *Criteria) Between(lower, upper any) *Criteria {
	if lower == nil && upper == nil {
		return c.fail(errors.New("criteria: between requires at least one bound"))
	}
	return c.addEntry(OpBetween, [2]any{lower, upper})
}

// LessThanEqual adds an upper-bounded range predicate.
func (c *Criteria) LessThanEqual(upper any) *Criteria {
	if upper == nil {
		return c.fail(errors.New("criteria: less-than-equal bound must not be nil"))
	}
	return c.Between(nil, upper)
}

// GreaterThanEqual adds a lower-bounded range predicate.
func (c *Criteria) GreaterThanEqual(lower any) *Criteria {
	if lower == nil {
		return c.fail(errors.New("criteria: greater-than-equal bound must not be nil"))
	}
	return c.Between(lower, nil)
}

// In adds a membership predicate. At least one value is required. A
// single slice or array argument is taken as the member collection;
// passing a collection among several scalars is rejected as an ambiguous
// call.
func (c *Criteria) In(values ...any) *Criteria {
	if len(values) == 0 {
		return c.fail(errors.New("criteria: in requires at least one value"))
	}
	if len(values) == 1 && isCollection(values[0]) {
		return c.addEntry(OpIn, expandCollection(values[0]))
	}
	for _, v := range values {
		if isCollection(v) {
			return c.fail(fmt.Errorf(
				"criteria: in received a collection among scalar values, pass a single slice instead"))
		}
	}
	members := make([]any, len(values))
	copy(members, values)
	return c.addEntry(OpIn, members)
}

// Not negates the current node's predicates.
func (c *Criteria) Not() *Criteria {
	c.negating = true
	return c
}

// Boost sets the relevance boost for this node. Negative boosts are a
// contract error.
func (c *Criteria) Boost(boost float64) *Criteria {
	if boost < 0 {
		return c.fail(fmt.Errorf("criteria: boost must not be negative, got %v", boost))
	}
	c.boost = boost
	return c
}

func isCollection(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

func expandCollection(v any) []any {
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
