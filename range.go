package searchq

import (
	"cmp"
	"fmt"
)

// Bound is one endpoint of a Range: either unbounded or a value with
// inclusive/exclusive semantics.
type Bound[T cmp.Ordered] struct {
	value     T
	bounded   bool
	inclusive bool
}

// BoundUnbounded creates an open-ended bound.
func BoundUnbounded[T cmp.Ordered]() Bound[T] {
	return Bound[T]{}
}

// BoundInclusive creates a bound that includes its value.
func BoundInclusive[T cmp.Ordered](value T) Bound[T] {
	return Bound[T]{value: value, bounded: true, inclusive: true}
}

// BoundExclusive creates a bound that excludes its value.
func BoundExclusive[T cmp.Ordered](value T) Bound[T] {
	return Bound[T]{value: value, bounded: true}
}

// Bounded reports whether the bound carries a value.
func (b Bound[T]) Bounded() bool { return b.bounded }

// Inclusive reports whether a bounded endpoint includes its value.
func (b Bound[T]) Inclusive() bool { return b.inclusive }

// Value returns the bound value. Only meaningful when Bounded.
func (b Bound[T]) Value() T { return b.value }

// Range is a possibly-open interval between a lower and an upper Bound.
type Range[T cmp.Ordered] struct {
	lower Bound[T]
	upper Bound[T]
}

// NewRange creates a range from two bounds.
func NewRange[T cmp.Ordered](lower, upper Bound[T]) Range[T] {
	return Range[T]{lower: lower, upper: upper}
}

// RangeClosed creates [from, to].
func RangeClosed[T cmp.Ordered](from, to T) Range[T] {
	return Range[T]{lower: BoundInclusive(from), upper: BoundInclusive(to)}
}

// RangeOpen creates (from, to).
func RangeOpen[T cmp.Ordered](from, to T) Range[T] {
	return Range[T]{lower: BoundExclusive(from), upper: BoundExclusive(to)}
}

// RangeLeftOpen creates (from, to].
func RangeLeftOpen[T cmp.Ordered](from, to T) Range[T] {
	return Range[T]{lower: BoundExclusive(from), upper: BoundInclusive(to)}
}

// RangeRightOpen creates [from, to).
func RangeRightOpen[T cmp.Ordered](from, to T) Range[T] {
	return Range[T]{lower: BoundInclusive(from), upper: BoundExclusive(to)}
}

// RangeJust creates the degenerate range [value, value].
func RangeJust[T cmp.Ordered](value T) Range[T] {
	return RangeClosed(value, value)
}

// RangeUnbounded creates the range with no bounds; it contains everything.
func RangeUnbounded[T cmp.Ordered]() Range[T] {
	return Range[T]{}
}

// RangeFrom creates a range bounded below only.
func RangeFrom[T cmp.Ordered](lower Bound[T]) Range[T] {
	return Range[T]{lower: lower}
}

// RangeTo creates a range bounded above only.
func RangeTo[T cmp.Ordered](upper Bound[T]) Range[T] {
	return Range[T]{upper: upper}
}

// Lower returns the lower bound.
func (r Range[T]) Lower() Bound[T] { return r.lower }

// Upper returns the upper bound.
func (r Range[T]) Upper() Bound[T] { return r.upper }

// Contains reports whether value lies within the range. Each side is
// checked independently; an unbounded side always passes.
func (r Range[T]) Contains(value T) bool {
	lowerOK := true
	if r.lower.bounded {
		if r.lower.inclusive {
			lowerOK = cmp.Compare(r.lower.value, value) <= 0
		} else {
			lowerOK = cmp.Compare(r.lower.value, value) < 0
		}
	}
	upperOK := true
	if r.upper.bounded {
		if r.upper.inclusive {
			upperOK = cmp.Compare(r.upper.value, value) >= 0
		} else {
			upperOK = cmp.Compare(r.upper.value, value) > 0
		}
	}
	return lowerOK && upperOK
}

// String renders the range in interval notation, e.g. "[1, 10)".
func (r Range[T]) String() string {
	var lower, upper string
	if r.lower.bounded {
		open := "("
		if r.lower.inclusive {
			open = "["
		}
		lower = fmt.Sprintf("%s%v", open, r.lower.value)
	} else {
		lower = "(unbounded"
	}
	if r.upper.bounded {
		close := ")"
		if r.upper.inclusive {
			close = "]"
		}
		upper = fmt.Sprintf("%v%s", r.upper.value, close)
	} else {
		upper = "unbounded)"
	}
	return lower + ", " + upper
}
