package searchq

// Direction orders a sort ascending or descending.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns the wire-level direction name.
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Order sorts results by one property.
type Order struct {
	Property  string
	Direction Direction
	// Missing controls placement of documents without the property:
	// "_first", "_last" or "" for the store default.
	Missing string
}

// Sort is an ordered list of sort orders. Sorts compose additively via
// And; a query's sort accumulates and is never replaced wholesale.
type Sort struct {
	orders []Order
}

// SortBy creates a sort from the given orders.
func SortBy(orders ...Order) *Sort {
	s := &Sort{orders: make([]Order, len(orders))}
	copy(s.orders, orders)
	return s
}

// Asc creates an ascending sort over the given properties.
func Asc(properties ...string) *Sort {
	s := &Sort{}
	for _, p := range properties {
		s.orders = append(s.orders, Order{Property: p, Direction: Ascending})
	}
	return s
}

// Desc creates a descending sort over the given properties.
func Desc(properties ...string) *Sort {
	s := &Sort{}
	for _, p := range properties {
		s.orders = append(s.orders, Order{Property: p, Direction: Descending})
	}
	return s
}

// And returns a new sort with other's orders appended. Either side may
// be nil.
func (s *Sort) And(other *Sort) *Sort {
	merged := &Sort{}
	if s != nil {
		merged.orders = append(merged.orders, s.orders...)
	}
	if other != nil {
		merged.orders = append(merged.orders, other.orders...)
	}
	return merged
}

// Orders returns a copy of the sort orders.
func (s *Sort) Orders() []Order {
	if s == nil {
		return nil
	}
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// IsEmpty reports whether the sort has no orders.
func (s *Sort) IsEmpty() bool {
	return s == nil || len(s.orders) == 0
}

// DefaultPageSize is the page size used when none is requested.
const DefaultPageSize = 10

// Pageable requests one page of results, optionally with its own sort.
type Pageable struct {
	page int
	size int
	sort *Sort
}

// PageRequest creates a pageable for the zero-based page number with the
// given size. Non-positive sizes fall back to DefaultPageSize, negative
// pages to 0.
func PageRequest(page, size int) Pageable {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pageable{page: page, size: size}
}

// WithSort returns a copy of the pageable carrying the given sort.
func (p Pageable) WithSort(sort *Sort) Pageable {
	p.sort = sort
	return p
}

// Page returns the zero-based page number.
func (p Pageable) Page() int { return p.page }

// Size returns the page size.
func (p Pageable) Size() int { return p.size }

// Sort returns the pageable's sort, which may be nil.
func (p Pageable) Sort() *Sort { return p.sort }

// Offset returns the absolute offset of the page's first result.
func (p Pageable) Offset() int { return p.page * p.size }

// Next returns the pageable for the following page.
func (p Pageable) Next() Pageable {
	return Pageable{page: p.page + 1, size: p.size, sort: p.sort}
}

// IsZero reports whether the pageable was never initialized.
func (p Pageable) IsZero() bool { return p.size == 0 }
