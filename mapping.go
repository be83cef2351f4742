package searchq

import (
	"reflect"
	"strings"
)

const tagKey = "searchq"

// fieldMapping translates domain property names to stored field names,
// parsed once per Index from struct tags. A field without a searchq tag
// falls back to its json tag name, then to the Go field name unchanged.
type fieldMapping struct {
	byProperty map[string]string
}

// parseMapping reflects on T and extracts the property-to-wire-name
// table. Non-struct types (raw document indexes) get an empty mapping.
func parseMapping[T any]() *fieldMapping {
	m := &fieldMapping{byProperty: make(map[string]string)}

	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return m
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return m
	}

	for i := range t.NumField() {
		f := t.Field(i)
		name := tagName(f.Tag.Get(tagKey))
		if name == "" {
			name = tagName(f.Tag.Get("json"))
		}
		if name == "" || name == "-" {
			continue
		}
		m.byProperty[f.Name] = name
	}
	return m
}

func tagName(tag string) string {
	if tag == "" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// wireName returns the stored name for a property, or the property
// itself when no mapping applies.
func (m *fieldMapping) wireName(property string) string {
	if name, ok := m.byProperty[property]; ok {
		return name
	}
	return property
}

// rewriteQuery renames criteria fields and sort properties to their
// stored names before the query is rendered.
func (m *fieldMapping) rewriteQuery(q Query) {
	if len(m.byProperty) == 0 {
		return
	}
	if cq, ok := q.(*CriteriaQuery); ok {
		for _, node := range cq.Criteria().Chain() {
			if f := node.Field(); f != nil {
				f.SetName(m.wireName(f.Name()))
			}
		}
	}
	b := q.base()
	if sort := b.Sort(); !sort.IsEmpty() {
		orders := sort.Orders()
		for i := range orders {
			orders[i].Property = m.wireName(orders[i].Property)
		}
		b.sort = SortBy(orders...)
	}
}
