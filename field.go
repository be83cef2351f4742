package searchq

// Field names a document field referenced by criteria and sort orders.
// The name may be rewritten when a domain property name is mapped to its
// stored wire name; type and path are optional metadata set at creation.
type Field struct {
	name string
	typ  string
	path string
}

// NewField creates a field with the given stored name.
func NewField(name string) *Field {
	return &Field{name: name}
}

// NewTypedField creates a field with an explicit declared type.
func NewTypedField(name, typ string) *Field {
	return &Field{name: name, typ: typ}
}

// NewNestedField creates a field under a nested object path.
func NewNestedField(name, path string) *Field {
	return &Field{name: name, path: path}
}

// Name returns the current field name.
func (f *Field) Name() string { return f.name }

// SetName rewrites the field name. Used by the mapping layer when
// translating a domain property name to its stored name.
func (f *Field) SetName(name string) { f.name = name }

// Type returns the declared field type, or "" if none.
func (f *Field) Type() string { return f.typ }

// Path returns the nested path, or "" if the field is top-level.
func (f *Field) Path() string { return f.path }

// Equal reports whether two fields have the same name, type and path.
func (f *Field) Equal(other *Field) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	return f.name == other.name && f.typ == other.typ && f.path == other.path
}
