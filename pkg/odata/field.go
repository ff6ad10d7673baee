// Package odata implements the OData-flavored query layer from spec
// §4.5: a hand-rolled recursive-descent $filter/$orderby parser (see
// DESIGN.md for why this isn't ANTLR-generated), a per-DTO field enum
// that is the only path from a query string to a SQL column, and
// keyset cursor pagination seeded into the same squirrel builder
// SecureConn uses.
package odata

import "fmt"

// Kind is the literal type a Field accepts on the right-hand side of a
// $filter comparison (spec §4.5 "Grammar").
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindNumber
	KindBool
	KindUUID
	KindDateTime
)

// Field is one entry in a DTO's filterable/orderable field enum (spec
// §4.5 "Binding"). Name is the OData-facing identifier; Column is the
// backing SQL column the field-to-column mapper resolves it to.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

// FieldSet is the field-to-column mapper for one DTO: the sole
// authority on which identifiers a $filter/$orderby/$select may name.
// Fields outside the set are rejected at parse time, not silently
// ignored.
type FieldSet struct {
	byName map[string]Field
	order  []string
}

// NewFieldSet builds a FieldSet from the given fields. Field names must
// be unique.
func NewFieldSet(fields ...Field) (*FieldSet, error) {
	fs := &FieldSet{byName: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if _, exists := fs.byName[f.Name]; exists {
			return nil, fmt.Errorf("odata: duplicate field %q in field set", f.Name)
		}
		fs.byName[f.Name] = f
		fs.order = append(fs.order, f.Name)
	}
	return fs, nil
}

// Lookup resolves a field name to its Field, or false if the name is
// not in the enum.
func (fs *FieldSet) Lookup(name string) (Field, bool) {
	f, ok := fs.byName[name]
	return f, ok
}

// Names returns every field name in declaration order, used to build a
// deterministic $select allowlist.
func (fs *FieldSet) Names() []string {
	return append([]string(nil), fs.order...)
}
