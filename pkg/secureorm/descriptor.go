// Package secureorm is the database access layer described in spec
// §4.4: a SecureConn wraps a database/sql-compatible connection pool
// and exposes only query-construction methods that require an
// accessscope.Scope, so there is no code path that builds a query for
// a scoped entity without one.
package secureorm

import "fmt"

// Descriptor is the secure descriptor attached to an entity type: the
// columns an Access Scope's predicates are projected onto (spec §3
// "Entity", §4.4 "Scope application").
type Descriptor struct {
	// Table is the physical table name, used unquoted in generated SQL.
	Table string

	// TenantCol is required: every scoped query appends
	// `TenantCol = scope.tenant`.
	TenantCol string

	// ResourceCol, OwnerCol, TypeCol are optional. An empty string means
	// the entity carries no such column and the corresponding scope
	// filter, if present, is ignored for this entity.
	ResourceCol string
	OwnerCol    string
	TypeCol     string
}

// Validate checks the descriptor is well-formed. SecureConn calls this
// once per Mapper at construction, not per query.
func (d Descriptor) Validate() error {
	if d.Table == "" {
		return fmt.Errorf("secureorm: descriptor missing table name")
	}
	if d.TenantCol == "" {
		return fmt.Errorf("secureorm: descriptor for table %q missing tenant column", d.Table)
	}
	return nil
}
