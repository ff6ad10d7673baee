// Package accessscope derives Access Scope values from a Security
// Context at the point a query is built (spec §3 "Access Scope").
package accessscope

import "github.com/google/uuid"

// Scope carries the predicates a query must apply. It does not own the
// SecurityContext it was derived from; it is a value, copied freely.
type Scope struct {
	TenantID     uuid.UUID
	resourceIDs  []uuid.UUID
	hasResource  bool
	ownerID      uuid.UUID
	hasOwner     bool
	resourceType string
	hasType      bool
}

// Option narrows a Scope beyond the bare tenant filter.
type Option func(*Scope)

// WithResourceIDs restricts the scope to the given resource ids.
func WithResourceIDs(ids ...uuid.UUID) Option {
	return func(s *Scope) {
		s.resourceIDs = append([]uuid.UUID(nil), ids...)
		s.hasResource = len(ids) > 0
	}
}

// WithOwnerID restricts the scope to rows owned by ownerID.
func WithOwnerID(ownerID uuid.UUID) Option {
	return func(s *Scope) {
		s.ownerID = ownerID
		s.hasOwner = true
	}
}

// WithResourceType restricts the scope to a single resource type.
func WithResourceType(resourceType string) Option {
	return func(s *Scope) {
		s.resourceType = resourceType
		s.hasType = true
	}
}

// New derives a Scope for tenantID. A zero tenantID is valid input only
// for platform-system contexts; callers are expected to have already
// checked SecurityContext.DeniesAllResourceAccess before calling New.
func New(tenantID uuid.UUID, opts ...Option) Scope {
	s := Scope{TenantID: tenantID}
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// ResourceIDs returns the resource-id filter and whether it is set.
func (s Scope) ResourceIDs() ([]uuid.UUID, bool) { return s.resourceIDs, s.hasResource }

// OwnerID returns the owner-id filter and whether it is set.
func (s Scope) OwnerID() (uuid.UUID, bool) { return s.ownerID, s.hasOwner }

// ResourceType returns the resource-type filter and whether it is set.
func (s Scope) ResourceType() (string, bool) { return s.resourceType, s.hasType }
