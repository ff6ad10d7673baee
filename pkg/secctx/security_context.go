// Package secctx defines the Security Context: the per-request identity
// bundle created once at ingress and carried immutably through the
// request's lifetime (spec §3).
package secctx

import "github.com/google/uuid"

// LocalsKey is the fiber.Ctx Locals key the gateway's auth middleware
// stores the request's SecurityContext under, and the key restop's
// route guard reads it back from. It lives here, not in either of
// those packages, so both depend on the same literal instead of one
// copying the other's unexported constant.
const LocalsKey = "security_context"

// SubjectType classifies the caller a SecurityContext represents.
type SubjectType string

const (
	SubjectUser    SubjectType = "user"
	SubjectService SubjectType = "service"
	SubjectSystem  SubjectType = "system"
)

// SecurityContext is immutable once constructed. It must only ever be
// built by the auth middleware at request ingress — nothing downstream
// of that middleware can forge one, since the type has no exported
// constructors besides New and System, and in the framework's own
// wiring only pkg/gateway's auth provider calls New.
type SecurityContext struct {
	tenantID    uuid.UUID
	hasTenant   bool
	subjectID   uuid.UUID
	subjectType SubjectType
	properties  map[string]string
}

// New builds a SecurityContext. A nil/zero tenantID produces a context
// that denies all resource access unless subjectType is SubjectSystem
// (spec §3 invariant).
func New(tenantID uuid.UUID, subjectID uuid.UUID, subjectType SubjectType, properties map[string]string) SecurityContext {
	props := make(map[string]string, len(properties))
	for k, v := range properties {
		props[k] = v
	}

	return SecurityContext{
		tenantID:    tenantID,
		hasTenant:   tenantID != uuid.Nil,
		subjectID:   subjectID,
		subjectType: subjectType,
		properties:  props,
	}
}

// System builds a platform-system SecurityContext with no tenant, for
// privileged internal operations that must not be reachable from
// request-handling code. Nothing in the framework itself calls it; the
// runtime's migrations run through runtime.Deps.Migrate without a
// SecurityContext.
func System(subjectID uuid.UUID) SecurityContext {
	return New(uuid.Nil, subjectID, SubjectSystem, nil)
}

// TenantID returns the tenant id and whether one is set.
func (s SecurityContext) TenantID() (uuid.UUID, bool) { return s.tenantID, s.hasTenant }

// SubjectID returns the authenticated subject's id.
func (s SecurityContext) SubjectID() uuid.UUID { return s.subjectID }

// SubjectType returns whether the caller is a user, service, or system.
func (s SecurityContext) SubjectType() SubjectType { return s.subjectType }

// Property looks up an auth-provider-supplied property (e.g. a JWT
// claim) by key.
func (s SecurityContext) Property(key string) (string, bool) {
	v, ok := s.properties[key]
	return v, ok
}

// IsPlatformSystem reports whether this context represents the
// platform itself rather than a tenant-scoped caller.
func (s SecurityContext) IsPlatformSystem() bool {
	return s.subjectType == SubjectSystem
}

// DeniesAllResourceAccess implements the spec §3 invariant: a context
// with no tenant id denies all resource access unless it is
// platform-system.
func (s SecurityContext) DeniesAllResourceAccess() bool {
	return !s.hasTenant && !s.IsPlatformSystem()
}
