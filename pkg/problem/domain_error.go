package problem

import "fmt"

// DomainError is what module/domain code returns instead of a bare
// error. It carries enough to build a Problem without the HTTP layer
// knowing anything about the module's internals.
type DomainError struct {
	kind       Kind
	entityType string
	message    string
	err        error
}

// Error implements the error interface. It intentionally returns the
// human message, not the stable code — the code is a separate, public
// contract (spec §7 invariants).
func (e *DomainError) Error() string {
	if e.message != "" {
		return e.message
	}

	if e.err != nil {
		return e.err.Error()
	}

	if e.entityType != "" {
		return fmt.Sprintf("%s: %s", e.kind, e.entityType)
	}

	return string(e.kind)
}

// Unwrap exposes the wrapped error for errors.Is/As.
func (e *DomainError) Unwrap() error { return e.err }

// Kind returns the error taxonomy bucket this error belongs to.
func (e *DomainError) Kind() Kind { return e.kind }

func newError(kind Kind, entityType, message string, err error) *DomainError {
	return &DomainError{kind: kind, entityType: entityType, message: message, err: err}
}

// NotFound builds a DomainError for an entity that is missing or not
// visible under the caller's Access Scope. Per spec §7, scope
// violations must be indistinguishable from a genuine absence, so this
// constructor is the only spelling for both cases.
func NotFound(entityType string) *DomainError {
	return newError(KindNotFound, entityType, "", nil)
}

// Validation builds a DomainError for a request/DTO/OData validation
// failure.
func Validation(message string) *DomainError {
	return newError(KindValidation, "", message, nil)
}

// Unauthorized builds a DomainError for missing/invalid credentials.
func Unauthorized(message string) *DomainError {
	return newError(KindUnauthorized, "", message, nil)
}

// Forbidden builds a DomainError for an authorization denial or a scope
// violation that should not be reported as NotFound (e.g. the caller is
// known to lack the action, as opposed to the row simply not matching
// their scope).
func Forbidden(message string) *DomainError {
	return newError(KindForbidden, "", message, nil)
}

// Conflict builds a DomainError for unique-constraint violations and
// denied state transitions.
func Conflict(entityType, message string) *DomainError {
	return newError(KindConflict, entityType, message, nil)
}

// RateLimited builds a DomainError for quota/throttling denials.
func RateLimited(message string) *DomainError {
	return newError(KindRateLimited, "", message, nil)
}

// Internal wraps an infrastructure or programming error. The wrapped
// error is logged with full context by the caller; only the generic
// message below ever reaches the client (spec §7 propagation policy).
func Internal(err error) *DomainError {
	return newError(KindInternal, "", "an internal error occurred", err)
}
