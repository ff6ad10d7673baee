// Package problem implements the RFC-9457 Problem Details value type
// that is the single error response shape used across every ModKit
// module's HTTP surface (see spec §3 "Problem" and §7 "Error handling
// design").
package problem

import "net/http"

// Kind is the error taxonomy every module's domain errors collapse into
// at the HTTP boundary (spec §7).
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindRateLimited  Kind = "RATE_LIMITED"
	KindInternal     Kind = "INTERNAL"
)

// HTTPStatus returns the status code mandated for a Kind by spec §7.
// Exported so packages outside problem (e.g. restop's OpenAPI response
// registration) can document a Kind's status without duplicating the
// mapping.
func (k Kind) HTTPStatus() int {
	return k.httpStatus()
}

// httpStatus returns the status code mandated for a Kind by spec §7.
func (k Kind) httpStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
