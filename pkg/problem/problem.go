package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Problem is the RFC-9457 Problem Details value every 4xx/5xx response
// in ModKit carries (spec §3, §6). Title/Detail are human-readable and
// not part of the stable client contract; Code is.
type Problem struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Code       string         `json:"code"`
	TraceID    string         `json:"trace_id,omitempty"`
	Extensions map[string]any `json:"-"`
}

const typeBase = "https://errors.example/"

// MarshalJSON flattens Extensions into the top-level object, matching
// the RFC-9457 "member name extension" rule while keeping Extensions
// out of the Go struct's json tags (so they can't collide with the
// reserved members above).
func (p Problem) MarshalJSON() ([]byte, error) {
	type alias Problem

	encoded, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}

	if len(p.Extensions) == 0 {
		return encoded, nil
	}

	flat := map[string]any{}
	if err := json.Unmarshal(encoded, &flat); err != nil {
		return nil, err
	}

	for k, v := range p.Extensions {
		if _, reserved := flat[k]; !reserved {
			flat[k] = v
		}
	}

	return json.Marshal(flat)
}

// titleFor returns the default human title for a Kind. Callers may
// override it by constructing Problem directly.
func titleFor(k Kind) string {
	switch k {
	case KindValidation:
		return "Validation Failed"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "Not Found"
	case KindConflict:
		return "Conflict"
	case KindRateLimited:
		return "Rate Limited"
	case KindInternal:
		return "Internal Server Error"
	default:
		return "Error"
	}
}

// CodeFor builds the stable `<MODULE>_<KIND>` code string mandated by
// spec §7 (e.g. "WIDGETS_NOT_FOUND").
func CodeFor(moduleName string, k Kind) string {
	return fmt.Sprintf("%s_%s", strings.ToUpper(moduleName), k)
}

// From is the single conversion point a module's HTTP boundary uses to
// turn any error into a Problem (spec §7 propagation policy). Errors
// that are not a *DomainError are treated as Internal — a handler
// panicking or bubbling a bare DB error never leaks detail to the
// client.
func From(moduleName string, err error) Problem {
	var de *DomainError
	if !errors.As(err, &de) {
		de = Internal(err)
	}

	detail := de.Error()
	if de.kind == KindInternal {
		// Internal detail is never disclosed; only logged by the caller.
		detail = "an internal error occurred"
	}

	return Problem{
		Type:   typeBase + CodeFor(moduleName, de.kind),
		Title:  titleFor(de.kind),
		Status: de.kind.httpStatus(),
		Detail: detail,
		Code:   CodeFor(moduleName, de.kind),
	}
}

// WithTraceID returns a copy of p with TraceID set.
func (p Problem) WithTraceID(traceID string) Problem {
	p.TraceID = traceID
	return p
}
