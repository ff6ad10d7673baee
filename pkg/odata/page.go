package odata

import "fmt"

// DefaultLimit and MaxLimit bound a page's size when the caller omits
// or exceeds $top (grounded on Midaz's DefaultMaxLimit convention, but
// adapted from offset paging to keyset paging).
const (
	DefaultLimit int64 = 20
	MaxLimit     int64 = 100
)

// Page is the generic response envelope for a cursor-paginated list
// endpoint (spec §4.5 "Page").
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// ResolveLimit validates a caller-supplied $top against MaxLimit,
// defaulting to DefaultLimit when top is zero. A negative or
// over-limit value is a validation error, not a silent clamp, so
// callers get an honest 400 instead of a page smaller than they asked
// for.
func ResolveLimit(top int64) (int64, error) {
	if top == 0 {
		return DefaultLimit, nil
	}
	if top < 0 {
		return 0, fmt.Errorf("odata: $top must be non-negative, got %d", top)
	}
	if top > MaxLimit {
		return 0, fmt.Errorf("odata: $top of %d exceeds maximum of %d", top, MaxLimit)
	}
	return top, nil
}
