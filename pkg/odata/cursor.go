package odata

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// cursorPayload is the wire shape of an opaque keyset cursor: the
// values of the sort-key tuple of the last row on a page, in the same
// order as the SortTerms that produced the page.
type cursorPayload struct {
	Values []any `msgpack:"v"`
}

// EncodeCursor packs the sort-key tuple of a page's last row into an
// opaque, URL-safe cursor string (spec §4.5 "Cursors are opaque,
// base-encoded records of the sort-key tuple").
func EncodeCursor(values []any) (string, error) {
	b, err := msgpack.Marshal(cursorPayload{Values: values})
	if err != nil {
		return "", fmt.Errorf("odata: encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor reverses EncodeCursor. A cursor that is not valid
// base64url or does not decode as a cursor payload (for example a
// truncated one) returns an error; callers should treat it as a 400
// validation error rather than trying to partially recover it. The
// cursor carries no integrity check, so an edited cursor that still
// decodes is returned as-is.
func DecodeCursor(cursor string) ([]any, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("odata: malformed cursor: %w", err)
	}
	var payload cursorPayload
	if err := msgpack.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("odata: malformed cursor: %w", err)
	}
	return payload.Values, nil
}
