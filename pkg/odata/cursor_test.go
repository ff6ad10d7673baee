package odata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	cursor, err := EncodeCursor([]any{"acme", int64(42)})
	require.NoError(t, err)
	assert.NotEmpty(t, cursor)

	values, err := DecodeCursor(cursor)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "acme", values[0])
}

func TestCursor_IsURLSafe(t *testing.T) {
	cursor, err := EncodeCursor([]any{"has/slash+plus"})
	require.NoError(t, err)
	assert.NotContains(t, cursor, "+")
	assert.NotContains(t, cursor, "/")
	assert.NotContains(t, cursor, "=")
}

func TestDecodeCursor_RejectsMalformedInput(t *testing.T) {
	_, err := DecodeCursor("not-valid-base64url-msgpack!!!")
	assert.Error(t, err)
}

func TestDecodeCursor_RejectsTamperedPayload(t *testing.T) {
	cursor, err := EncodeCursor([]any{"acme"})
	require.NoError(t, err)

	tampered := cursor[:len(cursor)-2]
	_, err = DecodeCursor(tampered)
	assert.Error(t, err)
}
