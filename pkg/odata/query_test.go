package odata

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindQuery_FullySpecified(t *testing.T) {
	fs := testFields(t)
	tiebreaker := Field{Name: "id", Column: "id", Kind: KindUUID}

	values := url.Values{
		"$filter":  {"name eq 'acme'"},
		"$orderby": {"price desc"},
		"$select":  {"name, price"},
		"$top":     {"10"},
	}

	q, err := BindQuery(values, fs, tiebreaker)
	require.NoError(t, err)
	assert.True(t, q.HasFilter)
	assert.Equal(t, []string{"name", "price"}, q.Select)
	assert.Equal(t, int64(10), q.Limit)
	require.Len(t, q.Order, 2)
	assert.Equal(t, "price", q.Order[0].Field.Name)
}

func TestBindQuery_DefaultsWhenEmpty(t *testing.T) {
	fs := testFields(t)
	tiebreaker := Field{Name: "id", Column: "id", Kind: KindUUID}

	q, err := BindQuery(url.Values{}, fs, tiebreaker)
	require.NoError(t, err)
	assert.False(t, q.HasFilter)
	assert.Equal(t, DefaultLimit, q.Limit)
	require.Len(t, q.Order, 1)
	assert.Equal(t, "id", q.Order[0].Field.Name)
}

func TestBindQuery_WithCursor(t *testing.T) {
	fs := testFields(t)
	tiebreaker := Field{Name: "id", Column: "id", Kind: KindUUID}

	cursor, err := EncodeCursor([]any{"acme"})
	require.NoError(t, err)

	q, err := BindQuery(url.Values{"cursor": {cursor}}, fs, tiebreaker)
	require.NoError(t, err)
	assert.Equal(t, []any{"acme"}, q.Cursor)
}

func TestBindQuery_UnknownSelectFieldIsError(t *testing.T) {
	fs := testFields(t)
	tiebreaker := Field{Name: "id", Column: "id", Kind: KindUUID}

	_, err := BindQuery(url.Values{"$select": {"bogus"}}, fs, tiebreaker)
	assert.Error(t, err)
}

func TestBindQuery_NonIntegerTopIsError(t *testing.T) {
	fs := testFields(t)
	tiebreaker := Field{Name: "id", Column: "id", Kind: KindUUID}

	_, err := BindQuery(url.Values{"$top": {"many"}}, fs, tiebreaker)
	assert.Error(t, err)
}

func TestBindQuery_MalformedFilterIsError(t *testing.T) {
	fs := testFields(t)
	tiebreaker := Field{Name: "id", Column: "id", Kind: KindUUID}

	_, err := BindQuery(url.Values{"$filter": {"bogus eq 'x'"}}, fs, tiebreaker)
	assert.Error(t, err)
}
