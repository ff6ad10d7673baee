package odata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldSet_RejectsDuplicateNames(t *testing.T) {
	_, err := NewFieldSet(
		Field{Name: "name", Column: "name", Kind: KindString},
		Field{Name: "name", Column: "other_name", Kind: KindString},
	)
	assert.Error(t, err)
}

func TestFieldSet_LookupAndNames(t *testing.T) {
	fs, err := NewFieldSet(
		Field{Name: "name", Column: "name", Kind: KindString},
		Field{Name: "qty", Column: "qty", Kind: KindInt},
	)
	require.NoError(t, err)

	f, ok := fs.Lookup("qty")
	assert.True(t, ok)
	assert.Equal(t, "qty", f.Column)

	_, ok = fs.Lookup("bogus")
	assert.False(t, ok)

	assert.Equal(t, []string{"name", "qty"}, fs.Names())
}

func TestFieldSet_NamesReturnsACopy(t *testing.T) {
	fs, err := NewFieldSet(Field{Name: "name", Column: "name", Kind: KindString})
	require.NoError(t, err)

	names := fs.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"name"}, fs.Names())
}
