package odata

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFields(t *testing.T) *FieldSet {
	t.Helper()
	fs, err := NewFieldSet(
		Field{Name: "name", Column: "name", Kind: KindString},
		Field{Name: "qty", Column: "qty", Kind: KindInt},
		Field{Name: "price", Column: "price", Kind: KindNumber},
		Field{Name: "active", Column: "active", Kind: KindBool},
		Field{Name: "id", Column: "id", Kind: KindUUID},
		Field{Name: "createdAt", Column: "created_at", Kind: KindDateTime},
	)
	require.NoError(t, err)
	return fs
}

func TestParseFilter_SimpleComparison(t *testing.T) {
	expr, err := ParseFilter("name eq 'acme'", testFields(t))
	require.NoError(t, err)

	cmp, ok := expr.(Comparison)
	require.True(t, ok)
	assert.Equal(t, "name", cmp.Field.Name)
	assert.Equal(t, OpEq, cmp.Op)
	assert.Equal(t, "acme", cmp.Value)
}

func TestParseFilter_AndOrPrecedence(t *testing.T) {
	expr, err := ParseFilter("name eq 'a' and qty gt 1 or active eq true", testFields(t))
	require.NoError(t, err)

	or, ok := expr.(BoolExpr)
	require.True(t, ok)
	assert.Equal(t, "or", or.Op)
	require.Len(t, or.Children, 2)

	and, ok := or.Children[0].(BoolExpr)
	require.True(t, ok)
	assert.Equal(t, "and", and.Op)
	require.Len(t, and.Children, 2)
}

func TestParseFilter_ParenthesesOverridePrecedence(t *testing.T) {
	expr, err := ParseFilter("name eq 'a' and (qty gt 1 or active eq true)", testFields(t))
	require.NoError(t, err)

	and, ok := expr.(BoolExpr)
	require.True(t, ok)
	assert.Equal(t, "and", and.Op)

	or, ok := and.Children[1].(BoolExpr)
	require.True(t, ok)
	assert.Equal(t, "or", or.Op)
}

func TestParseFilter_Not(t *testing.T) {
	expr, err := ParseFilter("not active eq true", testFields(t))
	require.NoError(t, err)

	not, ok := expr.(BoolExpr)
	require.True(t, ok)
	assert.Equal(t, "not", not.Op)
	require.Len(t, not.Children, 1)
}

func TestParseFilter_InOperator(t *testing.T) {
	expr, err := ParseFilter("qty in (1, 2, 3)", testFields(t))
	require.NoError(t, err)

	cmp, ok := expr.(Comparison)
	require.True(t, ok)
	assert.Equal(t, OpIn, cmp.Op)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, cmp.Value)
}

func TestParseFilter_UUIDLiteral(t *testing.T) {
	id := uuid.New()
	expr, err := ParseFilter("id eq '"+id.String()+"'", testFields(t))
	require.NoError(t, err)

	cmp, ok := expr.(Comparison)
	require.True(t, ok)
	assert.Equal(t, id, cmp.Value)
}

func TestParseFilter_UnknownFieldIsError(t *testing.T) {
	_, err := ParseFilter("bogus eq 'x'", testFields(t))
	assert.Error(t, err)
}

func TestParseFilter_TypeMismatchIsError(t *testing.T) {
	_, err := ParseFilter("qty eq 'not-a-number'", testFields(t))
	assert.Error(t, err)
}

func TestParseFilter_UnbalancedParensIsError(t *testing.T) {
	_, err := ParseFilter("(name eq 'a'", testFields(t))
	assert.Error(t, err)
}

func TestParseFilter_UnknownOperatorIsError(t *testing.T) {
	_, err := ParseFilter("name bogus 'a'", testFields(t))
	assert.Error(t, err)
}

func TestParseFilter_ExceedsMaxLengthIsError(t *testing.T) {
	huge := make([]byte, maxLength+1)
	for i := range huge {
		huge[i] = 'a'
	}
	_, err := ParseFilter(string(huge), testFields(t))
	assert.Error(t, err)
}
