package secureorm

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit-dev/modkit/pkg/problem"
)

func TestMapPGError_UniqueViolationIsConflict(t *testing.T) {
	err := mapPGError(&pgconn.PgError{Code: sqlStateUniqueViolation}, "widgets")

	var de *problem.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, problem.KindConflict, de.Kind())
}

func TestMapPGError_ForeignKeyViolationIsValidation(t *testing.T) {
	err := mapPGError(&pgconn.PgError{Code: sqlStateForeignKeyViolation, Message: "bad ref"}, "widgets")

	var de *problem.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, problem.KindValidation, de.Kind())
}

func TestMapPGError_UnmappedPGErrorIsInternal(t *testing.T) {
	err := mapPGError(&pgconn.PgError{Code: "99999"}, "widgets")

	var de *problem.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, problem.KindInternal, de.Kind())
}

func TestMapPGError_NonPGErrorIsInternal(t *testing.T) {
	err := mapPGError(errors.New("connection reset"), "widgets")

	var de *problem.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, problem.KindInternal, de.Kind())
}
