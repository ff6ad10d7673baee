package secureorm

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/modkit-dev/modkit/pkg/accessscope"
	"github.com/modkit-dev/modkit/pkg/problem"
)

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var de *problem.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, problem.KindNotFound, de.Kind())
}

type widget struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

type widgetMapper struct{}

func (widgetMapper) Descriptor() Descriptor {
	return Descriptor{Table: "widgets", TenantCol: "tenant_id"}
}

func (widgetMapper) Columns() []string { return []string{"id", "tenant_id", "name"} }

func (widgetMapper) PrimaryKeyCol() string { return "id" }

func (widgetMapper) ScanRow(row RowScanner) (widget, error) {
	var w widget
	err := row.Scan(&w.ID, &w.TenantID, &w.Name)
	return w, err
}

func (widgetMapper) InsertValues(w widget) ([]string, []any) {
	cols := []string{"id", "name"}
	vals := []any{w.ID, w.Name}
	if w.TenantID != uuid.Nil {
		cols = append(cols, "tenant_id")
		vals = append(vals, w.TenantID)
	}
	return cols, vals
}

func newTestConn(t *testing.T) (*SecureConn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &SecureConn{db: db, tracer: otel.Tracer("test")}, mock
}

func TestFind_InjectsTenantPredicate(t *testing.T) {
	conn, mock := newTestConn(t)
	tenant := uuid.New()

	mock.ExpectQuery(`SELECT id, tenant_id, name FROM widgets WHERE tenant_id = \$1`).
		WithArgs(tenant).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}).
			AddRow(uuid.New(), tenant, "gadget"))

	got, err := Find[widget](context.Background(), conn, widgetMapper{}, accessscope.New(tenant))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "gadget", got[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_ScopeViolationIsNotFound(t *testing.T) {
	conn, mock := newTestConn(t)
	tenant := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`SELECT id, tenant_id, name FROM widgets WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenant, id).
		WillReturnError(sql.ErrNoRows)

	_, err := FindByID[widget](context.Background(), conn, widgetMapper{}, accessscope.New(tenant), id)
	require.Error(t, err)
	assertNotFound(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_FillsTenantFromScope(t *testing.T) {
	conn, mock := newTestConn(t)
	tenant := uuid.New()
	id := uuid.New()

	mock.ExpectExec(`INSERT INTO widgets \(id,name,tenant_id\) VALUES \(\$1,\$2,\$3\)`).
		WithArgs(id, "gadget", tenant).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := Insert(context.Background(), conn, widgetMapper{}, accessscope.New(tenant), widget{ID: id, Name: "gadget"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_RejectsMismatchedTenant(t *testing.T) {
	conn, _ := newTestConn(t)
	tenant := uuid.New()
	otherTenant := uuid.New()

	err := Insert(context.Background(), conn, widgetMapper{}, accessscope.New(tenant), widget{
		ID: uuid.New(), Name: "gadget", TenantID: otherTenant,
	})
	require.Error(t, err)
}

func TestDeleteByID_ZeroRowsAffectedIsNotFound(t *testing.T) {
	conn, mock := newTestConn(t)
	tenant := uuid.New()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM widgets WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenant, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := DeleteByID[widget](context.Background(), conn, widgetMapper{}, accessscope.New(tenant), id)
	require.Error(t, err)
	assertNotFound(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
