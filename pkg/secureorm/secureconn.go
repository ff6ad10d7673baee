package secureorm

import (
	"context"
	"database/sql"
	"fmt"

	sqrl "github.com/Masterminds/squirrel"
	"github.com/bxcodec/dbresolver/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/modkit-dev/modkit/pkg/accessscope"
	"github.com/modkit-dev/modkit/pkg/problem"
)

// execer is satisfied by both dbresolver.DB and a dbresolver.Tx, so
// SecureConn's query methods work unchanged inside a transaction
// (spec §4.4 "Transactions ... carry the same scope discipline").
type execer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SecureConn is the only way module code reaches the database. It
// never exposes db, dbresolver.DB, or an unscoped squirrel builder —
// every exported method requires an accessscope.Scope (spec §4.4
// "Typestate enforcement").
type SecureConn struct {
	db     execer
	pool   dbresolver.DB // nil when this SecureConn wraps an open transaction
	tracer trace.Tracer
	module string
}

var tracerName = "github.com/modkit-dev/modkit/pkg/secureorm"

// New wraps a shared pool for use by a single module. moduleName is
// stored on the SecureConn and passed on to WithTx's SecureConn; span
// names and returned errors do not include it.
func New(pool dbresolver.DB, moduleName string) *SecureConn {
	return &SecureConn{db: pool, pool: pool, tracer: otel.Tracer(tracerName), module: moduleName}
}

// WithTx opens a transaction and passes a SecureConn wrapping it to
// fn; fn's SecureConn carries the same scope discipline as its parent
// (spec §4.4 "Transactions"). Committing or rolling back based on fn's
// return value is WithTx's responsibility, not the caller's.
func (c *SecureConn) WithTx(ctx context.Context, fn func(*SecureConn) error) error {
	if c.pool == nil {
		return problem.Internal(fmt.Errorf("secureorm: nested transactions are not supported"))
	}

	tx, err := c.pool.BeginTx(ctx, nil)
	if err != nil {
		return problem.Internal(fmt.Errorf("secureorm: begin transaction: %w", err))
	}

	txConn := &SecureConn{db: tx, tracer: c.tracer, module: c.module}

	if err := fn(txConn); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return problem.Internal(fmt.Errorf("secureorm: rollback after %w: %v", err, rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return problem.Internal(fmt.Errorf("secureorm: commit transaction: %w", err))
	}

	return nil
}

// scopePredicate conjoins the Access Scope's filters into a single
// condition per the descriptor's column mapping (spec §4.4 "Scope
// application"). It is applied identically whether the caller is
// building a SELECT, UPDATE, or DELETE, since squirrel's builder types
// each accept any sqrl.Sqlizer in their own Where method.
func scopePredicate(d Descriptor, scope accessscope.Scope) sqrl.Sqlizer {
	preds := sqrl.And{sqrl.Eq{d.TenantCol: scope.TenantID}}

	if ids, ok := scope.ResourceIDs(); ok && d.ResourceCol != "" {
		preds = append(preds, sqrl.Eq{d.ResourceCol: ids})
	}
	if owner, ok := scope.OwnerID(); ok && d.OwnerCol != "" {
		preds = append(preds, sqrl.Eq{d.OwnerCol: owner})
	}
	if rt, ok := scope.ResourceType(); ok && d.TypeCol != "" {
		preds = append(preds, sqrl.Eq{d.TypeCol: rt})
	}

	return preds
}

// Find returns every row visible under scope, in no particular order
// (callers needing ordering/pagination go through pkg/odata, which
// builds on the same squirrel.SelectBuilder seeded here).
func Find[E any](ctx context.Context, c *SecureConn, m Mapper[E], scope accessscope.Scope) ([]E, error) {
	d := m.Descriptor()

	ctx, span := c.tracer.Start(ctx, "secureorm.find")
	defer span.End()

	b := sqrl.Select(m.Columns()...).From(d.Table).
		Where(scopePredicate(d, scope)).
		PlaceholderFormat(sqrl.Dollar)

	query, args, err := b.ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, problem.Internal(fmt.Errorf("secureorm: build find query: %w", err))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, mapPGError(err, d.Table)
	}
	defer rows.Close()

	var out []E
	for rows.Next() {
		e, err := m.ScanRow(rows)
		if err != nil {
			span.RecordError(err)
			return nil, problem.Internal(fmt.Errorf("secureorm: scan %s row: %w", d.Table, err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, problem.Internal(fmt.Errorf("secureorm: iterate %s rows: %w", d.Table, err))
	}

	return out, nil
}

// FindByID returns the single entity with the given primary key,
// visible under scope. A row that exists but falls outside scope is
// reported identically to one that does not exist at all — §4.4
// "Failure semantics", existence-disclosure avoidance.
func FindByID[E any](ctx context.Context, c *SecureConn, m Mapper[E], scope accessscope.Scope, id uuid.UUID) (E, error) {
	var zero E
	d := m.Descriptor()

	ctx, span := c.tracer.Start(ctx, "secureorm.find_by_id")
	defer span.End()

	b := sqrl.Select(m.Columns()...).From(d.Table).
		Where(scopePredicate(d, scope)).
		Where(sqrl.Eq{m.PrimaryKeyCol(): id}).
		PlaceholderFormat(sqrl.Dollar)

	query, args, err := b.ToSql()
	if err != nil {
		span.RecordError(err)
		return zero, problem.Internal(fmt.Errorf("secureorm: build find_by_id query: %w", err))
	}

	row := c.db.QueryRowContext(ctx, query, args...)

	e, err := m.ScanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return zero, problem.NotFound(d.Table)
		}
		span.RecordError(err)
		return zero, mapPGError(err, d.Table)
	}

	return e, nil
}

// Insert writes e, reconciling its tenant column against scope: if the
// mapper's InsertValues omits the tenant column it is filled in from
// scope; if it supplies one that disagrees with scope.TenantID the
// insert is rejected as a scope violation (spec §4.4 "Inserts").
func Insert[E any](ctx context.Context, c *SecureConn, m Mapper[E], scope accessscope.Scope, e E) error {
	d := m.Descriptor()

	ctx, span := c.tracer.Start(ctx, "secureorm.insert")
	defer span.End()

	columns, values := m.InsertValues(e)

	tenantIdx := -1
	for i, col := range columns {
		if col == d.TenantCol {
			tenantIdx = i
			break
		}
	}

	if tenantIdx == -1 {
		columns = append(columns, d.TenantCol)
		values = append(values, scope.TenantID)
	} else if values[tenantIdx] != scope.TenantID {
		return problem.Internal(fmt.Errorf("secureorm: insert into %s: supplied tenant %v does not match scope tenant %v", d.Table, values[tenantIdx], scope.TenantID))
	}

	b := sqrl.Insert(d.Table).Columns(columns...).Values(values...).PlaceholderFormat(sqrl.Dollar)

	query, args, err := b.ToSql()
	if err != nil {
		span.RecordError(err)
		return problem.Internal(fmt.Errorf("secureorm: build insert query: %w", err))
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		span.RecordError(err)
		return mapPGError(err, d.Table)
	}

	return nil
}

// DeleteByID removes the entity with the given primary key, visible
// under scope. Deleting a row outside scope reports NotFound, same as
// FindByID.
func DeleteByID[E any](ctx context.Context, c *SecureConn, m Mapper[E], scope accessscope.Scope, id uuid.UUID) error {
	d := m.Descriptor()

	ctx, span := c.tracer.Start(ctx, "secureorm.delete_by_id")
	defer span.End()

	b := sqrl.Delete(d.Table).
		Where(scopePredicate(d, scope)).
		Where(sqrl.Eq{m.PrimaryKeyCol(): id}).
		PlaceholderFormat(sqrl.Dollar)

	query, args, err := b.ToSql()
	if err != nil {
		span.RecordError(err)
		return problem.Internal(fmt.Errorf("secureorm: build delete_by_id query: %w", err))
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return mapPGError(err, d.Table)
	}

	n, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return problem.Internal(fmt.Errorf("secureorm: rows affected for delete on %s: %w", d.Table, err))
	}
	if n == 0 {
		return problem.NotFound(d.Table)
	}

	return nil
}

// Update overwrites e's non-key columns, visible under scope. A row
// that exists but falls outside scope is reported as NotFound, same as
// FindByID/DeleteByID.
func Update[E any](ctx context.Context, c *SecureConn, m Mapper[E], scope accessscope.Scope, id uuid.UUID, e E) error {
	d := m.Descriptor()

	ctx, span := c.tracer.Start(ctx, "secureorm.update")
	defer span.End()

	columns, values := m.InsertValues(e)

	set := sqrl.Eq{}
	for i, col := range columns {
		if col == d.TenantCol || col == m.PrimaryKeyCol() {
			continue
		}
		set[col] = values[i]
	}

	b := sqrl.Update(d.Table).
		SetMap(set).
		Where(scopePredicate(d, scope)).
		Where(sqrl.Eq{m.PrimaryKeyCol(): id}).
		PlaceholderFormat(sqrl.Dollar)

	query, args, err := b.ToSql()
	if err != nil {
		span.RecordError(err)
		return problem.Internal(fmt.Errorf("secureorm: build update query: %w", err))
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return mapPGError(err, d.Table)
	}

	n, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return problem.Internal(fmt.Errorf("secureorm: rows affected for update on %s: %w", d.Table, err))
	}
	if n == 0 {
		return problem.NotFound(d.Table)
	}

	return nil
}
