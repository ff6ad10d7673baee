package secureorm

import (
	"context"
	"fmt"

	sqrl "github.com/Masterminds/squirrel"

	"github.com/modkit-dev/modkit/pkg/accessscope"
	"github.com/modkit-dev/modkit/pkg/odata"
	"github.com/modkit-dev/modkit/pkg/problem"
)

// ListResult is one page of a List call: the rows of the page itself,
// already trimmed to q.Limit, and whether the query found at least one
// row beyond the page.
type ListResult[E any] struct {
	Items   []E
	HasMore bool
}

// List runs an OData-bound query over m's table. The Access Scope
// predicate is applied exactly as Find applies it; q's filter,
// ordering, and cursor are layered on top, so every OData-filtered
// query still carries the tenant predicate (spec §4.4 "Scope
// application" composed with §4.5 "Ordering & pagination"). A page is
// fetched one row oversized to detect HasMore without a separate COUNT
// query.
func List[E any](ctx context.Context, c *SecureConn, m Mapper[E], scope accessscope.Scope, q odata.Query) (ListResult[E], error) {
	d := m.Descriptor()

	ctx, span := c.tracer.Start(ctx, "secureorm.list")
	defer span.End()

	b := sqrl.Select(m.Columns()...).From(d.Table).Where(scopePredicate(d, scope))

	if q.HasFilter {
		pred, err := odata.ToSqlizer(q.Filter)
		if err != nil {
			span.RecordError(err)
			return ListResult[E]{}, problem.Validation(err.Error())
		}
		b = b.Where(pred)
	}

	b = odata.ApplyOrderBy(b, q.Order)

	b, err := odata.ApplyKeyset(b, q.Order, q.Cursor)
	if err != nil {
		span.RecordError(err)
		return ListResult[E]{}, problem.Validation(err.Error())
	}

	b = b.Limit(uint64(q.Limit + 1)).PlaceholderFormat(sqrl.Dollar)

	query, args, err := b.ToSql()
	if err != nil {
		span.RecordError(err)
		return ListResult[E]{}, problem.Internal(fmt.Errorf("secureorm: build list query: %w", err))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return ListResult[E]{}, mapPGError(err, d.Table)
	}
	defer rows.Close()

	var out []E
	for rows.Next() {
		e, err := m.ScanRow(rows)
		if err != nil {
			span.RecordError(err)
			return ListResult[E]{}, problem.Internal(fmt.Errorf("secureorm: scan %s row: %w", d.Table, err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return ListResult[E]{}, problem.Internal(fmt.Errorf("secureorm: iterate %s rows: %w", d.Table, err))
	}

	hasMore := int64(len(out)) > q.Limit
	if hasMore {
		out = out[:q.Limit]
	}

	return ListResult[E]{Items: out, HasMore: hasMore}, nil
}
