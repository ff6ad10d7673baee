package odata

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query is the bound, validated result of the four OData query
// parameters a list endpoint's builder registers (spec §4.3 "OData
// integration"): $filter, $orderby, $select, and the cursor/limit pair.
type Query struct {
	Filter    Expr
	HasFilter bool
	Order     []SortTerm
	Select    []string
	Cursor    []any
	Limit     int64
}

// BindQuery parses $filter, $orderby, $select, $top, and cursor out of
// raw query values against fields, applying ResolveLimit's default and
// MaxLimit bound and appending tiebreaker to the sort order when the
// caller didn't name it. Any parse failure is a validation error a
// restop handler should surface as problem.Validation.
func BindQuery(values url.Values, fields *FieldSet, tiebreaker Field) (Query, error) {
	var q Query

	if raw := values.Get("$filter"); raw != "" {
		expr, err := ParseFilter(raw, fields)
		if err != nil {
			return q, err
		}
		q.Filter = expr
		q.HasFilter = true
	}

	order, err := ParseOrderBy(values.Get("$orderby"), fields, tiebreaker)
	if err != nil {
		return q, err
	}
	q.Order = order

	if raw := values.Get("$select"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := fields.Lookup(name); !ok {
				return q, fmt.Errorf("odata: unknown $select field %q", name)
			}
			q.Select = append(q.Select, name)
		}
	}

	top, err := parseTop(values.Get("$top"))
	if err != nil {
		return q, err
	}
	limit, err := ResolveLimit(top)
	if err != nil {
		return q, err
	}
	q.Limit = limit

	if cursor := values.Get("cursor"); cursor != "" {
		vals, err := DecodeCursor(cursor)
		if err != nil {
			return q, err
		}
		q.Cursor = vals
	}

	return q, nil
}

func parseTop(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	top, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("odata: $top must be an integer, got %q", raw)
	}
	return top, nil
}
