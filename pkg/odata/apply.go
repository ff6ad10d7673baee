package odata

import (
	"encoding/json"
	"fmt"

	sqrl "github.com/Masterminds/squirrel"
)

// ToSqlizer compiles a parsed filter expression into a squirrel
// predicate over each field's backing column, the same way SecureConn
// builds its tenant-scope predicate.
func ToSqlizer(expr Expr) (sqrl.Sqlizer, error) {
	switch e := expr.(type) {
	case Comparison:
		return comparisonSqlizer(e)
	case BoolExpr:
		switch e.Op {
		case "not":
			inner, err := ToSqlizer(e.Children[0])
			if err != nil {
				return nil, err
			}
			sql, args, err := inner.ToSql()
			if err != nil {
				return nil, err
			}
			return sqrl.Expr(fmt.Sprintf("NOT (%s)", sql), args...), nil
		case "and":
			return conjunction(sqrl.And{}, e.Children)
		case "or":
			return disjunction(e.Children)
		default:
			return nil, fmt.Errorf("odata: unknown boolean operator %q", e.Op)
		}
	default:
		return nil, fmt.Errorf("odata: unsupported expression node %T", expr)
	}
}

func conjunction(acc sqrl.And, children []Expr) (sqrl.Sqlizer, error) {
	for _, c := range children {
		s, err := ToSqlizer(c)
		if err != nil {
			return nil, err
		}
		acc = append(acc, s)
	}
	return acc, nil
}

func disjunction(children []Expr) (sqrl.Sqlizer, error) {
	acc := sqrl.Or{}
	for _, c := range children {
		s, err := ToSqlizer(c)
		if err != nil {
			return nil, err
		}
		acc = append(acc, s)
	}
	return acc, nil
}

func comparisonSqlizer(c Comparison) (sqrl.Sqlizer, error) {
	col := c.Field.Column
	switch c.Op {
	case OpEq:
		return sqrl.Eq{col: c.Value}, nil
	case OpNe:
		return sqrl.NotEq{col: c.Value}, nil
	case OpLt:
		return sqrl.Lt{col: c.Value}, nil
	case OpLe:
		return sqrl.LtOrEq{col: c.Value}, nil
	case OpGt:
		return sqrl.Gt{col: c.Value}, nil
	case OpGe:
		return sqrl.GtOrEq{col: c.Value}, nil
	case OpIn:
		return sqrl.Eq{col: c.Value}, nil
	default:
		return nil, fmt.Errorf("odata: unknown comparison operator %q", c.Op)
	}
}

// ApplyOrderBy appends ORDER BY clauses to b for each sort term, in
// order.
func ApplyOrderBy(b sqrl.SelectBuilder, terms []SortTerm) sqrl.SelectBuilder {
	for _, t := range terms {
		dir := "ASC"
		if t.Dir == Desc {
			dir = "DESC"
		}
		b = b.OrderBy(fmt.Sprintf("%s %s", t.Field.Column, dir))
	}
	return b
}

// ApplyKeyset adds the strict tuple-comparison WHERE predicate keyset
// pagination needs: "give me rows strictly after the cursor's sort-key
// tuple" (spec §4.5 "the next page re-filters with a strict tuple
// comparison"). cursorValues must have the same length and order as
// terms; a nil/empty cursorValues means this is the first page and no
// predicate is added.
func ApplyKeyset(b sqrl.SelectBuilder, terms []SortTerm, cursorValues []any) (sqrl.SelectBuilder, error) {
	if len(cursorValues) == 0 {
		return b, nil
	}
	if len(cursorValues) != len(terms) {
		return b, fmt.Errorf("odata: cursor has %d values but %d sort terms", len(cursorValues), len(terms))
	}

	pred, err := keysetPredicate(terms, cursorValues)
	if err != nil {
		return b, err
	}
	return b.Where(pred), nil
}

// keysetPredicate builds the row-wise comparison
//
//	(c1, c2, ..., cn) > (v1, v2, ..., vn)
//
// respecting each term's direction, as a disjunction of prefix-equal
// clauses since squirrel has no native row-constructor comparison.
func keysetPredicate(terms []SortTerm, values []any) (sqrl.Sqlizer, error) {
	or := sqrl.Or{}
	for i := range terms {
		and := sqrl.And{}
		for j := 0; j < i; j++ {
			and = append(and, sqrl.Eq{terms[j].Field.Column: values[j]})
		}
		if terms[i].Dir == Desc {
			and = append(and, sqrl.Lt{terms[i].Field.Column: values[i]})
		} else {
			and = append(and, sqrl.Gt{terms[i].Field.Column: values[i]})
		}
		or = append(or, and)
	}
	return or, nil
}

// ApplySelect projects item, already marshaled to its full JSON
// response shape, down to the fields named in names. It runs after
// the row has been materialized and the page assembled, never
// touching the SQL query shape, so cursors stay stable regardless of
// $select (spec §4.5 "Ordering & pagination").
func ApplySelect(item any, names []string, fields *FieldSet) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("odata: marshal item for $select: %w", err)
	}
	var full map[string]json.RawMessage
	if err := json.Unmarshal(raw, &full); err != nil {
		return nil, fmt.Errorf("odata: unmarshal item for $select: %w", err)
	}

	out := make(map[string]json.RawMessage, len(names))
	for _, name := range names {
		if _, ok := fields.Lookup(name); !ok {
			return nil, fmt.Errorf("odata: unknown $select field %q", name)
		}
		if v, ok := full[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}
