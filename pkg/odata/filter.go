package odata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompareOp is one of the comparison operators spec §3/§4.5 enumerate.
type CompareOp string

const (
	OpEq CompareOp = "eq"
	OpNe CompareOp = "ne"
	OpLt CompareOp = "lt"
	OpLe CompareOp = "le"
	OpGt CompareOp = "gt"
	OpGe CompareOp = "ge"
	OpIn CompareOp = "in"
)

// Expr is a node of a parsed $filter expression tree.
type Expr interface{ exprNode() }

// Comparison is a leaf node: one field compared against one or more
// typed literal values (more than one only for OpIn).
type Comparison struct {
	Field Field
	Op    CompareOp
	Value any
}

// BoolExpr is an `and`/`or`/`not` combination of child expressions.
type BoolExpr struct {
	Op       string // "and", "or", "not"
	Children []Expr
}

func (Comparison) exprNode() {}
func (BoolExpr) exprNode()   {}

// maxDepth and maxLength bound parse cost (spec §4.5 "excessive
// depth/length are validation errors").
const (
	maxDepth  = 20
	maxLength = 4096
)

// ParseFilter parses a $filter query string against fields, the only
// identifiers the expression may reference (spec §4.5 "Binding").
func ParseFilter(input string, fields *FieldSet) (Expr, error) {
	if len(input) > maxLength {
		return nil, fmt.Errorf("odata: filter exceeds maximum length of %d", maxLength)
	}

	p := &filterParser{lex: newLexer(input), fields: fields}
	if err := p.advance(); err != nil {
		return nil, err
	}

	expr, err := p.parseOr(0)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("odata: unexpected token %q after filter expression", p.tok.text)
	}

	return expr, nil
}

type filterParser struct {
	lex    *lexer
	fields *FieldSet
	tok    token
}

func (p *filterParser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *filterParser) parseOr(depth int) (Expr, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("odata: filter exceeds maximum nesting depth of %d", maxDepth)
	}

	left, err := p.parseAnd(depth + 1)
	if err != nil {
		return nil, err
	}

	children := []Expr{left}
	for p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, "or") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd(depth + 1)
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}

	if len(children) == 1 {
		return left, nil
	}
	return BoolExpr{Op: "or", Children: children}, nil
}

func (p *filterParser) parseAnd(depth int) (Expr, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("odata: filter exceeds maximum nesting depth of %d", maxDepth)
	}

	left, err := p.parseUnary(depth + 1)
	if err != nil {
		return nil, err
	}

	children := []Expr{left}
	for p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, "and") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}

	if len(children) == 1 {
		return left, nil
	}
	return BoolExpr{Op: "and", Children: children}, nil
}

func (p *filterParser) parseUnary(depth int) (Expr, error) {
	if p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, "not") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		return BoolExpr{Op: "not", Children: []Expr{inner}}, nil
	}
	return p.parsePrimary(depth)
}

func (p *filterParser) parsePrimary(depth int) (Expr, error) {
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr(depth + 1)
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("odata: expected closing parenthesis")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}

	return p.parseComparison()
}

func (p *filterParser) parseComparison() (Expr, error) {
	if p.tok.kind != tokIdent {
		return nil, fmt.Errorf("odata: expected field identifier, got %q", p.tok.text)
	}
	fieldName := p.tok.text
	field, ok := p.fields.Lookup(fieldName)
	if !ok {
		return nil, fmt.Errorf("odata: unknown field %q", fieldName)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.kind != tokIdent {
		return nil, fmt.Errorf("odata: expected operator after field %q", fieldName)
	}
	op := CompareOp(strings.ToLower(p.tok.text))
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseLiteral(field.Kind)
		if err != nil {
			return nil, err
		}
		return Comparison{Field: field, Op: op, Value: val}, nil

	case OpIn:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokLParen {
			return nil, fmt.Errorf("odata: expected '(' after 'in'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		var values []any
		for {
			v, err := p.parseLiteral(field.Kind)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if p.tok.kind == tokComma {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("odata: expected ')' to close 'in' list")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Comparison{Field: field, Op: OpIn, Value: values}, nil

	default:
		return nil, fmt.Errorf("odata: unknown operator %q", p.tok.text)
	}
}

func (p *filterParser) parseLiteral(kind Kind) (any, error) {
	tok := p.tok

	switch kind {
	case KindString, KindUUID, KindDateTime:
		if tok.kind != tokString {
			return nil, fmt.Errorf("odata: expected quoted literal, got %q", tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return coerceQuoted(kind, tok.text)

	case KindBool:
		if tok.kind != tokIdent || (!strings.EqualFold(tok.text, "true") && !strings.EqualFold(tok.text, "false")) {
			return nil, fmt.Errorf("odata: expected true/false, got %q", tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return strings.EqualFold(tok.text, "true"), nil

	case KindInt:
		if tok.kind != tokNumber {
			return nil, fmt.Errorf("odata: expected integer literal, got %q", tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("odata: invalid integer literal %q: %w", tok.text, err)
		}
		return n, nil

	case KindNumber:
		if tok.kind != tokNumber {
			return nil, fmt.Errorf("odata: expected numeric literal, got %q", tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("odata: invalid numeric literal %q: %w", tok.text, err)
		}
		return f, nil

	default:
		return nil, fmt.Errorf("odata: unsupported field kind")
	}
}

func coerceQuoted(kind Kind, raw string) (any, error) {
	switch kind {
	case KindString:
		return raw, nil
	case KindUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("odata: invalid uuid literal %q: %w", raw, err)
		}
		return id, nil
	case KindDateTime:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("odata: invalid ISO-8601 datetime literal %q: %w", raw, err)
		}
		return t.UTC(), nil
	default:
		return raw, nil
	}
}
