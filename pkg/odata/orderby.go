package odata

import (
	"fmt"
	"strings"
)

// SortDir is the direction of one $orderby term.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// SortTerm is one (field, direction) pair from a parsed $orderby.
type SortTerm struct {
	Field Field
	Dir   SortDir
}

// ParseOrderBy parses a comma-separated $orderby query string, e.g.
// "price desc, name asc", against fields. A bare field name defaults
// to ascending, matching the OData convention.
//
// tiebreaker is appended as a final sort term, ascending, if the query
// did not already name it — keyset pagination needs a deterministic
// total order, not just whatever the caller asked to sort by.
func ParseOrderBy(input string, fields *FieldSet, tiebreaker Field) ([]SortTerm, error) {
	var terms []SortTerm

	if strings.TrimSpace(input) != "" {
		for _, part := range strings.Split(input, ",") {
			term, err := parseSortTerm(part, fields)
			if err != nil {
				return nil, err
			}
			terms = append(terms, term)
		}
	}

	for _, t := range terms {
		if t.Field.Name == tiebreaker.Name {
			return terms, nil
		}
	}
	return append(terms, SortTerm{Field: tiebreaker, Dir: Asc}), nil
}

func parseSortTerm(part string, fields *FieldSet) (SortTerm, error) {
	fields2 := strings.Fields(part)
	switch len(fields2) {
	case 1:
		f, ok := fields.Lookup(fields2[0])
		if !ok {
			return SortTerm{}, fmt.Errorf("odata: unknown orderby field %q", fields2[0])
		}
		return SortTerm{Field: f, Dir: Asc}, nil
	case 2:
		f, ok := fields.Lookup(fields2[0])
		if !ok {
			return SortTerm{}, fmt.Errorf("odata: unknown orderby field %q", fields2[0])
		}
		switch strings.ToLower(fields2[1]) {
		case "asc":
			return SortTerm{Field: f, Dir: Asc}, nil
		case "desc":
			return SortTerm{Field: f, Dir: Desc}, nil
		default:
			return SortTerm{}, fmt.Errorf("odata: orderby direction must be asc or desc, got %q", fields2[1])
		}
	default:
		return SortTerm{}, fmt.Errorf("odata: malformed orderby term %q", part)
	}
}
