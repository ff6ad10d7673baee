package restop

import (
	"fmt"

	"github.com/modkit-dev/modkit/pkg/odata"
)

// ListQuery binds the request's $filter/$orderby/$select/$top/cursor
// parameters against fields, the per-DTO filterable-field enum spec
// §4.3 "OData integration" requires list endpoints to register.
// tiebreaker is the deterministic sort column (typically the primary
// key) appended when the caller's $orderby doesn't already name it.
func (r *Request[Req]) ListQuery(fields *odata.FieldSet, tiebreaker odata.Field) (odata.Query, error) {
	if r.fiberCtx == nil {
		return odata.Query{}, fmt.Errorf("restop: ListQuery called outside a registered operation")
	}
	values := r.fiberCtx.Context().QueryArgs()
	u := make(map[string][]string)
	values.VisitAll(func(key, value []byte) {
		u[string(key)] = append(u[string(key)], string(value))
	})
	return odata.BindQuery(u, fields, tiebreaker)
}
