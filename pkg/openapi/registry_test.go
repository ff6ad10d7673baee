package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddThenFreeze(t *testing.T) {
	r := New("widgets", "1.0.0")

	r.Add(Operation{Method: "GET", Path: "/widgets", Summary: "list widgets"})
	r.Add(Operation{Method: "POST", Path: "/widgets", Summary: "create widget"})

	doc := r.Freeze()

	require.True(t, r.Frozen())
	require.Contains(t, doc.Paths, "/widgets")
	assert.Contains(t, doc.Paths["/widgets"], "GET")
	assert.Contains(t, doc.Paths["/widgets"], "POST")
	assert.Equal(t, "widgets", doc.Info.Title)
}

func TestRegistry_AddAfterFreezePanics(t *testing.T) {
	r := New("widgets", "1.0.0")
	r.Freeze()

	assert.Panics(t, func() {
		r.Add(Operation{Method: "GET", Path: "/widgets"})
	})
}

func TestRegistry_FreezeIsIdempotent(t *testing.T) {
	r := New("widgets", "1.0.0")
	r.Add(Operation{Method: "GET", Path: "/widgets"})

	first := r.Freeze()
	second := r.Freeze()

	assert.Equal(t, first, second)
}
