package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister_SnapshotSeesIt(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	MustRegister(validDescriptor("widgets"))

	snap := Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "widgets", snap[0].Name)
}

func TestMustRegister_DuplicateNamePanics(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	MustRegister(validDescriptor("widgets"))

	assert.Panics(t, func() {
		MustRegister(validDescriptor("widgets"))
	})
}

func TestMustRegister_InvalidDescriptorPanics(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	d := validDescriptor("widgets")
	d.Name = "Invalid Name"

	assert.Panics(t, func() {
		MustRegister(d)
	})
}

func TestSnapshot_IsACopy(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	MustRegister(validDescriptor("widgets"))

	snap := Snapshot()
	snap[0].Name = "mutated"

	snap2 := Snapshot()
	assert.Equal(t, "widgets", snap2[0].Name)
}
