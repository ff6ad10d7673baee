package clienthub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

type englishGreeter struct{}

func (englishGreeter) Greet() string { return "hello" }

type frenchGreeter struct{}

func (frenchGreeter) Greet() string { return "bonjour" }

func TestRegisterThenGet_ReturnsRegisteredValue(t *testing.T) {
	h := New()
	require.NoError(t, Register[greeter](h, englishGreeter{}))

	got, err := Get[greeter](h)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Greet())
}

func TestRegister_DoubleRegisterFails(t *testing.T) {
	h := New()
	require.NoError(t, Register[greeter](h, englishGreeter{}))

	err := Register[greeter](h, englishGreeter{})
	require.Error(t, err)

	var already *AlreadyRegisteredError
	assert.True(t, errors.As(err, &already))
}

func TestGet_NotFound(t *testing.T) {
	h := New()

	_, err := Get[greeter](h)
	require.Error(t, err)

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestRegisterScoped_SeparateFromDefault(t *testing.T) {
	h := New()
	require.NoError(t, Register[greeter](h, englishGreeter{}))
	require.NoError(t, RegisterScoped[greeter](h, "fr-vendor", frenchGreeter{}))

	def, err := Get[greeter](h)
	require.NoError(t, err)
	assert.Equal(t, "hello", def.Greet())

	scoped, err := GetScoped[greeter](h, "fr-vendor")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", scoped.Greet())
}

func TestRegisterScoped_EmptyScopeRejected(t *testing.T) {
	h := New()
	err := RegisterScoped[greeter](h, "", englishGreeter{})
	assert.Error(t, err)
}

func TestRegisterScoped_DoubleRegisterSameScopeFails(t *testing.T) {
	h := New()
	require.NoError(t, RegisterScoped[greeter](h, "v2", englishGreeter{}))

	err := RegisterScoped[greeter](h, "v2", frenchGreeter{})
	assert.Error(t, err)
}

func TestSelectPlugin_PicksLowestPriorityForVendor(t *testing.T) {
	// Scenario from spec §8.5: two plugins, vendors V1 (priority 20) and
	// V2 (priority 10); gateway config selects V2.
	candidates := []PluginCandidate{
		{ScopeKey: "authn-v1", Vendor: "V1", Priority: 20},
		{ScopeKey: "authn-v2", Vendor: "V2", Priority: 10},
	}

	chosen, ok := SelectPlugin(candidates, "V2")
	require.True(t, ok)
	assert.Equal(t, "authn-v2", chosen.ScopeKey)

	chosen, ok = SelectPlugin(candidates, "V1")
	require.True(t, ok)
	assert.Equal(t, "authn-v1", chosen.ScopeKey)
}

func TestSelectPlugin_NoMatchingVendor(t *testing.T) {
	_, ok := SelectPlugin([]PluginCandidate{{ScopeKey: "x", Vendor: "V1", Priority: 1}}, "V9")
	assert.False(t, ok)
}

func TestSelectPlugin_TiesBrokenByScopeKey(t *testing.T) {
	candidates := []PluginCandidate{
		{ScopeKey: "zzz", Vendor: "V1", Priority: 5},
		{ScopeKey: "aaa", Vendor: "V1", Priority: 5},
	}

	chosen, ok := SelectPlugin(candidates, "V1")
	require.True(t, ok)
	assert.Equal(t, "aaa", chosen.ScopeKey)
}
