package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pulkitch/strategy-backtester/internal/schema"
)

// namedAdapter is a minimal adapter for registry tests.
type namedAdapter struct{ name string }

func (a *namedAdapter) Name() string                { return a.name }
func (a *namedAdapter) ParamsSchema() schema.Schema { return schema.Schema{} }
func (a *namedAdapter) ValidateParams(values map[string]any) error {
	return schema.Validate(schema.Schema{}, values)
}
func (a *namedAdapter) DefaultParams() map[string]any { return map[string]any{} }
func (a *namedAdapter) NewSignalGenerator(map[string]any, GeneratorOptions) (SignalGenerator, error) {
	return nil, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(&namedAdapter{name: "alpha"})
	r.Register(&namedAdapter{name: "beta"})

	a, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", a.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"alpha", "beta"}, r.Names(), "insertion order preserved")
}

func TestRegistryOverwriteWarnsAndKeepsNewest(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewRegistry(zap.New(core))

	first := &namedAdapter{name: "dup"}
	second := &namedAdapter{name: "dup"}
	r.Register(first)
	r.Register(second)

	got, ok := r.Get("dup")
	require.True(t, ok)
	assert.Same(t, second, got.(*namedAdapter), "last write wins")
	assert.Equal(t, []string{"dup"}, r.Names(), "name listed once")
	assert.Equal(t, 1, logs.Len(), "collision is observable")
}

func TestRegisterDefaults(t *testing.T) {
	RegisterDefaults(zap.NewNop())

	a, ok := Default().Get(EMACrossoverName)
	require.True(t, ok)
	assert.Equal(t, EMACrossoverName, a.Name())
	assert.Contains(t, Default().Names(), EMACrossoverName)
}
