package ai

import (
	"context"
	"testing"

	"github.com/poiesic/quaerit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEmbedder struct {
	vector []float32
}

func (s *staticEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return s.vector, nil
}

func (s *staticEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

func TestNewRegistry(t *testing.T) {
	policy := &staticEmbedder{vector: []float32{1, 0}}
	legal := &staticEmbedder{vector: []float32{0, 1}}

	t.Run("valid registry", func(t *testing.T) {
		registry, err := NewRegistry(map[core.Domain]Embedder{
			"policy": policy,
			"legal":  legal,
		})
		require.NoError(t, err)
		assert.NotNil(t, registry)
	})

	t.Run("empty map", func(t *testing.T) {
		_, err := NewRegistry(nil)
		assert.ErrorIs(t, err, ErrNoEmbedders)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewRegistry(map[core.Domain]Embedder{"policy": nil})
		assert.ErrorIs(t, err, ErrNilEmbedder)
	})

	t.Run("reserved domain", func(t *testing.T) {
		_, err := NewRegistry(map[core.Domain]Embedder{core.DomainUnknown: policy})
		assert.ErrorIs(t, err, core.ErrReservedDomain)
	})
}

func TestRegistry_Resolve(t *testing.T) {
	policy := &staticEmbedder{vector: []float32{1, 0}}
	legal := &staticEmbedder{vector: []float32{0, 1}}
	registry, err := NewRegistry(map[core.Domain]Embedder{
		"policy": policy,
		"legal":  legal,
	})
	require.NoError(t, err)

	t.Run("resolves registered domain", func(t *testing.T) {
		embedder, err := registry.Resolve("policy")
		require.NoError(t, err)
		assert.Same(t, Embedder(policy), embedder)
	})

	t.Run("distinct embedders per domain", func(t *testing.T) {
		a, err := registry.Resolve("policy")
		require.NoError(t, err)
		b, err := registry.Resolve("legal")
		require.NoError(t, err)
		assert.NotSame(t, a, b)
	})

	t.Run("unknown domain", func(t *testing.T) {
		_, err := registry.Resolve("finance")
		assert.ErrorIs(t, err, core.ErrUnknownDomain)
	})
}

func TestRegistry_Domains(t *testing.T) {
	registry, err := NewRegistry(map[core.Domain]Embedder{
		"technical": &staticEmbedder{},
		"legal":     &staticEmbedder{},
		"policy":    &staticEmbedder{},
	})
	require.NoError(t, err)

	assert.Equal(t, []core.Domain{"legal", "policy", "technical"}, registry.Domains())
	assert.True(t, registry.Has("legal"))
	assert.False(t, registry.Has("finance"))
}
