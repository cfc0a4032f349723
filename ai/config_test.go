package ai

import (
	"testing"

	"github.com/poiesic/quaerit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	assert.Equal(t, "qwen2.5:3b", cfg.ChatModel)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModels["policy"])
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModels["legal"])
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModels["technical"])
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
		assert.Len(t, cfg.EmbeddingModels, 3)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ChatHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithChatHost("http://chat:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.ChatHost)
	})

	t.Run("with per-domain embedding model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel("legal", "multi-qa-embedder"))

		assert.Equal(t, "multi-qa-embedder", cfg.EmbeddingModels["legal"])
		// Other domains keep their defaults
		assert.Equal(t, "embeddinggemma", cfg.EmbeddingModels["policy"])
	})

	t.Run("with replaced model map", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModels(map[core.Domain]string{
			"contracts": "text-embedding-3-small",
		}))

		assert.Len(t, cfg.EmbeddingModels, 1)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModels["contracts"])
	})

	t.Run("with custom chat model", func(t *testing.T) {
		cfg := NewConfig(WithChatModel("gpt-4o-mini"))

		assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	})
}

func TestConfig_Normalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	})

	t.Run("trims trailing slash before adding suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("keeps existing v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing chat model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ChatModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("no embedding models", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingModels = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty model for a domain", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingModels["policy"] = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("reserved domain name", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingModels["unknown"] = "embeddinggemma"
		assert.Error(t, cfg.Validate())
	})
}
