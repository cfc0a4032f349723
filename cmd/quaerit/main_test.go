package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		filters, err := parseFilters(nil)
		require.NoError(t, err)
		assert.Nil(t, filters)
	})

	t.Run("key value pairs", func(t *testing.T) {
		filters, err := parseFilters([]string{"source=handbook", "language=en"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"source": "handbook", "language": "en"}, filters)
	})

	t.Run("value containing equals", func(t *testing.T) {
		filters, err := parseFilters([]string{"query=a=b"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"query": "a=b"}, filters)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseFilters([]string{"nodelimiter"})
		assert.Error(t, err)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := parseFilters([]string{"=value"})
		assert.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quaerit.yaml")
	content := `
index:
  path: /var/lib/quaerit
ai:
  embedding_host: http://embedder:8080/v1
  chat_host: http://chat:8080/v1
  chat_model: gpt-4o-mini
  embedding_models:
    policy: text-embedding-3-small
    legal: text-embedding-3-small
default_domain: legal
descriptions:
  legal: Contracts and compliance documents
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/quaerit", config.Index.Path)
	assert.Equal(t, "legal", config.DefaultDomain)
	assert.Equal(t, "Contracts and compliance documents", config.Descriptions["legal"])

	aiConfig := config.aiConfig()
	assert.Equal(t, "http://embedder:8080/v1", aiConfig.EmbeddingHost)
	assert.Equal(t, "http://chat:8080/v1", aiConfig.ChatHost)
	assert.Equal(t, "gpt-4o-mini", aiConfig.ChatModel)
	assert.Equal(t, "text-embedding-3-small", aiConfig.EmbeddingModels["policy"])
	assert.Len(t, aiConfig.EmbeddingModels, 2, "file models replace the defaults")
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_EmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quaerit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	config, err := loadConfig(path)
	require.NoError(t, err)

	aiConfig := config.aiConfig()
	assert.NotEmpty(t, aiConfig.ChatModel, "defaults survive an empty file")
	assert.NotEmpty(t, aiConfig.EmbeddingModels)
}
