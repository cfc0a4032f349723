package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/quaerit/ai/mock"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDomains = []core.Domain{"policy", "legal", "technical"}

func chunkFor(domain core.Domain, text string) *core.Chunk {
	return &core.Chunk{Text: text, Domain: domain}
}

func TestNewPipeline(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(store, provider)
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p)
	})

	t.Run("with pool and batch size", func(t *testing.T) {
		p, err := NewPipeline(store, provider, WithPoolSize(2), WithBatchSize(4))
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.Equal(t, ErrIndexStoreRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(store, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestIngest_Basics(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	p, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	chunks := []*core.Chunk{
		chunkFor("policy", "Employees receive 25 vacation days per year."),
		chunkFor("policy", "Remote work requires manager approval."),
	}
	written, err := p.Ingest(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	// IDs are content-derived
	for _, chunk := range chunks {
		assert.Equal(t, core.IDFromContent(chunk.Text), chunk.Id)
	}

	count, err := store.Count(ctx, "policy")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := store.GetChunk(ctx, "policy", chunks[0].Id)
	require.NoError(t, err)
	assert.Equal(t, chunks[0].Text, stored.Text)
	assert.NotEmpty(t, stored.Vector)
}

func TestIngest_MultiDomain(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	p, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	written, err := p.Ingest(ctx, []*core.Chunk{
		chunkFor("policy", "Vacation policy."),
		chunkFor("legal", "Liability clause."),
		chunkFor("technical", "Deployment guide."),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	for _, domain := range testDomains {
		count, err := store.Count(ctx, domain)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "domain %s", domain)
	}
}

func TestIngest_ManyBatches(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	p, err := NewPipeline(store, provider, WithBatchSize(3), WithPoolSize(2))
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	var chunks []*core.Chunk
	for i := 0; i < 20; i++ {
		chunks = append(chunks, chunkFor("technical", fmt.Sprintf("Technical note %d.", i)))
	}

	written, err := p.Ingest(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 20, written)

	count, err := store.Count(ctx, "technical")
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}

func TestIngest_ConcurrentFirstBatches(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	p, err := NewPipeline(store, provider, WithBatchSize(5), WithPoolSize(8))
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	// Many batches racing into a domain with no dimension record yet all
	// touch the same key; every batch must still land.
	var chunks []*core.Chunk
	for i := 0; i < 200; i++ {
		chunks = append(chunks, chunkFor("technical", fmt.Sprintf("Runbook entry %d.", i)))
	}

	written, err := p.Ingest(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 200, written)

	count, err := store.Count(ctx, "technical")
	require.NoError(t, err)
	assert.Equal(t, 200, count)
}

func TestIngest_StoresUnitVectors(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	mockProvider := provider.(*mock.MockProvider)
	mockProvider.GetMockEmbedder("policy").EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{3.0, 4.0}
		}
		return vectors, nil
	}

	p, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	chunk := chunkFor("policy", "Expense reports are due monthly.")
	_, err = p.Ingest(ctx, []*core.Chunk{chunk})
	require.NoError(t, err)

	stored, err := store.GetChunk(ctx, "policy", chunk.Id)
	require.NoError(t, err)
	require.Len(t, stored.Vector, 2)
	assert.InDelta(t, 0.6, stored.Vector[0], 1e-6)
	assert.InDelta(t, 0.8, stored.Vector[1], 1e-6)
}

func TestIngest_ReingestReplaces(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	p, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	_, err = p.Ingest(ctx, []*core.Chunk{chunkFor("policy", "Same passage.")})
	require.NoError(t, err)
	_, err = p.Ingest(ctx, []*core.Chunk{chunkFor("policy", "Same passage.")})
	require.NoError(t, err)

	count, err := store.Count(ctx, "policy")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngest_RejectsInvalidChunk(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	p, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	written, err := p.Ingest(ctx, []*core.Chunk{
		chunkFor("policy", "A valid chunk."),
		chunkFor("policy", ""),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidChunk))
	assert.Equal(t, 0, written)

	// Validation happens before any write
	count, err := store.Count(ctx, "policy")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestIngest_RejectsUnknownDomain(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	p, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer p.Release()

	written, err := p.Ingest(context.Background(), []*core.Chunk{chunkFor("finance", "Budget text.")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownDomain))
	assert.Equal(t, 0, written)
}

func TestIngest_EmbedderFailure(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	provider := mock.NewMockProvider(testDomains...)
	mockProvider := provider.(*mock.MockProvider)

	embedderErr := errors.New("embedding service down")
	mockProvider.GetMockEmbedder("legal").EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, embedderErr
	}

	p, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	written, err := p.Ingest(ctx, []*core.Chunk{
		chunkFor("policy", "This one succeeds."),
		chunkFor("legal", "This one fails."),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, embedderErr))

	// The healthy domain's batch still landed
	assert.Equal(t, 1, written)
	count, err := store.Count(ctx, "policy")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngest_Empty(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { store.Close(); backend.Close() }()

	p, err := NewPipeline(store, mock.NewMockProvider(testDomains...))
	require.NoError(t, err)
	defer p.Release()

	written, err := p.Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}
