package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
)

// Pipeline takes chunks produced by an external chunker, embeds them with
// their domain's model, and writes them to the index store. Embedding runs
// batched on a worker pool; inserts are atomic per batch.
type Pipeline struct {
	store     storage.IndexStore
	registry  *ai.Registry
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded and inserted per batch.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(store storage.IndexStore, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrIndexStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:     store,
		registry:  provider.Registry(),
		pool:      pool,
		batchSize: 32,
		logger:    slog.Default().With("component", "ingest"),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest validates, embeds, and stores the given chunks. Chunks may span
// multiple domains; each is embedded by its own domain's model. Chunks with
// a zero ID get a content-derived one, so re-ingesting the same text is an
// in-place replace rather than a duplicate.
//
// Ingest is synchronous: when it returns without error, every chunk is
// searchable. It returns the number of chunks written.
func (p *Pipeline) Ingest(ctx context.Context, chunks []*core.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	// Validate everything up front so a bad chunk cannot half-commit a batch
	byDomain := make(map[core.Domain][]*core.Chunk)
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return 0, err
		}
		if _, err := p.registry.Resolve(chunk.Domain); err != nil {
			return 0, err
		}
		if chunk.Id == 0 {
			chunk.Id = core.IDFromContent(chunk.Text)
		}
		byDomain[chunk.Domain] = append(byDomain[chunk.Domain], chunk)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
		written  int
	)

	for domain, domainChunks := range byDomain {
		embedder, _ := p.registry.Resolve(domain)

		for start := 0; start < len(domainChunks); start += p.batchSize {
			end := min(start+p.batchSize, len(domainChunks))
			batch := domainChunks[start:end]

			wg.Add(1)
			submitErr := p.pool.Submit(func() {
				defer wg.Done()
				n, err := p.ingestBatch(ctx, embedder, batch)
				mu.Lock()
				written += n
				if err != nil {
					failures = append(failures, fmt.Errorf("domain %q: %w", batch[0].Domain, err))
				}
				mu.Unlock()
			})
			if submitErr != nil {
				wg.Done()
				mu.Lock()
				failures = append(failures, submitErr)
				mu.Unlock()
			}
		}
	}

	wg.Wait()

	if len(failures) > 0 {
		return written, errors.Join(failures...)
	}

	p.logger.Info("ingested chunks", "chunks", written, "domains", len(byDomain))
	return written, nil
}

// ingestBatch embeds one batch and writes it atomically.
func (p *Pipeline) ingestBatch(ctx context.Context, embedder ai.Embedder, batch []*core.Chunk) (int, error) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	p.logger.Debug("embedding batch", "chunks", len(texts))
	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingCountMismatch, len(batch), len(vectors))
	}

	// Stored vectors are always unit length, matching what rebuild writes.
	for i := range vectors {
		vectors[i] = core.NormalizeVector(vectors[i])
	}

	if err := p.store.BulkInsert(ctx, batch, vectors); err != nil {
		return 0, fmt.Errorf("inserting batch: %w", err)
	}
	return len(batch), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
