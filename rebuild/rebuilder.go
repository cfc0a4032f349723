// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rebuild

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
)

// Config holds configuration for the rebuild operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Rebuilder re-embeds every chunk of a domain with the domain's current
// embedding model. Used after an embedding model change, when stored vectors
// no longer match what queries will be embedded with.
//
// Progress is checkpointed after every committed batch, so an interrupted
// rebuild resumes where it stopped instead of starting over.
type Rebuilder struct {
	store       storage.IndexStore
	checkpoints storage.CheckpointStore
	registry    *ai.Registry
	config      *Config
	progress    io.Writer
}

// NewRebuilder creates a new rebuilder.
// progress: where to write progress output (typically os.Stderr)
func NewRebuilder(store storage.IndexStore, checkpoints storage.CheckpointStore, provider ai.AIProvider, config *Config, progress io.Writer) (*Rebuilder, error) {
	if store == nil {
		return nil, ErrIndexStoreRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Rebuilder{
		store:       store,
		checkpoints: checkpoints,
		registry:    provider.Registry(),
		config:      config,
		progress:    progress,
	}, nil
}

// Run re-embeds all chunks of the domain.
// Progress is reported to the configured writer. A checkpoint left by an
// interrupted run is honored; the checkpoint is cleared on completion.
func (r *Rebuilder) Run(ctx context.Context, domain core.Domain) error {
	embedder, err := r.registry.Resolve(domain)
	if err != nil {
		return err
	}

	total, err := r.store.Count(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found for domain %q (0 chunks)\n", domain)
		return r.checkpoints.ClearCheckpoint(ctx, domain)
	}

	// Resume from checkpoint if one exists
	var afterSeq uint64
	processed := 0
	checkpoint, err := r.checkpoints.LoadCheckpoint(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint != nil {
		afterSeq = checkpoint.LastSequence
		processed = int(checkpoint.Processed)
		fmt.Fprintf(r.progress, "Resuming rebuild of domain %q at %d/%d chunks\n",
			domain, processed, total)
	} else {
		fmt.Fprintf(r.progress, "Starting rebuild of domain %q: %d chunks (batch size: %d)\n",
			domain, total, r.config.BatchSize)
	}

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()
	tracker.Update(processed)

	dimensionSet := checkpoint != nil

	for {
		chunks, err := r.store.ListChunks(ctx, domain, afterSeq, r.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to list chunks: %w", err)
		}
		if len(chunks) == 0 {
			break
		}

		vectors, err := r.embedBatch(ctx, embedder, chunks)
		if err != nil {
			return err
		}

		// The new model's dimension is only known after the first batch.
		// Recording it makes the store accept the new vectors.
		if !dimensionSet {
			current, err := r.store.Dimension(ctx, domain)
			if err != nil {
				return fmt.Errorf("failed to read dimension: %w", err)
			}
			if current != len(vectors[0]) {
				if err := r.store.ResetDimension(ctx, domain, len(vectors[0])); err != nil {
					return fmt.Errorf("failed to reset dimension: %w", err)
				}
			}
			dimensionSet = true
		}

		if err := r.store.BulkInsert(ctx, chunks, vectors); err != nil {
			return fmt.Errorf("failed to rewrite batch: %w", err)
		}

		afterSeq = chunks[len(chunks)-1].Sequence
		processed += len(chunks)
		tracker.Update(processed)

		if err := r.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
			Domain:       domain,
			LastSequence: afterSeq,
			Processed:    uint64(processed),
		}); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}

		// Check context between batches
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	tracker.Finish()

	if err := r.checkpoints.ClearCheckpoint(ctx, domain); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Rebuild complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return nil
}

// embedBatch re-embeds one batch with retry.
// Vectors are normalized after embedding to keep dot-product scoring
// equivalent to cosine similarity.
func (r *Rebuilder) embedBatch(ctx context.Context, embedder ai.Embedder, chunks []*core.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}

	for i := range vectors {
		vectors[i] = core.NormalizeVector(vectors[i])
	}
	return vectors, nil
}
