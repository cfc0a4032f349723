package storage

import (
	"context"

	"github.com/poiesic/quaerit/core"
)

// IndexStore provides per-domain vector collections with metadata filtering.
// Implementations must be thread-safe; a concurrent Search against a domain
// observes either the pre- or post-state of any single Insert/Delete, never a
// partially written record.
type IndexStore interface {
	// Insert appends a chunk and its embedding vector to the chunk's domain
	// index. The vector's dimension must agree with the dimension already
	// recorded for the domain; the first insert fixes it. Assigns the
	// chunk's per-domain insertion sequence, used for stable tie-breaks.
	// Returns ErrDimensionMismatch on disagreement.
	Insert(ctx context.Context, chunk *core.Chunk, vector []float32) error

	// BulkInsert inserts many chunks in one logical update. Vectors are
	// matched to chunks by position. Either all chunks become visible to
	// subsequent searches or none do.
	BulkInsert(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error

	// Search returns up to k chunks from the domain whose metadata exactly
	// matches every filter entry, ordered by similarity score descending
	// with ties broken by insertion sequence. Returns an empty slice (not
	// an error) when the domain holds no matching chunks.
	Search(ctx context.Context, domain core.Domain, queryVector []float32, k int, filters map[string]string) ([]core.ScoredChunk, error)

	// Delete removes a chunk from the domain index. Idempotent: deleting an
	// absent chunk is a no-op, and repeating a delete leaves the store in
	// the same state.
	Delete(ctx context.Context, domain core.Domain, id core.ID) error

	// DeleteDomain removes every chunk of a domain, including its recorded
	// dimension. Used for explicit index rebuilds.
	DeleteDomain(ctx context.Context, domain core.Domain) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist in the domain.
	GetChunk(ctx context.Context, domain core.Domain, id core.ID) (*core.Chunk, error)

	// ListChunks returns up to limit chunks of a domain whose insertion
	// sequence is strictly greater than afterSeq, in sequence order.
	// Supports resumable batch iteration for rebuilds.
	ListChunks(ctx context.Context, domain core.Domain, afterSeq uint64, limit int) ([]*core.Chunk, error)

	// Count returns the number of chunks stored for a domain.
	Count(ctx context.Context, domain core.Domain) (int, error)

	// Dimension returns the vector dimension recorded for a domain,
	// or 0 when the domain holds no vectors yet.
	Dimension(ctx context.Context, domain core.Domain) (int, error)

	// ResetDimension overwrites the dimension recorded for a domain.
	// Only meaningful at the start of an index rebuild with a new embedding
	// model; stored vectors keep their old dimension until rewritten.
	ResetDimension(ctx context.Context, domain core.Domain, dim int) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CheckpointStore persists rebuild progress so interrupted rebuilds resume.
type CheckpointStore interface {
	// SaveCheckpoint persists the rebuild checkpoint for a domain.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the rebuild checkpoint for a domain.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, domain core.Domain) (*core.Checkpoint, error)

	// ClearCheckpoint removes the checkpoint for a domain. Idempotent.
	ClearCheckpoint(ctx context.Context, domain core.Domain) error
}
