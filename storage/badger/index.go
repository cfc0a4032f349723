package badger

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
)

// IndexStore implements storage.IndexStore for BadgerDB.
//
// Each domain is an isolated collection: the primary record key is
// (domain, sequence) and an ID index maps (domain, id) to the sequence.
// Keeping the primary keyed by insertion sequence means prefix iteration
// visits chunks in insertion order, so a stable sort by score preserves the
// insertion-order tie-break without extra bookkeeping.
type IndexStore struct {
	backend *Backend

	mu        sync.Mutex
	sequences map[core.Domain]*badger.Sequence
}

var _ storage.IndexStore = (*IndexStore)(nil)

// NewIndexStore creates a new IndexStore on an open backend.
//
// Returns storage.IndexStore interface to enforce abstraction.
func NewIndexStore(backend *Backend) (storage.IndexStore, error) {
	return newIndexStore(backend)
}

func newIndexStore(backend *Backend) (*IndexStore, error) {
	return &IndexStore{
		backend:   backend,
		sequences: make(map[core.Domain]*badger.Sequence),
	}, nil
}

// Close releases the per-domain sequences. The backend itself is owned by
// the caller and closed separately.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seq := range s.sequences {
		if err := seq.Release(); err != nil {
			return err
		}
	}
	s.sequences = make(map[core.Domain]*badger.Sequence)
	return nil
}

func (s *IndexStore) nextSequence(domain core.Domain) (uint64, error) {
	s.mu.Lock()
	seq, ok := s.sequences[domain]
	if !ok {
		var err error
		seq, err = s.backend.GetSequence(makeSequenceName(domain))
		if err != nil {
			s.mu.Unlock()
			return 0, err
		}
		s.sequences[domain] = seq
	}
	s.mu.Unlock()

	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// Sequence 0 is reserved so ListChunks(afterSeq=0) means "from the start".
	if n == 0 {
		return seq.Next()
	}
	return n, nil
}

// Insert appends a chunk and its vector to the chunk's domain index.
func (s *IndexStore) Insert(ctx context.Context, chunk *core.Chunk, vector []float32) error {
	if err := s.backend.checkOpen(ctx); err != nil {
		return err
	}
	return s.insertAll(ctx, []*core.Chunk{chunk}, [][]float32{vector})
}

// BulkInsert inserts many chunks in one transaction so a concurrent search
// observes either none or all of the batch.
func (s *IndexStore) BulkInsert(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error {
	if err := s.backend.checkOpen(ctx); err != nil {
		return err
	}
	if len(chunks) != len(vectors) {
		return storage.ErrVectorCountMismatch
	}
	if len(chunks) == 0 {
		return nil
	}
	return s.insertAll(ctx, chunks, vectors)
}

func (s *IndexStore) insertAll(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error {
	// Concurrent first inserts into a fresh domain all touch the dimension
	// key, so badger's conflict detection aborts all but one transaction.
	// Conflicted batches are retried; the re-run sees the committed
	// dimension and proceeds.
	for {
		err := s.insertAllTx(chunks, vectors)
		if errors.Is(err, badger.ErrConflict) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			continue
		}
		return err
	}
}

func (s *IndexStore) insertAllTx(chunks []*core.Chunk, vectors [][]float32) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for i, chunk := range chunks {
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}
			vector := vectors[i]

			if err := checkDimension(tx, chunk.Domain, len(vector)); err != nil {
				return err
			}

			// Re-inserting an existing ID replaces the stored record in
			// place, keeping its original insertion sequence.
			seq, found, err := lookupSequence(tx, chunk.Domain, chunk.Id)
			if err != nil {
				return err
			}
			if !found {
				seq, err = s.nextSequence(chunk.Domain)
				if err != nil {
					return err
				}
				if err := tx.Set(makeChunkIDKey(chunk.Domain, chunk.Id), encodeUint64(seq)); err != nil {
					return err
				}
			}

			chunk.Sequence = seq
			chunk.Vector = vector
			if err := tx.Set(makeChunkKey(chunk.Domain, seq), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// checkDimension enforces the per-domain dimension invariant inside tx.
// The first insert fixes the dimension; later vectors must agree.
func checkDimension(tx *badger.Txn, domain core.Domain, dim int) error {
	if dim == 0 {
		return storage.ErrDimensionMismatch
	}
	item, err := tx.Get(makeDimensionKey(domain))
	if err == badger.ErrKeyNotFound {
		return tx.Set(makeDimensionKey(domain), encodeUint64(uint64(dim)))
	}
	if err != nil {
		return err
	}
	var stored uint64
	err = item.Value(func(val []byte) error {
		var decodeErr error
		stored, decodeErr = decodeUint64(val)
		return decodeErr
	})
	if err != nil {
		return err
	}
	if int(stored) != dim {
		return storage.ErrDimensionMismatch
	}
	return nil
}

func lookupSequence(tx *badger.Txn, domain core.Domain, id core.ID) (uint64, bool, error) {
	item, err := tx.Get(makeChunkIDKey(domain, id))
	if err == badger.ErrKeyNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var seq uint64
	err = item.Value(func(val []byte) error {
		var decodeErr error
		seq, decodeErr = decodeUint64(val)
		return decodeErr
	})
	if err != nil {
		return 0, false, err
	}
	return seq, true, nil
}

// Search returns the top-k chunks of a domain by similarity, honoring
// exact-match metadata filters. An empty domain yields an empty slice.
func (s *IndexStore) Search(ctx context.Context, domain core.Domain, queryVector []float32, k int, filters map[string]string) ([]core.ScoredChunk, error) {
	if err := s.backend.checkOpen(ctx); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []core.ScoredChunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx, domain)
		if err != nil {
			return err
		}
		if dim == 0 {
			// Domain holds no vectors yet.
			return nil
		}
		if len(queryVector) != dim {
			return storage.ErrDimensionMismatch
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(domain)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Iteration follows insertion order (sequence-ordered keys), so a
		// stable sort below keeps the insertion-order tie-break.
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				chunk, unmarshalErr = storage.UnmarshalChunk(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			// Mid-rebuild a domain can briefly hold vectors of the old
			// dimension; they are invisible until rewritten.
			if chunk == nil || len(chunk.Vector) != len(queryVector) {
				continue
			}
			if !matchesFilters(chunk.Metadata, filters) {
				continue
			}

			// Cosine similarity (dot product for normalized vectors)
			score := dotProduct(queryVector, chunk.Vector)
			results = append(results, core.ScoredChunk{Chunk: chunk, Score: score})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending; stable keeps insertion order on ties
	slices.SortStableFunc(results, func(a, b core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// matchesFilters applies exact-match predicates over chunk metadata.
// Every filter entry must be present and equal; a nil filter matches all.
func matchesFilters(metadata map[string]string, filters map[string]string) bool {
	for key, want := range filters {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

func readDimension(tx *badger.Txn, domain core.Domain) (int, error) {
	item, err := tx.Get(makeDimensionKey(domain))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var dim uint64
	err = item.Value(func(val []byte) error {
		var decodeErr error
		dim, decodeErr = decodeUint64(val)
		return decodeErr
	})
	if err != nil {
		return 0, err
	}
	return int(dim), nil
}

// Delete removes a chunk from the domain index. No-op when absent.
func (s *IndexStore) Delete(ctx context.Context, domain core.Domain, id core.ID) error {
	if err := s.backend.checkOpen(ctx); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		seq, found, err := lookupSequence(tx, domain, id)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		if err := tx.Delete(makeChunkKey(domain, seq)); err != nil {
			return err
		}
		if err := tx.Delete(makeChunkIDKey(domain, id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteDomain removes every chunk of a domain and its recorded dimension.
func (s *IndexStore) DeleteDomain(ctx context.Context, domain core.Domain) error {
	if err := s.backend.checkOpen(ctx); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range [][]byte{makeChunkPrefix(domain), makeChunkIDPrefix(domain)} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)

			var keys [][]byte
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()

			for _, key := range keys {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
		}
		if err := tx.Delete(makeDimensionKey(domain)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (s *IndexStore) GetChunk(ctx context.Context, domain core.Domain, id core.ID) (*core.Chunk, error) {
	if err := s.backend.checkOpen(ctx); err != nil {
		return nil, err
	}
	var chunk *core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		seq, found, err := lookupSequence(tx, domain, id)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		item, err := tx.Get(makeChunkKey(domain, seq))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			chunk, unmarshalErr = storage.UnmarshalChunk(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// ListChunks returns up to limit chunks with sequence > afterSeq, in
// sequence order. Used for resumable rebuild iteration.
func (s *IndexStore) ListChunks(ctx context.Context, domain core.Domain, afterSeq uint64, limit int) ([]*core.Chunk, error) {
	if err := s.backend.checkOpen(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var chunks []*core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(domain)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeChunkKey(domain, afterSeq+1)); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				chunk, unmarshalErr = storage.UnmarshalChunk(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
			if len(chunks) >= limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// Count returns the number of chunks stored for a domain.
func (s *IndexStore) Count(ctx context.Context, domain core.Domain) (int, error) {
	if err := s.backend.checkOpen(ctx); err != nil {
		return 0, err
	}
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkIDPrefix(domain)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Dimension returns the vector dimension recorded for a domain, 0 when empty.
func (s *IndexStore) Dimension(ctx context.Context, domain core.Domain) (int, error) {
	if err := s.backend.checkOpen(ctx); err != nil {
		return 0, err
	}
	var dim int
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var readErr error
		dim, readErr = readDimension(tx, domain)
		return readErr
	}, false)
	if err != nil {
		return 0, err
	}
	return dim, nil
}

// ResetDimension overwrites the dimension recorded for a domain. Stored
// vectors are untouched; a rebuild rewrites them batch by batch.
func (s *IndexStore) ResetDimension(ctx context.Context, domain core.Domain, dim int) error {
	if err := s.backend.checkOpen(ctx); err != nil {
		return err
	}
	if dim <= 0 {
		return storage.ErrDimensionMismatch
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDimensionKey(domain), encodeUint64(uint64(dim))); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
