package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/storage"
)

// Retriever performs similarity search over one domain index. The query is
// embedded with the domain's own embedder, so a query vector is only ever
// compared against vectors produced by the same model.
type Retriever struct {
	store    storage.IndexStore
	registry *ai.Registry
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(store storage.IndexStore, provider ai.AIProvider, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrIndexStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		store:    store,
		registry: provider.Registry(),
		logger:   slog.Default().With("component", "retriever"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve embeds the query once with the domain's embedder and returns the
// top-k chunks, best first. Ties are broken by insertion order.
//
// When the domain holds no chunks at all, Retrieve returns an empty result
// together with ErrEmptyIndex so the caller can distinguish "nothing
// indexed" from "nothing similar enough". Filters that merely exclude every
// chunk yield an empty result with a nil error.
func (r *Retriever) Retrieve(ctx context.Context, domain core.Domain, query string, k int, filters map[string]string) (core.RetrievalResult, error) {
	result := core.RetrievalResult{Domain: domain}

	embedder, err := r.registry.Resolve(domain)
	if err != nil {
		return result, err
	}

	count, err := r.store.Count(ctx, domain)
	if err != nil {
		return result, fmt.Errorf("counting domain %q: %w", domain, err)
	}
	if count == 0 {
		r.logger.Debug("domain index is empty", "domain", domain)
		return result, ErrEmptyIndex
	}

	vector, err := embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "domain", domain, "err", err)
		return result, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := r.store.Search(ctx, domain, vector, k, filters)
	if err != nil {
		r.logger.Error("error searching domain index", "domain", domain, "err", err)
		return result, fmt.Errorf("searching domain %q: %w", domain, err)
	}

	r.logger.Debug("retrieved chunks",
		"domain", domain,
		"k", k,
		"hits", len(chunks))

	result.Chunks = chunks
	return result, nil
}
