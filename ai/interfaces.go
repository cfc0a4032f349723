package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel runs a single constrained completion against a language model.
// Callers supply a system prompt describing the expected output schema and a
// user prompt carrying the task; the raw model text comes back unparsed.
// Model output is never assumed to be well formed; callers must treat it as
// untrusted and go through CleanModelJSON before unmarshaling.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete sends one system+user prompt pair to the model and returns
	// the raw response text. Implementations run deterministically
	// (temperature 0) and request JSON output where the backend supports it.
	Complete(ctx context.Context, system, user string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates the per-domain embedder registry and the shared chat
// model, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Registry returns the domain-to-embedder registry.
	// The returned Registry and its embedders are safe for concurrent use.
	Registry() *Registry

	// ChatModel returns the language model used for routing, generation,
	// and judging. Safe for concurrent use.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
