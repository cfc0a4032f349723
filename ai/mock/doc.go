// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider("policy", "legal")
//	embedder, _ := mockProvider.Registry().Resolve("policy")
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Scripted chat responses (e.g. malformed then valid, for retry paths)
//	chat := mockProvider.(*mock.MockProvider).GetMockChatModel()
//	chat.QueueResponse("not json at all")
//	chat.QueueResponse(`{"domain":"policy","confidence":0.9,"rationale":"HR"}`)
//
//	// Check call counts
//	count := chat.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockChatModel: Pops queued responses in FIFO order; empty string when drained
//   - MockProvider: Aggregates per-domain mock embedders and one mock chat model
package mock
