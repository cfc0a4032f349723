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


// Package ai provides abstractions for the AI services used in Quaerit.
//
// This package defines interfaces for text embedding and constrained chat
// completion, plus the per-domain embedder registry. It follows the
// dependency inversion principle, allowing the pipeline and business logic to
// depend on abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key pieces:
//
//   - Embedder: Generates vector embeddings from text
//   - ChatModel: Runs a single constrained completion (router, generator, judge)
//   - Registry: Maps each document domain to the embedder that owns its
//     index's coordinate system
//
// The registry enforces the alignment invariant structurally: a query vector
// for a domain can only be produced through Resolve, so stored and query
// vectors always come from the same model.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider) return INTERFACE types to enforce
// abstraction and prevent accidental coupling to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockChatModel)
// return CONCRETE types to enable test assertions and behavior injection via
// the mock's public fields and methods (CallCount, queued responses, Reset).
//
// # Usage Example
//
//	// Production usage with OpenAI-compatible provider
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	embedder, err := provider.Registry().Resolve("policy")
//	vector, err := embedder.EmbedText(ctx, "How many vacation days do I get?")
//
//	// Testing usage with mocks
//	mockProvider := mock.NewMockProvider("policy", "legal")
//	raw, err := mockProvider.ChatModel().Complete(ctx, system, user)
package ai
