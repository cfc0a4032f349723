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


package mock

import (
	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
)

// MockProvider is a test double for ai.AIProvider.
// It registers one MockEmbedder per requested domain and shares a single
// MockChatModel.
type MockProvider struct {
	registry  *ai.Registry
	embedders map[core.Domain]*MockEmbedder
	chat      *MockChatModel
}

// NewMockProvider creates a mock provider with default mock services for the
// given domains. Panics on an invalid domain set; tests pass literals.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockChatModel() to access concrete types for assertions.
func NewMockProvider(domains ...core.Domain) ai.AIProvider {
	embedders := make(map[core.Domain]*MockEmbedder, len(domains))
	entries := make(map[core.Domain]ai.Embedder, len(domains))
	for _, domain := range domains {
		m := NewMockEmbedder()
		embedders[domain] = m
		entries[domain] = m
	}

	registry, err := ai.NewRegistry(entries)
	if err != nil {
		panic(err)
	}

	return &MockProvider{
		registry:  registry,
		embedders: embedders,
		chat:      NewMockChatModel(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedders map[core.Domain]*MockEmbedder, chat *MockChatModel) ai.AIProvider {
	entries := make(map[core.Domain]ai.Embedder, len(embedders))
	for domain, embedder := range embedders {
		entries[domain] = embedder
	}

	registry, err := ai.NewRegistry(entries)
	if err != nil {
		panic(err)
	}

	if chat == nil {
		chat = NewMockChatModel()
	}

	return &MockProvider{
		registry:  registry,
		embedders: embedders,
		chat:      chat,
	}
}

// Registry returns the mock registry.
func (p *MockProvider) Registry() *ai.Registry {
	return p.registry
}

// ChatModel returns the mock chat model.
func (p *MockProvider) ChatModel() ai.ChatModel {
	return p.chat
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for a domain, or nil.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder(domain core.Domain) *MockEmbedder {
	return p.embedders[domain]
}

// GetMockChatModel returns the underlying mock chat model for test assertions.
func (p *MockProvider) GetMockChatModel() *MockChatModel {
	return p.chat
}
