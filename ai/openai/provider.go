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


package openai

import (
	"log/slog"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It builds one embedder per distinct embedding model, registers them per
// domain, and manages the shared chat model instance.
type Provider struct {
	config   *ai.Config
	registry *ai.Registry
	chat     *ChatModel
	logger   *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Domains configured with the same model share one embedder, so their
	// vectors stay in an identical coordinate system.
	byModel := make(map[string]*Embedder)
	embedders := make(map[core.Domain]ai.Embedder, len(config.EmbeddingModels))
	for domain, model := range config.EmbeddingModels {
		embedder, ok := byModel[model]
		if !ok {
			var err error
			embedder, err = newEmbedder(config.EmbeddingHost, model)
			if err != nil {
				return nil, err
			}
			byModel[model] = embedder
		}
		embedders[domain] = embedder
	}

	registry, err := ai.NewRegistry(embedders)
	if err != nil {
		return nil, err
	}

	chat, err := newChatModel(config.ChatHost, config.ChatModel)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		registry: registry,
		chat:     chat,
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

// Registry returns the domain-to-embedder registry.
func (p *Provider) Registry() *ai.Registry {
	return p.registry
}

// ChatModel returns the chat completion service.
func (p *Provider) ChatModel() ai.ChatModel {
	return p.chat
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
