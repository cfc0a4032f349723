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


package ai

import (
	"errors"
	"strings"

	"github.com/poiesic/quaerit/core"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ChatHost is the base URL for the chat completion service API used by
	// the router, generator, and judge.
	ChatHost string

	// ChatModel is the model identifier for chat completions.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ChatModel string

	// EmbeddingModels maps each domain to its embedding model identifier.
	// A query against a domain's index is always embedded with that
	// domain's model; the two are never mixed.
	EmbeddingModels map[core.Domain]string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat completion service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithEmbeddingModel sets the embedding model for a single domain.
func WithEmbeddingModel(domain core.Domain, model string) ConfigOption {
	return func(c *Config) {
		if c.EmbeddingModels == nil {
			c.EmbeddingModels = make(map[core.Domain]string)
		}
		c.EmbeddingModels[domain] = model
	}
}

// WithEmbeddingModels replaces the whole domain-to-model map.
func WithEmbeddingModels(models map[core.Domain]string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModels = models
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services, covering the three standard document domains.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost: defaultHost,
		ChatHost:      defaultHost,
		ChatModel:     "qwen2.5:3b",
		EmbeddingModels: map[core.Domain]string{
			"policy":    "embeddinggemma",
			"legal":     "embeddinggemma",
			"technical": "embeddinggemma",
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("legal", "multi-qa-embedder"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.ChatHost != "" && !strings.HasSuffix(c.ChatHost, "/v1") {
		c.ChatHost = strings.TrimSuffix(c.ChatHost, "/")
		c.ChatHost = c.ChatHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if len(c.EmbeddingModels) == 0 {
		return errors.New("ai config: at least one domain embedding model is required")
	}
	for domain, model := range c.EmbeddingModels {
		if err := core.ValidateDomain(domain); err != nil {
			return err
		}
		if model == "" {
			return errors.New("ai config: embedding model for domain " + string(domain) + " is empty")
		}
	}
	return nil
}
