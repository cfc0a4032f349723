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


package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
)

// Generator produces answers grounded in retrieved chunks. It never sees
// anything but the chunk texts, and it refuses rather than answering from
// the model's own knowledge.
type Generator struct {
	chat   ai.ChatModel
	logger *slog.Logger
}

// response is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type response struct {
	Answer               string    `json:"answer"`
	CitedChunkIDs        []core.ID `json:"cited_chunk_ids"`
	InsufficientEvidence bool      `json:"insufficient_evidence"`
}

// Option configures a Generator.
type Option func(*Generator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a new grounded answer generator.
func NewGenerator(provider ai.AIProvider, opts ...Option) (*Generator, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	g := &Generator{
		chat:   provider.ChatModel(),
		logger: slog.Default().With("component", "generator"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Generate answers the query from the retrieved chunks only.
//
// An empty retrieval short-circuits to a refusal without a model call.
// Malformed model output is reprompted once; if it stays malformed the
// result is a refusal, never a fabricated answer. Citations the model
// invents are dropped, and an answer left with no valid citation is forced
// into a refusal. Only a failed model call returns an error.
func (g *Generator) Generate(ctx context.Context, query string, retrieved core.RetrievalResult) (core.Answer, error) {
	if retrieved.Empty() {
		g.logger.Debug("empty retrieval, refusing without model call")
		return core.Refusal(), nil
	}

	userPrompt := buildUserPrompt(query, retrieved)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		systemPrompt := answerSystemPrompt
		if attempt > 0 {
			systemPrompt += strictRetryInstruction
		}

		raw, err := g.chat.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			g.logger.Error("generation call failed", "attempt", attempt+1, "err", err)
			return core.Answer{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}

		var parsed response
		if err := json.Unmarshal([]byte(ai.CleanModelJSON(raw)), &parsed); err != nil {
			lastErr = err
			g.logger.Warn("error parsing generation response",
				"attempt", attempt+1,
				"response", raw,
				"err", err)
			continue
		}

		return g.finalize(parsed, retrieved), nil
	}

	// Structural degradation: unusable output becomes a refusal.
	g.logger.Warn("generation output malformed after retry, refusing", "err", lastErr)
	return core.Refusal(), nil
}

// finalize applies the citation backstop to a parsed model response.
func (g *Generator) finalize(parsed response, retrieved core.RetrievalResult) core.Answer {
	if parsed.InsufficientEvidence || parsed.Answer == "" {
		return core.Refusal()
	}

	// Keep only citations that point into the retrieval set
	valid := make([]core.ID, 0, len(parsed.CitedChunkIDs))
	for _, id := range parsed.CitedChunkIDs {
		if retrieved.Contains(id) {
			valid = append(valid, id)
		}
	}
	if dropped := len(parsed.CitedChunkIDs) - len(valid); dropped > 0 {
		g.logger.Warn("dropped citations outside retrieval set", "dropped", dropped)
	}

	// An answer with no supportable citation cannot be verified, so it is
	// refused regardless of its text.
	if len(valid) == 0 {
		g.logger.Warn("answer carried no valid citations, refusing")
		return core.Refusal()
	}

	return core.Answer{
		Text:          parsed.Answer,
		CitedChunkIDs: valid,
	}
}
