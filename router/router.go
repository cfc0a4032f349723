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


package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
)

// Router decides which domain should answer a query. It uses the chat model
// for the decision only, never for generating answers.
type Router struct {
	chat         ai.ChatModel
	descriptions map[core.Domain]string
	logger       *slog.Logger
}

// decision is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type decision struct {
	Domain     string  `json:"domain"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// Option configures a Router.
type Option func(*Router) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithDescription sets the description shown to the model for a domain.
func WithDescription(domain core.Domain, description string) Option {
	return func(r *Router) error {
		if err := core.ValidateDomain(domain); err != nil {
			return err
		}
		r.descriptions[domain] = description
		return nil
	}
}

// NewRouter creates a new query router.
func NewRouter(provider ai.AIProvider, opts ...Option) (*Router, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Router{
		chat:         provider.ChatModel(),
		descriptions: maps.Clone(DefaultDescriptions),
		logger:       slog.Default().With("component", "router"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Route asks the model to pick one of the candidate domains for the query.
//
// A malformed response (unparseable JSON, or a domain outside the candidate
// set) is retried once with a stricter instruction appended. If the second
// attempt is also malformed, or the model call itself fails, Route returns
// an error wrapping ErrRoutingFailure; it never invents a decision. The
// model may answer with the "unknown" sentinel, which is returned as-is for
// the caller to map to its default domain.
func (r *Router) Route(ctx context.Context, query string, domains []core.Domain) (core.RoutingDecision, error) {
	if len(domains) == 0 {
		return core.RoutingDecision{}, ErrNoDomains
	}

	candidates := make(map[core.Domain]bool, len(domains))
	for _, domain := range domains {
		candidates[domain] = true
	}

	userPrompt := buildUserPrompt(query)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		systemPrompt := buildSystemPrompt(domains, r.descriptions, attempt > 0)

		response, err := r.chat.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			r.logger.Error("routing call failed", "attempt", attempt+1, "err", err)
			return core.RoutingDecision{}, fmt.Errorf("%w: %w", ErrRoutingFailure, err)
		}

		var parsed decision
		if err := json.Unmarshal([]byte(ai.CleanModelJSON(response)), &parsed); err != nil {
			lastErr = err
			r.logger.Warn("error parsing routing response",
				"attempt", attempt+1,
				"response", response,
				"err", err)
			continue
		}

		selected := core.Domain(parsed.Domain)
		if selected != core.DomainUnknown && !candidates[selected] {
			lastErr = fmt.Errorf("domain %q not among candidates", parsed.Domain)
			r.logger.Warn("routing response outside candidate set",
				"attempt", attempt+1,
				"domain", parsed.Domain)
			continue
		}

		// Out-of-range confidence is clamped rather than retried; the
		// domain choice is still usable.
		confidence := parsed.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}

		r.logger.Debug("routed query",
			"domain", selected,
			"confidence", confidence)

		return core.RoutingDecision{
			Domain:     selected,
			Confidence: confidence,
			Rationale:  parsed.Rationale,
		}, nil
	}

	r.logger.Error("failed to parse routing response after retry", "err", lastErr)
	return core.RoutingDecision{}, fmt.Errorf("%w: %w", ErrRoutingFailure, lastErr)
}
