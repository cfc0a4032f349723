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


package judge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
)

// ErrAIProviderRequired is returned when an AI provider is not provided.
var ErrAIProviderRequired = errors.New("AI provider required")

// Weights configures how the overall score is derived from the three axes.
// Faithfulness and Completeness weight the positive axes; the hallucination
// axis (1 = none, 5 = severe) subtracts HallucinationPenalty per point above 1.
type Weights struct {
	Faithfulness         float64
	Completeness         float64
	HallucinationPenalty float64
}

// DefaultWeights averages faithfulness and completeness and subtracts half a
// point per hallucination point, so a clean answer keeps its average and a
// severely fabricated one loses two full points.
func DefaultWeights() Weights {
	return Weights{
		Faithfulness:         0.5,
		Completeness:         0.5,
		HallucinationPenalty: 0.5,
	}
}

// Judge scores answers against their retrieval context with an independent
// model pass. It shares no state with the generator; the answer is judged
// purely on what was retrieved and what was said.
type Judge struct {
	chat    ai.ChatModel
	weights Weights
	logger  *slog.Logger
}

// scores is an internal type used for JSON unmarshaling. Pointer fields
// distinguish a missing axis from a reported score.
type scores struct {
	Faithfulness  *float64 `json:"faithfulness"`
	Completeness  *float64 `json:"completeness"`
	Hallucination *float64 `json:"hallucination"`
	Reasoning     string   `json:"reasoning"`
}

// Option configures a Judge.
type Option func(*Judge) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(j *Judge) error {
		if logger == nil {
			logger = slog.Default()
		}
		j.logger = logger
		return nil
	}
}

// WithWeights overrides the default overall-score weights.
func WithWeights(weights Weights) Option {
	return func(j *Judge) error {
		j.weights = weights
		return nil
	}
}

// NewJudge creates a new answer judge.
func NewJudge(provider ai.AIProvider, opts ...Option) (*Judge, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	j := &Judge{
		chat:    provider.ChatModel(),
		weights: DefaultWeights(),
		logger:  slog.Default().With("component", "judge"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(j); err != nil {
			return nil, err
		}
	}

	return j, nil
}

// Evaluate scores an answer against its retrieval context.
//
// Evaluation is advisory and never blocks a query result: a failed model
// call, unparsable output, or missing scores all yield the unscored sentinel
// with a reason, never a defaulted passing score. A refusal produced from an
// empty retrieval is marked unscored as well, since there is no context to
// be faithful to.
func (j *Judge) Evaluate(ctx context.Context, query string, answer core.Answer, retrieved core.RetrievalResult) *core.Evaluation {
	if answer.Refused && retrieved.Empty() {
		return core.Unscorable("not applicable: refusal with no retrieved context")
	}

	raw, err := j.chat.Complete(ctx, evaluationSystemPrompt, buildUserPrompt(query, answer, retrieved))
	if err != nil {
		j.logger.Warn("evaluation call failed", "err", err)
		return core.Unscorable("evaluation call failed: " + err.Error())
	}

	var parsed scores
	if err := json.Unmarshal([]byte(ai.CleanModelJSON(raw)), &parsed); err != nil {
		j.logger.Warn("error parsing evaluation response", "response", raw, "err", err)
		return core.Unscorable("unparsable evaluation output")
	}
	if parsed.Faithfulness == nil || parsed.Completeness == nil || parsed.Hallucination == nil {
		j.logger.Warn("evaluation response missing scores", "response", raw)
		return core.Unscorable("evaluation output missing scores")
	}

	faithfulness := core.ClampScore(*parsed.Faithfulness)
	completeness := core.ClampScore(*parsed.Completeness)
	hallucination := core.ClampScore(*parsed.Hallucination)

	j.logger.Debug("scored answer",
		"faithfulness", faithfulness,
		"completeness", completeness,
		"hallucination", hallucination)

	return &core.Evaluation{
		Faithfulness:  faithfulness,
		Completeness:  completeness,
		Hallucination: hallucination,
		Overall:       j.overall(faithfulness, completeness, hallucination),
		Reasoning:     parsed.Reasoning,
	}
}

// overall combines the axes per the configured weights, floored at 1.0 so
// the overall score stays on the same 1-5 scale as the axes.
func (j *Judge) overall(faithfulness, completeness, hallucination float64) float64 {
	score := faithfulness*j.weights.Faithfulness +
		completeness*j.weights.Completeness -
		j.weights.HallucinationPenalty*(hallucination-1)
	if score < 1 {
		return 1
	}
	if score > 5 {
		return 5
	}
	return score
}
