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


package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/generation"
	"github.com/poiesic/quaerit/judge"
	"github.com/poiesic/quaerit/retrieval"
	"github.com/poiesic/quaerit/router"
)

const (
	// DefaultK is the number of chunks retrieved when Options.K is zero.
	DefaultK = 5

	// DefaultMinRouteConfidence is the routing confidence below which the
	// query falls back to the default domain.
	DefaultMinRouteConfidence = 0.2
)

// Timeouts bounds each pipeline stage separately. A zero value means the
// stage runs without its own deadline.
type Timeouts struct {
	Routing    time.Duration
	Retrieval  time.Duration
	Generation time.Duration
	Evaluation time.Duration
}

// DefaultTimeouts leaves room for slow local models while keeping a stuck
// stage from pinning a query forever.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Routing:    30 * time.Second,
		Retrieval:  30 * time.Second,
		Generation: 2 * time.Minute,
		Evaluation: 2 * time.Minute,
	}
}

// Options tunes a single Run call.
type Options struct {
	// K is the number of chunks to retrieve. Zero means DefaultK.
	K int

	// Filters restricts retrieval to chunks whose metadata matches every
	// entry exactly.
	Filters map[string]string

	// SkipEvaluation omits the judge pass; the result's Evaluation is nil.
	SkipEvaluation bool
}

// Pipeline orchestrates one query through routing, retrieval, generation,
// and evaluation. It holds no per-query state, so a single Pipeline serves
// concurrent queries.
type Pipeline struct {
	router    *router.Router
	retriever *retrieval.Retriever
	generator *generation.Generator
	judge     *judge.Judge

	domains            []core.Domain
	defaultDomain      core.Domain
	minRouteConfidence float64
	timeouts           Timeouts
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithTimeouts overrides the per-stage timeouts.
func WithTimeouts(timeouts Timeouts) Option {
	return func(p *Pipeline) error {
		p.timeouts = timeouts
		return nil
	}
}

// WithMinRouteConfidence sets the confidence threshold below which routing
// falls back to the default domain.
func WithMinRouteConfidence(min float64) Option {
	return func(p *Pipeline) error {
		if err := core.ValidateConfidence(min); err != nil {
			return err
		}
		p.minRouteConfidence = min
		return nil
	}
}

// NewPipeline creates a query pipeline over the given stage components.
// The default domain receives queries that cannot be routed; it must be one
// of the provider's registered domains.
func NewPipeline(
	queryRouter *router.Router,
	retriever *retrieval.Retriever,
	generator *generation.Generator,
	answerJudge *judge.Judge,
	provider ai.AIProvider,
	defaultDomain core.Domain,
	opts ...Option,
) (*Pipeline, error) {
	if queryRouter == nil {
		return nil, ErrRouterRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if answerJudge == nil {
		return nil, ErrJudgeRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if !provider.Registry().Has(defaultDomain) {
		return nil, ErrInvalidDefaultDomain
	}

	p := &Pipeline{
		router:             queryRouter,
		retriever:          retriever,
		generator:          generator,
		judge:              answerJudge,
		domains:            provider.Registry().Domains(),
		defaultDomain:      defaultDomain,
		minRouteConfidence: DefaultMinRouteConfidence,
		timeouts:           DefaultTimeouts(),
		logger:             slog.Default().With("component", "pipeline"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run executes one query through the full pipeline.
func (p *Pipeline) Run(ctx context.Context, query string, opts Options) (*core.QueryResult, error) {
	return p.RunWithMonitor(ctx, query, opts, nil)
}

// RunWithMonitor executes one query with per-stage monitoring callbacks.
//
// Recoverable conditions never surface as errors: routing failures fall
// back to the default domain, an empty index proceeds to a refusal, and a
// failed evaluation yields the unscored sentinel. A returned error is
// always a *StageError wrapping the fatal cause, and it aborts only this
// query.
func (p *Pipeline) RunWithMonitor(ctx context.Context, query string, opts Options, monitor Monitor) (*core.QueryResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if query == "" {
		return nil, &StageError{Stage: StateRouting, Err: ErrEmptyQuery}
	}

	monitor.Start(query)
	state := StateRouting
	monitor.StateChange("", state)

	fail := func(stage State, err error) (*core.QueryResult, error) {
		monitor.StateChange(state, StateError)
		p.logger.Error("query failed", "stage", stage, "err", err)
		return nil, &StageError{Stage: stage, Err: err}
	}
	advance := func(to State) {
		monitor.StateChange(state, to)
		state = to
	}

	// ROUTING
	decision, err := p.route(ctx, query)
	if err != nil {
		return fail(StateRouting, err)
	}
	monitor.AfterRouting(decision)

	if err := ctx.Err(); err != nil {
		return fail(state, err)
	}
	advance(StateRetrieving)

	// RETRIEVING
	k := opts.K
	if k <= 0 {
		k = DefaultK
	}
	retrieveCtx, cancel := p.stageContext(ctx, p.timeouts.Retrieval)
	retrieved, err := p.retriever.Retrieve(retrieveCtx, decision.Domain, query, k, opts.Filters)
	cancel()
	if err != nil && !errors.Is(err, retrieval.ErrEmptyIndex) {
		return fail(StateRetrieving, err)
	}
	if errors.Is(err, retrieval.ErrEmptyIndex) {
		p.logger.Info("domain index is empty, proceeding to refusal", "domain", decision.Domain)
	}
	monitor.AfterRetrieval(retrieved)

	if err := ctx.Err(); err != nil {
		return fail(state, err)
	}
	advance(StateGenerating)

	// GENERATING
	generateCtx, cancel := p.stageContext(ctx, p.timeouts.Generation)
	answer, err := p.generator.Generate(generateCtx, query, retrieved)
	cancel()
	if err != nil {
		return fail(StateGenerating, err)
	}
	monitor.AfterGeneration(answer)

	if err := ctx.Err(); err != nil {
		return fail(state, err)
	}

	result := &core.QueryResult{
		Answer:    answer,
		Routing:   decision,
		Retrieved: retrieved,
	}

	// EVALUATING
	if !opts.SkipEvaluation {
		advance(StateEvaluating)
		evaluateCtx, cancel := p.stageContext(ctx, p.timeouts.Evaluation)
		result.Evaluation = p.judge.Evaluate(evaluateCtx, query, answer, retrieved)
		cancel()
		monitor.AfterEvaluation(result.Evaluation)
	}

	advance(StateDone)
	monitor.Finish(result)

	p.logger.Debug("query complete",
		"domain", decision.Domain,
		"fallback", decision.Fallback,
		"hits", len(retrieved.Chunks),
		"refused", answer.Refused)

	return result, nil
}

// route runs the routing stage and applies the fallback policy.
//
// Three conditions send a query to the default domain: the router gives up
// (confidence forced to 0), the router answers "unknown", or the reported
// confidence is below the minimum. In the latter two cases the router's
// confidence and rationale are preserved so callers can see what the model
// actually thought.
func (p *Pipeline) route(ctx context.Context, query string) (core.RoutingDecision, error) {
	routeCtx, cancel := p.stageContext(ctx, p.timeouts.Routing)
	defer cancel()

	decision, err := p.router.Route(routeCtx, query, p.domains)
	switch {
	case errors.Is(err, router.ErrRoutingFailure):
		p.logger.Warn("routing failed, falling back to default domain",
			"default", p.defaultDomain, "err", err)
		return core.RoutingDecision{
			Domain:     p.defaultDomain,
			Confidence: 0,
			Rationale:  "routing failed, falling back to default domain",
			Fallback:   true,
		}, nil
	case err != nil:
		return core.RoutingDecision{}, err
	}

	if decision.Domain == core.DomainUnknown {
		p.logger.Info("router selected unknown, falling back to default domain",
			"default", p.defaultDomain, "confidence", decision.Confidence)
		decision.Domain = p.defaultDomain
		decision.Fallback = true
		return decision, nil
	}

	if decision.Confidence < p.minRouteConfidence {
		p.logger.Info("routing confidence below minimum, falling back to default domain",
			"domain", decision.Domain,
			"confidence", decision.Confidence,
			"minimum", p.minRouteConfidence)
		decision.Domain = p.defaultDomain
		decision.Fallback = true
	}
	return decision, nil
}

func (p *Pipeline) stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
