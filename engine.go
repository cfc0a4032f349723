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


package quaerit

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/ai/openai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/generation"
	"github.com/poiesic/quaerit/ingest"
	"github.com/poiesic/quaerit/judge"
	"github.com/poiesic/quaerit/pipeline"
	"github.com/poiesic/quaerit/rebuild"
	"github.com/poiesic/quaerit/retrieval"
	"github.com/poiesic/quaerit/router"
	"github.com/poiesic/quaerit/storage"
	"github.com/poiesic/quaerit/storage/badger"
)

// DefaultDomain receives queries the router could not place.
const DefaultDomain = core.Domain("policy")

// Engine ties the stores, the AI provider, and the query pipeline together
// behind one handle. Queries are independent; each Query call is safe to run
// from its own goroutine.
type Engine struct {
	backend     *badger.Backend
	store       storage.IndexStore
	checkpoints storage.CheckpointStore
	provider    ai.AIProvider
	pipeline    *pipeline.Pipeline
	ingestor    *ingest.Pipeline
	logger      *slog.Logger
}

// DomainStats describes one domain's index.
type DomainStats struct {
	Chunks    int
	Dimension int
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	provider      ai.AIProvider
	defaultDomain core.Domain
	pipelineOpts  []pipeline.Option
	routerOpts    []router.Option
}

// WithAIConfig sets the AI service configuration used to build the provider.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider. When set, the engine uses it
// as-is and the AI config is ignored. The engine takes ownership and closes
// the provider on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithDefaultDomain sets the domain that receives unroutable queries.
// It must be one of the provider's registered domains.
func WithDefaultDomain(domain core.Domain) EngineOption {
	return func(o *engineOptions) {
		o.defaultDomain = domain
	}
}

// WithPipelineOptions forwards options to the query pipeline.
func WithPipelineOptions(opts ...pipeline.Option) EngineOption {
	return func(o *engineOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithRouterOptions forwards options to the query router.
func WithRouterOptions(opts ...router.Option) EngineOption {
	return func(o *engineOptions) {
		o.routerOpts = append(o.routerOpts, opts...)
	}
}

// NewEngine opens the index at filePath and wires up the full query
// pipeline. An empty filePath opens an in-memory index, useful for tests.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:      ai.DefaultConfig(),
		defaultDomain: DefaultDomain,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, filePath == "")
	if err != nil {
		return nil, err
	}

	store, err := badger.NewIndexStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	checkpoints, err := badger.NewCheckpointStore(backend)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			backend.Close()
			return nil, err
		}
	}

	closeAll := func() {
		provider.Close()
		store.Close()
		backend.Close()
	}

	queryRouter, err := router.NewRouter(provider, options.routerOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}
	retriever, err := retrieval.NewRetriever(store, provider)
	if err != nil {
		closeAll()
		return nil, err
	}
	generator, err := generation.NewGenerator(provider)
	if err != nil {
		closeAll()
		return nil, err
	}
	answerJudge, err := judge.NewJudge(provider)
	if err != nil {
		closeAll()
		return nil, err
	}

	queryPipeline, err := pipeline.NewPipeline(queryRouter, retriever, generator,
		answerJudge, provider, options.defaultDomain, options.pipelineOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	ingestor, err := ingest.NewPipeline(store, provider)
	if err != nil {
		closeAll()
		return nil, err
	}

	return &Engine{
		backend:     backend,
		store:       store,
		checkpoints: checkpoints,
		provider:    provider,
		pipeline:    queryPipeline,
		ingestor:    ingestor,
		logger:      slog.Default(),
	}, nil
}

// Query runs one query through routing, retrieval, generation, and
// evaluation.
func (e *Engine) Query(ctx context.Context, query string, opts pipeline.Options) (*core.QueryResult, error) {
	return e.pipeline.Run(ctx, query, opts)
}

// QueryWithMonitor is Query with per-stage progress callbacks.
func (e *Engine) QueryWithMonitor(ctx context.Context, query string, opts pipeline.Options, monitor pipeline.Monitor) (*core.QueryResult, error) {
	return e.pipeline.RunWithMonitor(ctx, query, opts, monitor)
}

// Ingest embeds and stores pre-chunked documents. Returns the number of
// chunks written.
func (e *Engine) Ingest(ctx context.Context, chunks []*core.Chunk) (int, error) {
	return e.ingestor.Ingest(ctx, chunks)
}

// Rebuild re-embeds every chunk of a domain with the domain's current
// embedding model. Progress goes to the given writer; nil means stderr.
func (e *Engine) Rebuild(ctx context.Context, domain core.Domain, config *rebuild.Config, progress io.Writer) error {
	if progress == nil {
		progress = os.Stderr
	}
	rebuilder, err := rebuild.NewRebuilder(e.store, e.checkpoints, e.provider, config, progress)
	if err != nil {
		return err
	}
	return rebuilder.Run(ctx, domain)
}

// Stats reports chunk count and vector dimension for every registered domain.
func (e *Engine) Stats(ctx context.Context) (map[core.Domain]DomainStats, error) {
	stats := make(map[core.Domain]DomainStats)
	for _, domain := range e.provider.Registry().Domains() {
		count, err := e.store.Count(ctx, domain)
		if err != nil {
			return nil, err
		}
		dim, err := e.store.Dimension(ctx, domain)
		if err != nil {
			return nil, err
		}
		stats[domain] = DomainStats{Chunks: count, Dimension: dim}
	}
	return stats, nil
}

// DeleteDomain removes every chunk of a domain, including its recorded
// dimension and any rebuild checkpoint.
func (e *Engine) DeleteDomain(ctx context.Context, domain core.Domain) error {
	if err := e.store.DeleteDomain(ctx, domain); err != nil {
		return err
	}
	return e.checkpoints.ClearCheckpoint(ctx, domain)
}

// IndexStore exposes the underlying chunk index.
func (e *Engine) IndexStore() storage.IndexStore {
	return e.store
}

// Close releases the AI provider, the ingest worker pool, and the storage
// backend.
func (e *Engine) Close() error {
	e.ingestor.Release()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing index store", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
