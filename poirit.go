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


package poirit

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poiesic/poirit/ai"
	"github.com/poiesic/poirit/ai/openai"
	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/discover"
	"github.com/poiesic/poirit/enrich"
	"github.com/poiesic/poirit/harvest"
	"github.com/poiesic/poirit/load"
	"github.com/poiesic/poirit/overpass"
	"github.com/poiesic/poirit/pipeline"
	"github.com/poiesic/poirit/storage"
	"github.com/poiesic/poirit/storage/badger"
	"github.com/poiesic/poirit/storage/layerfs"
	"github.com/poiesic/poirit/transform"
	"github.com/poiesic/poirit/wikidata"
)

// Pipeline owns the shared infrastructure of one data directory: the
// medallion layer store, the local state store, and the remote clients
// the stages share. Factory methods hand out stages wired to them.
type Pipeline struct {
	store    storage.LayerStore
	state    storage.StateStore
	overpass *overpass.Client
	wikidata *wikidata.Client
	provider ai.Provider
	pool     *pgxpool.Pool
	logger   *slog.Logger
}

// PipelineOption configures Open.
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	aiConfig    *ai.Config
	provider    ai.Provider
	overpass    *overpass.Client
	wikidata    *wikidata.Client
	databaseURL string
	statePath   string
	logger      *slog.Logger
}

// WithAIConfig points the default enrichment provider at a specific
// endpoint and model.
func WithAIConfig(config *ai.Config) PipelineOption {
	return func(o *pipelineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a ready-made enrichment provider in place of
// the default OpenAI-compatible one.
func WithProvider(provider ai.Provider) PipelineOption {
	return func(o *pipelineOptions) {
		o.provider = provider
	}
}

// WithOverpassClient injects a configured Overpass client.
func WithOverpassClient(client *overpass.Client) PipelineOption {
	return func(o *pipelineOptions) {
		o.overpass = client
	}
}

// WithWikidataClient injects a configured Wikidata client.
func WithWikidataClient(client *wikidata.Client) PipelineOption {
	return func(o *pipelineOptions) {
		o.wikidata = client
	}
}

// WithDatabaseURL enables the load stage by opening a Postgres pool.
func WithDatabaseURL(url string) PipelineOption {
	return func(o *pipelineOptions) {
		o.databaseURL = url
	}
}

// WithStatePath overrides the state store location. Defaults to the
// "state" directory under the data dir.
func WithStatePath(path string) PipelineOption {
	return func(o *pipelineOptions) {
		o.statePath = path
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(o *pipelineOptions) {
		o.logger = logger
	}
}

// Open prepares the shared infrastructure under dataDir: the layer
// tree, the state store, and the stage clients. The database pool is
// only opened when a URL is configured; every other dependency is
// ready when Open returns.
func Open(dataDir string, opts ...PipelineOption) (*Pipeline, error) {
	options := &pipelineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := layerfs.Open(dataDir)
	if err != nil {
		return nil, err
	}

	statePath := options.statePath
	if statePath == "" {
		statePath = filepath.Join(dataDir, "state")
	}
	state, err := badger.OpenStateStore(statePath)
	if err != nil {
		return nil, err
	}

	overpassClient := options.overpass
	if overpassClient == nil {
		overpassClient, err = overpass.NewClient()
		if err != nil {
			state.Close()
			return nil, err
		}
	}

	wikidataClient := options.wikidata
	if wikidataClient == nil {
		wikidataClient, err = wikidata.NewClient()
		if err != nil {
			state.Close()
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			state.Close()
			return nil, err
		}
	}

	var pool *pgxpool.Pool
	if options.databaseURL != "" {
		pool, err = pgxpool.New(context.Background(), options.databaseURL)
		if err != nil {
			provider.Close()
			state.Close()
			return nil, fmt.Errorf("open database pool: %w", err)
		}
	}

	return &Pipeline{
		store:    store,
		state:    state,
		overpass: overpassClient,
		wikidata: wikidataClient,
		provider: provider,
		pool:     pool,
		logger:   logger,
	}, nil
}

// Close releases the provider, the database pool, and the state store.
func (p *Pipeline) Close() error {
	if err := p.provider.Close(); err != nil {
		p.logger.Error("error closing AI provider", "err", err)
	}
	if p.pool != nil {
		p.pool.Close()
	}
	if err := p.state.Close(); err != nil {
		p.logger.Error("error closing state store", "err", err)
		return err
	}
	return nil
}

// LayerStore exposes the medallion file tree.
func (p *Pipeline) LayerStore() storage.LayerStore {
	return p.store
}

// StateStore exposes the enrichment cache and checkpoint store.
func (p *Pipeline) StateStore() storage.StateStore {
	return p.state
}

// NewHarvester builds the bronze stage.
func (p *Pipeline) NewHarvester(opts ...harvest.Option) (*harvest.Harvester, error) {
	return harvest.NewHarvester(p.store, p.overpass, opts...)
}

// NewProcessor builds the silver stage.
func (p *Pipeline) NewProcessor(opts ...transform.Option) (*transform.Processor, error) {
	return transform.NewProcessor(p.store, opts...)
}

// NewEnricher builds the gold POI stage, wired to the state store for
// caching and checkpoints.
func (p *Pipeline) NewEnricher(opts ...enrich.Option) (*enrich.Enricher, error) {
	merged := append([]enrich.Option{enrich.WithStateStore(p.state)}, opts...)
	return enrich.NewEnricher(p.store, p.provider, merged...)
}

// NewDestinationEnricher builds the city-profile stage, wired to
// Wikidata for the facts supplement.
func (p *Pipeline) NewDestinationEnricher(opts ...enrich.DestinationOption) (*enrich.DestinationEnricher, error) {
	merged := append([]enrich.DestinationOption{enrich.WithWikidataClient(p.wikidata)}, opts...)
	return enrich.NewDestinationEnricher(p.store, p.provider.DestinationEnricher(), merged...)
}

// NewLoader builds the Postgres stage. Requires a database URL at
// Open time.
func (p *Pipeline) NewLoader(opts ...load.LoaderOption) (*load.Loader, error) {
	if p.pool == nil {
		return nil, load.ErrDatabaseRequired
	}
	repo, err := load.NewRepository(p.pool, load.WithRepositoryLogger(p.logger))
	if err != nil {
		return nil, err
	}
	merged := append([]load.LoaderOption{load.WithCheckpoints(p.state)}, opts...)
	return load.NewLoader(p.store, repo, merged...)
}

// NewDiscoverer builds the destination discovery runner.
func (p *Pipeline) NewDiscoverer(opts ...discover.Option) (*discover.Discoverer, error) {
	merged := append([]discover.Option{discover.WithWikidataClient(p.wikidata)}, opts...)
	return discover.NewDiscoverer(p.overpass, merged...)
}

// Status summarizes one city's progress through the layers.
func (p *Pipeline) Status(ctx context.Context, city string) (*pipeline.CityStatus, error) {
	return pipeline.CollectStatus(ctx, p.store, p.state, city)
}

// StatusAll summarizes every city present in the data dir.
func (p *Pipeline) StatusAll(ctx context.Context) ([]pipeline.CityStatus, error) {
	return pipeline.CollectAll(ctx, p.store, p.state)
}

// Run executes the full pipeline for one city: harvest, process,
// enrich, enrich-destination, and load. The first stage error stops
// the run. skipLoad drops the load stage for runs without a database.
func (p *Pipeline) Run(ctx context.Context, city core.City, skipLoad bool) error {
	stages := []pipeline.Stage{
		{Name: "harvest", Run: func(ctx context.Context) error {
			harvester, err := p.NewHarvester()
			if err != nil {
				return err
			}
			_, err = harvester.Run(ctx, city)
			return err
		}},
		{Name: "process", Run: func(ctx context.Context) error {
			processor, err := p.NewProcessor()
			if err != nil {
				return err
			}
			_, err = processor.Run(ctx, city)
			return err
		}},
		{Name: "enrich", Run: func(ctx context.Context) error {
			enricher, err := p.NewEnricher()
			if err != nil {
				return err
			}
			_, err = enricher.Run(ctx, city)
			return err
		}},
		{Name: "enrich-destination", Run: func(ctx context.Context) error {
			enricher, err := p.NewDestinationEnricher()
			if err != nil {
				return err
			}
			_, err = enricher.Run(ctx, city)
			return err
		}},
	}
	if !skipLoad {
		stages = append(stages, pipeline.Stage{Name: "load", Run: func(ctx context.Context) error {
			loader, err := p.NewLoader()
			if err != nil {
				return err
			}
			_, err = loader.Run(ctx, city)
			return err
		}})
	}

	orchestrator, err := pipeline.NewOrchestrator(stages, pipeline.WithOrchestratorLogger(p.logger))
	if err != nil {
		return err
	}
	return orchestrator.Run(ctx)
}
