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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/poirit"
	"github.com/poiesic/poirit/ai"
	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/discover"
	"github.com/poiesic/poirit/enrich"
	"github.com/poiesic/poirit/harvest"
	"github.com/poiesic/poirit/load"
	"github.com/poiesic/poirit/overpass"
	"github.com/poiesic/poirit/pipeline"
	"github.com/poiesic/poirit/wikidata"
)

func main() {
	// .env carries DATABASE_URL and LLM settings in development.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "poirit",
		Usage: "Tourism data pipeline: harvest, process, enrich, and load destinations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"POIRIT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Root of the bronze/silver/gold data tree",
				Value:   "./data",
				EnvVars: []string{"POIRIT_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "registry",
				Usage:   "Extra city registry JSON file, merged over the built-ins",
				EnvVars: []string{"POIRIT_REGISTRY"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "harvest",
				Usage:  "Download raw OSM tiles for a city into the bronze layer",
				Action: harvestCommand,
				Flags: []cli.Flag{
					cityFlag(),
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Retry attempts per tile",
						Value: 5,
					},
					&cli.DurationFlag{
						Name:  "base-delay",
						Usage: "Base delay for exponential backoff",
						Value: 5 * time.Second,
					},
				},
			},
			{
				Name:   "process",
				Usage:  "Normalize bronze tiles into the silver POI set",
				Action: processCommand,
				Flags:  []cli.Flag{cityFlag()},
			},
			{
				Name:   "enrich",
				Usage:  "Generate travel metadata for silver POIs into the gold layer",
				Action: enrichCommand,
				Flags: append([]cli.Flag{
					cityFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Parallel enrichment workers",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "min-priority",
						Usage: "Skip POIs scoring below this priority",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Enrich at most N new POIs this run (0 = no limit)",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "save-every",
						Usage: "Flush gold output every N completions",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Ignore cached enrichments and ask the model again",
					},
				}, llmFlags()...),
			},
			{
				Name:   "enrich-destination",
				Usage:  "Generate the city-level destination profile",
				Action: enrichDestinationCommand,
				Flags:  append([]cli.Flag{cityFlag()}, llmFlags()...),
			},
			{
				Name:   "load",
				Usage:  "Upsert a city's gold layer into Postgres",
				Action: loadCommand,
				Flags: []cli.Flag{
					cityFlag(),
					databaseFlag(true),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Activities per insert statement",
						Value: load.DefaultBatchSize,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Parse and report without touching the database",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Apply the embedded schema migrations",
				Action: migrateCommand,
				Flags:  []cli.Flag{databaseFlag(true)},
			},
			{
				Name:   "discover",
				Usage:  "List harvestable cities for a country as a registry snippet",
				Action: discoverCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "country",
						Usage:    "Country display name, e.g. Georgia",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "country-code",
						Usage:    "ISO 3166-1 alpha-2 code, e.g. GE",
						Required: true,
					},
					&cli.Int64Flag{
						Name:  "min-population",
						Usage: "Minimum settlement population",
						Value: discover.DefaultMinPopulation,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show per-city layer progress and checkpoints",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "city",
						Aliases: []string{"c"},
						Usage:   "Limit the report to one city",
					},
				},
			},
			{
				Name:   "run",
				Usage:  "Run the full pipeline for a city: harvest through load",
				Action: runCommand,
				Flags: append([]cli.Flag{
					cityFlag(),
					databaseFlag(false),
					&cli.BoolFlag{
						Name:  "skip-load",
						Usage: "Stop after the gold layer, skipping Postgres",
					},
				}, llmFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func cityFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "city",
		Aliases:  []string{"c"},
		Usage:    "City slug or name from the registry",
		Required: true,
	}
}

func databaseFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "database-url",
		Usage:    "Postgres connection string",
		Required: required,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func llmFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "llm-host",
			Usage:   "OpenAI-compatible endpoint for enrichment",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"LLM_HOST"},
		},
		&cli.StringFlag{
			Name:    "llm-model",
			Usage:   "Chat model used for enrichment",
			Value:   "llama3.1:8b",
			EnvVars: []string{"LLM_MODEL"},
		},
	}
}

// signalContext cancels on SIGINT or SIGTERM so interrupted stages can
// flush completed work before exiting.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func lookupCity(c *cli.Context) (core.City, error) {
	reg, err := core.LoadRegistry(c.String("registry"))
	if err != nil {
		return core.City{}, err
	}
	city, err := reg.Lookup(c.String("city"))
	if err != nil {
		return core.City{}, fmt.Errorf("%w (known: %s)", err, strings.Join(reg.Slugs(), ", "))
	}
	return city, nil
}

func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("llm-host")),
		ai.WithModel(c.String("llm-model")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid LLM configuration: %w", err)
	}
	return cfg, nil
}

func openPipeline(c *cli.Context, opts ...poirit.PipelineOption) (*poirit.Pipeline, error) {
	p, err := poirit.Open(c.String("data-dir"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open data dir: %w", err)
	}
	return p, nil
}

func harvestCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	city, err := lookupCity(c)
	if err != nil {
		return err
	}

	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	harvester, err := p.NewHarvester(
		harvest.WithMaxAttempts(c.Int("max-attempts")),
		harvest.WithBaseDelay(c.Duration("base-delay")),
		harvest.WithProgressWriter(os.Stderr),
	)
	if err != nil {
		return err
	}

	meta, err := harvester.Run(ctx, city)
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Tiles: %d fetched, %d skipped, %d failed\n",
		meta.Fetched, meta.Skipped, meta.Failed)
	fmt.Fprintf(os.Stderr, "Elements: %d\n", meta.Elements)
	return nil
}

func processCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	city, err := lookupCity(c)
	if err != nil {
		return err
	}

	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	processor, err := p.NewProcessor()
	if err != nil {
		return err
	}

	stats, err := processor.Run(ctx, city)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Elements: %d raw, %d parsed, %d after dedup\n",
		stats.RawElements, stats.Parsed, stats.Deduplicated)
	fmt.Fprintf(os.Stderr, "POIs: %d valid, %d rejected, %d transliterated\n",
		stats.Valid, stats.Rejected, stats.Transliterated)
	return nil
}

func enrichCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	city, err := lookupCity(c)
	if err != nil {
		return err
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	p, err := openPipeline(c, poirit.WithAIConfig(aiConfig))
	if err != nil {
		return err
	}
	defer p.Close()

	opts := []enrich.Option{
		enrich.WithWorkers(c.Int("workers")),
		enrich.WithMinPriority(c.Int("min-priority")),
		enrich.WithLimit(c.Int("limit")),
		enrich.WithSaveEvery(c.Int("save-every")),
	}
	if c.Bool("no-cache") {
		opts = append(opts, enrich.WithoutCache())
	}

	enricher, err := p.NewEnricher(opts...)
	if err != nil {
		return err
	}

	stats, err := enricher.Run(ctx, city)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Selected: %d of %d silver POIs (%d already in gold)\n",
		stats.Selected, stats.Silver, stats.Skipped)
	fmt.Fprintf(os.Stderr, "Enriched: %d from model, %d from cache, %d fallbacks\n",
		stats.FromModel, stats.FromCache, stats.Fallbacks)
	fmt.Fprintf(os.Stderr, "Gold records: %d\n", stats.Written)
	return nil
}

func enrichDestinationCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	city, err := lookupCity(c)
	if err != nil {
		return err
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	p, err := openPipeline(c, poirit.WithAIConfig(aiConfig))
	if err != nil {
		return err
	}
	defer p.Close()

	enricher, err := p.NewDestinationEnricher()
	if err != nil {
		return err
	}

	dest, err := enricher.Run(ctx, city)
	if err != nil {
		return fmt.Errorf("destination enrichment failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Destination: %s (%s), source %s\n",
		dest.Name, dest.CountryCode, dest.Source)
	return nil
}

func loadCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	city, err := lookupCity(c)
	if err != nil {
		return err
	}

	p, err := openPipeline(c, poirit.WithDatabaseURL(c.String("database-url")))
	if err != nil {
		return err
	}
	defer p.Close()

	opts := []load.LoaderOption{
		load.WithBatchSize(c.Int("batch-size")),
	}
	if c.Bool("dry-run") {
		opts = append(opts, load.WithDryRun())
	}

	loader, err := p.NewLoader(opts...)
	if err != nil {
		return err
	}

	stats, err := loader.Run(ctx, city)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if stats.DryRun {
		fmt.Fprintf(os.Stderr, "Dry run: %d activities parsed for %s\n",
			stats.Activities, stats.City)
		return nil
	}
	fmt.Fprintf(os.Stderr, "Loaded %d activities in %d batches (destination id %d)\n",
		stats.Loaded, stats.Batches, stats.DestinationID)
	if stats.Fallback {
		fmt.Fprintln(os.Stderr, "Note: osm_id index missing, used diff-and-copy fallback")
	}
	return nil
}

func migrateCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	if err := load.Migrate(ctx, c.String("database-url")); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Migrations applied")
	return nil
}

func discoverCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	overpassClient, err := overpass.NewClient()
	if err != nil {
		return err
	}
	wikidataClient, err := wikidata.NewClient()
	if err != nil {
		return err
	}

	discoverer, err := discover.NewDiscoverer(overpassClient,
		discover.WithWikidataClient(wikidataClient),
		discover.WithMinPopulation(c.Int64("min-population")),
	)
	if err != nil {
		return err
	}

	candidates, err := discoverer.Run(ctx, c.String("country"), c.String("country-code"))
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	for _, cand := range candidates {
		fmt.Fprintf(os.Stderr, "%-24s population %9d  %s\n",
			cand.City.Name, cand.Population, cand.WikidataID)
	}

	snippet, err := discover.RegistrySnippet(candidates)
	if err != nil {
		return err
	}
	fmt.Println(string(snippet))
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	p, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer p.Close()

	var statuses []pipeline.CityStatus
	if city := c.String("city"); city != "" {
		status, err := p.Status(ctx, core.Slugify(city))
		if err != nil {
			return err
		}
		statuses = append(statuses, *status)
	} else {
		statuses, err = p.StatusAll(ctx)
		if err != nil {
			return err
		}
	}

	if len(statuses) == 0 {
		fmt.Println("No cities in the data directory yet.")
		return nil
	}
	for _, status := range statuses {
		printStatus(status)
	}
	return nil
}

func printStatus(s pipeline.CityStatus) {
	fmt.Printf("%s\n", s.City)
	fmt.Printf("  bronze: %d tiles, %d elements", s.BronzeTiles, s.BronzeElements)
	if s.HarvestedAt != nil {
		fmt.Printf(" (harvested %s)", s.HarvestedAt.Format(time.RFC3339))
	}
	fmt.Println()
	fmt.Printf("  silver: %d POIs", s.SilverPOIs)
	if s.ProcessedAt != nil {
		fmt.Printf(" (processed %s)", s.ProcessedAt.Format(time.RFC3339))
	}
	fmt.Println()
	destination := "missing"
	if s.HasDestination {
		destination = "present"
	}
	fmt.Printf("  gold:   %d enriched, destination %s\n", s.GoldEnriched, destination)
	for _, cp := range s.Checkpoints {
		fmt.Printf("  %s checkpoint: %d/%d (%s)\n",
			cp.Stage, cp.Position, cp.Total, cp.UpdatedAt.Format(time.RFC3339))
	}
}

func runCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	city, err := lookupCity(c)
	if err != nil {
		return err
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	skipLoad := c.Bool("skip-load")
	opts := []poirit.PipelineOption{poirit.WithAIConfig(aiConfig)}
	if url := c.String("database-url"); url != "" {
		opts = append(opts, poirit.WithDatabaseURL(url))
	} else if !skipLoad {
		return fmt.Errorf("database-url is required unless --skip-load is set")
	}

	p, err := openPipeline(c, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Run(ctx, city, skipLoad); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
