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
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	progdex "github.com/poiesic/progdex"
	"github.com/poiesic/progdex/ai"
	"github.com/poiesic/progdex/ai/local"
	"github.com/poiesic/progdex/ai/openai"
	"github.com/poiesic/progdex/core"
	"github.com/poiesic/progdex/dataset"
	"github.com/poiesic/progdex/ingest"
	"github.com/poiesic/progdex/storage"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "progdex",
		Usage: "Semantic index over a graduate program catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the collection from a catalog CSV file",
				Action: buildCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the catalog CSV file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents per commit batch",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for document synthesis",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild even if the collection already exists",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Disable the progress bar",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum rebuild attempts",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Search the collection with a natural-language query",
				ArgsUsage: "<query text>",
				Action:    queryCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
					},
					&cli.StringSliceFlag{
						Name:  "region",
						Usage: "Only include programs in these regions",
					},
					&cli.StringSliceFlag{
						Name:  "exclude-region",
						Usage: "Exclude programs in these regions",
					},
					&cli.StringSliceFlag{
						Name:  "tier",
						Usage: "Only include programs of these tiers",
					},
					&cli.BoolFlag{
						Name:  "thesis",
						Usage: "Only include programs that require a thesis",
					},
					&cli.BoolFlag{
						Name:  "no-thesis",
						Usage: "Only include programs without a thesis requirement",
					},
					&cli.BoolFlag{
						Name:  "with-cases",
						Usage: "Only include programs with at least one recorded admission case",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Print collection counts grouped by region, tier, and thesis requirement",
				Action: statsCommand,
				Flags:  commonFlags(),
			},
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the database directory",
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Collection name",
			Value: progdex.DefaultCollection,
		},
		&cli.StringFlag{
			Name:  "embedding-provider",
			Usage: "Embedding backend (local or openai)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
	}
}

// resolveConfig merges the optional config file with explicitly set flags.
// Flags win.
func resolveConfig(c *cli.Context) (*FileConfig, error) {
	cfg, err := LoadFileConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("embedding-provider") {
		cfg.Embedding.Provider = c.String("embedding-provider")
	}
	if c.IsSet("embedding-host") {
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}
	if c.IsSet("batch-size") {
		cfg.Load.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("pool-size") {
		cfg.Load.PoolSize = c.Int("pool-size")
	}
	if c.IsSet("top-k") {
		cfg.Query.TopK = c.Int("top-k")
	}

	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("database path is required (set --db or database.path in the config file)")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func buildEmbedder(cfg *FileConfig) (ai.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "local":
		return local.NewEmbedder(), nil
	case "openai":
		aiConfig := ai.NewConfig(
			ai.WithHost(cfg.Embedding.Host),
			ai.WithModel(cfg.Embedding.Model),
			ai.WithAPIKey(cfg.Embedding.APIKey),
			ai.WithBatchSize(cfg.Embedding.BatchSize),
		)
		if err := aiConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid embedding configuration: %w", err)
		}
		return openai.NewEmbedder(aiConfig)
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
}

func openIndex(c *cli.Context, cfg *FileConfig) (*progdex.Index, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	return progdex.NewIndex(cfg.Database.Path,
		progdex.WithEmbedder(embedder),
		progdex.WithCollection(c.String("collection")),
	)
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	ix, err := openIndex(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	// Load-or-build: an existing compatible collection is reused unless the
	// caller forces a rebuild. Open fails on an embedder mismatch, so a
	// collection built by a different backend can never be silently reused.
	if !c.Bool("force") {
		exists, err := ix.HasCollection(ctx)
		if err != nil {
			return fmt.Errorf("failed to check collection: %w", err)
		}
		if exists {
			info, err := ix.Open(ctx)
			if err != nil {
				return fmt.Errorf("failed to open collection: %w", err)
			}
			count, err := ix.Repository().Count(ctx, ix.Collection())
			if err != nil {
				return fmt.Errorf("failed to count collection: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Collection %q already built (%d documents, embedder %s); use --force to rebuild\n",
				info.Name, count, info.Embedder)
			return nil
		}
	}

	rows, err := dataset.Load(c.String("csv"))
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	opts := []ingest.Option{
		ingest.WithBatchSize(cfg.Load.BatchSize),
	}
	if cfg.Load.PoolSize > 0 {
		opts = append(opts, ingest.WithPoolSize(cfg.Load.PoolSize))
	}
	if !c.Bool("no-progress") {
		opts = append(opts, ingest.WithProgress(ingest.NewBarProgress(ingest.DefaultProgressEnabled())))
	}

	loader, err := ix.NewLoader(opts...)
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}
	defer loader.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(os.Stderr, "Collection: %s\n", c.String("collection"))
	fmt.Fprintf(os.Stderr, "Embedder: %s\n", ix.Embedder().Identity())
	fmt.Fprintf(os.Stderr, "Catalog rows: %d\n", len(rows))
	fmt.Fprintln(os.Stderr)

	// Retrying a whole rebuild is safe: each attempt recreates the
	// collection before loading.
	var stats core.RebuildStats
	err = ingest.RetryWithBackoff(ctx, func() error {
		var rebuildErr error
		stats, rebuildErr = loader.Rebuild(ctx, rows)
		return rebuildErr
	}, c.Int("max-retries"), c.Duration("retry-delay"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Committed %d documents in %d batches before failure\n",
			stats.CommittedItems, stats.CommittedBatches)
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Committed %d documents in %d batches\n",
		stats.CommittedItems, stats.CommittedBatches)
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("query text is required")
	}
	if c.Bool("thesis") && c.Bool("no-thesis") {
		return fmt.Errorf("--thesis and --no-thesis are mutually exclusive")
	}

	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	ix, err := openIndex(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	engine, err := ix.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}

	pred := buildPredicate(c)
	results, err := engine.Query(ctx, text, cfg.Query.TopK, pred)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching programs found.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s - %s (similarity %.4f)\n",
			i+1, r.Metadata.University, r.Metadata.ProgramName, r.Similarity)
		fmt.Printf("   Region: %s  Tier: %s  Cases: %d\n",
			r.Metadata.Region, r.Metadata.Tier, r.Metadata.AdmissionCaseCount)
		fmt.Printf("   %s\n", firstLine(r.Document))
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	ix, err := openIndex(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	engine, err := ix.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	fmt.Printf("Total programs: %d\n", stats.TotalCount)
	fmt.Printf("Thesis required: %d\n", stats.ThesisRequired)
	printGroup("By region", stats.ByRegion)
	printGroup("By tier", stats.ByTier)
	return nil
}

// buildPredicate assembles the filter tree from query flags. No flags yields
// an empty conjunction, which matches everything.
func buildPredicate(c *cli.Context) storage.Predicate {
	var preds []storage.Predicate

	if regions := c.StringSlice("region"); len(regions) > 0 {
		preds = append(preds, storage.In{Field: core.FieldRegion, Values: regions})
	}
	if excluded := c.StringSlice("exclude-region"); len(excluded) > 0 {
		preds = append(preds, storage.NotIn{Field: core.FieldRegion, Values: excluded})
	}
	if tiers := c.StringSlice("tier"); len(tiers) > 0 {
		preds = append(preds, storage.In{Field: core.FieldTier, Values: tiers})
	}
	if c.Bool("thesis") {
		preds = append(preds, storage.BoolEq{Field: core.FieldThesisRequired, Value: true})
	}
	if c.Bool("no-thesis") {
		preds = append(preds, storage.BoolEq{Field: core.FieldThesisRequired, Value: false})
	}
	if c.Bool("with-cases") {
		preds = append(preds, storage.Gt{Field: core.FieldAdmissionCaseCount, Value: 0})
	}

	return storage.And{Preds: preds}
}

func printGroup(title string, counts map[string]int) {
	fmt.Printf("%s:\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
}

func firstLine(doc string) string {
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return doc[:i]
	}
	return doc
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
