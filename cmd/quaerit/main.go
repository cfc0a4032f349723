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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/quaerit"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/pipeline"
	"github.com/poiesic/quaerit/rebuild"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "quaerit",
		Usage: "Domain-routed retrieval and grounded question answering over document chunks",
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
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the index directory (overrides the config file)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Embed and store pre-chunked documents from a JSON lines file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON lines file, one chunk object per line",
						Required: true,
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Answer a question from the indexed documents",
				Action:    queryCommand,
				ArgsUsage: "<question>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of chunks to retrieve",
						Value: pipeline.DefaultK,
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "Metadata filter as key=value (repeatable, all must match)",
					},
					&cli.BoolFlag{
						Name:  "skip-eval",
						Usage: "Skip the answer quality evaluation stage",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print each pipeline stage's intermediate result to stderr",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show chunk count and vector dimension per domain",
				Action: statsCommand,
			},
			{
				Name:   "rebuild",
				Usage:  "Re-embed every chunk of a domain with its current embedding model",
				Action: rebuildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "domain",
						Usage:    "Domain to rebuild",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "delete-domain",
				Usage:  "Remove every chunk of a domain, including its recorded dimension",
				Action: deleteDomainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "domain",
						Usage:    "Domain to delete",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// API keys live in .env during development; a missing file is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return setupLogger(c)
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

// openEngine builds the engine from the config file and global flags.
func openEngine(c *cli.Context) (*quaerit.Engine, error) {
	config := &fileConfig{}
	if path := c.String("config"); path != "" {
		var err error
		config, err = loadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = config.Index.Path
	}
	if dbPath == "" {
		dbPath = "./quaerit_db"
	}

	return quaerit.NewEngine(dbPath, config.engineOptions()...)
}

// chunkRecord is the JSON lines ingest format.
type chunkRecord struct {
	Text      string            `json:"text"`
	Domain    string            `json:"domain"`
	SourceURI string            `json:"source_uri,omitempty"`
	Position  int               `json:"position,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func ingestCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var chunks []*core.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var record chunkRecord
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		chunks = append(chunks, &core.Chunk{
			Text:      record.Text,
			Domain:    core.Domain(record.Domain),
			SourceURI: record.SourceURI,
			Position:  record.Position,
			Metadata:  record.Metadata,
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	written, err := engine.Ingest(context.Background(), chunks)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("Ingested %d chunks\n", written)
	return nil
}

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	filters, err := parseFilters(c.StringSlice("filter"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := pipeline.Options{
		K:              c.Int("k"),
		Filters:        filters,
		SkipEvaluation: c.Bool("skip-eval"),
	}

	var result *core.QueryResult
	if c.Bool("verbose") {
		result, err = engine.QueryWithMonitor(context.Background(), question, opts, &stageMonitor{out: os.Stderr})
	} else {
		result, err = engine.Query(context.Background(), question, opts)
	}
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(result *core.QueryResult) {
	fmt.Printf("Domain: %s (confidence %.2f", result.Routing.Domain, result.Routing.Confidence)
	if result.Routing.Fallback {
		fmt.Print(", fallback")
	}
	fmt.Println(")")
	if result.Routing.Rationale != "" {
		fmt.Printf("Rationale: %s\n", result.Routing.Rationale)
	}
	fmt.Println()
	fmt.Println(result.Answer.Text)

	if len(result.Answer.CitedChunkIDs) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, id := range result.Answer.CitedChunkIDs {
			for _, sc := range result.Retrieved.Chunks {
				if sc.Chunk.Id == id {
					fmt.Printf("  [%d] %s\n", id, sc.Chunk.SourceURI)
					break
				}
			}
		}
	}

	if eval := result.Evaluation; eval != nil {
		fmt.Println()
		if eval.Unscored {
			fmt.Printf("Evaluation: unscored (%s)\n", eval.UnscoredReason)
		} else {
			fmt.Printf("Evaluation: overall %.1f (faithfulness %.1f, completeness %.1f, hallucination %.1f)\n",
				eval.Overall, eval.Faithfulness, eval.Completeness, eval.Hallucination)
		}
	}
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.Stats(context.Background())
	if err != nil {
		return err
	}

	domains := make([]string, 0, len(stats))
	for domain := range stats {
		domains = append(domains, string(domain))
	}
	sort.Strings(domains)

	fmt.Printf("%-16s %8s %10s\n", "DOMAIN", "CHUNKS", "DIMENSION")
	for _, domain := range domains {
		s := stats[core.Domain(domain)]
		fmt.Printf("%-16s %8d %10d\n", domain, s.Chunks, s.Dimension)
	}
	return nil
}

func rebuildCommand(c *cli.Context) error {
	config := &rebuild.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	domain := core.Domain(c.String("domain"))
	if err := engine.Rebuild(context.Background(), domain, config, os.Stderr); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	return nil
}

func deleteDomainCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	domain := core.Domain(c.String("domain"))
	if err := engine.DeleteDomain(context.Background(), domain); err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
	}

	fmt.Printf("Deleted domain %q\n", domain)
	return nil
}

func parseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		filters[key] = value
	}
	return filters, nil
}
