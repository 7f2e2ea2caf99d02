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
	"encoding/csv"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/ontomap/abbrev"
	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/corpus"
	"github.com/poiesic/ontomap/engine"
	"github.com/poiesic/ontomap/matcher"
	"github.com/poiesic/ontomap/matcher/langchain"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "ontomap",
		Usage: "Resolve clinical terms to ontology entries through a matching cascade",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "map",
				Usage:  "Map queries from a CSV file onto the ontology corpus",
				Action: mapCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "queries",
						Aliases:  []string{"q"},
						Usage:    "CSV file with a 'query' column",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "corpus",
						Usage: "CSV file with an 'official_label' column (stage-2-only runs)",
					},
					&cli.StringFlag{
						Name:  "reference",
						Usage: "Reference table CSV (required when a stage-3 strategy is set)",
					},
					&cli.StringFlag{
						Name:  "curation",
						Usage: "Curation map CSV with 'query' and 'curated_ontology' columns",
					},
					&cli.StringFlag{
						Name:  "abbrev",
						Usage: "Abbreviation table CSV with 'code' and 'name' columns",
						Value: abbrev.DefaultTablePath,
					},
					&cli.StringFlag{
						Name:  "method",
						Usage: "Method name passed through to backends",
						Value: "ontomap",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Term category passed through to backends",
						Value: "biomedical",
					},
					&cli.StringFlag{
						Name:  "stage2",
						Usage: "Stage-2 strategy (lm or st)",
						Value: string(engine.DefaultStage2Strategy),
					},
					&cli.StringFlag{
						Name:  "stage3",
						Usage: "Stage-3 strategy (rag or rag_bie); empty disables stage 3",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Confidence below which stage-2 rows escalate to stage 3",
						Value: engine.DefaultStage3Threshold,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of candidates to report per query",
						Value: engine.DefaultTopK,
					},
					&cli.StringFlag{
						Name:  "env",
						Usage: "Environment flag passed to backends (test or prod)",
						Value: matcher.EnvTest,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host for embeddings and chat",
						Value: "http://localhost:11434",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "chat-model",
						Usage: "Chat model name used by the lm strategy",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Directory for the persistent retrieval index (empty: in-memory)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output CSV path (default: stdout)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func mapCommand(c *cli.Context) error {
	ctx := context.Background()

	queries, err := corpus.LoadColumn(c.String("queries"), "query")
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	var corpusList []string
	if path := c.String("corpus"); path != "" {
		corpusList, err = corpus.LoadColumn(path, corpus.ColumnOfficialLabel)
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
	}

	curaMap := map[string]string{}
	if path := c.String("curation"); path != "" {
		curaMap, err = corpus.LoadCurationMap(path, "query", "curated_ontology")
		if err != nil {
			return fmt.Errorf("failed to load curation map: %w", err)
		}
	}

	factory, err := langchain.NewFactory(langchain.NewConfig(
		langchain.WithHost(c.String("host")),
		langchain.WithEmbeddingModel(c.String("embedding-model")),
		langchain.WithChatModel(c.String("chat-model")),
		langchain.WithIndexPath(c.String("index")),
	))
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}

	opts := []engine.Option{
		engine.WithTopK(c.Int("top-k")),
		engine.WithStage2Strategy(matcher.Strategy(c.String("stage2"))),
		engine.WithStage3Threshold(c.Float64("threshold")),
		engine.WithExpander(abbrev.NewResolver(abbrev.WithPath(c.String("abbrev")))),
	}
	if s3 := c.String("stage3"); s3 != "" {
		refPath := c.String("reference")
		if refPath == "" {
			return fmt.Errorf("stage-3 strategy %q requires --reference", s3)
		}
		refTable, err := corpus.LoadTable(refPath)
		if err != nil {
			return fmt.Errorf("failed to load reference table: %w", err)
		}
		opts = append(opts,
			engine.WithStage3Strategy(matcher.Strategy(s3)),
			engine.WithReferenceTable(refTable))

		// The query table doubles as rag_bie context when it carries a
		// description column.
		queryTable, err := corpus.LoadTable(c.String("queries"))
		if err == nil {
			opts = append(opts, engine.WithQueryTable(queryTable))
		}
	}

	eng, err := engine.New(c.String("method"), c.String("category"),
		queries, corpusList, curaMap, c.String("env"), factory, opts...)
	if err != nil {
		return fmt.Errorf("failed to configure cascade: %w", err)
	}

	rows, err := eng.Run(ctx)
	if err != nil {
		return fmt.Errorf("cascade run failed: %w", err)
	}

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeResults(out, rows, c.Int("top-k"))
}

// writeResults flattens result rows into a CSV with one match/score column
// pair per candidate slot.
func writeResults(f *os.File, rows []core.ResultRow, topK int) error {
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"original_value", "updated_value", "curated_ontology", "match_level", "stage"}
	for i := 1; i <= topK; i++ {
		header = append(header, fmt.Sprintf("top%d_match", i), fmt.Sprintf("top%d_score", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.OriginalValue,
			row.UpdatedValue,
			row.CuratedOntology,
			fmt.Sprint(row.MatchLevel),
			fmt.Sprint(row.Stage),
		}
		for i := 0; i < topK; i++ {
			if i < len(row.Candidates) {
				record = append(record, row.Candidates[i].Match, row.Candidates[i].Score)
			} else {
				record = append(record, "", "")
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
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
