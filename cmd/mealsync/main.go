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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/mealsync"
	"github.com/poiesic/mealsync/catalog"
	"github.com/poiesic/mealsync/ingestion"
	"github.com/poiesic/mealsync/ingredients"
	"github.com/poiesic/mealsync/source"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "mealsync",
		Usage: "Import downloaded recipe documents into a Mealie catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Environment file loaded before reading other settings",
				Value: ".env",
			},
		},
		Before: func(c *cli.Context) error {
			if err := loadEnv(c.String("env-file")); err != nil {
				return err
			}
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import every recipe document in the source directory",
				Action: importCommand,
				Flags: []cli.Flag{
					sourceDirFlag(),
					&cli.StringFlag{
						Name:    "images-dir",
						Usage:   "Directory holding downloaded recipe images",
						EnvVars: []string{"GOUSTO_IMAGES_DIR"},
					},
					&cli.StringFlag{
						Name:     "base-url",
						Usage:    "Mealie API base URL, e.g. https://mealie.example.com/api",
						EnvVars:  []string{"MEALIE_BASE_URL"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Mealie API token",
						EnvVars:  []string{"MEALIE_TOKEN"},
						Required: true,
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of concurrent workers (1 imports sequentially)",
						Value:   1,
					},
					&cli.IntFlag{
						Name:  "portions",
						Usage: "Portion size whose SKU quantities are used (0 ignores SKUs)",
						Value: 2,
					},
					&cli.StringFlag{
						Name:  "remap",
						Usage: "JSON file mapping raw ingredient names to catalog food names",
					},
					&cli.StringFlag{
						Name:  "ledger",
						Usage: "Directory of the import ledger database",
					},
					&cli.BoolFlag{
						Name:  "skip-unchanged",
						Usage: "Skip documents unchanged since their last successful import (requires --ledger)",
					},
					&cli.BoolFlag{
						Name:  "create-units",
						Usage: "Create units missing from the catalog instead of dropping them",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry passes over failed documents",
						Value: ingestion.DefaultMaxRetryPasses,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Pause before each retry pass",
						Value: 1 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Timeout for each catalog request",
						Value: 30 * time.Second,
					},
					&cli.IntFlag{
						Name:  "per-page",
						Usage: "Page size used when listing catalog entities",
						Value: 100,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print a progress line to stderr",
						Value: true,
					},
				},
			},
			{
				Name:   "names",
				Usage:  "List cleaned ingredient names with their number of occurrences",
				Action: namesCommand,
				Flags: []cli.Flag{
					sourceDirFlag(),
					&cli.StringFlag{
						Name:  "remap",
						Usage: "JSON file mapping raw ingredient names to catalog food names",
					},
				},
			},
		},
	}
}

func sourceDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "source-dir",
		Aliases:  []string{"s"},
		Usage:    "Directory of downloaded recipe JSON documents",
		EnvVars:  []string{"GOUSTO_OUTPUT_DIR"},
		Required: true,
	}
}

func importCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.Bool("skip-unchanged") && c.String("ledger") == "" {
		return fmt.Errorf("--skip-unchanged requires --ledger")
	}

	paths, err := source.List(c.String("source-dir"))
	if err != nil {
		return fmt.Errorf("failed to list source documents: %w", err)
	}
	slog.Info("found source documents", "count", len(paths), "dir", c.String("source-dir"))

	remap, err := loadRemap(c.String("remap"))
	if err != nil {
		return err
	}

	cfg := catalog.NewConfig(
		catalog.WithBaseURL(c.String("base-url")),
		catalog.WithToken(c.String("token")),
		catalog.WithTimeout(c.Duration("timeout")),
		catalog.WithPerPage(c.Int("per-page")),
	)

	var importerOpts []mealsync.ImporterOption
	if path := c.String("ledger"); path != "" {
		importerOpts = append(importerOpts, mealsync.WithLedgerPath(path))
	}
	imp, err := mealsync.NewImporter(cfg, importerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}
	defer imp.Close()

	merger, err := ingredients.NewMerger(
		ingredients.WithRemap(remap),
		ingredients.WithCreateUnits(c.Bool("create-units")),
	)
	if err != nil {
		return err
	}

	opts := []ingestion.Option{
		ingestion.WithPoolSize(c.Int("workers")),
		ingestion.WithPortions(c.Int("portions")),
		ingestion.WithMerger(merger),
		ingestion.WithImagesDir(c.String("images-dir")),
		ingestion.WithSkipUnchanged(c.Bool("skip-unchanged")),
		ingestion.WithMaxRetryPasses(c.Int("max-retries")),
		ingestion.WithPassDelay(c.Duration("retry-delay")),
	}
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(c.App.ErrWriter))
	}

	pipeline, err := imp.NewPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	report, err := pipeline.Run(ctx, paths)
	if report != nil {
		printReport(c.App.Writer, report)
	}
	if err != nil {
		return err
	}

	if failed := len(report.Failed()); failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d documents failed", failed, len(report.Outcomes)), 1)
	}
	return nil
}

// printReport lists warnings first, then the documents still failed.
func printReport(w io.Writer, report *ingestion.Report) {
	if len(report.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, " - %s\n", warning)
		}
	}

	errs := report.Errors()
	if len(errs) == 0 {
		fmt.Fprintf(w, "Imported %d documents in %d pass(es). No errors encountered.\n", len(report.Succeeded()), report.Passes)
		return
	}
	fmt.Fprintln(w, "Errors encountered:")
	for _, e := range errs {
		fmt.Fprintf(w, " - %s\n", e)
	}
}

func namesCommand(c *cli.Context) error {
	paths, err := source.List(c.String("source-dir"))
	if err != nil {
		return fmt.Errorf("failed to list source documents: %w", err)
	}
	remap, err := loadRemap(c.String("remap"))
	if err != nil {
		return err
	}
	merger, err := ingredients.NewMerger(ingredients.WithRemap(remap))
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, path := range paths {
		doc, err := source.Load(path)
		if err != nil {
			slog.Warn("skipping unreadable document", "path", path, "err", err)
			continue
		}
		entries, _ := doc.Entries(0)
		for _, entry := range entries {
			if name, ok := merger.FoodName(entry.Item); ok {
				counts[name]++
			}
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		fmt.Fprintf(c.App.Writer, "%5d  %s\n", counts[name], name)
	}
	return nil
}

func loadRemap(path string) (*ingredients.Remap, error) {
	if path == "" {
		return nil, nil
	}
	remap, err := ingredients.LoadRemap(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load remap file: %w", err)
	}
	slog.Info("loaded ingredient remap", "entries", remap.Len())
	return remap, nil
}

// loadEnv loads path into the environment. A missing file is not an error;
// variables already set win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
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
