package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/catalogforge/specline/cmd/specline/ui"
	"github.com/catalogforge/specline/internal/config"
	"github.com/catalogforge/specline/internal/extract"
	"github.com/catalogforge/specline/internal/feed"
	"github.com/catalogforge/specline/internal/observability"
	"github.com/catalogforge/specline/internal/pipeline"
	"github.com/catalogforge/specline/internal/record"
	"github.com/catalogforge/specline/internal/storage"
)

var (
	populateInput      string
	populateOutput     string
	populateRules      string
	populateOverwrite  bool
	populateMaxEntries int
	populateStore      bool
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Populate spec lists for a catalog export",
	Long: `Read a product export (CSV or JSONL), extract specification facts from
each product's text and metadata, and write the populated spec lists.`,
	RunE: runPopulate,
}

func init() {
	populateCmd.Flags().StringVarP(&populateInput, "input", "i", "", "Path to the export file (required)")
	populateCmd.Flags().StringVarP(&populateOutput, "output", "o", "", "Output path (.csv for an import sheet, anything else JSONL)")
	populateCmd.Flags().StringVar(&populateRules, "rules", "", "Path to a YAML rules file (default: built-in rules)")
	populateCmd.Flags().BoolVar(&populateOverwrite, "overwrite", false, "Recompute spec lists for records that already have one")
	populateCmd.Flags().IntVar(&populateMaxEntries, "max-entries", 0, "Cap on spec list length (0 = unlimited)")
	populateCmd.Flags().BoolVar(&populateStore, "store", false, "Persist run results to the configured store")
	populateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(populateCmd)
}

func runPopulate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyPopulateFlags(cmd, cfg)

	if verbose {
		cfg.Observability.LogLevel = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "specline",
	})

	ui.InitUI(noColor, verbose)
	defer ui.Close()

	ui.Section("Spec List Population")
	ui.Info("Input: %s", populateInput)
	if populateOutput != "" {
		ui.Info("Output: %s", populateOutput)
	}

	rules := extract.DefaultRules()
	if cfg.Extraction.RulesPath != "" {
		rules, err = extract.Load(cfg.Extraction.RulesPath)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		ui.Info("Rules: %s", cfg.Extraction.RulesPath)
	}

	spin := ui.NewSpinner("Reading export...")
	spin.Start()
	records, err := readFeed(populateInput, cfg)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	if len(records) == 0 {
		ui.Warning("No products found in %s", populateInput)
		return nil
	}

	p := pipeline.New(logger, rules, pipeline.Options{
		Overwrite:  cfg.Extraction.Overwrite,
		MaxEntries: cfg.Extraction.MaxEntries,
	})

	start := time.Now()
	bar := ui.NewProgressBar(int64(len(records)), "Populating spec lists")

	var stats pipeline.Stats
	results := make([]pipeline.Result, 0, len(records))
	for i, rec := range records {
		res := p.Process(rec)
		stats.Observe(res)
		results = append(results, res)
		bar.Set(int64(i + 1))
	}
	bar.Finish()

	if populateOutput != "" {
		if err := feed.WriteFile(populateOutput, results); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if populateStore {
		if err := persistRun(ctx, cfg, populateInput, stats, results); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
		ui.Success("Run persisted to %s store", cfg.Store.Driver)
	}

	ui.Newline()
	ui.Section("Summary")
	ui.Table([]string{"Metric", "Value"}, [][]string{
		{"Products", fmt.Sprintf("%d", stats.Total)},
		{"Already populated", fmt.Sprintf("%d", stats.AlreadyPopulated)},
		{"Newly populated", fmt.Sprintf("%d", stats.NewlyPopulated)},
		{"Skipped", fmt.Sprintf("%d", stats.Skipped)},
		{"Specs extracted", fmt.Sprintf("%d", stats.SpecsExtracted)},
		{"Duration", ui.FormatDuration(time.Since(start))},
	})

	if populateOutput != "" {
		ui.Newline()
		ui.Success("Spec lists written to: %s", populateOutput)
	}
	return nil
}

// applyPopulateFlags lets explicit flags win over the config file.
func applyPopulateFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("overwrite") {
		cfg.Extraction.Overwrite = populateOverwrite
	}
	if cmd.Flags().Changed("max-entries") {
		cfg.Extraction.MaxEntries = populateMaxEntries
	}
	if cmd.Flags().Changed("rules") {
		cfg.Extraction.RulesPath = populateRules
	}
}

func readFeed(path string, cfg *config.Config) ([]record.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return feed.ReadCSVFile(path, cfg.Fields)
	case ".jsonl", ".ndjson", ".json":
		return feed.ReadJSONLFile(path, cfg.Fields)
	default:
		return nil, fmt.Errorf("unsupported export format %q (expected .csv or .jsonl)", filepath.Ext(path))
	}
}

func persistRun(ctx context.Context, cfg *config.Config, input string, stats pipeline.Stats, results []pipeline.Result) error {
	db, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}

	runs := storage.NewRunRepository(db)
	lists := storage.NewSpecListRepository(db)

	run := &storage.Run{InputPath: input}
	if err := runs.Create(ctx, run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	for _, res := range results {
		rec := &storage.SpecListRecord{
			RunID:   run.ID,
			Handle:  res.Handle,
			Specs:   res.Specs,
			Skipped: res.Skipped,
		}
		if err := lists.Create(ctx, rec); err != nil {
			return fmt.Errorf("store %s: %w", res.Handle, err)
		}
		for _, v := range res.Variants {
			key := v.Key
			vrec := &storage.SpecListRecord{
				RunID:      run.ID,
				Handle:     res.Handle,
				VariantKey: &key,
				Specs:      v.Specs,
				Skipped:    v.Skipped,
			}
			if err := lists.Create(ctx, vrec); err != nil {
				return fmt.Errorf("store %s variant %s: %w", res.Handle, v.Key, err)
			}
		}
	}

	run.Total = stats.Total
	run.AlreadyPopulated = stats.AlreadyPopulated
	run.NewlyPopulated = stats.NewlyPopulated
	run.Skipped = stats.Skipped
	run.SpecsExtracted = stats.SpecsExtracted
	return runs.Complete(ctx, run, storage.RunStatusSucceeded)
}
