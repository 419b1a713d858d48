package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/catalogforge/specline/cmd/specline/ui"
	"github.com/catalogforge/specline/internal/config"
	"github.com/catalogforge/specline/internal/storage"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent populate runs from the store",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ui.InitUI(noColor, verbose)
	defer ui.Close()

	db, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}

	runs, err := storage.NewRunRepository(db).ListRecent(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		ui.Info("No runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.CompletedAt != nil {
			duration = ui.FormatDuration(run.CompletedAt.Sub(run.StartedAt))
		}
		rows = append(rows, []string{
			run.ID.String()[:8],
			run.StartedAt.Format("2006-01-02 15:04"),
			string(run.Status),
			fmt.Sprintf("%d", run.Total),
			fmt.Sprintf("%d", run.NewlyPopulated),
			fmt.Sprintf("%d", run.SpecsExtracted),
			duration,
			run.InputPath,
		})
	}

	ui.Section("Recent runs")
	ui.Table([]string{"Run", "Started", "Status", "Products", "Populated", "Specs", "Duration", "Input"}, rows)
	return nil
}
