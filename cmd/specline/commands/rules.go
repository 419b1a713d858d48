package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/catalogforge/specline/cmd/specline/ui"
	"github.com/catalogforge/specline/internal/config"
	"github.com/catalogforge/specline/internal/extract"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the active extraction rules",
	Long: `Print the recognizer and feature rules the populate command would use,
in priority order. Earlier recognizers win when matches overlap.`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().String("rules", "", "Path to a YAML rules file (default: built-in rules)")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if path, _ := cmd.Flags().GetString("rules"); path != "" {
		cfg.Extraction.RulesPath = path
	}

	ui.InitUI(noColor, verbose)
	defer ui.Close()

	file := extract.DefaultRulesFile()
	source := "built-in"
	if cfg.Extraction.RulesPath != "" {
		file, err = extract.LoadFile(cfg.Extraction.RulesPath)
		if err != nil {
			return err
		}
		if _, err := extract.Compile(file); err != nil {
			return err
		}
		source = cfg.Extraction.RulesPath
	}

	ui.Section(fmt.Sprintf("Recognizers (%s)", source))
	rows := make([][]string, 0, len(file.Recognizers))
	for i, rec := range file.Recognizers {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			rec.Category,
			rec.Style,
			recognizerDetail(rec),
		})
	}
	ui.Table([]string{"#", "Category", "Style", "Rule"}, rows)

	ui.Section("Feature indicators")
	rows = rows[:0]
	for _, feat := range file.Features {
		rows = append(rows, []string{feat.Label, strings.Join(feat.Patterns, ", ")})
	}
	ui.Table([]string{"Label", "Patterns"}, rows)
	return nil
}

func recognizerDetail(rec extract.RecognizerSpec) string {
	if rec.Style == extract.StyleVocabulary {
		return strings.Join(rec.Terms, ", ")
	}
	return rec.Pattern
}
