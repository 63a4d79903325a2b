package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/TTMK7777/player-list-scraper/internal/export"
	"github.com/TTMK7777/player-list-scraper/internal/history"
	"github.com/TTMK7777/player-list-scraper/internal/investigate"
	"github.com/TTMK7777/player-list-scraper/internal/model"
)

var (
	validateIndustry string
	validatePhase    string
	validateOut      string
	validateNoDiff   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <players.xlsx>",
	Short: "Check tracked players for withdrawals, renames and URL changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("validate"); err != nil {
			return err
		}

		players, err := loadPlayers(args[0], validateIndustry)
		if err != nil {
			return err
		}

		client, err := initLLM()
		if err != nil {
			return err
		}
		validator := investigate.NewPlayerValidator(client, nil, cfg.LLM.Model)

		results := validator.ValidateBatch(ctx, players, validateIndustry,
			cfg.Batch.Concurrency, secs(cfg.Batch.DelaySecs), printProgress)

		path, err := outputPath(validateOut, "validation")
		if err != nil {
			return err
		}
		if err := export.WriteValidationReport(results, path); err != nil {
			return err
		}
		fmt.Println("出力:", path)
		printValidationSummary(results)

		store, err := initHistory()
		if err != nil {
			return err
		}
		previous, err := store.LoadLatest(validateIndustry, validatePhase)
		if err != nil {
			return err
		}

		record := &history.CheckRecord{
			Phase:       validatePhase,
			Industry:    validateIndustry,
			ExecutedAt:  time.Now(),
			PlayerCount: len(players),
			Summary:     alertSummary(results),
		}
		rows := resultRows(results)
		if _, err := store.SaveRecord(record, rows); err != nil {
			return err
		}
		fmt.Println("履歴ID:", record.RecordID)

		if previous != nil && !validateNoDiff {
			prevRows, err := store.LoadResults(previous)
			if err != nil {
				return err
			}
			report := history.ComputeDiff(previous, prevRows, rows, validatePhase)
			printDiff(report)
		}
		return nil
	},
}

func printValidationSummary(results []model.ValidationResult) {
	counts := map[model.AlertLevel]int{}
	for _, r := range results {
		counts[r.AlertLevel]++
	}
	for _, level := range []model.AlertLevel{
		model.AlertCritical, model.AlertWarning, model.AlertInfo, model.AlertOK,
	} {
		if counts[level] > 0 {
			fmt.Printf("  %s: %d件\n", level, counts[level])
		}
	}
}

func alertSummary(results []model.ValidationResult) map[string]int {
	summary := map[string]int{}
	for _, r := range results {
		summary[string(r.AlertLevel)]++
	}
	return summary
}

// resultRows converts results into the generic rows the history store and
// differ work on.
func resultRows(results []model.ValidationResult) []map[string]any {
	rows := make([]map[string]any, len(results))
	for i, r := range results {
		rows[i] = map[string]any{
			"player_name_original": r.PlayerNameOriginal,
			"player_name":          r.PlayerNameCurrent,
			"company_name":         r.CompanyNameCurrent,
			"alert_level":          string(r.AlertLevel),
			"change_type":          string(r.ChangeType),
			"confidence":           r.Confidence,
		}
	}
	return rows
}

func printDiff(report *history.DiffReport) {
	fmt.Printf("前回 (%s, %s) との差分: %d件\n",
		report.PreviousRecord, report.PreviousPhase, report.TotalChanges())
	for _, item := range report.NewPlayers {
		fmt.Println("  新規:", item.PlayerName)
	}
	for _, item := range report.RemovedPlayers {
		fmt.Println("  消失:", item.PlayerName)
	}
	for _, item := range report.NewAlerts {
		fmt.Printf("  アラート上昇: %s %s → %s\n", item.PlayerName, item.Before, item.After)
	}
	for _, item := range report.ResolvedAlerts {
		fmt.Printf("  アラート解消: %s %s → %s\n", item.PlayerName, item.Before, item.After)
	}
	for _, item := range report.AttributeChanges {
		fmt.Printf("  属性変更: %s %s\n", item.PlayerName, item.Detail)
	}
}

func init() {
	validateCmd.Flags().StringVar(&validateIndustry, "industry", "", "industry label for prompts and history")
	validateCmd.Flags().StringVar(&validatePhase, "phase", history.PhasePreSurvey, "check phase (pre_survey, ranking_confirmed, pre_release)")
	validateCmd.Flags().StringVarP(&validateOut, "out", "o", "", "output xlsx path")
	validateCmd.Flags().BoolVar(&validateNoDiff, "no-diff", false, "skip the comparison against the previous run")
	_ = validateCmd.MarkFlagRequired("industry")
	rootCmd.AddCommand(validateCmd)
}
