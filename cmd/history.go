package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/TTMK7777/player-list-scraper/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect stored check runs",
}

var (
	historyIndustry string
	historyPhase    string
)

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored check runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := initHistory()
		if err != nil {
			return err
		}
		records, err := store.ListRecords(historyIndustry, historyPhase)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("履歴はありません")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%s  %-20s %-18s %3d件  %s\n",
				r.RecordID, r.Industry, r.Phase, r.PlayerCount,
				r.ExecutedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the two most recent runs of an industry and phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyIndustry == "" || historyPhase == "" {
			return eris.New("diff needs --industry and --phase")
		}
		store, err := initHistory()
		if err != nil {
			return err
		}
		records, err := store.ListRecords(historyIndustry, historyPhase)
		if err != nil {
			return err
		}
		if len(records) < 2 {
			return eris.New("diff needs at least two stored runs")
		}

		// Index order is chronological; the last two are newest.
		previous := records[len(records)-2]
		current := records[len(records)-1]

		prevRows, err := store.LoadResults(&previous)
		if err != nil {
			return err
		}
		curRows, err := store.LoadResults(&current)
		if err != nil {
			return err
		}

		report := history.ComputeDiff(&previous, prevRows, curRows, current.Phase)
		printDiff(report)
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyIndustry, "industry", "", "filter by industry")
	historyCmd.PersistentFlags().StringVar(&historyPhase, "phase", "", "filter by phase")
	historyCmd.AddCommand(historyListCmd, historyDiffCmd)
	rootCmd.AddCommand(historyCmd)
}
