package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TTMK7777/player-list-scraper/internal/export"
	"github.com/TTMK7777/player-list-scraper/internal/investigate"
)

var (
	newcomerIndustry string
	newcomerOut      string
)

var newcomerCmd = &cobra.Command{
	Use:   "newcomer [players.xlsx]",
	Short: "Find market entrants missing from the player list",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("newcomer"); err != nil {
			return err
		}

		var existing []string
		if len(args) == 1 {
			players, err := loadPlayers(args[0], newcomerIndustry)
			if err != nil {
				return err
			}
			for _, p := range players {
				existing = append(existing, p.PlayerName)
			}
		}

		client, err := initLLM()
		if err != nil {
			return err
		}
		detector := investigate.NewNewcomerDetector(client, nil, cfg.LLM.Model)

		candidates, err := detector.Detect(ctx, newcomerIndustry, existing, printProgress)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Println("新規参入候補は見つかりませんでした")
			return nil
		}

		for _, c := range candidates {
			fmt.Printf("  %s (%.0f%%, %s) %s\n",
				c.PlayerName, c.Confidence*100, c.VerificationStatus, c.OfficialURL)
		}

		path, err := outputPath(newcomerOut, "newcomers")
		if err != nil {
			return err
		}
		if err := export.WriteNewcomerReport(candidates, path); err != nil {
			return err
		}
		fmt.Println("出力:", path)
		return nil
	},
}

func init() {
	newcomerCmd.Flags().StringVar(&newcomerIndustry, "industry", "", "industry to search")
	newcomerCmd.Flags().StringVarP(&newcomerOut, "out", "o", "", "output xlsx path")
	_ = newcomerCmd.MarkFlagRequired("industry")
	rootCmd.AddCommand(newcomerCmd)
}
