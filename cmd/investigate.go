package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TTMK7777/player-list-scraper/internal/export"
	"github.com/TTMK7777/player-list-scraper/internal/investigate"
	"github.com/TTMK7777/player-list-scraper/internal/model"
)

var (
	investigateIndustry    string
	investigateMode        string
	investigateOut         string
	investigateNoPrefs     bool
	investigateNoBrowser   bool
	investigateConcurrency int
)

var investigateCmd = &cobra.Command{
	Use:   "investigate <players.xlsx>",
	Short: "Count store locations for each player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("investigate"); err != nil {
			return err
		}

		mode := model.InvestigationMode(investigateMode)
		switch mode {
		case model.ModeAI, model.ModeScraping, model.ModeHybrid:
		default:
			return fmt.Errorf("unknown mode %q (ai, scraping, hybrid)", investigateMode)
		}

		players, err := loadPlayers(args[0], investigateIndustry)
		if err != nil {
			return err
		}

		client, err := initLLM()
		if err != nil {
			return err
		}
		scraper, closeBrowser, err := initScraper(client, investigateNoBrowser)
		if err != nil {
			return err
		}
		defer closeBrowser()

		investigator := investigate.NewStoreInvestigator(client, scraper, cfg.LLM.Model)

		reqs := make([]investigate.StoreRequest, len(players))
		for i, p := range players {
			reqs[i] = investigate.StoreRequest{
				CompanyName: p.PlayerName,
				OfficialURL: p.OfficialURL,
				Industry:    investigateIndustry,
				Mode:        mode,
			}
		}

		concurrency := investigateConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}
		results := investigator.InvestigateBatch(ctx, reqs,
			concurrency, secs(cfg.Batch.DelaySecs), printProgress)

		path, err := outputPath(investigateOut, "store_counts")
		if err != nil {
			return err
		}
		if err := export.WriteStoreReport(results, path, !investigateNoPrefs); err != nil {
			return err
		}
		fmt.Println("出力:", path)

		for _, r := range results {
			flag := ""
			if r.NeedsVerification {
				flag = " 要確認"
			}
			fmt.Printf("  %s: %d店舗 (%.0f%%)%s\n", r.CompanyName, r.TotalStores, r.Confidence*100, flag)
		}
		return nil
	},
}

func init() {
	investigateCmd.Flags().StringVar(&investigateIndustry, "industry", "", "industry label for prompts")
	investigateCmd.Flags().StringVar(&investigateMode, "mode", string(model.ModeAI), "investigation mode (ai, scraping, hybrid)")
	investigateCmd.Flags().StringVarP(&investigateOut, "out", "o", "", "output xlsx path")
	investigateCmd.Flags().BoolVar(&investigateNoPrefs, "no-prefectures", false, "omit the per-prefecture columns")
	investigateCmd.Flags().BoolVar(&investigateNoBrowser, "no-browser", false, "skip the browser automation strategy")
	investigateCmd.Flags().IntVar(&investigateConcurrency, "concurrency", 0, "parallel investigations (0 = auto)")
	rootCmd.AddCommand(investigateCmd)
}
