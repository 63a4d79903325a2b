package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TTMK7777/player-list-scraper/internal/export"
	"github.com/TTMK7777/player-list-scraper/internal/scrape"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

var (
	scrapeMinStores int
	scrapeNoBrowser bool
	scrapeNoLLM     bool
	scrapeOut       string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <company> <url>",
	Short: "Scrape store locations from a company site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		company, url := args[0], args[1]

		var client llm.Client
		if !scrapeNoLLM {
			c, err := initLLM()
			if err != nil {
				return err
			}
			client = c
		}

		if scrapeMinStores > 0 {
			cfg.Scrape.MinStores = scrapeMinStores
		}
		scraper, closeBrowser, err := initScraper(client, scrapeNoBrowser)
		if err != nil {
			return err
		}
		defer closeBrowser()

		result := scraper.Scrape(ctx, scrape.Request{
			CompanyName: company,
			URL:         url,
			OnProgress:  func(msg string) { fmt.Println(msg) },
		})

		fmt.Printf("%s: %d店舗 (戦略: %s, %dページ, %.1f秒)\n",
			result.CompanyName, len(result.Stores), result.StrategyUsed,
			result.PagesVisited, result.ElapsedSecs)
		for _, e := range result.Errors {
			fmt.Println("  warn:", e)
		}

		path, err := outputPath(scrapeOut, "stores_"+company)
		if err != nil {
			return err
		}
		if err := export.WriteStoreList(result, path); err != nil {
			return err
		}
		fmt.Println("出力:", path)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeMinStores, "min-stores", 0, "stores needed before a strategy is accepted")
	scrapeCmd.Flags().BoolVar(&scrapeNoBrowser, "no-browser", false, "skip the browser automation strategy")
	scrapeCmd.Flags().BoolVar(&scrapeNoLLM, "no-llm", false, "extract with selectors only, no model calls")
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "", "output xlsx path")
	rootCmd.AddCommand(scrapeCmd)
}
