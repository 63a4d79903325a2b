package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/TTMK7777/player-list-scraper/internal/export"
	"github.com/TTMK7777/player-list-scraper/internal/fetch"
	"github.com/TTMK7777/player-list-scraper/internal/history"
	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/internal/scrape"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

// initLLM builds the completion client with the in-memory response cache.
func initLLM() (llm.Client, error) {
	if cfg.LLM.Key == "" {
		return nil, eris.New("llm key missing: set PLS_LLM_KEY or ANTHROPIC_API_KEY")
	}
	client := llm.NewClient(cfg.LLM.Key)
	cache := llm.NewCache(time.Duration(cfg.LLM.CacheTTLSecs)*time.Second, cfg.LLM.CacheSize)
	return llm.WithCache(client, cache), nil
}

// initScraper assembles the escalation chain. The browser strategy is
// skipped when noBrowser is set; the returned closer shuts the browser
// down when one was started.
func initScraper(client llm.Client, noBrowser bool) (*scrape.Scraper, func(), error) {
	timeout := time.Duration(cfg.Scrape.TimeoutSecs) * time.Second
	httpFetcher := fetch.NewHTTPFetcher(fetch.Options{
		Timeout:    timeout,
		CrawlDelay: secs(cfg.Scrape.CrawlDelaySecs),
	})

	strategies := []scrape.Strategy{
		scrape.NewStaticStrategy(httpFetcher, client, scrape.StaticOptions{
			MaxPages:  cfg.Scrape.MaxPages,
			MaxHTML:   cfg.Scrape.MaxHTMLLength,
			PrefDelay: secs(cfg.Scrape.PrefDelaySecs),
		}),
	}
	closer := func() {}

	if !noBrowser {
		browser := fetch.NewBrowserFetcher(timeout)
		strategies = append(strategies, scrape.NewBrowserStrategy(browser, client, scrape.BrowserOptions{
			MaxPages:   cfg.Scrape.MaxBrowserPages,
			MaxHTML:    cfg.Scrape.MaxHTMLLength,
			CrawlDelay: secs(cfg.Scrape.CrawlDelaySecs),
		}))
		closer = func() { _ = browser.Close() }
	}

	strategies = append(strategies,
		scrape.NewInferenceStrategy(httpFetcher, client, cfg.Scrape.MaxHTMLLength))

	return scrape.NewScraper(cfg.Scrape.MinStores, strategies...), closer, nil
}

func initHistory() (*history.Store, error) {
	return history.NewStore(cfg.History.Path, cfg.History.MaxEntries)
}

// outputPath places a timestamped report under the export directory unless
// an explicit path was given.
func outputPath(explicit, prefix string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "create export dir %s", cfg.Export.Dir)
	}
	name := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("20060102_150405"))
	return filepath.Join(cfg.Export.Dir, name), nil
}

// loadPlayers reads a player list workbook into investigation inputs.
func loadPlayers(path, industry string) ([]model.Player, error) {
	rows, err := export.ReadPlayerList(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("no players found in %s", path)
	}
	return export.Players(rows, industry), nil
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// printProgress writes batch progress to the terminal.
func printProgress(current, total int, label string) {
	fmt.Printf("[%d/%d] %s\n", current, total, label)
}
