// Package scrape extracts store lists from company sites. Three strategies
// escalate in cost: static HTML parsing, browser rendering, and LLM-driven
// site inference. The Scraper runs them in order and stops at the first
// one that finds enough stores.
package scrape

import (
	"context"

	"github.com/TTMK7777/player-list-scraper/internal/model"
)

// Default crawl bounds.
const (
	DefaultMinStores    = 3
	MaxPagesToScrape    = 10
	MaxBrowserPages     = 15
	MaxPrefecturePages  = 47
	MaxHTMLLength       = 50000
	maxPromptedAPIBytes = 30000
)

// Request identifies one company site to scrape. OnProgress, when set,
// receives human-readable progress lines.
type Request struct {
	CompanyName string
	URL         string
	OnProgress  func(msg string)
}

func (r Request) progress(msg string) {
	if r.OnProgress != nil {
		r.OnProgress(msg)
	}
}

// Strategy is one way of extracting stores from a site. Scrape returns the
// records it found together with the number of pages it visited; the count
// is fresh per invocation. A strategy that finds nothing returns an empty
// slice, not an error; errors mean the strategy itself broke.
type Strategy interface {
	Name() string
	Scrape(ctx context.Context, req Request) ([]model.StoreRecord, int, error)
}
