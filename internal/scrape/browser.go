package scrape

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/fetch"
	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

// BrowserStrategy renders pages in headless Chromium before extraction,
// for sites that build their store listings client-side.
type BrowserStrategy struct {
	browser    fetch.Fetcher
	client     llm.Client
	maxPages   int
	maxHTML    int
	crawlDelay time.Duration
}

type BrowserOptions struct {
	MaxPages   int
	MaxHTML    int
	CrawlDelay time.Duration
}

func NewBrowserStrategy(browser fetch.Fetcher, client llm.Client, opts BrowserOptions) *BrowserStrategy {
	if opts.MaxPages <= 0 {
		opts.MaxPages = MaxBrowserPages
	}
	if opts.MaxHTML <= 0 {
		opts.MaxHTML = MaxHTMLLength
	}
	if opts.CrawlDelay <= 0 {
		opts.CrawlDelay = 500 * time.Millisecond
	}
	return &BrowserStrategy{
		browser:    browser,
		client:     client,
		maxPages:   opts.MaxPages,
		maxHTML:    opts.MaxHTML,
		crawlDelay: opts.CrawlDelay,
	}
}

func (b *BrowserStrategy) Name() string { return "browser_automation" }

func (b *BrowserStrategy) Scrape(ctx context.Context, req Request) ([]model.StoreRecord, int, error) {
	pages := 0

	top, err := b.browser.Fetch(ctx, req.URL)
	if err != nil {
		return nil, pages, eris.Wrapf(err, "scrape: render top page %s", req.URL)
	}
	pages++

	topDoc, err := goquery.NewDocumentFromReader(strings.NewReader(top.HTML))
	if err != nil {
		return nil, pages, eris.Wrap(err, "scrape: parse rendered top page")
	}

	storeLinks := FindStorePageLinks(topDoc, top.FinalURL)
	req.progress("レンダリング後の店舗ページ候補 " + strconv.Itoa(len(storeLinks)) + "件")

	toVisit := append([]string{top.FinalURL}, storeLinks...)
	if len(toVisit) > b.maxPages {
		toVisit = toVisit[:b.maxPages]
	}

	visited := map[string]struct{}{}
	var stores []model.StoreRecord

	for _, pageURL := range toVisit {
		if ctx.Err() != nil {
			return Dedupe(stores), pages, ctx.Err()
		}
		if _, done := visited[pageURL]; done {
			continue
		}
		visited[pageURL] = struct{}{}

		var doc *goquery.Document
		var html string
		if pageURL == top.FinalURL {
			doc, html = topDoc, top.HTML
		} else {
			page, err := b.browser.Fetch(ctx, pageURL)
			if err != nil {
				zap.L().Warn("browser page load failed", zap.String("url", pageURL), zap.Error(err))
				continue
			}
			pages++
			doc, err = goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
			if err != nil {
				continue
			}
			html = page.HTML
			sleepCtx(ctx, b.crawlDelay)
		}

		stores = append(stores, extractPage(ctx, req, b.client, doc, html, pageURL, b.maxHTML)...)

		prefLinks := FindPrefectureTextLinks(doc, pageURL)
		if len(prefLinks) > MaxPrefecturePages {
			prefLinks = prefLinks[:MaxPrefecturePages]
		}
		for _, link := range prefLinks {
			if ctx.Err() != nil {
				return Dedupe(stores), pages, ctx.Err()
			}
			if _, done := visited[link]; done {
				continue
			}
			visited[link] = struct{}{}

			page, err := b.browser.Fetch(ctx, link)
			if err != nil {
				zap.L().Warn("browser prefecture page load failed", zap.String("url", link), zap.Error(err))
				continue
			}
			pages++
			prefDoc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
			if err != nil {
				continue
			}
			stores = append(stores, extractPage(ctx, req, b.client, prefDoc, page.HTML, link, b.maxHTML)...)
			sleepCtx(ctx, b.crawlDelay)
		}
	}

	return Dedupe(stores), pages, nil
}
