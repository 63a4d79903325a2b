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

// StaticStrategy scrapes server-rendered sites over plain HTTP. It locates
// store listing pages from the top page, extracts records with markup
// patterns, and falls back to model extraction when the markup is opaque.
type StaticStrategy struct {
	fetcher   fetch.Fetcher
	client    llm.Client
	maxPages  int
	maxHTML   int
	prefDelay time.Duration
}

// StaticOptions bounds a static crawl. Zero values fall back to the
// package defaults.
type StaticOptions struct {
	MaxPages  int
	MaxHTML   int
	PrefDelay time.Duration
}

func NewStaticStrategy(fetcher fetch.Fetcher, client llm.Client, opts StaticOptions) *StaticStrategy {
	if opts.MaxPages <= 0 {
		opts.MaxPages = MaxPagesToScrape
	}
	if opts.MaxHTML <= 0 {
		opts.MaxHTML = MaxHTMLLength
	}
	if opts.PrefDelay <= 0 {
		opts.PrefDelay = 300 * time.Millisecond
	}
	return &StaticStrategy{
		fetcher:   fetcher,
		client:    client,
		maxPages:  opts.MaxPages,
		maxHTML:   opts.MaxHTML,
		prefDelay: opts.PrefDelay,
	}
}

func (s *StaticStrategy) Name() string { return "static_html" }

func (s *StaticStrategy) Scrape(ctx context.Context, req Request) ([]model.StoreRecord, int, error) {
	pages := 0

	top, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, pages, eris.Wrapf(err, "scrape: fetch top page %s", req.URL)
	}
	pages++

	topDoc, err := goquery.NewDocumentFromReader(strings.NewReader(top.HTML))
	if err != nil {
		return nil, pages, eris.Wrap(err, "scrape: parse top page")
	}

	storeLinks := FindStorePageLinks(topDoc, top.FinalURL)
	topPrefLinks := FindPrefecturePageLinks(topDoc, top.FinalURL)
	req.progress("店舗ページ候補 " + strconv.Itoa(len(storeLinks)) + "件")

	toVisit := append([]string{top.FinalURL}, storeLinks...)
	if len(toVisit) > s.maxPages {
		toVisit = toVisit[:s.maxPages]
	}

	visited := map[string]struct{}{}
	var stores []model.StoreRecord

	for _, pageURL := range toVisit {
		if ctx.Err() != nil {
			return FilterNoise(stores), pages, ctx.Err()
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
			page, err := s.fetcher.Fetch(ctx, pageURL)
			if err != nil {
				zap.L().Warn("store page fetch failed", zap.String("url", pageURL), zap.Error(err))
				continue
			}
			pages++
			doc, err = goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
			if err != nil {
				continue
			}
			html = page.HTML
		}

		prefLinks := FindPrefecturePageLinks(doc, pageURL)
		if len(prefLinks) > 5 {
			req.progress("都道府県別ページを巡回: " + pageURL)
			got, n := s.crawlPrefecturePages(ctx, req, prefLinks, visited)
			pages += n
			stores = append(stores, got...)
			continue
		}

		stores = append(stores, s.extractFromPage(ctx, req, doc, html, pageURL)...)
	}

	if len(stores) < s.maxPages && len(topPrefLinks) > 0 {
		got, n := s.crawlPrefecturePages(ctx, req, topPrefLinks, visited)
		pages += n
		stores = append(stores, got...)
	}

	return FilterNoise(stores), pages, nil
}

func (s *StaticStrategy) crawlPrefecturePages(ctx context.Context, req Request, links []string, visited map[string]struct{}) ([]model.StoreRecord, int) {
	if len(links) > MaxPrefecturePages {
		links = links[:MaxPrefecturePages]
	}
	var stores []model.StoreRecord
	pages := 0
	for _, link := range links {
		if ctx.Err() != nil {
			return stores, pages
		}
		if _, done := visited[link]; done {
			continue
		}
		visited[link] = struct{}{}

		page, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			zap.L().Warn("prefecture page fetch failed", zap.String("url", link), zap.Error(err))
			continue
		}
		pages++
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
		if err != nil {
			continue
		}
		stores = append(stores, s.extractFromPage(ctx, req, doc, page.HTML, link)...)
		sleepCtx(ctx, s.prefDelay)
	}
	return stores, pages
}

func (s *StaticStrategy) extractFromPage(ctx context.Context, req Request, doc *goquery.Document, html, pageURL string) []model.StoreRecord {
	return extractPage(ctx, req, s.client, doc, html, pageURL, s.maxHTML)
}

// extractPage tries the markup patterns in order of fidelity and only
// spends a model call when none of them produce records.
func extractPage(ctx context.Context, req Request, client llm.Client, doc *goquery.Document, html, pageURL string, maxHTML int) []model.StoreRecord {
	if got := ExtractStoreCards(doc, pageURL); len(got) > 0 {
		return got
	}
	if got := ExtractSingleStore(doc, html, pageURL); len(got) > 0 {
		return got
	}
	if got := ExtractStoreLinks(doc, pageURL); len(got) > 0 {
		return got
	}
	if client == nil {
		return nil
	}
	cleaned := CleanHTML(doc, maxHTML)
	got, err := ExtractWithLLM(ctx, client, req.CompanyName, cleaned, pageURL)
	if err != nil {
		zap.L().Warn("llm extraction failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}
	if len(got) > 0 {
		req.progress("AI抽出: " + strconv.Itoa(len(got)) + "件 (" + pageURL + ")")
	}
	return got
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
