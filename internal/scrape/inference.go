package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/fetch"
	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/internal/safeparse"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

var (
	apiCallRe = regexp.MustCompile(`(?i)(?:fetch|axios|ajax|XMLHttpRequest)[^;]*["']([^"']+api[^"']*)["']`)
	dataURLRe = regexp.MustCompile(`["']([^"']+(?:\.json|/api/|/data/)[^"']*)["']`)
)

// InferenceStrategy is the last resort: it has the model study the page
// source for data endpoints and prefecture URLs, then extracts from
// whatever those yield. When all of that still comes up short it asks the
// model for locations it knows of from public sources.
type InferenceStrategy struct {
	fetcher fetch.Fetcher
	client  llm.Client
	maxHTML int
}

func NewInferenceStrategy(fetcher fetch.Fetcher, client llm.Client, maxHTML int) *InferenceStrategy {
	if maxHTML <= 0 {
		maxHTML = MaxHTMLLength
	}
	return &InferenceStrategy{fetcher: fetcher, client: client, maxHTML: maxHTML}
}

func (s *InferenceStrategy) Name() string { return "ai_inference" }

// siteAnalysis is the model's read of how a site serves its store data.
type siteAnalysis struct {
	APIEndpoint         string
	PrefectureURLs      []string
	RecommendedApproach string
	Notes               string
}

func (s *InferenceStrategy) Scrape(ctx context.Context, req Request) ([]model.StoreRecord, int, error) {
	pages := 0

	top, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, pages, eris.Wrapf(err, "scrape: fetch page for analysis %s", req.URL)
	}
	pages++

	analysis, err := s.analyzeSite(ctx, req, top.HTML)
	if err != nil {
		zap.L().Warn("site analysis failed", zap.String("url", req.URL), zap.Error(err))
		analysis = &siteAnalysis{}
	}
	if analysis.RecommendedApproach != "" {
		req.progress("推奨アプローチ: " + analysis.RecommendedApproach)
	}

	var stores []model.StoreRecord

	if analysis.APIEndpoint != "" {
		got, err := s.extractFromAPI(ctx, req, joinURL(top.FinalURL, analysis.APIEndpoint))
		if err != nil {
			zap.L().Warn("api extraction failed", zap.String("endpoint", analysis.APIEndpoint), zap.Error(err))
		} else {
			pages++
			stores = append(stores, got...)
		}
	}

	prefURLs := analysis.PrefectureURLs
	if len(prefURLs) > MaxPrefecturePages {
		prefURLs = prefURLs[:MaxPrefecturePages]
	}
	for _, raw := range prefURLs {
		if ctx.Err() != nil {
			return Dedupe(stores), pages, ctx.Err()
		}
		link := joinURL(top.FinalURL, raw)
		page, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			zap.L().Warn("prefecture url fetch failed", zap.String("url", link), zap.Error(err))
			continue
		}
		pages++
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
		if err != nil {
			continue
		}
		got, err := ExtractWithLLM(ctx, s.client, req.CompanyName, CleanHTML(doc, s.maxHTML), link)
		if err != nil {
			zap.L().Warn("llm extraction failed", zap.String("url", link), zap.Error(err))
			continue
		}
		stores = append(stores, got...)
	}

	if len(stores) < 10 {
		got, err := s.searchKnownStores(ctx, req)
		if err != nil {
			zap.L().Warn("known-store search failed", zap.String("company", req.CompanyName), zap.Error(err))
		} else {
			stores = append(stores, got...)
		}
	}

	return Dedupe(stores), pages, nil
}

// analyzeSite scans the source for script-issued data requests and asks
// the model to pick the endpoint worth calling.
func (s *InferenceStrategy) analyzeSite(ctx context.Context, req Request, html string) (*siteAnalysis, error) {
	apiHits := captureAll(apiCallRe, html, 10)
	dataHits := captureAll(dataURLRe, html, 10)

	prompt := fmt.Sprintf(`「%s」の店舗一覧サイト %s を分析しています。
ページのスクリプトから検出したAPI呼び出し候補:
%s

データURL候補:
%s

このサイトから店舗一覧を取得する最善の方法を判断し、以下の形式のJSONオブジェクトのみを返してください。
{
  "api_endpoint": "店舗データを返すAPIのURL(確信がなければ空文字)",
  "prefecture_urls": ["都道府県別ページのURL", ...],
  "recommended_approach": "api / prefecture_pages / none",
  "notes": "補足"
}`, req.CompanyName, req.URL, bulletList(apiHits), bulletList(dataHits))

	resp, err := s.client.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return nil, eris.Wrap(err, "scrape: site analysis")
	}
	parsed, ok := safeparse.ExtractJSON(resp)
	if !ok {
		return nil, eris.New("scrape: analysis response had no json")
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, eris.New("scrape: analysis response was not an object")
	}

	out := &siteAnalysis{
		APIEndpoint:         strings.TrimSpace(stringField(obj, "api_endpoint")),
		RecommendedApproach: strings.TrimSpace(stringField(obj, "recommended_approach")),
		Notes:               strings.TrimSpace(stringField(obj, "notes")),
	}
	if urls, ok := obj["prefecture_urls"].([]any); ok {
		for _, v := range urls {
			if u, ok := v.(string); ok && strings.TrimSpace(u) != "" {
				out.PrefectureURLs = append(out.PrefectureURLs, strings.TrimSpace(u))
			}
		}
	}
	return out, nil
}

// extractFromAPI calls a discovered data endpoint and has the model read
// the (pretty-printed, truncated) payload.
func (s *InferenceStrategy) extractFromAPI(ctx context.Context, req Request, endpoint string) ([]model.StoreRecord, error) {
	page, err := s.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch api %s", endpoint)
	}

	body := page.HTML
	var pretty bytes.Buffer
	if json.Indent(&pretty, []byte(body), "", "  ") == nil {
		body = pretty.String()
	}
	if len(body) > maxPromptedAPIBytes {
		body = body[:maxPromptedAPIBytes]
	}

	prompt := fmt.Sprintf(`以下は「%s」の店舗データAPIのレスポンスです。
店舗情報を抽出し、store_name / address / phone / prefecture / business_hours / url を持つJSON配列のみを返してください。

%s`, req.CompanyName, body)

	resp, err := s.client.Complete(ctx, llm.Request{System: extractionSystem, Prompt: prompt})
	if err != nil {
		return nil, eris.Wrap(err, "scrape: api payload extraction")
	}
	return RecordsFromResponse(resp, endpoint), nil
}

// searchKnownStores asks the model for locations it can attribute to the
// company from public sources. These records are inherently lower trust
// and go through the same validity filter as scraped ones.
func (s *InferenceStrategy) searchKnownStores(ctx context.Context, req Request) ([]model.StoreRecord, error) {
	domain := req.URL
	if u, err := url.Parse(req.URL); err == nil && u.Host != "" {
		domain = u.Host
	}
	prompt := fmt.Sprintf(`「%s」(公式サイト: %s)の店舗・教室について、公開情報から把握している店舗一覧を教えてください。
確実に存在すると分かるもののみ、store_name / address / phone / prefecture を持つJSON配列として返してください。
不明な項目は空文字にしてください。該当がなければ [] を返してください。`, req.CompanyName, domain)

	resp, err := s.client.Complete(ctx, llm.Request{System: extractionSystem, Prompt: prompt})
	if err != nil {
		return nil, eris.Wrap(err, "scrape: known-store search")
	}
	return RecordsFromResponse(resp, ""), nil
}

func captureAll(re *regexp.Regexp, s string, limit int) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
		if len(out) >= limit {
			break
		}
	}
	return out
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(なし)"
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
