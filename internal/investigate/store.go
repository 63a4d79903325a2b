package investigate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/internal/safeparse"
	"github.com/TTMK7777/player-list-scraper/internal/sanitize"
	"github.com/TTMK7777/player-list-scraper/internal/scrape"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

// StoreConfidenceThreshold is the cutoff below which a hybrid
// investigation falls back to scraping and results get flagged for
// verification.
const StoreConfidenceThreshold = 0.7

const maxInputLen = 500

var leadingIntRe = regexp.MustCompile(`\d+`)

// storeScraper is what the investigator needs from the scraping layer.
type storeScraper interface {
	Scrape(ctx context.Context, req scrape.Request) model.ScrapingResult
}

// StoreInvestigator counts a company's locations, either by asking the
// model, by scraping the official site, or both.
type StoreInvestigator struct {
	client  llm.Client
	scraper storeScraper
	model   string
}

func NewStoreInvestigator(client llm.Client, scraper storeScraper, modelName string) *StoreInvestigator {
	return &StoreInvestigator{client: client, scraper: scraper, model: modelName}
}

// StoreRequest identifies one company to investigate.
type StoreRequest struct {
	CompanyName string
	OfficialURL string
	Industry    string
	Mode        model.InvestigationMode
	OnProgress  func(msg string)
}

func (r StoreRequest) progress(msg string) {
	if r.OnProgress != nil {
		r.OnProgress(msg)
	}
}

func (s *StoreInvestigator) Investigate(ctx context.Context, req StoreRequest) model.StoreInvestigationResult {
	req.CompanyName = sanitize.Text(req.CompanyName, maxInputLen)
	req.OfficialURL = sanitize.Text(req.OfficialURL, maxInputLen)
	req.Industry = sanitize.Text(req.Industry, maxInputLen)
	if req.Mode == "" {
		req.Mode = model.ModeAI
	}

	if req.CompanyName == "" {
		return model.NewStoreError("", req.Mode, "企業名が指定されていません")
	}

	req.progress(fmt.Sprintf("[%s] %s の店舗調査を開始", strings.ToUpper(string(req.Mode)), req.CompanyName))

	switch req.Mode {
	case model.ModeAI:
		return s.investigateAI(ctx, req)
	case model.ModeScraping:
		return s.investigateScraping(ctx, req)
	case model.ModeHybrid:
		return s.investigateHybrid(ctx, req)
	default:
		return model.NewStoreError(req.CompanyName, req.Mode, fmt.Sprintf("不明な調査モード: %s", req.Mode))
	}
}

// InvestigateBatch runs investigations for many companies with bounded
// concurrency.
func (s *StoreInvestigator) InvestigateBatch(ctx context.Context, reqs []StoreRequest, concurrency int, delay time.Duration, onProgress Progress) []model.StoreInvestigationResult {
	total := len(reqs)
	return runBatch(ctx, reqs, concurrency, delay, func(ctx context.Context, idx int, req StoreRequest) model.StoreInvestigationResult {
		onProgress.report(idx+1, total, req.CompanyName)
		return s.Investigate(ctx, req)
	})
}

func (s *StoreInvestigator) investigateAI(ctx context.Context, req StoreRequest) model.StoreInvestigationResult {
	req.progress("AI調査を実行中...")

	resp, err := s.client.Complete(ctx, llm.Request{
		Prompt: s.buildAIPrompt(req),
		Model:  s.model,
	})
	if err != nil {
		zap.L().Warn("store investigation llm call failed",
			zap.String("company", req.CompanyName), zap.Error(err))
		return model.NewStoreError(req.CompanyName, model.ModeAI, err.Error())
	}

	result := s.parseAIResponse(req.CompanyName, resp)
	req.progress(fmt.Sprintf("調査完了: %d店舗, 信頼度%.0f%%", result.TotalStores, result.Confidence*100))
	return result
}

func (s *StoreInvestigator) buildAIPrompt(req StoreRequest) string {
	urlHint := ""
	if req.OfficialURL != "" {
		urlHint = "\n【公式サイト】" + req.OfficialURL
	}
	industryHint := ""
	if req.Industry != "" {
		industryHint = "\n【業界】" + req.Industry
	}

	return fmt.Sprintf(`「%s」の店舗情報を調査してください。
%s%s

【調査項目】
1. 現在の店舗総数（直営/FC区別可能なら分けて）
2. 都道府県別の店舗分布（不明な場合は推測せず「不明」と回答）
3. 情報の出典URL（公式サイト、IR資料等）

【重要】
- %d年以降の最新情報を優先
- 公式サイト、有価証券報告書、信頼できるソースのみを参照
- 不明な情報は推測せず「不明」と明記
- 情報源URLは必ず提供してください（検証用）

【出力形式】JSON
{
    "total_stores": 123,
    "direct_stores": 100,
    "franchise_stores": 23,
    "prefecture_distribution": {"北海道": 5, "東京都": 20},
    "confidence": 0.85,
    "sources": ["https://..."],
    "notes": "補足情報（任意）"
}

JSONのみを出力してください。都道府県別データが不明な場合は null としてください。`,
		req.CompanyName, urlHint, industryHint, time.Now().Year())
}

func (s *StoreInvestigator) parseAIResponse(companyName, resp string) model.StoreInvestigationResult {
	parsed, ok := safeparse.ExtractJSON(resp)
	if !ok {
		return model.NewStoreUncertain(companyName, model.ModeAI, "JSONを抽出できませんでした", resp)
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return model.NewStoreUncertain(companyName, model.ModeAI, "レスポンス形式が不正です", resp)
	}

	totalStores := safeparse.Int(obj["total_stores"], 0, nil, nil)
	if totalStores == 0 {
		// "約100店舗" style answers still carry the number.
		if str, isStr := obj["total_stores"].(string); isStr {
			if m := leadingIntRe.FindString(str); m != "" {
				totalStores = safeparse.Int(m, 0, nil, nil)
			}
		}
	}

	confidence := safeparse.Float(obj["confidence"], 0.5, 0, 1)
	sources := stringList(obj["sources"], true)

	result := model.StoreInvestigationResult{
		CompanyName:       companyName,
		TotalStores:       totalStores,
		Confidence:        confidence,
		SourceURLs:        sources,
		InvestigationDate: time.Now(),
		InvestigationMode: model.ModeAI,
		NeedsVerification: confidence < StoreConfidenceThreshold || totalStores == 0,
		RawResponse:       resp,
	}
	if v, isStr := obj["notes"].(string); isStr {
		result.Notes = v
	}
	if n, isNum := obj["direct_stores"].(float64); isNum {
		d := int(n)
		result.DirectStores = &d
	}
	if n, isNum := obj["franchise_stores"].(float64); isNum {
		f := int(n)
		result.FranchiseStores = &f
	}
	if dist, isMap := obj["prefecture_distribution"].(map[string]any); isMap {
		pd := map[string]int{}
		for pref, v := range dist {
			pd[pref] = safeparse.Int(v, 0, nil, nil)
		}
		if len(pd) > 0 {
			result.PrefectureDistribution = pd
		}
	}
	return result
}

func (s *StoreInvestigator) investigateScraping(ctx context.Context, req StoreRequest) model.StoreInvestigationResult {
	req.progress("スクレイピング調査を実行中...")

	if req.OfficialURL == "" {
		return model.NewStoreError(req.CompanyName, model.ModeScraping, "スクレイピングには公式URLが必要です")
	}
	if s.scraper == nil {
		return model.NewStoreError(req.CompanyName, model.ModeScraping, "スクレイパーが設定されていません")
	}

	res := s.scraper.Scrape(ctx, scrape.Request{
		CompanyName: req.CompanyName,
		URL:         req.OfficialURL,
		OnProgress:  req.OnProgress,
	})

	total := len(res.Stores)
	prefDist := map[string]int{}
	for _, store := range res.Stores {
		if store.Prefecture != "" {
			prefDist[store.Prefecture]++
		}
	}

	sources := []string{req.OfficialURL}
	for i, store := range res.Stores {
		if i >= 3 {
			break
		}
		if store.URL != "" && !contains(sources, store.URL) {
			sources = append(sources, store.URL)
		}
	}

	confidence := 0.3
	switch {
	case total > 10:
		confidence = 0.9
	case total > 0:
		confidence = 0.7
	}

	req.progress(fmt.Sprintf("スクレイピング完了: %d店舗", total))

	result := model.StoreInvestigationResult{
		CompanyName:       req.CompanyName,
		TotalStores:       total,
		Confidence:        confidence,
		SourceURLs:        sources,
		InvestigationDate: time.Now(),
		InvestigationMode: model.ModeScraping,
		Notes:             fmt.Sprintf("戦略: %s, 処理時間: %.1f秒", res.StrategyUsed, res.ElapsedSecs),
		NeedsVerification: total == 0,
	}
	if len(prefDist) > 0 {
		result.PrefectureDistribution = prefDist
	}
	return result
}

// investigateHybrid asks the model first and scrapes only when the answer
// is shaky.
func (s *StoreInvestigator) investigateHybrid(ctx context.Context, req StoreRequest) model.StoreInvestigationResult {
	req.progress("ハイブリッド調査を開始...")

	aiResult := s.investigateAI(ctx, req)

	if aiResult.Confidence >= StoreConfidenceThreshold {
		req.progress(fmt.Sprintf("AI調査の信頼度が十分です（%.0f%%）", aiResult.Confidence*100))
		aiResult.InvestigationMode = model.ModeHybrid
		return aiResult
	}

	if req.OfficialURL != "" {
		req.progress(fmt.Sprintf("AI調査の信頼度が低いためスクレイピングで補完（%.0f%%）...", aiResult.Confidence*100))

		scraped := s.investigateScraping(ctx, req)
		if scraped.TotalStores > 0 {
			req.progress(fmt.Sprintf("スクレイピングで %d 店舗を取得", scraped.TotalStores))

			merged := model.StoreInvestigationResult{
				CompanyName:       req.CompanyName,
				TotalStores:       scraped.TotalStores,
				Confidence:        max(aiResult.Confidence, scraped.Confidence),
				SourceURLs:        mergeUnique(aiResult.SourceURLs, scraped.SourceURLs),
				InvestigationDate: time.Now(),
				InvestigationMode: model.ModeHybrid,
				DirectStores:      aiResult.DirectStores,
				FranchiseStores:   aiResult.FranchiseStores,
				Notes: fmt.Sprintf("AI+スクレイピング併用. AI店舗数: %d, スクレイピング店舗数: %d",
					aiResult.TotalStores, scraped.TotalStores),
			}
			merged.PrefectureDistribution = scraped.PrefectureDistribution
			if merged.PrefectureDistribution == nil {
				merged.PrefectureDistribution = aiResult.PrefectureDistribution
			}
			return merged
		}
	}

	req.progress("スクレイピング補完に失敗。AI結果に要確認フラグを設定")
	aiResult.InvestigationMode = model.ModeHybrid
	aiResult.InvestigationDate = time.Now()
	aiResult.Notes = "AI調査のみ（スクレイピング補完失敗）: " + aiResult.Notes
	aiResult.NeedsVerification = true
	return aiResult
}

func stringList(v any, httpOnly bool) []string {
	var out []string
	switch vv := v.(type) {
	case string:
		if vv != "" {
			out = append(out, vv)
		}
	case []any:
		for _, item := range vv {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	if !httpOnly {
		return out
	}
	var filtered []string
	for _, s := range out {
		if strings.HasPrefix(s, "http") {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func mergeUnique(a, b []string) []string {
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
