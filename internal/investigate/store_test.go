package investigate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/internal/scrape"
)

type stubScraper struct {
	result model.ScrapingResult
	calls  int
}

func (s *stubScraper) Scrape(_ context.Context, _ scrape.Request) model.ScrapingResult {
	s.calls++
	return s.result
}

func TestStoreInvestigator_AI(t *testing.T) {
	client := &stubClient{responses: []string{"```json\n" + `{
		"total_stores": 123,
		"direct_stores": 100,
		"franchise_stores": 23,
		"prefecture_distribution": {"東京都": 20, "北海道": 5},
		"confidence": 0.85,
		"sources": ["https://example.com/ir", "not-a-url"],
		"notes": "IR資料より"
	}` + "\n```"}}

	inv := NewStoreInvestigator(client, nil, "")
	res := inv.Investigate(context.Background(), StoreRequest{CompanyName: "テスト商事", Mode: model.ModeAI})

	assert.Equal(t, 123, res.TotalStores)
	require.NotNil(t, res.DirectStores)
	assert.Equal(t, 100, *res.DirectStores)
	assert.Equal(t, 0.85, res.Confidence)
	assert.Equal(t, map[string]int{"東京都": 20, "北海道": 5}, res.PrefectureDistribution)
	// non-http sources are dropped
	assert.Equal(t, []string{"https://example.com/ir"}, res.SourceURLs)
	assert.False(t, res.NeedsVerification)
	assert.Equal(t, model.ModeAI, res.InvestigationMode)
}

func TestStoreInvestigator_AI_NumberInsideString(t *testing.T) {
	client := &stubClient{responses: []string{`{"total_stores": "約80店舗", "confidence": 0.75}`}}
	inv := NewStoreInvestigator(client, nil, "")
	res := inv.Investigate(context.Background(), StoreRequest{CompanyName: "テスト", Mode: model.ModeAI})
	assert.Equal(t, 80, res.TotalStores)
}

func TestStoreInvestigator_AI_Unparseable(t *testing.T) {
	client := &stubClient{responses: []string{"すみません、分かりませんでした。"}}
	inv := NewStoreInvestigator(client, nil, "")
	res := inv.Investigate(context.Background(), StoreRequest{CompanyName: "テスト", Mode: model.ModeAI})
	assert.True(t, res.NeedsVerification)
	assert.Equal(t, 0.3, res.Confidence)
}

func TestStoreInvestigator_EmptyCompanyName(t *testing.T) {
	inv := NewStoreInvestigator(&stubClient{}, nil, "")
	res := inv.Investigate(context.Background(), StoreRequest{})
	assert.True(t, res.NeedsVerification)
	assert.Contains(t, res.Notes, "企業名")
}

func TestStoreInvestigator_ScrapingConfidenceTiers(t *testing.T) {
	stores := func(n int) []model.StoreRecord {
		out := make([]model.StoreRecord, n)
		for i := range out {
			out[i] = model.StoreRecord{StoreName: "店舗", Prefecture: "東京都"}
		}
		return out
	}

	tests := []struct {
		name       string
		count      int
		confidence float64
	}{
		{"many stores", 11, 0.9},
		{"some stores", 5, 0.7},
		{"none", 0, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &stubScraper{result: model.ScrapingResult{Stores: stores(tt.count), StrategyUsed: "static_html"}}
			inv := NewStoreInvestigator(&stubClient{}, sc, "")
			res := inv.Investigate(context.Background(), StoreRequest{
				CompanyName: "テスト", OfficialURL: "https://example.com", Mode: model.ModeScraping,
			})
			assert.Equal(t, tt.confidence, res.Confidence)
			assert.Equal(t, tt.count, res.TotalStores)
			assert.Equal(t, tt.count == 0, res.NeedsVerification)
		})
	}
}

func TestStoreInvestigator_ScrapingNeedsURL(t *testing.T) {
	inv := NewStoreInvestigator(&stubClient{}, &stubScraper{}, "")
	res := inv.Investigate(context.Background(), StoreRequest{CompanyName: "テスト", Mode: model.ModeScraping})
	assert.Contains(t, res.Notes, "公式URLが必要")
}

func TestStoreInvestigator_HybridConfidentAISkipsScraping(t *testing.T) {
	client := &stubClient{responses: []string{`{"total_stores": 50, "confidence": 0.9, "sources": ["https://example.com"]}`}}
	sc := &stubScraper{}
	inv := NewStoreInvestigator(client, sc, "")

	res := inv.Investigate(context.Background(), StoreRequest{
		CompanyName: "テスト", OfficialURL: "https://example.com", Mode: model.ModeHybrid,
	})

	assert.Equal(t, model.ModeHybrid, res.InvestigationMode)
	assert.Equal(t, 50, res.TotalStores)
	assert.Zero(t, sc.calls)
}

func TestStoreInvestigator_HybridFallsBackToScraping(t *testing.T) {
	client := &stubClient{responses: []string{`{"total_stores": 10, "confidence": 0.4}`}}
	sc := &stubScraper{result: model.ScrapingResult{
		Stores: []model.StoreRecord{
			{StoreName: "渋谷店", Prefecture: "東京都", URL: "https://example.com/shop/1"},
			{StoreName: "梅田店", Prefecture: "大阪府"},
		},
		StrategyUsed: "static_html",
	}}
	inv := NewStoreInvestigator(client, sc, "")

	res := inv.Investigate(context.Background(), StoreRequest{
		CompanyName: "テスト", OfficialURL: "https://example.com", Mode: model.ModeHybrid,
	})

	assert.Equal(t, 1, sc.calls)
	assert.Equal(t, model.ModeHybrid, res.InvestigationMode)
	assert.Equal(t, 2, res.TotalStores)
	assert.Equal(t, 0.7, res.Confidence)
	assert.False(t, res.NeedsVerification)
	assert.Equal(t, map[string]int{"東京都": 1, "大阪府": 1}, res.PrefectureDistribution)
}

func TestStoreInvestigator_Batch(t *testing.T) {
	client := &stubClient{responses: []string{`{"total_stores": 5, "confidence": 0.8}`}}
	inv := NewStoreInvestigator(client, nil, "")

	reqs := []StoreRequest{
		{CompanyName: "A社", Mode: model.ModeAI},
		{CompanyName: "B社", Mode: model.ModeAI},
		{CompanyName: "C社", Mode: model.ModeAI},
	}
	results := inv.InvestigateBatch(context.Background(), reqs, 2, 0, nil)

	require.Len(t, results, 3)
	assert.Equal(t, "A社", results[0].CompanyName)
	assert.Equal(t, "C社", results[2].CompanyName)
}
