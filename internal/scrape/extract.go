package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/TTMK7777/player-list-scraper/internal/geo"
	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/internal/safeparse"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

const extractionSystem = "あなたはWebページから店舗情報を正確に抽出するアシスタントです。必ずJSON配列のみを返してください。"

func buildExtractionPrompt(companyName, html string) string {
	return fmt.Sprintf(`以下は「%s」のWebページのHTMLです。
このページに含まれる店舗・教室の情報をすべて抽出してください。

出力は以下の形式のJSON配列のみとし、説明文は含めないでください。
[
  {
    "store_name": "店舗名",
    "address": "住所(〒から記載があれば含める)",
    "phone": "電話番号",
    "prefecture": "都道府県",
    "business_hours": "営業時間",
    "url": "店舗詳細ページのURL(相対パス可)"
  }
]

店舗情報が見つからない場合は [] を返してください。

HTML:
%s`, companyName, html)
}

// ExtractWithLLM asks the model to pull store records out of cleaned HTML.
// Entries without a store name are dropped, and relative URLs are resolved
// against pageURL.
func ExtractWithLLM(ctx context.Context, client llm.Client, companyName, html, pageURL string) ([]model.StoreRecord, error) {
	resp, err := client.Complete(ctx, llm.Request{
		System: extractionSystem,
		Prompt: buildExtractionPrompt(companyName, html),
	})
	if err != nil {
		return nil, eris.Wrap(err, "scrape: llm extraction")
	}
	return RecordsFromResponse(resp, pageURL), nil
}

// RecordsFromResponse parses a model response into store records. Responses
// that contain no JSON array yield no records rather than an error.
func RecordsFromResponse(resp, pageURL string) []model.StoreRecord {
	parsed, ok := safeparse.ExtractJSON(resp)
	if !ok {
		return nil
	}
	arr, ok := parsed.([]any)
	if !ok {
		return nil
	}

	var stores []model.StoreRecord
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(stringField(obj, "store_name"))
		if name == "" {
			continue
		}
		addr := strings.TrimSpace(stringField(obj, "address"))
		pref := strings.TrimSpace(stringField(obj, "prefecture"))
		if pref == "" {
			pref = geo.ExtractPrefecture(addr)
		}
		u := strings.TrimSpace(stringField(obj, "url"))
		if u != "" && pageURL != "" {
			u = joinURL(pageURL, u)
		}

		rec := model.StoreRecord{
			StoreName:     name,
			Address:       addr,
			Phone:         geo.NormalizePhone(stringField(obj, "phone")),
			Prefecture:    pref,
			BusinessHours: strings.TrimSpace(stringField(obj, "business_hours")),
			URL:           u,
		}
		if rec.Valid() {
			stores = append(stores, rec)
		}
	}
	return stores
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
