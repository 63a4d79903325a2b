package investigate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/TTMK7777/player-list-scraper/internal/fetch"
	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/internal/safeparse"
	"github.com/TTMK7777/player-list-scraper/internal/sanitize"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

// NewcomerDetector proposes market entrants missing from an existing
// player list. Candidates are proposals, not facts: every one gets a URL
// liveness check, and a dead URL halves its confidence. Nothing is added
// anywhere automatically.
type NewcomerDetector struct {
	client llm.Client
	head   HeadFunc
	model  string
}

func NewNewcomerDetector(client llm.Client, head HeadFunc, modelName string) *NewcomerDetector {
	if head == nil {
		head = fetch.Head
	}
	return &NewcomerDetector{client: client, head: head, model: modelName}
}

func (d *NewcomerDetector) Detect(ctx context.Context, industry string, existingPlayers []string, onProgress Progress) ([]model.NewcomerCandidate, error) {
	onProgress.report(1, 3, "LLMに問い合わせ中...")

	candidates, err := d.queryNewcomers(ctx, industry, existingPlayers)
	if err != nil {
		return nil, err
	}

	onProgress.report(2, 3, fmt.Sprintf("URL検証中（%d件）...", len(candidates)))

	for i := range candidates {
		c := &candidates[i]
		if c.OfficialURL == "" {
			c.VerificationStatus = model.VerificationUnverified
			continue
		}
		st := d.head(ctx, c.OfficialURL)
		if st.Alive() {
			c.MarkVerified()
		} else {
			c.MarkURLError()
		}
	}

	onProgress.report(3, 3, "検出完了")
	return candidates, nil
}

func (d *NewcomerDetector) queryNewcomers(ctx context.Context, industry string, existingPlayers []string) ([]model.NewcomerCandidate, error) {
	safeIndustry := sanitize.Text(industry, maxInputLen)
	var existing []string
	for _, p := range existingPlayers {
		existing = append(existing, "- "+sanitize.Text(p, maxInputLen))
	}

	prompt := fmt.Sprintf(`%s 業界について、%d年時点で日本国内でサービスを提供しているプレイヤーを調査。
以下の既存リストに含まれていない新規参入企業を特定してください。

【既存リスト】（%d件）
%s

【重要な制約】
- 確実に存在するサービスのみ回答。推測や「ありそうな」サービスは含めない
- 公式サイトURLが確認できない場合はofficial_urlを空文字にする
- 各候補について、存在を確認した情報ソースURLを必ず記載
- 「新規参入がない場合」は空配列 [] を返すこと（無理に候補を作らない）

【出力形式】JSON
[
    {
        "player_name": "サービス名",
        "official_url": "https://...",
        "company_name": "運営会社名",
        "entry_date_approx": "2025-06",
        "confidence": 0.8,
        "source_urls": ["https://..."],
        "reason": "新規参入と判断した理由"
    }
]`, safeIndustry, time.Now().Year(), len(existingPlayers), strings.Join(existing, "\n"))

	resp, err := d.client.Complete(ctx, llm.Request{Prompt: prompt, Model: d.model})
	if err != nil {
		return nil, eris.Wrap(err, "investigate: newcomer query")
	}
	return parseNewcomerResponse(resp), nil
}

func parseNewcomerResponse(resp string) []model.NewcomerCandidate {
	parsed, ok := safeparse.ExtractJSON(resp)
	if !ok {
		return nil
	}

	var items []any
	switch vv := parsed.(type) {
	case []any:
		items = vv
	case map[string]any:
		if list, isList := vv["results"].([]any); isList {
			items = list
		} else if list, isList := vv["candidates"].([]any); isList {
			items = list
		}
	}

	var candidates []model.NewcomerCandidate
	for _, item := range items {
		obj, isObj := item.(map[string]any)
		if !isObj {
			continue
		}
		name := strings.TrimSpace(stringField(obj, "player_name"))
		if name == "" {
			continue
		}

		var sources []string
		for _, raw := range stringList(obj["source_urls"], false) {
			if u := sanitize.URL(raw); u != "" {
				sources = append(sources, u)
			}
		}

		candidates = append(candidates, model.NewcomerCandidate{
			PlayerName:         name,
			OfficialURL:        sanitize.URL(stringField(obj, "official_url")),
			CompanyName:        stringField(obj, "company_name"),
			EntryDateApprox:    stringField(obj, "entry_date_approx"),
			Confidence:         safeparse.Float(obj["confidence"], 0.5, 0, 1),
			SourceURLs:         sources,
			Reason:             stringField(obj, "reason"),
			VerificationStatus: model.VerificationUnverified,
		})
	}
	return candidates
}
