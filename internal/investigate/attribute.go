package investigate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/internal/safeparse"
	"github.com/TTMK7777/player-list-scraper/internal/sanitize"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

// CostPerBatchCall is the rough USD price of one batched attribute call,
// used only for upfront estimates shown to the user.
const CostPerBatchCall = 0.03

// AttributeInvestigator fills a players × attributes matrix with tri-state
// verdicts. Players are grouped into one prompt per batch to keep call
// counts down.
type AttributeInvestigator struct {
	client llm.Client
	model  string
}

func NewAttributeInvestigator(client llm.Client, modelName string) *AttributeInvestigator {
	return &AttributeInvestigator{client: client, model: modelName}
}

// OptimalBatchSize picks how many players share one prompt: the more
// attributes per player, the fewer players fit before answers degrade.
func OptimalBatchSize(attributeCount int) int {
	switch {
	case attributeCount <= 7:
		return 10
	case attributeCount <= 15:
		return 5
	default:
		return 3
	}
}

// CostEstimate is the upfront price breakdown for a matrix run.
type CostEstimate struct {
	BatchSize      int     `json:"batch_size"`
	BatchCount     int     `json:"batch_count"`
	EstimatedCost  float64 `json:"estimated_cost"`
	PlayerCount    int     `json:"player_count"`
	AttributeCount int     `json:"attribute_count"`
}

func EstimateCost(playerCount, attributeCount, batchSize int) CostEstimate {
	if batchSize <= 0 {
		batchSize = OptimalBatchSize(attributeCount)
	}
	batchCount := (playerCount + batchSize - 1) / batchSize
	return CostEstimate{
		BatchSize:      batchSize,
		BatchCount:     batchCount,
		EstimatedCost:  float64(batchCount) * CostPerBatchCall,
		PlayerCount:    playerCount,
		AttributeCount: attributeCount,
	}
}

// AttributeBatchRequest describes one matrix run.
type AttributeBatchRequest struct {
	Players    []model.Player
	Attributes []string
	Industry   string
	Context    string
	BatchSize  int
	Delay      time.Duration
	OnProgress Progress
}

// InvestigateBatch resolves the matrix for all players. Batches that fail
// produce per-player error results so the output always lines up with the
// input.
func (a *AttributeInvestigator) InvestigateBatch(ctx context.Context, req AttributeBatchRequest) []model.AttributeInvestigationResult {
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = OptimalBatchSize(len(req.Attributes))
	}

	var results []model.AttributeInvestigationResult
	total := len(req.Players)
	processed := 0

	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := req.Players[start:end]

		batchResults, err := a.investigateSingleBatch(ctx, batch, req.Attributes, req.Industry, req.Context)
		if err != nil {
			zap.L().Warn("attribute batch failed",
				zap.Int("batch_start", start), zap.Error(err))
			names := make([]string, len(batch))
			for i, p := range batch {
				names[i] = p.PlayerName
			}
			errContext := fmt.Sprintf("バッチ%d (%s): %s", start/batchSize+1, strings.Join(names, ", "), err)
			for _, p := range batch {
				results = append(results, model.NewAttributeError(p.PlayerName, errContext))
			}
		} else {
			results = append(results, batchResults...)
		}

		processed += len(batch)
		labels := make([]string, len(batch))
		for i, p := range batch {
			labels[i] = p.PlayerName
		}
		req.OnProgress.report(processed, total, strings.Join(labels, ", "))

		if end < total {
			sleep(ctx, req.Delay)
		}
	}
	return results
}

// InvestigateSingle resolves one player's attributes, for targeted
// re-checks.
func (a *AttributeInvestigator) InvestigateSingle(ctx context.Context, player model.Player, attributes []string, industry, criteria string) model.AttributeInvestigationResult {
	results, err := a.investigateSingleBatch(ctx, []model.Player{player}, attributes, industry, criteria)
	if err != nil || len(results) == 0 {
		msg := "調査結果なし"
		if err != nil {
			msg = err.Error()
		}
		return model.NewAttributeError(player.PlayerName, msg)
	}
	return results[0]
}

func (a *AttributeInvestigator) investigateSingleBatch(ctx context.Context, players []model.Player, attributes []string, industry, criteria string) ([]model.AttributeInvestigationResult, error) {
	resp, err := a.client.Complete(ctx, llm.Request{
		Prompt: buildAttributePrompt(players, attributes, industry, criteria),
		Model:  a.model,
	})
	if err != nil {
		return nil, err
	}
	return parseAttributeResponse(resp, players, attributes), nil
}

func buildAttributePrompt(players []model.Player, attributes []string, industry, extraContext string) string {
	var lines []string
	for i, p := range players {
		name := sanitize.Text(p.PlayerName, maxInputLen)
		if p.OfficialURL != "" {
			lines = append(lines, fmt.Sprintf("%d. %s（%s）", i+1, name, p.OfficialURL))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, name))
		}
	}

	industryText := ""
	if industry != "" {
		industryText = fmt.Sprintf("（%s業界）", sanitize.Text(industry, maxInputLen))
	}
	contextSection := ""
	if extraContext != "" {
		contextSection = "\n■判定基準\n" + extraContext + "\n"
	}

	return fmt.Sprintf(`以下の%dつのサービス%sについて、各属性の取り扱い有無を調査してください。

■調査対象
%s
%s
■調査属性: %s

【出力形式】JSON（必ずこの形式で出力してください）
{
    "results": [
        {
            "player_name": "サービス名",
            "attributes": {"属性名1": true, "属性名2": false, "属性名3": null},
            "confidence": 0.9,
            "sources": ["https://..."]
        }
    ]
}

【判定ルール】
- 公式サイト・プレスリリースで確認 → true
- 明確に取り扱いなしと確認 → false
- 確認できない場合 → null
- 推測禁止。事実のみ回答すること
- 各プレイヤーに対して、全属性の判定を必ず含めること`,
		len(players), industryText, strings.Join(lines, "\n"), contextSection, strings.Join(attributes, ", "))
}

func parseAttributeResponse(resp string, players []model.Player, attributes []string) []model.AttributeInvestigationResult {
	parsed, ok := safeparse.ExtractJSON(resp)
	if !ok {
		return uncertainForAll(players, resp)
	}

	var items []any
	switch vv := parsed.(type) {
	case map[string]any:
		if list, isList := vv["results"].([]any); isList {
			items = list
		}
	case []any:
		items = vv
	}
	if items == nil {
		return uncertainForAll(players, resp)
	}

	byName := map[string]map[string]any{}
	for _, item := range items {
		if obj, isObj := item.(map[string]any); isObj {
			if name := stringField(obj, "player_name"); name != "" {
				byName[name] = obj
			}
		}
	}

	var results []model.AttributeInvestigationResult
	for _, player := range players {
		item := byName[player.PlayerName]
		if item == nil {
			// The model sometimes answers with a shortened or expanded
			// name; fall back to substring matching.
			for key, val := range byName {
				if strings.Contains(key, player.PlayerName) || strings.Contains(player.PlayerName, key) {
					item = val
					break
				}
			}
		}
		if item == nil {
			r := model.NewAttributeUncertain(player.PlayerName, nil, resp)
			results = append(results, r)
			continue
		}

		matrix := map[string]*bool{}
		rawAttrs, _ := item["attributes"].(map[string]any)
		for _, attr := range attributes {
			if b, isBool := rawAttrs[attr].(bool); isBool {
				v := b
				matrix[attr] = &v
			} else {
				matrix[attr] = nil
			}
		}

		confidence := safeparse.Float(item["confidence"], 0.5, 0, 1)
		results = append(results, model.NewAttributeSuccess(
			player.PlayerName, matrix, confidence, stringList(item["sources"], false)))
	}
	return results
}

func uncertainForAll(players []model.Player, resp string) []model.AttributeInvestigationResult {
	results := make([]model.AttributeInvestigationResult, len(players))
	for i, p := range players {
		results[i] = model.NewAttributeUncertain(p.PlayerName, nil, resp)
	}
	return results
}
