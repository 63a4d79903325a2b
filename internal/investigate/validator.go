package investigate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/fetch"
	"github.com/TTMK7777/player-list-scraper/internal/model"
	"github.com/TTMK7777/player-list-scraper/internal/safeparse"
	"github.com/TTMK7777/player-list-scraper/pkg/llm"
)

// ValidationConfidenceThreshold marks answers below it as 要確認.
const ValidationConfidenceThreshold = 0.6

// HeadFunc checks URL liveness. Injectable so tests need no network.
type HeadFunc func(ctx context.Context, url string) fetch.StatusResult

// PlayerValidator re-checks tracked players: is the service still running,
// did it rename, did the operator or URL change, was it merged or
// acquired.
type PlayerValidator struct {
	client llm.Client
	head   HeadFunc
	model  string
}

func NewPlayerValidator(client llm.Client, head HeadFunc, modelName string) *PlayerValidator {
	if head == nil {
		head = fetch.Head
	}
	return &PlayerValidator{client: client, head: head, model: modelName}
}

func (v *PlayerValidator) Validate(ctx context.Context, player model.Player, industry string) model.ValidationResult {
	var urlStatus *fetch.StatusResult
	if player.OfficialURL != "" {
		st := v.head(ctx, player.OfficialURL)
		urlStatus = &st
	}

	resp, err := v.client.Complete(ctx, llm.Request{
		Prompt: v.buildPrompt(player, industry),
		Model:  v.model,
	})
	if err != nil {
		zap.L().Warn("player validation llm call failed",
			zap.String("player", player.PlayerName), zap.Error(err))
		return model.NewErrorResult(player.PlayerName, player.OfficialURL, err.Error())
	}

	return v.parseResponse(resp, player, urlStatus)
}

// ValidateBatch checks many players with bounded concurrency. A broken
// row yields an error result in place, never a short slice.
func (v *PlayerValidator) ValidateBatch(ctx context.Context, players []model.Player, industry string, concurrency int, delay time.Duration, onProgress Progress) []model.ValidationResult {
	total := len(players)
	return runBatch(ctx, players, concurrency, delay, func(ctx context.Context, idx int, p model.Player) model.ValidationResult {
		onProgress.report(idx+1, total, p.PlayerName)
		return v.Validate(ctx, p, industry)
	})
}

func (v *PlayerValidator) buildPrompt(player model.Player, industry string) string {
	industryContext := ""
	if industry != "" {
		industryContext = fmt.Sprintf("（%s業界）", industry)
	}
	companyContext := ""
	if player.CompanyName != "" {
		companyContext = fmt.Sprintf("（運営会社: %s）", player.CompanyName)
	}
	urlContext := ""
	if player.OfficialURL != "" {
		urlContext = "【公式URL】" + player.OfficialURL
	}

	return fmt.Sprintf(`「%s」%s%sの最新情報を調査してください。

%s

【確認事項】
1. サービスは現在も継続していますか？（撤退・終了していないか）
2. サービス名の変更はありますか？（リブランディング等）
3. 運営会社名の変更はありますか？
4. 公式URLは正しいですか？（リダイレクト・変更の有無）
5. 統合・買収などの重大ニュースはありますか？（直近1-2年）

【重要】
- %d年以降の最新情報を優先してください
- 公式サイト、プレスリリース、信頼できるニュースソースのみを参照
- 推測や古い情報は避けてください

【出力形式】JSON（必ずこの形式で）
{
    "is_active": true,
    "change_type": "none",
    "current_service_name": "現在のサービス名",
    "current_company_name": "現在の運営会社名",
    "current_url": "現在の公式URL",
    "changes": ["変更点1", "変更点2"],
    "news": "関連ニュース（撤退・統合等の重大情報があれば）",
    "confidence": 0.9,
    "sources": ["情報源URL1", "情報源URL2"]
}

【change_type の値】
- "none": 変更なし
- "withdrawal": サービス終了・撤退
- "merger": 統合・買収
- "company_rename": 運営会社名の変更
- "service_rename": サービス名の変更（リブランディング）
- "url_change": URLのみ変更`,
		player.PlayerName, industryContext, companyContext, urlContext, time.Now().Year()-1)
}

var changeTypeByKeyword = map[string]model.ChangeType{
	"none":           model.ChangeNone,
	"withdrawal":     model.ChangeWithdrawal,
	"merger":         model.ChangeMerger,
	"company_rename": model.ChangeCompanyRename,
	"service_rename": model.ChangeServiceRename,
	"url_change":     model.ChangeURL,
}

func (v *PlayerValidator) parseResponse(resp string, player model.Player, urlStatus *fetch.StatusResult) model.ValidationResult {
	parsed, ok := safeparse.ExtractJSON(resp)
	if !ok {
		return model.NewUncertainResult(player.PlayerName, player.OfficialURL, "LLMからの応答を解析できませんでした")
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return model.NewUncertainResult(player.PlayerName, player.OfficialURL, "LLMからの応答を解析できませんでした")
	}

	changeType, known := changeTypeByKeyword[stringField(obj, "change_type")]
	if !known {
		changeType = model.ChangeNone
	}
	alertLevel := model.DetermineAlertLevel(changeType)

	confidence := safeparse.Float(obj["confidence"], 0.5, 0, 1)
	isActive := true
	if b, isBool := obj["is_active"].(bool); isBool {
		isActive = b
	}

	var status model.ValidationStatus
	switch {
	case !isActive:
		status = model.StatusConfirmed
		changeType = model.ChangeWithdrawal
		alertLevel = model.AlertCritical
	case confidence < ValidationConfidenceThreshold:
		status = model.StatusUncertain
	case changeType == model.ChangeNone:
		status = model.StatusUnchanged
	default:
		status = model.StatusConfirmed
	}

	changes := stringList(obj["changes"], false)

	currentURL := stringField(obj, "current_url")
	if currentURL == "" {
		currentURL = player.OfficialURL
	}
	if urlStatus != nil && urlStatus.Redirected && urlStatus.FinalURL != player.OfficialURL && changeType != model.ChangeURL {
		changes = append(changes, fmt.Sprintf("URLリダイレクト検出: %s → %s", player.OfficialURL, urlStatus.FinalURL))
	}

	currentName := stringField(obj, "current_service_name")
	if currentName == "" {
		currentName = player.PlayerName
	}
	currentCompany := stringField(obj, "current_company_name")
	if currentCompany == "" {
		currentCompany = player.CompanyName
	}

	return model.ValidationResult{
		PlayerNameOriginal:  player.PlayerName,
		PlayerNameCurrent:   currentName,
		Status:              status,
		AlertLevel:          alertLevel,
		ChangeType:          changeType,
		ChangeDetails:       changes,
		URLOriginal:         player.OfficialURL,
		URLCurrent:          currentURL,
		CompanyNameOriginal: player.CompanyName,
		CompanyNameCurrent:  currentCompany,
		Confidence:          confidence,
		SourceURLs:          stringList(obj["sources"], false),
		NewsSummary:         newsSummary(obj["news"]),
		CheckedAt:           time.Now(),
		NeedsManualReview:   status == model.StatusUncertain || confidence < ValidationConfidenceThreshold,
		RawResponse:         resp,
	}
}

func newsSummary(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case []any:
		var parts []string
		for _, item := range vv {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " / ")
	}
	return ""
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}
