package investigate

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TTMK7777/player-list-scraper/internal/fetch"
	"github.com/TTMK7777/player-list-scraper/internal/model"
)

func headStub(result fetch.StatusResult) HeadFunc {
	return func(_ context.Context, _ string) fetch.StatusResult {
		return result
	}
}

func TestPlayerValidator_Unchanged(t *testing.T) {
	client := &stubClient{responses: []string{`{
		"is_active": true,
		"change_type": "none",
		"current_service_name": "テスト配信",
		"confidence": 0.9,
		"sources": ["https://example.com/pr"]
	}`}}
	v := NewPlayerValidator(client, headStub(fetch.StatusResult{StatusCode: 200}), "")

	res := v.Validate(context.Background(), model.Player{
		PlayerName: "テスト配信", OfficialURL: "https://example.com", CompanyName: "テスト社",
	}, "動画配信")

	assert.Equal(t, model.StatusUnchanged, res.Status)
	assert.Equal(t, model.AlertOK, res.AlertLevel)
	assert.Equal(t, model.ChangeNone, res.ChangeType)
	assert.False(t, res.NeedsManualReview)
	assert.Equal(t, "テスト社", res.CompanyNameCurrent)
}

func TestPlayerValidator_WithdrawalOverridesEverything(t *testing.T) {
	client := &stubClient{responses: []string{`{
		"is_active": false,
		"change_type": "none",
		"confidence": 0.95,
		"news": "2025年3月にサービス終了を発表"
	}`}}
	v := NewPlayerValidator(client, nil, "")

	res := v.Validate(context.Background(), model.Player{PlayerName: "旧サービス"}, "")

	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.Equal(t, model.ChangeWithdrawal, res.ChangeType)
	assert.Equal(t, model.AlertCritical, res.AlertLevel)
	assert.Contains(t, res.NewsSummary, "サービス終了")
}

func TestPlayerValidator_LowConfidenceUncertain(t *testing.T) {
	client := &stubClient{responses: []string{`{"is_active": true, "change_type": "company_rename", "confidence": 0.4}`}}
	v := NewPlayerValidator(client, nil, "")

	res := v.Validate(context.Background(), model.Player{PlayerName: "テスト"}, "")

	assert.Equal(t, model.StatusUncertain, res.Status)
	assert.True(t, res.NeedsManualReview)
}

func TestPlayerValidator_RenameConfirmedWithWarning(t *testing.T) {
	client := &stubClient{responses: []string{`{
		"is_active": true,
		"change_type": "service_rename",
		"current_service_name": "新ブランド名",
		"changes": ["2025年にリブランディング"],
		"confidence": 0.85
	}`}}
	v := NewPlayerValidator(client, nil, "")

	res := v.Validate(context.Background(), model.Player{PlayerName: "旧ブランド名"}, "")

	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.Equal(t, model.AlertWarning, res.AlertLevel)
	assert.Equal(t, "新ブランド名", res.PlayerNameCurrent)
	assert.Equal(t, "旧ブランド名", res.PlayerNameOriginal)
}

func TestPlayerValidator_RedirectAppendsDetail(t *testing.T) {
	client := &stubClient{responses: []string{`{"is_active": true, "change_type": "none", "confidence": 0.9}`}}
	v := NewPlayerValidator(client, headStub(fetch.StatusResult{
		StatusCode: 200,
		FinalURL:   "https://new.example.com/",
		Redirected: true,
	}), "")

	res := v.Validate(context.Background(), model.Player{
		PlayerName: "テスト", OfficialURL: "https://old.example.com/",
	}, "")

	require.Len(t, res.ChangeDetails, 1)
	assert.Contains(t, res.ChangeDetails[0], "URLリダイレクト検出")
	assert.Contains(t, res.ChangeDetails[0], "https://new.example.com/")
}

func TestPlayerValidator_UnparseableResponse(t *testing.T) {
	client := &stubClient{responses: []string{"情報が見つかりませんでした。"}}
	v := NewPlayerValidator(client, nil, "")

	res := v.Validate(context.Background(), model.Player{PlayerName: "テスト"}, "")

	assert.Equal(t, model.StatusUncertain, res.Status)
	assert.Equal(t, 0.4, res.Confidence)
}

func TestPlayerValidator_Batch(t *testing.T) {
	client := &stubClient{responses: []string{`{"is_active": true, "change_type": "none", "confidence": 0.9}`}}
	v := NewPlayerValidator(client, nil, "")

	players := []model.Player{
		{PlayerName: "A"}, {PlayerName: "B"}, {PlayerName: "C"},
	}
	var progressed atomic.Int32
	results := v.ValidateBatch(context.Background(), players, "", 2, 0, func(_, _ int, _ string) {
		progressed.Add(1)
	})

	require.Len(t, results, 3)
	assert.Equal(t, "A", results[0].PlayerNameOriginal)
	assert.Equal(t, "C", results[2].PlayerNameOriginal)
	assert.Equal(t, int32(3), progressed.Load())
}
