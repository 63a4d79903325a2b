package investigate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TTMK7777/player-list-scraper/internal/fetch"
	"github.com/TTMK7777/player-list-scraper/internal/model"
)

func TestNewcomerDetector_Detect(t *testing.T) {
	client := &stubClient{responses: []string{`[
		{"player_name": "新サービスA", "official_url": "https://a.example.com", "company_name": "A社",
		 "entry_date_approx": "2025-06", "confidence": 0.8, "source_urls": ["https://news.example.com/a"],
		 "reason": "2025年6月にサービス開始を発表"},
		{"player_name": "新サービスB", "official_url": "https://b.example.com", "confidence": 0.8},
		{"player_name": "新サービスC", "official_url": "", "confidence": 0.6},
		{"player_name": "", "official_url": "https://ignored.example.com"}
	]`}}

	head := func(_ context.Context, url string) fetch.StatusResult {
		if url == "https://a.example.com" {
			return fetch.StatusResult{StatusCode: 200}
		}
		return fetch.StatusResult{Err: "connection_error"}
	}

	detector := NewNewcomerDetector(client, head, "")
	candidates, err := detector.Detect(context.Background(), "動画配信", []string{"Netflix", "Hulu"}, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	a := candidates[0]
	assert.Equal(t, model.VerificationVerified, a.VerificationStatus)
	assert.True(t, a.URLVerified)
	assert.Equal(t, 0.8, a.Confidence)

	b := candidates[1]
	assert.Equal(t, model.VerificationURLError, b.VerificationStatus)
	assert.False(t, b.URLVerified)
	assert.Equal(t, 0.4, b.Confidence)

	c := candidates[2]
	assert.Equal(t, model.VerificationUnverified, c.VerificationStatus)
	assert.Equal(t, 0.6, c.Confidence)
}

func TestNewcomerDetector_NoCandidates(t *testing.T) {
	client := &stubClient{responses: []string{`[]`}}
	detector := NewNewcomerDetector(client, headStub(fetch.StatusResult{}), "")

	candidates, err := detector.Detect(context.Background(), "動画配信", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestNewcomerDetector_PromptContainsExistingPlayers(t *testing.T) {
	client := &stubClient{responses: []string{`[]`}}
	detector := NewNewcomerDetector(client, headStub(fetch.StatusResult{}), "")

	_, err := detector.Detect(context.Background(), "クレジットカード", []string{"楽天カード", "三井住友カード"}, nil)
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "楽天カード")
	assert.Contains(t, client.prompts[0], "三井住友カード")
	assert.Contains(t, client.prompts[0], "クレジットカード")
}

func TestParseNewcomerResponse_WrappedInResults(t *testing.T) {
	resp := `{"results": [{"player_name": "新顔", "confidence": 0.7}]}`
	candidates := parseNewcomerResponse(resp)
	require.Len(t, candidates, 1)
	assert.Equal(t, "新顔", candidates[0].PlayerName)
}
