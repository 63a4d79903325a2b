package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), 0)
	require.NoError(t, err)
	return s
}

func TestStorePrunesOldRecords(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, 2)
	require.NoError(t, err)

	var records []*CheckRecord
	for i := 0; i < 3; i++ {
		r := &CheckRecord{
			Phase:      PhasePreSurvey,
			Industry:   "動画配信",
			ExecutedAt: time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC),
		}
		_, err := s.SaveRecord(r, []map[string]any{})
		require.NoError(t, err)
		records = append(records, r)
	}

	all, err := s.ListRecords("", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, records[1].RecordID, all[0].RecordID)

	_, err = os.Stat(filepath.Join(dir, records[0].ResultsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestStoreSaveAndLoadLatest(t *testing.T) {
	s := newTestStore(t)

	first := &CheckRecord{
		Phase:       PhasePreSurvey,
		Industry:    "動画配信",
		ExecutedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		PlayerCount: 2,
	}
	_, err := s.SaveRecord(first, []map[string]any{
		{"player_name": "Netflix"},
		{"player_name": "Hulu"},
	})
	require.NoError(t, err)
	assert.Len(t, first.RecordID, 8)

	second := &CheckRecord{
		Phase:       PhasePreSurvey,
		Industry:    "動画配信",
		ExecutedAt:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		PlayerCount: 3,
	}
	_, err = s.SaveRecord(second, []map[string]any{
		{"player_name": "Netflix"},
		{"player_name": "Hulu"},
		{"player_name": "Lemino"},
	})
	require.NoError(t, err)

	other := &CheckRecord{Phase: PhasePreRelease, Industry: "動画配信"}
	_, err = s.SaveRecord(other, []map[string]any{})
	require.NoError(t, err)

	latest, err := s.LoadLatest("動画配信", PhasePreSurvey)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.RecordID, latest.RecordID)
	assert.Equal(t, 3, latest.PlayerCount)

	rows, err := s.LoadResults(latest)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Lemino", rows[2]["player_name"])
}

func TestStoreLoadLatestMissing(t *testing.T) {
	s := newTestStore(t)
	latest, err := s.LoadLatest("クレカ", PhasePreSurvey)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestStoreListRecordsFilters(t *testing.T) {
	s := newTestStore(t)
	for _, r := range []*CheckRecord{
		{Phase: PhasePreSurvey, Industry: "動画配信"},
		{Phase: PhaseRankingConfirmed, Industry: "動画配信"},
		{Phase: PhasePreSurvey, Industry: "クレカ"},
	} {
		_, err := s.SaveRecord(r, []map[string]any{})
		require.NoError(t, err)
	}

	all, err := s.ListRecords("", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	video, err := s.ListRecords("動画配信", "")
	require.NoError(t, err)
	assert.Len(t, video, 2)

	pre, err := s.ListRecords("動画配信", PhasePreSurvey)
	require.NoError(t, err)
	require.Len(t, pre, 1)
	assert.Equal(t, PhasePreSurvey, pre[0].Phase)
}

func TestSamePlayer(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Netflix", "Netflix", true},
		{"Hulu（フールー）", "Hulu（フール）", true},
		{"ソフトバンクカード株式会社", "ソフトバンクカード", true},
		{"楽天カード株式会社", "楽天カード", false},
		{"Netflix", "Hulu", false},
		{"", "Netflix", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SamePlayer(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestComputeDiff(t *testing.T) {
	prev := []map[string]any{
		{
			"player_name": "Netflix",
			"alert_level": "正常",
			"attribute_matrix": map[string]any{
				"アニメ": true,
				"韓流":  false,
			},
		},
		{
			"player_name": "Paravi",
			"alert_level": "正常",
		},
		{
			"player_name": "Hulu",
			"alert_level": "警告: 要確認",
		},
	}
	cur := []map[string]any{
		{
			"player_name": "Netflix",
			"alert_level": "緊急",
			"attribute_matrix": map[string]any{
				"アニメ": true,
				"韓流":  true,
			},
		},
		{
			"player_name": "Hulu",
			"alert_level": "正常",
		},
		{
			"player_name": "Lemino",
			"alert_level": "正常",
		},
	}

	record := &CheckRecord{RecordID: "abc12345", Phase: PhasePreSurvey}
	report := ComputeDiff(record, prev, cur, PhaseRankingConfirmed)

	require.Len(t, report.NewPlayers, 1)
	assert.Equal(t, "Lemino", report.NewPlayers[0].PlayerName)

	require.Len(t, report.RemovedPlayers, 1)
	assert.Equal(t, "Paravi", report.RemovedPlayers[0].PlayerName)

	require.Len(t, report.NewAlerts, 1)
	assert.Equal(t, "Netflix", report.NewAlerts[0].PlayerName)
	assert.Equal(t, "緊急", report.NewAlerts[0].After)

	require.Len(t, report.ResolvedAlerts, 1)
	assert.Equal(t, "Hulu", report.ResolvedAlerts[0].PlayerName)

	require.Len(t, report.AttributeChanges, 1)
	change := report.AttributeChanges[0]
	assert.Equal(t, "韓流", change.Field)
	assert.Equal(t, "×", change.Before)
	assert.Equal(t, "○", change.After)

	assert.Equal(t, 5, report.TotalChanges())
	assert.Equal(t, "abc12345", report.PreviousRecord)
	assert.Equal(t, PhaseRankingConfirmed, report.CurrentPhase)
}

func TestComputeDiffFuzzyMatch(t *testing.T) {
	prev := []map[string]any{{"player_name": "ソフトバンクカード株式会社"}}
	cur := []map[string]any{{"player_name": "ソフトバンクカード"}}

	report := ComputeDiff(nil, prev, cur, PhasePreRelease)
	assert.Empty(t, report.NewPlayers)
	assert.Empty(t, report.RemovedPlayers)
	assert.Zero(t, report.TotalChanges())
}
