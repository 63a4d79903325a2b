package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TTMK7777/player-list-scraper/internal/config"
	"github.com/TTMK7777/player-list-scraper/internal/model"
)

func TestSecs(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, secs(0.5))
	assert.Equal(t, 2*time.Second, secs(2))
	assert.Equal(t, time.Duration(0), secs(0))
}

func TestOutputPathExplicit(t *testing.T) {
	cfg = &config.Config{}
	path, err := outputPath("/tmp/report.xlsx", "validation")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/report.xlsx", path)
}

func TestOutputPathGenerated(t *testing.T) {
	dir := t.TempDir()
	cfg = &config.Config{}
	cfg.Export.Dir = dir

	path, err := outputPath("", "validation")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "validation_"))
	assert.True(t, strings.HasSuffix(path, ".xlsx"))
}

func TestResultRows(t *testing.T) {
	results := []model.ValidationResult{
		{
			PlayerNameOriginal: "Paravi",
			PlayerNameCurrent:  "U-NEXT",
			AlertLevel:         model.AlertCritical,
			ChangeType:         model.ChangeMerger,
			Confidence:         0.85,
		},
	}
	rows := resultRows(results)
	require.Len(t, rows, 1)
	assert.Equal(t, "Paravi", rows[0]["player_name_original"])
	assert.Equal(t, "U-NEXT", rows[0]["player_name"])
	assert.Equal(t, string(model.AlertCritical), rows[0]["alert_level"])
}

func TestAlertSummary(t *testing.T) {
	results := []model.ValidationResult{
		{AlertLevel: model.AlertOK},
		{AlertLevel: model.AlertOK},
		{AlertLevel: model.AlertCritical},
	}
	summary := alertSummary(results)
	assert.Equal(t, 2, summary[string(model.AlertOK)])
	assert.Equal(t, 1, summary[string(model.AlertCritical)])
}
