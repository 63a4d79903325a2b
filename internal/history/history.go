// Package history persists check runs as JSON files so phases of the same
// survey can be compared later. Each run gets a short unique ID and a row
// in an index file; the full results live in a per-run file next to it.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Check phases of one survey cycle.
const (
	PhasePreSurvey        = "pre_survey"
	PhaseRankingConfirmed = "ranking_confirmed"
	PhasePreRelease       = "pre_release"
)

// CheckRecord is the index entry for one stored run.
type CheckRecord struct {
	RecordID    string         `json:"record_id"`
	Phase       string         `json:"phase"`
	Industry    string         `json:"industry"`
	ExecutedAt  time.Time      `json:"executed_at"`
	PlayerCount int            `json:"player_count"`
	ResultsFile string         `json:"results_file"`
	Summary     map[string]int `json:"summary,omitempty"`
}

// Store reads and writes check history under one directory. A positive
// maxEntries caps the index; the oldest records and their result files are
// dropped when the cap is exceeded.
type Store struct {
	dir        string
	indexPath  string
	maxEntries int
}

func NewStore(dir string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "history: create dir %s", dir)
	}
	return &Store{
		dir:        dir,
		indexPath:  filepath.Join(dir, "index.json"),
		maxEntries: maxEntries,
	}, nil
}

// SaveRecord stores one run's results and appends the record to the
// index. A missing RecordID or ExecutedAt is filled in.
func (s *Store) SaveRecord(record *CheckRecord, results any) (string, error) {
	if record.RecordID == "" {
		record.RecordID = uuid.NewString()[:8]
	}
	if record.ExecutedAt.IsZero() {
		record.ExecutedAt = time.Now()
	}
	record.ResultsFile = record.RecordID + ".json"

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "history: marshal results")
	}
	resultsPath := filepath.Join(s.dir, record.ResultsFile)
	if err := os.WriteFile(resultsPath, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "history: write %s", resultsPath)
	}

	index, err := s.loadIndex()
	if err != nil {
		return "", err
	}
	index = append(index, *record)
	index = s.prune(index)
	if err := s.saveIndex(index); err != nil {
		return "", err
	}
	return resultsPath, nil
}

func (s *Store) prune(index []CheckRecord) []CheckRecord {
	if s.maxEntries <= 0 || len(index) <= s.maxEntries {
		return index
	}
	sort.Slice(index, func(i, j int) bool {
		return index[i].ExecutedAt.Before(index[j].ExecutedAt)
	})
	drop := index[:len(index)-s.maxEntries]
	for _, r := range drop {
		path := filepath.Join(s.dir, r.ResultsFile)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("history: remove pruned results", zap.String("path", path), zap.Error(err))
		}
	}
	return index[len(index)-s.maxEntries:]
}

// LoadLatest returns the most recent record for an industry and phase, or
// nil when none exists.
func (s *Store) LoadLatest(industry, phase string) (*CheckRecord, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	var latest *CheckRecord
	for i := range index {
		r := &index[i]
		if r.Industry != industry || r.Phase != phase {
			continue
		}
		if latest == nil || r.ExecutedAt.After(latest.ExecutedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

// LoadResults reads a stored run back as generic rows.
func (s *Store) LoadResults(record *CheckRecord) ([]map[string]any, error) {
	path := filepath.Join(s.dir, record.ResultsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "history: read %s", path)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "history: parse %s", path)
	}
	return rows, nil
}

// ListRecords returns records filtered by industry and phase; empty
// filters match everything.
func (s *Store) ListRecords(industry, phase string) ([]CheckRecord, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	var out []CheckRecord
	for _, r := range index {
		if industry != "" && r.Industry != industry {
			continue
		}
		if phase != "" && r.Phase != phase {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) loadIndex() ([]CheckRecord, error) {
	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "history: read index")
	}
	var index []CheckRecord
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, eris.Wrap(err, "history: parse index")
	}
	return index, nil
}

func (s *Store) saveIndex(index []CheckRecord) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return eris.Wrap(err, "history: marshal index")
	}
	if err := os.WriteFile(s.indexPath, data, 0o644); err != nil {
		return eris.Wrap(err, "history: write index")
	}
	return nil
}
