package model

import (
	"fmt"
	"time"
)

// AlertLevel ranks how urgently a human should look at a finding. The
// values render directly into report cells.
type AlertLevel string

const (
	AlertCritical AlertLevel = "🔴 緊急"
	AlertWarning  AlertLevel = "🟡 警告"
	AlertInfo     AlertLevel = "🟢 情報"
	AlertOK       AlertLevel = "✅ 正常"
)

// ChangeType classifies what happened to a market player since the last
// check.
type ChangeType string

const (
	ChangeWithdrawal    ChangeType = "撤退"
	ChangeMerger        ChangeType = "統合・買収"
	ChangeCompanyRename ChangeType = "会社名変更"
	ChangeServiceRename ChangeType = "サービス名変更"
	ChangeURL           ChangeType = "URL変更"
	ChangeNewEntry      ChangeType = "新規参入"
	ChangeNone          ChangeType = "変更なし"
)

// ValidationStatus is the overall verdict of one player check.
type ValidationStatus string

const (
	StatusConfirmed ValidationStatus = "確認済み"
	StatusUnchanged ValidationStatus = "変更なし"
	StatusUncertain ValidationStatus = "要確認"
	StatusError     ValidationStatus = "エラー"
)

// DetermineAlertLevel maps a change type onto its alert level.
func DetermineAlertLevel(ct ChangeType) AlertLevel {
	switch ct {
	case ChangeWithdrawal, ChangeMerger:
		return AlertCritical
	case ChangeCompanyRename, ChangeServiceRename:
		return AlertWarning
	case ChangeURL, ChangeNewEntry:
		return AlertInfo
	case ChangeNone:
		return AlertOK
	default:
		return AlertInfo
	}
}

// ValidationResult is the outcome of checking whether a tracked player's
// listing is still accurate.
type ValidationResult struct {
	PlayerNameOriginal  string           `json:"player_name_original"`
	PlayerNameCurrent   string           `json:"player_name_current"`
	Status              ValidationStatus `json:"status"`
	AlertLevel          AlertLevel       `json:"alert_level"`
	ChangeType          ChangeType       `json:"change_type"`
	ChangeDetails       []string         `json:"change_details,omitempty"`
	URLOriginal         string           `json:"url_original,omitempty"`
	URLCurrent          string           `json:"url_current,omitempty"`
	CompanyNameOriginal string           `json:"company_name_original,omitempty"`
	CompanyNameCurrent  string           `json:"company_name_current,omitempty"`
	Confidence          float64          `json:"confidence"`
	SourceURLs          []string         `json:"source_urls,omitempty"`
	NewsSummary         string           `json:"news_summary,omitempty"`
	CheckedAt           time.Time        `json:"checked_at"`
	NeedsManualReview   bool             `json:"needs_manual_review"`
	RawResponse         string           `json:"-"`
}

// NewUnchangedResult reports a player verified with no change.
func NewUnchangedResult(playerName, url, companyName string, confidence float64, sourceURLs []string) ValidationResult {
	return ValidationResult{
		PlayerNameOriginal:  playerName,
		PlayerNameCurrent:   playerName,
		Status:              StatusUnchanged,
		AlertLevel:          AlertOK,
		ChangeType:          ChangeNone,
		URLOriginal:         url,
		URLCurrent:          url,
		CompanyNameOriginal: companyName,
		CompanyNameCurrent:  companyName,
		Confidence:          clampConfidence(confidence),
		SourceURLs:          sourceURLs,
		CheckedAt:           time.Now(),
	}
}

// NewErrorResult reports a check that failed outright. Confidence is zero
// and the row is flagged for manual review.
func NewErrorResult(playerName, url, errMsg string) ValidationResult {
	return ValidationResult{
		PlayerNameOriginal: playerName,
		PlayerNameCurrent:  playerName,
		Status:             StatusError,
		AlertLevel:         AlertInfo,
		ChangeType:         ChangeNone,
		ChangeDetails:      []string{fmt.Sprintf("エラー: %s", errMsg)},
		URLOriginal:        url,
		URLCurrent:         url,
		CheckedAt:          time.Now(),
		NeedsManualReview:  true,
	}
}

// NewUncertainResult reports a check that could not reach a verdict.
func NewUncertainResult(playerName, url, reason string) ValidationResult {
	r := ValidationResult{
		PlayerNameOriginal: playerName,
		PlayerNameCurrent:  playerName,
		Status:             StatusUncertain,
		AlertLevel:         AlertWarning,
		ChangeType:         ChangeNone,
		URLOriginal:        url,
		URLCurrent:         url,
		Confidence:         0.4,
		CheckedAt:          time.Now(),
		NeedsManualReview:  true,
	}
	if reason != "" {
		r.ChangeDetails = []string{fmt.Sprintf("要確認: %s", reason)}
	}
	return r
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
