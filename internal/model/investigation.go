package model

import (
	"fmt"
	"time"
)

// InvestigationMode selects how store counts are gathered.
type InvestigationMode string

const (
	ModeAI       InvestigationMode = "ai"
	ModeScraping InvestigationMode = "scraping"
	ModeHybrid   InvestigationMode = "hybrid"
)

// StoreInvestigationResult reports how many locations a company operates
// and where.
type StoreInvestigationResult struct {
	CompanyName            string            `json:"company_name"`
	TotalStores            int               `json:"total_stores"`
	DirectStores           *int              `json:"direct_stores,omitempty"`
	FranchiseStores        *int              `json:"franchise_stores,omitempty"`
	PrefectureDistribution map[string]int    `json:"prefecture_distribution,omitempty"`
	Confidence             float64           `json:"confidence"`
	SourceURLs             []string          `json:"source_urls"`
	InvestigationDate      time.Time         `json:"investigation_date"`
	InvestigationMode      InvestigationMode `json:"investigation_mode"`
	Notes                  string            `json:"notes,omitempty"`
	NeedsVerification      bool              `json:"needs_verification"`
	RawResponse            string            `json:"-"`
}

// NewStoreSuccess reports a completed store count with its sources.
func NewStoreSuccess(companyName string, totalStores int, sourceURLs []string, mode InvestigationMode, confidence float64) StoreInvestigationResult {
	return StoreInvestigationResult{
		CompanyName:       companyName,
		TotalStores:       totalStores,
		Confidence:        clampConfidence(confidence),
		SourceURLs:        sourceURLs,
		InvestigationDate: time.Now(),
		InvestigationMode: mode,
	}
}

// NewStoreUncertain reports an inconclusive investigation. The raw model
// response rides along for debugging.
func NewStoreUncertain(companyName string, mode InvestigationMode, reason, rawResponse string) StoreInvestigationResult {
	notes := "要確認"
	if reason != "" {
		notes = fmt.Sprintf("要確認: %s", reason)
	}
	return StoreInvestigationResult{
		CompanyName:       companyName,
		Confidence:        0.3,
		SourceURLs:        []string{},
		InvestigationDate: time.Now(),
		InvestigationMode: mode,
		Notes:             notes,
		NeedsVerification: true,
		RawResponse:       rawResponse,
	}
}

// NewStoreError reports a failed investigation.
func NewStoreError(companyName string, mode InvestigationMode, errMsg string) StoreInvestigationResult {
	return StoreInvestigationResult{
		CompanyName:       companyName,
		SourceURLs:        []string{},
		InvestigationDate: time.Now(),
		InvestigationMode: mode,
		Notes:             fmt.Sprintf("エラー: %s", errMsg),
		NeedsVerification: true,
	}
}

// AttributeInvestigationResult holds the attribute matrix for one player.
// Matrix values are tri-state: true (〇), false (×), nil (unknown).
type AttributeInvestigationResult struct {
	PlayerName        string           `json:"player_name"`
	AttributeMatrix   map[string]*bool `json:"attribute_matrix"`
	Confidence        float64          `json:"confidence"`
	SourceURLs        []string         `json:"source_urls,omitempty"`
	InvestigationDate time.Time        `json:"investigation_date"`
	NeedsVerification bool             `json:"needs_verification"`
	RawResponse       string           `json:"-"`
}

// NewAttributeSuccess reports a resolved attribute matrix.
func NewAttributeSuccess(playerName string, matrix map[string]*bool, confidence float64, sourceURLs []string) AttributeInvestigationResult {
	return AttributeInvestigationResult{
		PlayerName:        playerName,
		AttributeMatrix:   matrix,
		Confidence:        clampConfidence(confidence),
		SourceURLs:        sourceURLs,
		InvestigationDate: time.Now(),
	}
}

// NewAttributeUncertain reports a matrix that could not be resolved.
func NewAttributeUncertain(playerName string, matrix map[string]*bool, rawResponse string) AttributeInvestigationResult {
	if matrix == nil {
		matrix = map[string]*bool{}
	}
	return AttributeInvestigationResult{
		PlayerName:        playerName,
		AttributeMatrix:   matrix,
		Confidence:        0.3,
		InvestigationDate: time.Now(),
		NeedsVerification: true,
		RawResponse:       rawResponse,
	}
}

// NewAttributeError reports a failed attribute lookup.
func NewAttributeError(playerName, errMsg string) AttributeInvestigationResult {
	return AttributeInvestigationResult{
		PlayerName:        playerName,
		AttributeMatrix:   map[string]*bool{},
		InvestigationDate: time.Now(),
		NeedsVerification: true,
		RawResponse:       fmt.Sprintf("エラー: %s", errMsg),
	}
}
