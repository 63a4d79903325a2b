package model

// VerificationStatus tracks whether a newcomer candidate's URL has been
// confirmed reachable.
type VerificationStatus string

const (
	VerificationVerified   VerificationStatus = "verified"
	VerificationUnverified VerificationStatus = "unverified"
	VerificationURLError   VerificationStatus = "url_error"
)

// NewcomerCandidate is a market entrant proposed by the detector. It starts
// unverified; the URL check either promotes it to verified or demotes it to
// url_error and halves the confidence.
type NewcomerCandidate struct {
	PlayerName         string             `json:"player_name"`
	OfficialURL        string             `json:"official_url,omitempty"`
	CompanyName        string             `json:"company_name,omitempty"`
	EntryDateApprox    string             `json:"entry_date_approx,omitempty"`
	Confidence         float64            `json:"confidence"`
	SourceURLs         []string           `json:"source_urls,omitempty"`
	Reason             string             `json:"reason,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	URLVerified        bool               `json:"url_verified"`
}

// MarkVerified records a successful URL check.
func (c *NewcomerCandidate) MarkVerified() {
	c.VerificationStatus = VerificationVerified
	c.URLVerified = true
}

// MarkURLError records a failed URL check and halves the confidence.
func (c *NewcomerCandidate) MarkURLError() {
	c.VerificationStatus = VerificationURLError
	c.URLVerified = false
	c.Confidence /= 2
}
