// Package model defines the records and result types the scraping and
// investigation layers exchange.
package model

import "strings"

// StoreRecord is one physical location extracted from a company's site.
type StoreRecord struct {
	CompanyName   string `json:"company_name"`
	StoreName     string `json:"store_name"`
	Address       string `json:"address"`
	Phone         string `json:"phone,omitempty"`
	URL           string `json:"url,omitempty"`
	Prefecture    string `json:"prefecture,omitempty"`
	BusinessHours string `json:"business_hours,omitempty"`
	Fax           string `json:"fax,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Valid reports whether the record is usable: a name plus at least one way
// to locate the store.
func (s StoreRecord) Valid() bool {
	return strings.TrimSpace(s.StoreName) != "" &&
		(strings.TrimSpace(s.Address) != "" || strings.TrimSpace(s.Phone) != "")
}

// Key is the dedup identity. Address distinguishes same-name branches; a
// record without an address degrades to a name-only key and can over-merge
// chains that reuse branch names.
func (s StoreRecord) Key() string {
	return strings.TrimSpace(s.StoreName) + "|" + strings.TrimSpace(s.Address)
}

// ScrapingResult is the outcome of one multi-strategy scrape of a company
// site.
type ScrapingResult struct {
	CompanyName  string        `json:"company_name"`
	URL          string        `json:"url"`
	Stores       []StoreRecord `json:"stores"`
	StrategyUsed string        `json:"strategy_used"`
	PagesVisited int           `json:"pages_visited"`
	ElapsedSecs  float64       `json:"elapsed_time"`
	Errors       []string      `json:"errors,omitempty"`
}
