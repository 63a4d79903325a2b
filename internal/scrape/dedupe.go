package scrape

import (
	"regexp"
	"strings"

	"github.com/TTMK7777/player-list-scraper/internal/model"
)

// Navigation labels, region headers, and promotional copy that pattern
// extraction routinely mistakes for store names.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^市区町村`),
	regexp.MustCompile(`^店舗を探す`),
	regexp.MustCompile(`^教室を探す`),
	regexp.MustCompile(`^近くの教室`),
	regexp.MustCompile(`^検索`),
	regexp.MustCompile(`^エリア`),
	regexp.MustCompile(`県の中古車`),
	regexp.MustCompile(`店舗一覧`),
	regexp.MustCompile(`教室一覧`),
	regexp.MustCompile(`^(北海道|東北|関東|中部|関西|中国|四国|九州|甲信越)$`),
	regexp.MustCompile(`^\d+件$`),
	regexp.MustCompile(`魔法`),
	regexp.MustCompile(`恐るべし`),
	regexp.MustCompile(`おトク`),
	regexp.MustCompile(`キャンペーン`),
	regexp.MustCompile(`フェア`),
	regexp.MustCompile(`セール`),
	regexp.MustCompile(`お知らせ`),
	regexp.MustCompile(`ニュース`),
	regexp.MustCompile(`新着`),
	regexp.MustCompile(`^お問い?合わせ`),
	regexp.MustCompile(`^アクセス$`),
	regexp.MustCompile(`^詳細$`),
	regexp.MustCompile(`^もっと見る`),
}

// IsNoise reports whether a record looks like page navigation or marketing
// text rather than an actual store.
func IsNoise(rec model.StoreRecord) bool {
	name := strings.TrimSpace(rec.StoreName)
	n := len([]rune(name))
	if n < 2 || n > 50 {
		return true
	}
	for _, p := range noisePatterns {
		if p.MatchString(name) {
			return true
		}
	}
	addr := strings.TrimSpace(rec.Address)
	if addr != "" {
		if addr == name {
			return true
		}
		if !strings.Contains(addr, "〒") && !strings.ContainsAny(addr, "都道府県") && len([]rune(addr)) < 10 {
			return true
		}
	}
	return false
}

// FilterNoise drops noise records and deduplicates by store name alone.
// Listing pages repeat the same store across area tabs with slightly
// different address snippets, so the name is the stable key here.
func FilterNoise(stores []model.StoreRecord) []model.StoreRecord {
	seen := map[string]struct{}{}
	var out []model.StoreRecord
	for _, rec := range stores {
		if IsNoise(rec) {
			continue
		}
		key := strings.TrimSpace(rec.StoreName)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// Dedupe removes exact duplicates keyed on name plus address.
func Dedupe(stores []model.StoreRecord) []model.StoreRecord {
	seen := map[string]struct{}{}
	var out []model.StoreRecord
	for _, rec := range stores {
		key := rec.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
