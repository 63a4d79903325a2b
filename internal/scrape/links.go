package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/TTMK7777/player-list-scraper/internal/geo"
)

// URL path vocabulary of store listing pages, covering both retail chains
// and school/classroom operators.
var storePagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/shops?(/|$)`), regexp.MustCompile(`/stores?(/|$)`),
	regexp.MustCompile(`/studios?(/|$)`), regexp.MustCompile(`/locations?(/|$)`),
	regexp.MustCompile(`/branches?(/|$)`), regexp.MustCompile(`/outlets?(/|$)`),
	regexp.MustCompile(`/tenpo(/|$)`), regexp.MustCompile(`/店舗(/|$)`),
	regexp.MustCompile(`/access(/|$)`), regexp.MustCompile(`/find(/|$)`),
	regexp.MustCompile(`/search(/|$)`), regexp.MustCompile(`/area(/|$)`),
	regexp.MustCompile(`/list(/|$)`),
	regexp.MustCompile(`/schools?(/|$)`), regexp.MustCompile(`/classrooms?(/|$)`),
	regexp.MustCompile(`/教室(/|$)`), regexp.MustCompile(`/kyoshitsu(/|$)`),
	regexp.MustCompile(`/campus(/|$)`),
}

// Link-text vocabulary for the same pages.
var storeTextPatterns = []string{
	"店舗", "アクセス", "支店", "営業所", "拠点", "スタジオ", "サロン",
	"店舗一覧", "店舗紹介", "店舗情報", "店舗検索", "店舗を探す",
	"shops", "stores", "locations", "find",
	"教室", "教室一覧", "教室検索", "教室を探す", "近くの教室",
	"school", "classroom", "campus",
}

var prefCodePathRe = regexp.MustCompile(`/(?:shop|store|area|pref|school)/(\d{2})/?$`)

var storeishPathSegments = []string{"/shop", "/store", "/area", "/pref", "/school", "/classroom", "/branch"}

// FindStorePageLinks collects same-host links that look like store listing
// pages, by URL path or by link text.
func FindStorePageLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		hrefLower := strings.ToLower(href)

		matched := false
		for _, p := range storePagePatterns {
			if p.MatchString(hrefLower) {
				matched = true
				break
			}
		}
		if !matched {
			for _, kw := range storeTextPatterns {
				if strings.Contains(text, kw) {
					matched = true
					break
				}
			}
		}
		if !matched {
			return
		}

		full := resolveSameHost(base, href)
		if full == "" {
			return
		}
		if _, dup := seen[full]; !dup {
			seen[full] = struct{}{}
			out = append(out, full)
		}
	})
	return out
}

// FindPrefecturePageLinks collects same-host links pointing at per-
// prefecture store pages: JIS code paths (/shop/13/), romaji paths
// (/school/tokyo/), or prefecture names in the link text combined with a
// store-like path.
func FindPrefecturePageLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	var out []string
	add := func(full string) {
		if _, dup := seen[full]; !dup {
			seen[full] = struct{}{}
			out = append(out, full)
		}
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		full := resolveSameHost(base, href)
		if full == "" {
			return
		}
		text := strings.TrimSpace(a.Text())
		hrefLower := strings.ToLower(href)

		if m := prefCodePathRe.FindStringSubmatch(href); m != nil {
			if _, ok := geo.ByJISCode(m[1]); ok {
				add(full)
				return
			}
		}

		for _, romaji := range geo.Romaji {
			if strings.Contains(hrefLower, "/"+romaji+"/") || strings.HasSuffix(hrefLower, "/"+romaji) {
				add(full)
				return
			}
		}

		for _, pref := range geo.Prefectures {
			short := geo.ShortName(pref)
			if strings.Contains(text, short) || strings.Contains(text, pref) {
				for _, seg := range storeishPathSegments {
					if strings.Contains(hrefLower, seg) {
						add(full)
						return
					}
				}
				break
			}
		}
	})
	return out
}

// FindPrefectureTextLinks is the looser variant used on rendered pages:
// any same-host link whose text names a prefecture.
func FindPrefectureTextLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		full := resolveSameHost(base, href)
		if full == "" {
			return
		}
		text := strings.TrimSpace(a.Text())
		for _, pref := range geo.Prefectures {
			if strings.Contains(text, geo.ShortName(pref)) || strings.Contains(text, pref) {
				if _, dup := seen[full]; !dup {
					seen[full] = struct{}{}
					out = append(out, full)
				}
				return
			}
		}
	})
	return out
}

// resolveSameHost joins href against base and returns the absolute URL,
// or "" when it leaves the site.
func resolveSameHost(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	full := base.ResolveReference(ref)
	if full.Host != base.Host {
		return ""
	}
	full.Fragment = ""
	return full.String()
}
