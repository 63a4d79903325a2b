package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/TTMK7777/player-list-scraper/internal/geo"
	"github.com/TTMK7777/player-list-scraper/internal/model"
)

var (
	cardClassRe    = regexp.MustCompile(`(?i)shop|store|result|item|card`)
	nameClassRe    = regexp.MustCompile(`(?i)name|title|storename`)
	addrClassRe    = regexp.MustCompile(`(?i)address|addr|-addr|shop.*addr`)
	phoneClassRe   = regexp.MustCompile(`(?i)tel|phone`)
	addrWithPrefRe = regexp.MustCompile(`〒[\d\-]+\s*.+[都道府県]`)
	singleTitleRe  = regexp.MustCompile(`([^|｜\s]+店)`)
	singleAddrRe   = regexp.MustCompile(`〒[\d\-]+\s*([^\n<]+)`)
	storeDetailRes = []*regexp.Regexp{
		regexp.MustCompile(`/shop/\d{4}/`),
		regexp.MustCompile(`/store/\d+/`),
		regexp.MustCompile(`/school/[a-z]+/[a-z\-]+/`),
		regexp.MustCompile(`/classroom/\d+`),
	}
	collapseSpaceRe = regexp.MustCompile(`\s+`)
)

var excludedLinkNames = []string{"店舗を探す", "教室を探す", "教室検索"}

// ExtractStoreCards parses repeated card-style markup: container elements
// whose class names suggest a store listing, each holding a name plus an
// address or phone number.
func ExtractStoreCards(doc *goquery.Document, pageURL string) []model.StoreRecord {
	var stores []model.StoreRecord
	doc.Find("div, article, li").Each(func(_ int, card *goquery.Selection) {
		class, _ := card.Attr("class")
		if !cardClassRe.MatchString(class) {
			return
		}

		name := cardName(card)
		if name == "" {
			return
		}

		addr := cardAddress(card)
		phone := cardPhone(card)
		link := cardLink(card, pageURL)

		rec := model.StoreRecord{
			StoreName:  name,
			Address:    addr,
			Phone:      geo.NormalizePhone(phone),
			Prefecture: geo.ExtractPrefecture(addr),
			URL:        link,
		}
		if rec.Valid() {
			stores = append(stores, rec)
		}
	})
	return stores
}

func cardName(card *goquery.Selection) string {
	if h := card.Find("h2, h3, h4").First(); h.Length() > 0 {
		return normalizeSpace(h.Text())
	}
	var name string
	card.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if nameClassRe.MatchString(class) {
			name = normalizeSpace(s.Text())
			return false
		}
		return true
	})
	return name
}

// cardAddress locates a 〒 marker inside the card and widens to the
// smallest ancestor whose text reads as a full address.
func cardAddress(card *goquery.Selection) string {
	var addr string
	card.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(s.Text(), "〒") {
			return true
		}
		level := s
		for i := 0; i < 4 && level.Length() > 0; i++ {
			txt := normalizeSpace(level.Text())
			if addrWithPrefRe.MatchString(txt) || (strings.Contains(txt, "〒") && len([]rune(txt)) > 15) {
				if got := geo.ExtractFullAddress(txt); got != "" {
					addr = got
					return false
				}
			}
			level = level.Parent()
		}
		return true
	})
	if addr != "" {
		return addr
	}
	card.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if addrClassRe.MatchString(class) {
			addr = geo.ExtractFullAddress(normalizeSpace(s.Text()))
			if addr == "" {
				addr = normalizeSpace(s.Text())
			}
			return false
		}
		return true
	})
	return addr
}

func cardPhone(card *goquery.Selection) string {
	var phone string
	card.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		phone = strings.TrimPrefix(href, "tel:")
		return false
	})
	if phone != "" {
		return phone
	}
	card.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if phoneClassRe.MatchString(class) {
			phone = normalizeSpace(s.Text())
			return false
		}
		return true
	})
	return phone
}

func cardLink(card *goquery.Selection, pageURL string) string {
	var link string
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		low := strings.ToLower(href)
		for _, seg := range []string{"/shop", "/store", "/school", "/classroom"} {
			if strings.Contains(low, seg) {
				link = joinURL(pageURL, href)
				return false
			}
		}
		return true
	})
	return link
}

// ExtractSingleStore handles pages that describe exactly one location,
// pulling the store name out of the page title.
func ExtractSingleStore(doc *goquery.Document, rawHTML, pageURL string) []model.StoreRecord {
	title := normalizeSpace(doc.Find("title").Text())
	m := singleTitleRe.FindStringSubmatch(title)
	if m == nil {
		return nil
	}
	name := m[1]

	var addr string
	if am := singleAddrRe.FindStringSubmatch(rawHTML); am != nil {
		addr = geo.ExtractFullAddress(am[0])
		if addr == "" {
			addr = normalizeSpace(am[0])
		}
	}

	var phone string
	doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		phone = strings.TrimPrefix(href, "tel:")
		return false
	})

	rec := model.StoreRecord{
		StoreName:  name,
		Address:    addr,
		Phone:      geo.NormalizePhone(phone),
		Prefecture: geo.ExtractPrefecture(addr),
		URL:        pageURL,
	}
	if !rec.Valid() {
		return nil
	}
	return []model.StoreRecord{rec}
}

// ExtractStoreLinks falls back to per-store detail links when no card or
// single-store markup matched. The records carry no address.
func ExtractStoreLinks(doc *goquery.Document, pageURL string) []model.StoreRecord {
	var stores []model.StoreRecord
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		matched := false
		for _, re := range storeDetailRes {
			if re.MatchString(href) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}

		name := ""
		if h := a.Find("h2, h3, h4").First(); h.Length() > 0 {
			name = h.Text()
		} else {
			name = a.Text()
		}
		name = collapseSpaceRe.ReplaceAllString(strings.TrimSpace(name), "")
		if name == "" {
			return
		}
		for _, ex := range excludedLinkNames {
			if name == ex {
				return
			}
		}
		if !strings.Contains(name, "店") && !strings.Contains(name, "教室") && len([]rune(name)) >= 25 {
			return
		}

		stores = append(stores, model.StoreRecord{
			StoreName: name,
			URL:       joinURL(pageURL, href),
		})
	})
	return stores
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(collapseSpaceRe.ReplaceAllString(s, " "))
}

func joinURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
