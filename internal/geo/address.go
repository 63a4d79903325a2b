package geo

import (
	"regexp"
	"strings"
)

var (
	// Postal mark, then the prefecture/city run, stopped at the first
	// phone/hours marker or end of text.
	postalAddrRe = regexp.MustCompile(`(〒[\d\-]+\s*[^\d]{2,80}?)(?:\s*(?:TEL|tel|電話|営業|定休|FAX|fax|[0-9]{2,4}[\-\(])|$)`)

	// A postal code directly before a prefecture name.
	postalTailRe = regexp.MustCompile(`〒[\d\-]+\s*$`)

	addrEndRe = regexp.MustCompile(`TEL|tel|電話|営業|定休|FAX|fax|\n|\r`)

	barePostalRe = regexp.MustCompile(`(〒[\d\-]+\s*.{5,80})`)

	postalInTextRe = regexp.MustCompile(`〒?\d{3}-?\d{4}`)

	phoneJunkRe    = regexp.MustCompile(`[^\d\-()]`)
	phoneParenRe   = regexp.MustCompile(`[()]`)
	phoneHyphenRun = regexp.MustCompile(`-+`)
)

// ExtractFullAddress pulls a street address out of mixed text such as a
// store card that also carries phone numbers and opening hours. Three
// passes, most precise first: a 〒-anchored full address, then a
// prefecture-name anchor with a backward postal-code check, then any bare
// 〒 run. Returns "" when nothing address-like is present.
func ExtractFullAddress(text string) string {
	if text == "" {
		return ""
	}

	if m := postalAddrRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	runes := []rune(text)
	for _, pref := range Prefectures {
		byteIdx := strings.Index(text, pref)
		if byteIdx < 0 {
			continue
		}
		idx := len([]rune(text[:byteIdx]))

		lo := idx - 15
		if lo < 0 {
			lo = 0
		}
		start := idx
		prefix := string(runes[lo:idx])
		if loc := postalTailRe.FindStringIndex(prefix); loc != nil {
			start = lo + len([]rune(prefix[:loc[0]]))
		}

		rest := string(runes[idx:])
		var addr string
		if loc := addrEndRe.FindStringIndex(rest); loc != nil {
			end := idx + len([]rune(rest[:loc[0]]))
			addr = strings.TrimSpace(string(runes[start:end]))
		} else {
			hi := start + 100
			if hi > len(runes) {
				hi = len(runes)
			}
			addr = strings.TrimSpace(string(runes[start:hi]))
		}
		if len([]rune(addr)) > 8 {
			return addr
		}
	}

	if m := barePostalRe.FindStringSubmatch(text); m != nil {
		addr := []rune(strings.TrimSpace(m[1]))
		if len(addr) > 100 {
			addr = addr[:100]
		}
		return string(addr)
	}

	return ""
}

// ExtractPrefecture finds the prefecture named in text. Full names win,
// then suffix-less short names ("東京" for 東京都), then inference from an
// embedded postal code. Returns "" rather than guessing.
func ExtractPrefecture(text string) string {
	if text == "" {
		return ""
	}

	for _, pref := range Prefectures {
		if strings.Contains(text, pref) {
			return pref
		}
	}

	for i, pref := range Prefectures {
		short := ShortName(pref)
		if len([]rune(short)) >= 2 && strings.Contains(text, short) {
			return Prefectures[i]
		}
	}

	if m := postalInTextRe.FindString(text); m != "" {
		if pref, ok := PrefectureFromPostal(m); ok {
			return pref
		}
	}

	return ""
}

// NormalizePhone keeps digits and hyphens, turning bracketed area codes
// like 03(1234)5678 into 03-1234-5678.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	cleaned := phoneJunkRe.ReplaceAllString(phone, "")
	cleaned = phoneParenRe.ReplaceAllString(cleaned, "-")
	cleaned = phoneHyphenRun.ReplaceAllString(cleaned, "-")
	return strings.Trim(cleaned, "-")
}
