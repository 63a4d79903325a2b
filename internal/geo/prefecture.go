// Package geo holds Japanese geography helpers: the prefecture catalogue,
// postal-prefix lookup and the address heuristics the scraping strategies
// share.
package geo

import "strings"

// Prefectures lists all 47 prefectures in JIS X 0401 order.
var Prefectures = []string{
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県",
	"静岡県", "愛知県", "三重県", "滋賀県", "京都府", "大阪府", "兵庫県",
	"奈良県", "和歌山県", "鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県", "福岡県", "佐賀県", "長崎県",
	"熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

// Romaji holds lowercase romanized prefecture names in the same order as
// Prefectures. Store locators often key prefecture pages on these.
var Romaji = []string{
	"hokkaido", "aomori", "iwate", "miyagi", "akita", "yamagata", "fukushima",
	"ibaraki", "tochigi", "gunma", "saitama", "chiba", "tokyo", "kanagawa",
	"niigata", "toyama", "ishikawa", "fukui", "yamanashi", "nagano", "gifu",
	"shizuoka", "aichi", "mie", "shiga", "kyoto", "osaka", "hyogo",
	"nara", "wakayama", "tottori", "shimane", "okayama", "hiroshima", "yamaguchi",
	"tokushima", "kagawa", "ehime", "kochi", "fukuoka", "saga", "nagasaki",
	"kumamoto", "oita", "miyazaki", "kagoshima", "okinawa",
}

// ByJISCode resolves a zero-padded two-digit JIS X 0401 code ("01".."47").
func ByJISCode(code string) (string, bool) {
	if len(code) != 2 {
		return "", false
	}
	n := int(code[0]-'0')*10 + int(code[1]-'0')
	if code[0] < '0' || code[0] > '9' || code[1] < '0' || code[1] > '9' || n < 1 || n > 47 {
		return "", false
	}
	return Prefectures[n-1], true
}

// ByRomaji resolves a romanized name such as "tokyo" or "osaka".
func ByRomaji(name string) (string, bool) {
	name = strings.ToLower(name)
	for i, r := range Romaji {
		if r == name {
			return Prefectures[i], true
		}
	}
	return "", false
}

// ShortName strips the 都/道/府/県 suffix. "東京都" becomes "東京";
// "北海道" stays multi-character after the trim.
func ShortName(pref string) string {
	return strings.TrimRight(pref, "都道府県")
}
