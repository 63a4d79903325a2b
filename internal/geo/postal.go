package geo

import "regexp"

// postalRange maps an inclusive span of 3-digit postal prefixes to a
// prefecture. Japan Post assigns prefixes in contiguous blocks, so ranges
// stay compact; Hokkaido is the one prefecture split across two blocks.
type postalRange struct {
	lo, hi int
	pref   string
}

var postalRanges = []postalRange{
	{1, 9, "北海道"},
	{10, 19, "秋田県"},
	{20, 29, "岩手県"},
	{30, 39, "青森県"},
	{40, 99, "北海道"},
	{100, 209, "東京都"},
	{210, 259, "神奈川県"},
	{260, 299, "千葉県"},
	{300, 319, "茨城県"},
	{320, 329, "栃木県"},
	{330, 369, "埼玉県"},
	{370, 379, "群馬県"},
	{380, 399, "長野県"},
	{400, 409, "山梨県"},
	{410, 439, "静岡県"},
	{440, 499, "愛知県"},
	{500, 509, "岐阜県"},
	{510, 519, "三重県"},
	{520, 529, "滋賀県"},
	{530, 599, "大阪府"},
	{600, 629, "京都府"},
	{630, 639, "奈良県"},
	{640, 649, "和歌山県"},
	{650, 679, "兵庫県"},
	{680, 689, "鳥取県"},
	{690, 699, "島根県"},
	{700, 719, "岡山県"},
	{720, 739, "広島県"},
	{740, 759, "山口県"},
	{760, 769, "香川県"},
	{770, 779, "徳島県"},
	{780, 789, "高知県"},
	{790, 799, "愛媛県"},
	{800, 839, "福岡県"},
	{840, 849, "佐賀県"},
	{850, 859, "長崎県"},
	{860, 869, "熊本県"},
	{870, 879, "大分県"},
	{880, 889, "宮崎県"},
	{890, 899, "鹿児島県"},
	{900, 909, "沖縄県"},
	{910, 919, "福井県"},
	{920, 929, "石川県"},
	{930, 939, "富山県"},
	{940, 959, "新潟県"},
	{960, 979, "福島県"},
	{980, 989, "宮城県"},
	{990, 999, "山形県"},
}

var postalDigits = regexp.MustCompile(`\d{3}`)

// PrefectureFromPostal maps a postal code to its prefecture via the first
// three digits. It tolerates 〒 markers, hyphens, spaces and postal codes
// embedded in longer address strings. The second return is false when no
// 3-digit prefix is found or the prefix is unassigned (for example "000").
func PrefectureFromPostal(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	m := postalDigits.FindString(s)
	if m == "" {
		return "", false
	}
	n := int(m[0]-'0')*100 + int(m[1]-'0')*10 + int(m[2]-'0')
	for _, r := range postalRanges {
		if n >= r.lo && n <= r.hi {
			return r.pref, true
		}
	}
	return "", false
}
