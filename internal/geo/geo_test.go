package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefectureCatalogue(t *testing.T) {
	require.Len(t, Prefectures, 47)
	assert.Equal(t, "北海道", Prefectures[0])
	assert.Equal(t, "沖縄県", Prefectures[46])
	require.Len(t, Romaji, 47)
}

func TestPostalRangesCoverAllPrefectures(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range postalRanges {
		seen[r.pref] = true
	}
	for _, pref := range Prefectures {
		assert.True(t, seen[pref], "no postal range maps to %s", pref)
	}
}

func TestPrefectureFromPostal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"tokyo", "150-0001", "東京都", true},
		{"osaka", "530-0001", "大阪府", true},
		{"hokkaido low block", "001-0000", "北海道", true},
		{"hokkaido high block", "060-0001", "北海道", true},
		{"okinawa", "900-0001", "沖縄県", true},
		{"yamagata top", "999-9999", "山形県", true},
		{"with mark", "〒150-0001", "東京都", true},
		{"no hyphen", "1500001", "東京都", true},
		{"with space", "150 0001", "東京都", true},
		{"embedded in address", "〒160-0023 東京都新宿区西新宿1-1-1", "東京都", true},
		{"unassigned prefix", "000-0000", "", false},
		{"empty", "", "", false},
		{"no digits", "住所不明", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PrefectureFromPostal(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByJISCode(t *testing.T) {
	got, ok := ByJISCode("01")
	require.True(t, ok)
	assert.Equal(t, "北海道", got)

	got, ok = ByJISCode("13")
	require.True(t, ok)
	assert.Equal(t, "東京都", got)

	got, ok = ByJISCode("47")
	require.True(t, ok)
	assert.Equal(t, "沖縄県", got)

	for _, bad := range []string{"00", "48", "7", "xx", ""} {
		_, ok := ByJISCode(bad)
		assert.False(t, ok, "code %q", bad)
	}
}

func TestByRomaji(t *testing.T) {
	got, ok := ByRomaji("tokyo")
	require.True(t, ok)
	assert.Equal(t, "東京都", got)

	got, ok = ByRomaji("Osaka")
	require.True(t, ok)
	assert.Equal(t, "大阪府", got)

	_, ok = ByRomaji("atlantis")
	assert.False(t, ok)
}

func TestExtractFullAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"postal then phone",
			"〒150-0001 東京都渋谷区神宮前1-2-3 TEL: 03-1234-5678",
			"〒150-0001 東京都渋谷区神宮前1-2-3",
		},
		{
			"postal then hours",
			"〒530-0001 大阪府大阪市北区梅田二丁目 営業時間 10:00-19:00",
			"〒530-0001 大阪府大阪市北区梅田二丁目",
		},
		{
			"prefecture anchor without postal",
			"アクセス 東京都新宿区西新宿一丁目マインズタワー\n電話 03-0000-0000",
			"東京都新宿区西新宿一丁目マインズタワー",
		},
		{
			"prefecture anchor picks up preceding postal",
			"住所 〒450-0002 愛知県名古屋市中村区名駅四丁目\nTEL 052-000-0000",
			"〒450-0002 愛知県名古屋市中村区名駅四丁目",
		},
		{"no address", "お問い合わせはこちら", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFullAddress(tt.in))
		})
	}
}

func TestExtractPrefecture(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full name", "東京都渋谷区神宮前1-2-3", "東京都"},
		{"full name osaka", "大阪府大阪市北区", "大阪府"},
		{"short name", "渋谷区は東京にあります", "東京都"},
		{"hokkaido", "北海道札幌市中央区", "北海道"},
		{"from postal", "〒530-0001 北区梅田", "大阪府"},
		{"nothing", "所在地不明", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrefecture(tt.in))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct{ in, want string }{
		{"03-1234-5678", "03-1234-5678"},
		{"03(1234)5678", "03-1234-5678"},
		{"TEL: 03-1234-5678", "03-1234-5678"},
		{"０３−１２３４", ""},
		{"03  1234  5678", "0312345678"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), "input %q", tt.in)
	}
}
