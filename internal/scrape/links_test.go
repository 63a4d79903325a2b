package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFindStorePageLinks(t *testing.T) {
	doc := mustDoc(t, `
		<a href="/shop/">店舗一覧</a>
		<a href="/company/">会社概要</a>
		<a href="/news/">店舗のお知らせ</a>
		<a href="https://other.example.com/stores/">外部の店舗</a>
		<a href="/schools/">スクール</a>
	`)

	links := FindStorePageLinks(doc, "https://example.com/")

	assert.Contains(t, links, "https://example.com/shop/")
	assert.Contains(t, links, "https://example.com/schools/")
	// matched by link text, not path
	assert.Contains(t, links, "https://example.com/news/")
	assert.NotContains(t, links, "https://example.com/company/")
	for _, l := range links {
		assert.True(t, strings.HasPrefix(l, "https://example.com/"), l)
	}
}

func TestFindStorePageLinks_Deduplicates(t *testing.T) {
	doc := mustDoc(t, `<a href="/shop/">店舗</a><a href="/shop/">店舗一覧</a>`)
	links := FindStorePageLinks(doc, "https://example.com/")
	assert.Equal(t, []string{"https://example.com/shop/"}, links)
}

func TestFindPrefecturePageLinks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "jis code path",
			html: `<a href="/shop/13/">東京の店舗</a>`,
			want: []string{"https://example.com/shop/13/"},
		},
		{
			name: "invalid jis code",
			html: `<a href="/shop/99/">リンク</a>`,
			want: nil,
		},
		{
			name: "romaji path",
			html: `<a href="/osaka/">大阪</a>`,
			want: []string{"https://example.com/osaka/"},
		},
		{
			name: "prefecture text with store path",
			html: `<a href="/store/list?area=5">北海道の店舗</a>`,
			want: []string{"https://example.com/store/list?area=5"},
		},
		{
			name: "prefecture text without store path",
			html: `<a href="/blog/5">北海道旅行記</a>`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPrefecturePageLinks(mustDoc(t, tt.html), "https://example.com/")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindPrefectureTextLinks(t *testing.T) {
	doc := mustDoc(t, `
		<a href="/area/1">北海道</a>
		<a href="/area/13">東京都</a>
		<a href="/guide">ご利用ガイド</a>
		<a href="https://other.example.com/area/27">大阪府</a>
	`)
	got := FindPrefectureTextLinks(doc, "https://example.com/")
	assert.Equal(t, []string{"https://example.com/area/1", "https://example.com/area/13"}, got)
}
