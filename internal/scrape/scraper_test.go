package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TTMK7777/player-list-scraper/internal/fetch"
	"github.com/TTMK7777/player-list-scraper/internal/model"
)

type stubStrategy struct {
	name   string
	stores []model.StoreRecord
	pages  int
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Scrape(_ context.Context, _ Request) ([]model.StoreRecord, int, error) {
	s.calls++
	return s.stores, s.pages, s.err
}

func rec(name string) model.StoreRecord {
	return model.StoreRecord{StoreName: name, Phone: "03-0000-0000"}
}

func TestScraper_FirstStrategyWins(t *testing.T) {
	first := &stubStrategy{name: "static_html", stores: []model.StoreRecord{rec("A"), rec("B"), rec("C")}, pages: 4}
	second := &stubStrategy{name: "browser_automation"}

	res := NewScraper(3, first, second).Scrape(context.Background(), Request{CompanyName: "テスト", URL: "https://example.com"})

	assert.Equal(t, "static_html", res.StrategyUsed)
	assert.Len(t, res.Stores, 3)
	assert.Equal(t, 4, res.PagesVisited)
	assert.Zero(t, second.calls)
}

func TestScraper_EscalatesPastThinResults(t *testing.T) {
	first := &stubStrategy{name: "static_html", stores: []model.StoreRecord{rec("A")}, pages: 2}
	second := &stubStrategy{name: "browser_automation", stores: []model.StoreRecord{rec("A"), rec("B"), rec("C")}, pages: 5}

	res := NewScraper(3, first, second).Scrape(context.Background(), Request{CompanyName: "テスト", URL: "https://example.com"})

	assert.Equal(t, "browser_automation", res.StrategyUsed)
	assert.Len(t, res.Stores, 3)
	assert.Equal(t, 7, res.PagesVisited)
	assert.Equal(t, 1, first.calls)
}

func TestScraper_CombinesPartials(t *testing.T) {
	first := &stubStrategy{name: "static_html", stores: []model.StoreRecord{rec("A"), rec("B")}, pages: 3}
	second := &stubStrategy{name: "browser_automation", stores: []model.StoreRecord{rec("B"), rec("C")}, pages: 6, err: eris.New("browser crashed mid-run")}

	res := NewScraper(5, first, second).Scrape(context.Background(), Request{CompanyName: "テスト", URL: "https://example.com"})

	assert.Equal(t, "combined", res.StrategyUsed)
	assert.Len(t, res.Stores, 3)
	assert.Equal(t, 9, res.PagesVisited)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "browser_automation")
}

func TestStaticStrategy_CardListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><a href="/shops/">店舗一覧</a></body></html>`))
	})
	mux.HandleFunc("/shops/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="shop-item"><h3>渋谷店</h3><p>〒150-0001 東京都渋谷区神宮前1-2-3</p></div>
			<div class="shop-item"><h3>梅田店</h3><p>〒530-0001 大阪府大阪市北区梅田2-3-4</p></div>
			<div class="shop-item"><h3>博多店</h3><a href="tel:092-111-2222">092-111-2222</a></div>
		</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	strat := NewStaticStrategy(fetch.NewHTTPFetcher(fetch.Options{}), nil, StaticOptions{})
	stores, pages, err := strat.Scrape(context.Background(), Request{CompanyName: "テスト", URL: srv.URL + "/"})

	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	require.Len(t, stores, 3)
	assert.Equal(t, "渋谷店", stores[0].StoreName)
	assert.Equal(t, "東京都", stores[0].Prefecture)
	assert.Equal(t, "大阪府", stores[1].Prefecture)
	assert.Equal(t, "092-111-2222", stores[2].Phone)
}

func TestStaticStrategy_TopPageUnreachable(t *testing.T) {
	strat := NewStaticStrategy(fetch.NewHTTPFetcher(fetch.Options{}), nil, StaticOptions{})
	_, _, err := strat.Scrape(context.Background(), Request{CompanyName: "テスト", URL: "http://127.0.0.1:1/"})
	assert.Error(t, err)
}
