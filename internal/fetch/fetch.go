// Package fetch retrieves pages from company sites. The HTTP fetcher
// covers static pages; the browser fetcher renders JavaScript-built store
// locators through playwright.
package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// Browser-like headers. Japanese corporate sites frequently serve reduced
// or blocked content to non-browser user agents.
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "ja,en-US;q=0.7,en;q=0.3"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 5 << 20

// Page is one fetched document.
type Page struct {
	StatusCode int
	FinalURL   string
	Redirected bool
	HTML       string
}

// Fetcher retrieves a page by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// HTTPFetcher fetches pages over plain HTTP with crawl pacing.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// Options configures an HTTPFetcher.
type Options struct {
	Timeout    time.Duration
	CrawlDelay time.Duration
}

// NewHTTPFetcher creates an HTTPFetcher. CrawlDelay spaces successive
// requests; zero disables pacing.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.CrawlDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.CrawlDelay), 1)
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
	}
}

// Fetch retrieves the URL, following redirects, and decodes the body to
// UTF-8. Shift_JIS and EUC-JP pages are still common on older store
// locators.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: crawl pacing")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	body := io.LimitReader(resp.Body, maxBodyBytes)
	reader, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = body
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body %s", rawURL)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	zap.L().Debug("fetched page",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
	)

	return &Page{
		StatusCode: resp.StatusCode,
		FinalURL:   finalURL,
		Redirected: !sameURL(finalURL, rawURL),
		HTML:       string(data),
	}, nil
}

func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)
}

func sameURL(a, b string) bool {
	trim := func(s string) string { return strings.TrimSuffix(s, "/") }
	return trim(a) == trim(b)
}
