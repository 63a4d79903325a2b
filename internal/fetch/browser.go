package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BrowserFetcher renders pages in headless Chromium. The playwright stack
// starts lazily on first Fetch and can be restarted after Close.
type BrowserFetcher struct {
	mu      sync.Mutex
	timeout time.Duration

	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
}

// NewBrowserFetcher creates a BrowserFetcher. Nothing starts until the
// first Fetch call.
func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{timeout: timeout}
}

func (b *BrowserFetcher) ensureStarted() error {
	if b.bctx != nil {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return eris.Wrap(err, "browser: start playwright")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		_ = pw.Stop()
		return eris.Wrap(err, "browser: launch chromium")
	}

	ua := userAgent
	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:        &ua,
		ExtraHttpHeaders: map[string]string{"Accept-Language": acceptLanguage},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return eris.Wrap(err, "browser: create context")
	}

	// Images and fonts only slow the render down.
	if err := bctx.Route("**/*.{png,jpg,jpeg,gif,svg,woff,woff2,ttf,eot,otf}", func(route playwright.Route) {
		_ = route.Abort()
	}); err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return eris.Wrap(err, "browser: set resource blocking")
	}

	b.pw = pw
	b.browser = browser
	b.bctx = bctx
	zap.L().Info("browser started")
	return nil
}

// Fetch renders the URL and returns the resulting DOM.
func (b *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "browser: fetch")
	}
	if err := b.ensureStarted(); err != nil {
		return nil, err
	}

	page, err := b.bctx.NewPage()
	if err != nil {
		return nil, eris.Wrap(err, "browser: new page")
	}
	defer page.Close() //nolint:errcheck

	resp, err := page.Goto(rawURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(b.timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "browser: goto %s", rawURL)
	}

	// Give client-side rendering a moment to populate the store list.
	_ = page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(5000),
	})

	html, err := page.Content()
	if err != nil {
		return nil, eris.Wrapf(err, "browser: content %s", rawURL)
	}

	status := 200
	if resp != nil {
		status = resp.Status()
	}
	finalURL := page.URL()

	return &Page{
		StatusCode: status,
		FinalURL:   finalURL,
		Redirected: !sameURL(finalURL, rawURL),
		HTML:       html,
	}, nil
}

// Close shuts the browser stack down. A later Fetch restarts it.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bctx == nil {
		return nil
	}

	var errs []string
	if err := b.bctx.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := b.browser.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, err.Error())
	}
	b.bctx = nil
	b.browser = nil
	b.pw = nil

	if len(errs) > 0 {
		return eris.New("browser: close: " + strings.Join(errs, "; "))
	}
	return nil
}
