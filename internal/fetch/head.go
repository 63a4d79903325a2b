package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// StatusResult is a URL liveness check outcome. Failures are reported in
// Err rather than as a Go error so batch callers can record them per row.
type StatusResult struct {
	StatusCode int
	FinalURL   string
	Redirected bool
	Err        string
}

// Alive reports whether the URL answered with a success or redirect
// status.
func (r StatusResult) Alive() bool {
	return r.Err == "" && r.StatusCode >= 200 && r.StatusCode < 400
}

// Head checks whether a URL responds, following redirects. An empty URL
// yields Err "empty_url".
func Head(ctx context.Context, url string) StatusResult {
	if url == "" {
		return StatusResult{Err: "empty_url"}
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return StatusResult{FinalURL: url, Err: "request_error"}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return StatusResult{FinalURL: url, Err: classifyHeadError(err)}
	}
	defer resp.Body.Close() //nolint:errcheck

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return StatusResult{
		StatusCode: resp.StatusCode,
		FinalURL:   finalURL,
		Redirected: !sameURL(finalURL, url),
	}
}

func classifyHeadError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) {
		return "ssl_error"
	}
	msg := err.Error()
	if strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:") {
		return "ssl_error"
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return "connection_error"
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return "connection_error"
	}

	return "request_error"
}
