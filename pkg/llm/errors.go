package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
)

// Kind buckets completion failures so callers can decide between retrying,
// backing off and giving up.
type Kind int

const (
	KindGeneric Kind = iota
	KindTimeout
	KindAuth
	KindRateLimit
	KindQuota
)

var (
	ErrTimeout   = eris.New("llm: request timed out")
	ErrAuth      = eris.New("llm: authentication failed")
	ErrRateLimit = eris.New("llm: rate limited")
	ErrQuota     = eris.New("llm: quota exhausted")
)

// wrapAPIError converts an SDK failure into one of the package sentinels,
// keeping the original error in the wrap chain.
func wrapAPIError(err error) error {
	switch Classify(err) {
	case KindTimeout:
		return eris.Wrap(err, ErrTimeout.Error())
	case KindAuth:
		return eris.Wrap(err, ErrAuth.Error())
	case KindRateLimit:
		return eris.Wrap(err, ErrRateLimit.Error())
	case KindQuota:
		return eris.Wrap(err, ErrQuota.Error())
	default:
		return eris.Wrap(err, "llm: completion failed")
	}
}

// Classify maps an error onto the failure taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindGeneric
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return KindAuth
		case 429:
			return KindRateLimit
		case 529:
			return KindQuota
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return KindTimeout
	case strings.Contains(msg, "quota") || strings.Contains(msg, "overloaded"):
		return KindQuota
	case strings.Contains(msg, "rate limit"):
		return KindRateLimit
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication"):
		return KindAuth
	}
	return KindGeneric
}

// Retryable reports whether a failure of this kind may succeed on retry.
func (k Kind) Retryable() bool {
	return k == KindTimeout || k == KindRateLimit
}
