package llm

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindGeneric},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"timeout message", eris.New("request timed out after 30s"), KindTimeout},
		{"quota message", eris.New("quota exceeded for this project"), KindQuota},
		{"overloaded message", eris.New("upstream overloaded"), KindQuota},
		{"rate limit message", eris.New("rate limit reached"), KindRateLimit},
		{"api key message", eris.New("invalid api key"), KindAuth},
		{"unauthorized message", eris.New("401 unauthorized"), KindAuth},
		{"unknown", eris.New("something else broke"), KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKindRetryable(t *testing.T) {
	assert.True(t, KindTimeout.Retryable())
	assert.True(t, KindRateLimit.Retryable())
	assert.False(t, KindAuth.Retryable())
	assert.False(t, KindQuota.Retryable())
	assert.False(t, KindGeneric.Retryable())
}
