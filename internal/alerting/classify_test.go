package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		summary string
		want    Category
	}{
		{"litellm.AuthenticationError: invalid api key provided", CategoryAuth},
		{"Request timed out after 600s", CategoryTimeout},
		{"litellm.Timeout: APITimeoutError", CategoryTimeout},
		{"litellm.RateLimitError: quota exceeded for model", CategoryRateLimit},
		{"APIConnectionError: Connection refused", CategoryConnection},
		{"SOCKS proxy handshake failed", CategoryConnection},
		{"No fallback model group found for original model_group=gpt-4", CategoryFallbackExhausted},
		{"BadRequestError: 400 invalid request", CategoryHTTPError},
		{"upstream returned 503", CategoryHTTPError},
		{"ContextWindowExceededError", CategoryNone},
		{"", CategoryNone},
		{"error code 4000", CategoryNone},
		{"Error code: 500 - internal server error", CategoryHTTPError},
		{"upstream status code 502", CategoryHTTPError},
		{"HTTP 504 Gateway", CategoryHTTPError},
		{"unexpected EOF reading from 10.0.0.1:443", CategoryNone},
		{"ServiceUnavailable from http://gateway:5000/v1", CategoryNone},
		{"stream closed after 404 chunks", CategoryNone},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			got := Classify(tt.summary)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != CategoryNone, got.AlertWorthy())
		})
	}
}

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "Rate limited", CategoryRateLimit.Title())
	assert.Equal(t, "Failure", CategoryNone.Title())
}
