// Package alerting turns gateway failure events into throttled notifications.
//
// FILES:
//   - record.go:     FailureRecord and failure-event payload parsing
//   - classify.go:   Alert-worthiness by exception summary
//   - cooldown.go:   Per (model, endpoint) re-alert suppression
//   - notify.go:     Notification payload and Notifier interface
//   - email.go:      Email API channel
//   - webhook.go:    Chat webhook channel
//   - enricher.go:   Cumulative unhealthy-endpoint reports
//   - runner.go:     Detached background delivery
package alerting

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// UnknownEndpoint is used when a failure payload names no endpoint.
const UnknownEndpoint = "unknown"

// FailureRecord is derived from one gateway failure event.
type FailureRecord struct {
	Model       string
	Endpoint    string
	Exception   string
	CallerAlias string
	Timestamp   time.Time
}

// Key returns the cooldown key for the record.
func (r FailureRecord) Key() AlertKey {
	return AlertKey{Model: r.Model, Endpoint: r.Endpoint}
}

// Payload paths, in precedence order.
var (
	endpointPaths = []string{
		"litellm_params.api_base",
		"litellm_params.model_info.id",
		"model_info.id",
		"api_base",
	}
	aliasPaths = []string{
		"litellm_params.metadata.user_api_key_alias",
		"metadata.user_api_key_alias",
		"litellm_params.metadata.user_api_key_team_alias",
	}
	exceptionPaths = []string{
		"exception.message",
		"exception",
		"error",
		"traceback_exception",
	}
)

// ParseFailureEvent builds a FailureRecord from the gateway's JSON failure payload.
// Missing fields are left empty; the endpoint falls back to UnknownEndpoint.
func ParseFailureEvent(payload []byte, now time.Time) FailureRecord {
	root := gjson.ParseBytes(payload)

	rec := FailureRecord{
		Model:       firstString(root, "model", "litellm_params.model"),
		Endpoint:    firstString(root, endpointPaths...),
		Exception:   firstString(root, exceptionPaths...),
		CallerAlias: firstString(root, aliasPaths...),
		Timestamp:   now,
	}
	if rec.Endpoint == "" {
		rec.Endpoint = UnknownEndpoint
	}
	if rec.Exception == "" {
		// An exception object without a message still carries a type name.
		if ex := root.Get("exception"); ex.IsObject() {
			rec.Exception = ex.Raw
		}
	}
	if hasFallbacks(root) && strings.Contains(strings.ToLower(rec.Exception), "fallback") &&
		!Classify(rec.Exception).AlertWorthy() {
		rec.Exception += " (fallbacks exhausted)"
	}
	return rec
}

func firstString(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := root.Get(p)
		if v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func hasFallbacks(root gjson.Result) bool {
	fb := root.Get("litellm_params.fallbacks")
	return fb.IsArray() && len(fb.Array()) > 0
}
