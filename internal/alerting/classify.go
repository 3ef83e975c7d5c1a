package alerting

import (
	"regexp"
	"strings"
)

// Category is the alert-worthy failure class.
type Category string

const (
	CategoryNone              Category = ""
	CategoryAuth              Category = "authentication"
	CategoryTimeout           Category = "timeout"
	CategoryRateLimit         Category = "rate_limit"
	CategoryConnection        Category = "connection"
	CategoryFallbackExhausted Category = "fallback_exhausted"
	CategoryHTTPError         Category = "http_error"
)

// Ordered most specific first; the first rule that matches wins.
var categoryRules = []struct {
	category Category
	needles  []string
}{
	{CategoryFallbackExhausted, []string{
		"no fallback model group found",
		"fallbacks exhausted",
		"all fallbacks failed",
		"fallback_exhausted",
	}},
	{CategoryAuth, []string{
		"authenticationerror",
		"authentication",
		"invalid api key",
		"incorrect api key",
		"unauthorized",
		"permission denied",
		"status 401",
		"status 403",
	}},
	{CategoryRateLimit, []string{
		"ratelimiterror",
		"rate limit",
		"rate_limit",
		"too many requests",
		"quota exceeded",
		"resource_exhausted",
		"status 429",
	}},
	{CategoryTimeout, []string{
		"timeout",
		"timed out",
		"deadline exceeded",
	}},
	{CategoryConnection, []string{
		"apiconnectionerror",
		"connection error",
		"connection refused",
		"connection reset",
		"connecterror",
		"no route to host",
		"proxy error",
		"socks",
	}},
}

// A 4xx/5xx code only counts next to a status word, so ports such as
// ":443" in an address do not.
var statusCodePattern = regexp.MustCompile(`(?:status|code|error|returned|http|response)[\s:=_()-]*(?:code[\s:=]*)?[45]\d{2}\b`)

// Classify maps an exception summary to an alert category.
// CategoryNone means the failure is not alert-worthy.
func Classify(summary string) Category {
	s := strings.ToLower(summary)
	if strings.TrimSpace(s) == "" {
		return CategoryNone
	}
	for _, rule := range categoryRules {
		for _, needle := range rule.needles {
			if strings.Contains(s, needle) {
				return rule.category
			}
		}
	}
	if statusCodePattern.MatchString(s) {
		return CategoryHTTPError
	}
	return CategoryNone
}

// AlertWorthy reports whether c should raise a notification.
func (c Category) AlertWorthy() bool {
	return c != CategoryNone
}

// Title is a human label for notifications.
func (c Category) Title() string {
	switch c {
	case CategoryAuth:
		return "Authentication failure"
	case CategoryTimeout:
		return "Timeout"
	case CategoryRateLimit:
		return "Rate limited"
	case CategoryConnection:
		return "Connection failure"
	case CategoryFallbackExhausted:
		return "Fallbacks exhausted"
	case CategoryHTTPError:
		return "Provider error"
	default:
		return "Failure"
	}
}
