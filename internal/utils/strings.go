// Package utils provides common utility functions.
package utils

import (
	"net/url"
	"unicode/utf8"
)

// MaskKey masks an API key for safe logging (shows first 8 and last 4 chars).
// Use this to avoid logging sensitive credentials in plain text.
func MaskKey(key string) string {
	if key == "" {
		return "(empty)"
	}
	if len(key) < 16 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

// KeyPreview returns at most n leading characters of a credential followed by "...".
// Keys no longer than 2n are fully masked so short secrets never leak.
func KeyPreview(key string, n int) string {
	if key == "" {
		return "(empty)"
	}
	if n <= 0 || len(key) <= 2*n {
		return "****"
	}
	return key[:n] + "..."
}

// RedactURL hides userinfo passwords in a proxy URL for logging.
// Unparsable input is fully masked.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "****"
	}
	return u.Redacted()
}

// Truncate shortens s to at most max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
