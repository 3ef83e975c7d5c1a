// Package monitoring - types.go defines shared types.
//
// DESIGN: These types are used by both hooks/ and monitoring/ packages.
// Defined here ONCE to avoid duplication and circular imports.
//
// TYPES:
//   - AlertOutcome:   What happened to an alert-worthy failure
//   - AlertEvent:     One alert log line
//   - HookEvent:      One pre-call interception log line
//   - AlertLogConfig: Where events are written
package monitoring

import "time"

// =============================================================================
// OUTCOMES
// =============================================================================

// AlertOutcome records what the dispatcher did with a failure.
type AlertOutcome string

const (
	OutcomeDispatched AlertOutcome = "dispatched"
	OutcomeSuppressed AlertOutcome = "suppressed"
	OutcomeDelivered  AlertOutcome = "delivered"
	OutcomeFailed     AlertOutcome = "delivery_failed"
)

// =============================================================================
// EVENT TYPES - Structured data for the alert log
// =============================================================================

// AlertEvent captures one alert decision or delivery result.
type AlertEvent struct {
	EventID   string       `json:"event_id"`
	AlertID   string       `json:"alert_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Event     string       `json:"event"` // always "alert"
	Outcome   AlertOutcome `json:"outcome"`
	Category  string       `json:"category"`
	Model     string       `json:"model"`
	Endpoint  string       `json:"endpoint"`
	Channel   string       `json:"channel,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// HookEvent captures one transport interception.
type HookEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"` // always "pre_call"
	Model     string    `json:"model,omitempty"`
	CallType  string    `json:"call_type,omitempty"`
	Proxy     string    `json:"proxy,omitempty"` // redacted
	Source    string    `json:"source,omitempty"`
	Attached  bool      `json:"attached"`
	Rejected  bool      `json:"rejected,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// =============================================================================
// CONFIG
// =============================================================================

// AlertLogConfig configures the alert log.
type AlertLogConfig struct {
	Path        string // JSONL file; empty disables file output
	LogToStdout bool   // also log a one-line summary per event
}
