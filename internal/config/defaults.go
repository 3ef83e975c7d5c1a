// Package config - defaults.go centralizes magic numbers and default values.
//
// DESIGN: All default values that appear in multiple places should be defined here.
// This makes configuration more maintainable and auditable.
package config

import "time"

// =============================================================================
// PROXY DIRECTIVES
// =============================================================================

// DefaultDirectiveKey is the request field carrying a per-call proxy endpoint.
const DefaultDirectiveKey = "proxy_url"

// DefaultAttachMode picks the client field from the request shape.
const DefaultAttachMode = "auto"

// Webhook alert modes.
const (
	WebhookModeAuto   = "auto"   // status reports when the master key is set, else single events
	WebhookModeEvent  = "event"  // single-event alerts only
	WebhookModeStatus = "status" // cumulative status reports only
	WebhookModeBoth   = "both"
)

// =============================================================================
// POOLED TRANSPORTS
// =============================================================================

// DefaultDialTimeout is the TCP dial timeout (including the proxy hop).
const DefaultDialTimeout = 30 * time.Second

// DefaultKeepAlive is the TCP keep-alive period for pooled connections.
const DefaultKeepAlive = 30 * time.Second

// DefaultTLSHandshakeTimeout bounds TLS negotiation through a proxy.
const DefaultTLSHandshakeTimeout = 10 * time.Second

// DefaultIdleConnTimeout is how long an idle pooled connection is kept.
const DefaultIdleConnTimeout = 90 * time.Second

// DefaultMaxIdleConnsPerHost keeps enough warm connections for bursty model calls.
const DefaultMaxIdleConnsPerHost = 32

// =============================================================================
// ALERTING
// =============================================================================

// DefaultAlertCooldown is the minimum interval between alerts for one (model, endpoint).
const DefaultAlertCooldown = 1 * time.Hour

// DefaultStatusDelay lets the gateway mark the failing endpoint unhealthy before we query it.
const DefaultStatusDelay = 1 * time.Second

// DefaultStatusPath is the gateway health route listing unhealthy endpoints.
const DefaultStatusPath = "/health"

// DefaultGatewayBaseURL is where a co-located gateway listens.
const DefaultGatewayBaseURL = "http://localhost:4000"

// DefaultEmailAPIURL is the transactional email API endpoint.
const DefaultEmailAPIURL = "https://api.resend.com/emails"

// DefaultEmailFrom is the sender used when none is configured.
const DefaultEmailFrom = "alerts@gateway.local"

// DefaultNotifyTimeout bounds a single webhook or email delivery.
const DefaultNotifyTimeout = 10 * time.Second

// MaxErrorTextLen limits exception text in notifications to prevent bloat.
const MaxErrorTextLen = 500

// MaintenanceMessage is returned to keyed callers while maintenance mode is on.
const MaintenanceMessage = "The service is temporarily down for maintenance. Please try again later."

// =============================================================================
// SIDECAR SERVER
// =============================================================================

// DefaultListenAddr is the sidecar HTTP listen address.
const DefaultListenAddr = "127.0.0.1:4100"

// DefaultShutdownTimeout bounds draining of in-flight notifications on exit.
const DefaultShutdownTimeout = 15 * time.Second

// MaxRequestBodySize is the maximum allowed hook request body (10MB).
const MaxRequestBodySize = 10 * 1024 * 1024
