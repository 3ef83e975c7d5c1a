// Package hooks implements the gateway's pre-call and failure-event hooks.
//
// DESIGN: Two hooks, both invoked concurrently for many in-flight calls:
//   - PreCall:     rewrites proxy directives into a pooled transport
//   - FailureHook: turns failures into cooldown-limited notifications
//
// Every hook boundary is a catch-all barrier. The maintenance rejection is
// the only error that reaches the caller; everything else is logged.
//
// FLOW:
//
//	gateway → PreCall.Intercept → directive.Resolver → transport.Pool → attach
//	gateway → FailureHook.OnFailure → classify → cooldown → Runner → channels
package hooks

import (
	"fmt"

	"github.com/compresr/gateway-hooks/internal/reqctx"
)

// Hook is the common surface of gateway hooks.
type Hook interface {
	// Name returns the hook identifier.
	Name() string

	// Enabled returns whether this hook is active.
	Enabled() bool
}

// Caller identifies the access credential a request was made under.
type Caller struct {
	KeyAlias string `json:"key_alias,omitempty"`
	KeyHash  string `json:"key_hash,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
}

// PreCallInput is what the gateway hands the pre-call hook.
type PreCallInput struct {
	Caller   *Caller               // nil for unauthenticated/internal calls
	Cache    any                   // gateway cache handle, unused
	Data     reqctx.RequestContext // mutated in place
	CallType string                // e.g. "completion", "embeddings"
}

// Rejection is a structured refusal surfaced to the gateway's caller.
type Rejection struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements error.
func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected (%d): %s", r.Code, r.Message)
}
