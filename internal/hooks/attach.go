package hooks

import (
	"fmt"

	"github.com/compresr/gateway-hooks/internal/reqctx"
	"github.com/compresr/gateway-hooks/internal/transport"
)

// Attacher places a pooled transport where the provider-call layer reads it.
type Attacher interface {
	Attach(rc reqctx.RequestContext, t *transport.Transport) (field string)
}

// AttachFunc adapts a function to Attacher.
type AttachFunc func(rc reqctx.RequestContext, t *transport.Transport) string

// Attach implements Attacher.
func (f AttachFunc) Attach(rc reqctx.RequestContext, t *transport.Transport) string {
	return f(rc, t)
}

// attachDirect writes the top-level client reference.
func attachDirect(rc reqctx.RequestContext, t *transport.Transport) string {
	rc[reqctx.KeyClient] = t
	return reqctx.KeyClient
}

// attachKwargs writes kwargs.client, creating kwargs if needed.
func attachKwargs(rc reqctx.RequestContext, t *transport.Transport) string {
	rc.EnsureNested(reqctx.KeyKwargs)[reqctx.KeyClient] = t
	return reqctx.KeyKwargs + "." + reqctx.KeyClient
}

// attachAuto follows the request shape: calls that carry kwargs get the
// nested reference, everything else the direct one.
func attachAuto(rc reqctx.RequestContext, t *transport.Transport) string {
	if _, ok := rc.Nested(reqctx.KeyKwargs); ok {
		return attachKwargs(rc, t)
	}
	return attachDirect(rc, t)
}

// NewAttacher resolves an attach mode from configuration.
func NewAttacher(mode string) (Attacher, error) {
	switch mode {
	case "", "auto":
		return AttachFunc(attachAuto), nil
	case "client":
		return AttachFunc(attachDirect), nil
	case "kwargs":
		return AttachFunc(attachKwargs), nil
	default:
		return nil, fmt.Errorf("unknown attach mode %q", mode)
	}
}
