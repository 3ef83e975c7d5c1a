package hooks

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/compresr/gateway-hooks/internal/config"
	"github.com/compresr/gateway-hooks/internal/directive"
	"github.com/compresr/gateway-hooks/internal/monitoring"
	"github.com/compresr/gateway-hooks/internal/reqctx"
	"github.com/compresr/gateway-hooks/internal/transport"
	"github.com/compresr/gateway-hooks/internal/utils"
)

// credentialPreviewLen bounds how much of a provider key reaches the logs.
const credentialPreviewLen = 6

// TransportSource returns the pooled transport for a proxy endpoint.
type TransportSource interface {
	GetOrCreate(endpoint string) (*transport.Transport, error)
}

// PreCall is the pre-call hook: maintenance gate plus transport injection.
type PreCall struct {
	resolver    *directive.Resolver
	pool        TransportSource
	attacher    Attacher
	telemetry   *monitoring.Tracker
	maintenance atomic.Bool
}

// PreCallOption configures PreCall.
type PreCallOption func(*PreCall)

// WithAttacher overrides the attach strategy.
func WithAttacher(a Attacher) PreCallOption {
	return func(p *PreCall) {
		p.attacher = a
	}
}

// WithPreCallTelemetry records each interception to the event log.
func WithPreCallTelemetry(t *monitoring.Tracker) PreCallOption {
	return func(p *PreCall) {
		p.telemetry = t
	}
}

// WithMaintenance sets the initial maintenance state.
func WithMaintenance(on bool) PreCallOption {
	return func(p *PreCall) {
		p.maintenance.Store(on)
	}
}

// NewPreCall creates the pre-call hook.
func NewPreCall(resolver *directive.Resolver, pool TransportSource, opts ...PreCallOption) *PreCall {
	p := &PreCall{
		resolver: resolver,
		pool:     pool,
		attacher: AttachFunc(attachAuto),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Hook.
func (p *PreCall) Name() string { return "transport_interceptor" }

// Enabled implements Hook.
func (p *PreCall) Enabled() bool { return p.pool != nil && p.resolver != nil }

// SetMaintenance toggles maintenance mode at runtime.
func (p *PreCall) SetMaintenance(on bool) {
	p.maintenance.Store(on)
	log.Warn().Bool("maintenance", on).Msg("pre_call: maintenance mode changed")
}

// Maintenance reports whether maintenance mode is on.
func (p *PreCall) Maintenance() bool {
	return p.maintenance.Load()
}

// Intercept rewrites in.Data for the outbound call.
//
// A keyed caller during maintenance gets a *Rejection and in.Data is left
// untouched. Otherwise a proxy directive, if any, is stripped from every
// known location and replaced by a pooled transport. Failures after the
// gate are logged and the (possibly stripped) context is returned so the
// call proceeds without a proxy.
func (p *PreCall) Intercept(in PreCallInput) (out reqctx.RequestContext, err error) {
	out = in.Data

	if in.Caller != nil && p.maintenance.Load() {
		p.telemetry.RecordHook(monitoring.HookEvent{
			Model:    in.Data.Model(),
			CallType: in.CallType,
			Rejected: true,
		})
		return in.Data, &Rejection{Code: http.StatusInternalServerError, Message: config.MaintenanceMessage}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("panic", fmt.Sprint(r)).
				Str("model", in.Data.Model()).
				Msg("pre_call: recovered from panic, continuing without proxy")
			out, err = in.Data, nil
		}
	}()

	if in.Data == nil || !p.Enabled() {
		return in.Data, nil
	}

	res, ok := p.resolver.ResolveAndStrip(in.Data)
	if !ok {
		return in.Data, nil
	}

	event := monitoring.HookEvent{
		Model:    in.Data.Model(),
		CallType: in.CallType,
		Proxy:    utils.RedactURL(res.Endpoint),
		Source:   res.Source,
	}
	defer func() { p.telemetry.RecordHook(event) }()

	t, terr := p.pool.GetOrCreate(res.Endpoint)
	if terr != nil {
		event.Error = terr.Error()
		log.Error().
			Err(terr).
			Str("model", event.Model).
			Str("proxy", event.Proxy).
			Msg("pre_call: failed to create proxy transport, continuing without proxy")
		return in.Data, nil
	}

	field := p.attacher.Attach(in.Data, t)
	event.Attached = true

	log.Info().
		Str("model", event.Model).
		Str("proxy", event.Proxy).
		Str("source", res.Source).
		Str("field", field).
		Str("api_key", utils.KeyPreview(apiKeyOf(in.Data), credentialPreviewLen)).
		Msg("pre_call: bound proxy transport")

	return in.Data, nil
}

func apiKeyOf(rc reqctx.RequestContext) string {
	if v, ok := rc.Lookup(reqctx.KeyLiteLLMParams, reqctx.KeyAPIKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if s, ok := rc[reqctx.KeyAPIKey].(string); ok {
		return s
	}
	return ""
}
