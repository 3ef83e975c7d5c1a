// Package transport pools proxied HTTP clients keyed by proxy endpoint.
//
// DESIGN: One Transport per endpoint for the life of the process:
//   - GetOrCreate returns the pooled instance, building it on first use
//   - concurrent first uses of one endpoint collapse onto a single build
//   - entries are never evicted or closed
//
// Reusing the instance keeps TCP/TLS sessions to providers warm instead of
// renegotiating through the proxy on every model call.
package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/compresr/gateway-hooks/internal/utils"
)

// Transport is a reusable outbound HTTP client bound to one proxy endpoint.
type Transport struct {
	Endpoint  string
	Client    *http.Client
	CreatedAt time.Time

	rt *http.Transport
}

// RoundTripper exposes the underlying transport for SDKs that take one.
func (t *Transport) RoundTripper() http.RoundTripper {
	if t.rt != nil {
		return t.rt
	}
	return t.Client.Transport
}

// MarshalJSON renders the transport as a descriptor so request contexts
// carrying one can still be echoed as JSON. Credentials are redacted.
func (t *Transport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Proxy     string    `json:"proxy"`
		CreatedAt time.Time `json:"created_at"`
	}{
		Proxy:     utils.RedactURL(t.Endpoint),
		CreatedAt: t.CreatedAt,
	})
}

// Pool maps proxy endpoints to transports. Safe for concurrent use.
type Pool struct {
	factory Factory

	mu         sync.RWMutex
	transports map[string]*Transport

	group singleflight.Group
}

// NewPool creates an empty pool that builds transports with factory.
func NewPool(factory Factory) *Pool {
	return &Pool{
		factory:    factory,
		transports: make(map[string]*Transport),
	}
}

// GetOrCreate returns the transport for endpoint, creating it on first use.
// Endpoints are compared as exact strings.
func (p *Pool) GetOrCreate(endpoint string) (*Transport, error) {
	if t, ok := p.lookup(endpoint); ok {
		return t, nil
	}

	v, err, shared := p.group.Do(endpoint, func() (any, error) {
		// A previous flight may have finished between lookup and Do.
		if t, ok := p.lookup(endpoint); ok {
			return t, nil
		}

		t, err := p.factory(endpoint)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("transport factory returned nil for %s", utils.RedactURL(endpoint))
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if existing, ok := p.transports[endpoint]; ok {
			return existing, nil
		}
		p.transports[endpoint] = t

		log.Info().
			Str("proxy", utils.RedactURL(endpoint)).
			Int("pool_size", len(p.transports)).
			Msg("transport_pool: created transport")
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug().Str("proxy", utils.RedactURL(endpoint)).Msg("transport_pool: joined in-flight build")
	}
	return v.(*Transport), nil
}

func (p *Pool) lookup(endpoint string) (*Transport, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.transports[endpoint]
	return t, ok
}

// Len returns the number of pooled transports.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.transports)
}

// Endpoints returns the pooled endpoints, sorted and redacted.
func (p *Pool) Endpoints() []string {
	p.mu.RLock()
	out := make([]string, 0, len(p.transports))
	for ep := range p.transports {
		out = append(out, utils.RedactURL(ep))
	}
	p.mu.RUnlock()

	sort.Strings(out)
	return out
}
