// Package directive extracts per-call proxy directives from a request context.
//
// DESIGN: Upstream frameworks place the proxy setting in different spots
// depending on call shape. The resolver owns one ordered list of locations:
//   - litellm_params.<key>  (provider parameters)
//   - <key>                 (top level)
//   - kwargs.<key>          (auxiliary arguments)
//
// The first non-empty value wins and every location is cleared, so a stale
// copy can never reach the provider call layer next to an attached transport.
package directive

import (
	"strings"

	"github.com/compresr/gateway-hooks/internal/reqctx"
)

// DefaultKey is the directive field name used by the gateway.
const DefaultKey = "proxy_url"

// Location is one place a directive may live, as a path of map keys.
type Location struct {
	Name string
	Path []string
}

// DefaultLocations returns the lookup order for key.
func DefaultLocations(key string) []Location {
	return []Location{
		{Name: "provider_params", Path: []string{reqctx.KeyLiteLLMParams, key}},
		{Name: "top_level", Path: []string{key}},
		{Name: "kwargs", Path: []string{reqctx.KeyKwargs, key}},
	}
}

// Resolver finds and strips proxy directives.
type Resolver struct {
	locations []Location
}

// NewResolver creates a resolver over the default locations for key.
// An empty key falls back to DefaultKey.
func NewResolver(key string) *Resolver {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Resolver{locations: DefaultLocations(key)}
}

// NewResolverWithLocations creates a resolver with an explicit lookup order.
func NewResolverWithLocations(locations []Location) *Resolver {
	return &Resolver{locations: append([]Location(nil), locations...)}
}

// Locations returns a copy of the lookup order.
func (r *Resolver) Locations() []Location {
	return append([]Location(nil), r.locations...)
}

// Result describes a resolved directive.
type Result struct {
	Endpoint string // trimmed directive value
	Source   string // name of the location that supplied it
	Cleared  int    // number of locations that held a key
}

// ResolveAndStrip returns the first non-empty directive and removes the key
// from every known location. ok is false when no usable directive exists;
// keys holding empty or non-string values are still removed.
func (r *Resolver) ResolveAndStrip(rc reqctx.RequestContext) (res Result, ok bool) {
	if rc == nil {
		return Result{}, false
	}

	for _, loc := range r.locations {
		v, found := rc.Lookup(loc.Path...)
		if !found {
			continue
		}
		if !ok {
			if s, isStr := v.(string); isStr {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					res.Endpoint = trimmed
					res.Source = loc.Name
					ok = true
				}
			}
		}
	}

	for _, loc := range r.locations {
		if rc.Delete(loc.Path...) {
			res.Cleared++
		}
	}
	return res, ok
}
