// Package reqctx defines the mutable request record the gateway hands to hooks.
//
// DESIGN: The gateway's call shape is loosely structured and varies by SDK
// generation, so RequestContext stays a plain map. Helpers only cover the
// nested-map access that resolvers and attach strategies need.
package reqctx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Well-known keys in the gateway call shape.
const (
	KeyModel         = "model"
	KeyLiteLLMParams = "litellm_params"
	KeyKwargs        = "kwargs"
	KeyClient        = "client"
	KeyAPIKey        = "api_key"
)

// RequestContext is one outbound call request. Hooks mutate it in place.
type RequestContext map[string]any

// FromJSON decodes a request body into a RequestContext. Numbers are kept
// as json.Number so they re-encode exactly as received.
func FromJSON(data []byte) (RequestContext, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rc RequestContext
	if err := dec.Decode(&rc); err != nil {
		return nil, fmt.Errorf("decode request context: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode request context: trailing data after object")
	}
	if rc == nil {
		rc = RequestContext{}
	}
	return rc, nil
}

// Model returns the model identifier, or "" when absent.
func (rc RequestContext) Model() string {
	s, _ := rc[KeyModel].(string)
	return s
}

// Nested returns the map stored under key, if present and map-shaped.
func (rc RequestContext) Nested(key string) (map[string]any, bool) {
	if rc == nil {
		return nil, false
	}
	switch m := rc[key].(type) {
	case map[string]any:
		return m, true
	case RequestContext:
		return m, true
	}
	return nil, false
}

// EnsureNested returns the map under key, creating it when absent.
// A non-map value under key is replaced.
func (rc RequestContext) EnsureNested(key string) map[string]any {
	if m, ok := rc.Nested(key); ok {
		return m
	}
	m := make(map[string]any)
	rc[key] = m
	return m
}

// Lookup walks path through nested maps and returns the leaf value.
func (rc RequestContext) Lookup(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur map[string]any = rc
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		switch next := v.(type) {
		case map[string]any:
			cur = next
		case RequestContext:
			cur = next
		default:
			return nil, false
		}
	}
	return nil, false
}

// Delete removes the leaf at path. Missing intermediate maps are ignored.
// Reports whether a key was removed.
func (rc RequestContext) Delete(path ...string) bool {
	if len(path) == 0 {
		return false
	}
	var cur map[string]any = rc
	for _, key := range path[:len(path)-1] {
		switch next := cur[key].(type) {
		case map[string]any:
			cur = next
		case RequestContext:
			cur = next
		default:
			return false
		}
	}
	leaf := path[len(path)-1]
	if _, ok := cur[leaf]; !ok {
		return false
	}
	delete(cur, leaf)
	return true
}
