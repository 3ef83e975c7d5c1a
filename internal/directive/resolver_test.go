package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/gateway-hooks/internal/reqctx"
)

func assertStripped(t *testing.T, rc reqctx.RequestContext) {
	t.Helper()
	for _, loc := range DefaultLocations(DefaultKey) {
		_, found := rc.Lookup(loc.Path...)
		assert.False(t, found, "directive left at %s", loc.Name)
	}
}

func TestResolveAndStrip_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		rc         reqctx.RequestContext
		wantValue  string
		wantSource string
		cleared    int
	}{
		{
			name:       "provider params only",
			rc:         reqctx.RequestContext{"litellm_params": map[string]any{"proxy_url": "socks5h://a:1"}},
			wantValue:  "socks5h://a:1",
			wantSource: "provider_params",
			cleared:    1,
		},
		{
			name:       "top level only",
			rc:         reqctx.RequestContext{"proxy_url": "http://b:2"},
			wantValue:  "http://b:2",
			wantSource: "top_level",
			cleared:    1,
		},
		{
			name:       "kwargs only",
			rc:         reqctx.RequestContext{"kwargs": map[string]any{"proxy_url": "socks5://c:3"}},
			wantValue:  "socks5://c:3",
			wantSource: "kwargs",
			cleared:    1,
		},
		{
			name: "top level and kwargs",
			rc: reqctx.RequestContext{
				"proxy_url": "http://b:2",
				"kwargs":    map[string]any{"proxy_url": "socks5://c:3"},
			},
			wantValue:  "http://b:2",
			wantSource: "top_level",
			cleared:    2,
		},
		{
			name: "all three",
			rc: reqctx.RequestContext{
				"litellm_params": map[string]any{"proxy_url": "socks5h://a:1"},
				"proxy_url":      "http://b:2",
				"kwargs":         map[string]any{"proxy_url": "socks5://c:3"},
			},
			wantValue:  "socks5h://a:1",
			wantSource: "provider_params",
			cleared:    3,
		},
		{
			name: "empty first location falls through",
			rc: reqctx.RequestContext{
				"litellm_params": map[string]any{"proxy_url": "   "},
				"kwargs":         map[string]any{"proxy_url": " socks5://c:3 "},
			},
			wantValue:  "socks5://c:3",
			wantSource: "kwargs",
			cleared:    2,
		},
	}

	r := NewResolver("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := r.ResolveAndStrip(tt.rc)
			require.True(t, ok)
			assert.Equal(t, tt.wantValue, res.Endpoint)
			assert.Equal(t, tt.wantSource, res.Source)
			assert.Equal(t, tt.cleared, res.Cleared)
			assertStripped(t, tt.rc)
		})
	}
}

func TestResolveAndStrip_Absent(t *testing.T) {
	r := NewResolver(DefaultKey)

	rc := reqctx.RequestContext{"model": "m", "litellm_params": map[string]any{"api_key": "k"}}
	_, ok := r.ResolveAndStrip(rc)
	assert.False(t, ok)
	assert.Equal(t, map[string]any{"api_key": "k"}, rc["litellm_params"])

	_, ok = r.ResolveAndStrip(nil)
	assert.False(t, ok)
}

func TestResolveAndStrip_NonStringClearedButIgnored(t *testing.T) {
	r := NewResolver(DefaultKey)
	rc := reqctx.RequestContext{
		"litellm_params": map[string]any{"proxy_url": nil},
		"proxy_url":      123,
	}
	res, ok := r.ResolveAndStrip(rc)
	assert.False(t, ok)
	assert.Equal(t, 2, res.Cleared)
	assertStripped(t, rc)
}

func TestResolver_CustomKey(t *testing.T) {
	r := NewResolver("socks_proxy")
	rc := reqctx.RequestContext{"kwargs": map[string]any{"socks_proxy": "socks5://x:1", "proxy_url": "keep"}}
	res, ok := r.ResolveAndStrip(rc)
	require.True(t, ok)
	assert.Equal(t, "socks5://x:1", res.Endpoint)

	v, found := rc.Lookup("kwargs", "proxy_url")
	require.True(t, found)
	assert.Equal(t, "keep", v)
}
