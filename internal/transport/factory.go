package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/compresr/gateway-hooks/internal/config"
)

// ErrUnsupportedScheme is returned for proxy endpoints the factory cannot dial.
var ErrUnsupportedScheme = errors.New("unsupported proxy scheme")

// Factory builds a Transport bound to one proxy endpoint.
type Factory func(endpoint string) (*Transport, error)

// Options tunes transports built by NewFactory.
type Options struct {
	DialTimeout         time.Duration
	KeepAlive           time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration
	MaxIdleConnsPerHost int
}

// OptionsFromConfig maps proxy config onto transport options.
func OptionsFromConfig(cfg config.ProxyConfig) Options {
	return Options{
		DialTimeout:         cfg.DialTimeout,
		KeepAlive:           config.DefaultKeepAlive,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
	}
}

// NewFactory returns a Factory producing proxied HTTP clients.
//
// socks5 and socks5h dial through a SOCKS5 proxy. The proxy resolves
// hostnames for both, since the dialer passes names through unresolved.
// http and https use a CONNECT proxy via http.ProxyURL.
func NewFactory(opts Options) Factory {
	return func(endpoint string) (*Transport, error) {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse proxy endpoint: %w", err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("proxy endpoint %q has no host", endpoint)
		}

		dialer := &net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: opts.KeepAlive,
		}
		rt := &http.Transport{
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          opts.MaxIdleConnsPerHost * 4,
			MaxIdleConnsPerHost:   opts.MaxIdleConnsPerHost,
			IdleConnTimeout:       opts.IdleConnTimeout,
			TLSHandshakeTimeout:   opts.TLSHandshakeTimeout,
			ExpectContinueTimeout: 1 * time.Second,
		}

		switch strings.ToLower(u.Scheme) {
		case "socks5", "socks5h":
			var auth *proxy.Auth
			if u.User != nil {
				pass, _ := u.User.Password()
				auth = &proxy.Auth{User: u.User.Username(), Password: pass}
			}
			d, err := proxy.SOCKS5("tcp", u.Host, auth, dialer)
			if err != nil {
				return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
			}
			cd, ok := d.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("SOCKS5 dialer for %s is not context-aware", u.Host)
			}
			rt.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return cd.DialContext(ctx, network, addr)
			}
		case "http", "https":
			rt.Proxy = http.ProxyURL(u)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
		}

		return &Transport{
			Endpoint:  endpoint,
			Client:    &http.Client{Transport: rt},
			CreatedAt: time.Now(),
			rt:        rt,
		}, nil
	}
}
