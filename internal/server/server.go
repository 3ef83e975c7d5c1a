// Package server exposes the gateway hooks over HTTP for gateways that call
// out to a sidecar instead of loading hooks in-process.
//
// DESIGN: A thin chi router. Handlers decode, call the hook, encode; all
// behaviour lives in the hooks package.
//
// ROUTES:
//
//	POST /hooks/pre-call  → hooks.PreCall.Intercept
//	POST /hooks/failure   → hooks.FailureHook.OnFailureEvent (202, async)
//	GET  /health          → liveness plus maintenance state
//	GET  /transports      → pooled proxy endpoints (redacted)
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/compresr/gateway-hooks/internal/hooks"
)

// TransportLister reports what the transport pool holds.
type TransportLister interface {
	Len() int
	Endpoints() []string
}

// Server is the hook sidecar.
type Server struct {
	precall    *hooks.PreCall
	failure    *hooks.FailureHook
	transports TransportLister
	version    string
	startedAt  time.Time

	router chi.Router
}

// Option configures Server.
type Option func(*Server)

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithTransports enables GET /transports.
func WithTransports(t TransportLister) Option {
	return func(s *Server) {
		s.transports = t
	}
}

// New builds the sidecar router. Either hook may be nil, in which case its
// route answers 404.
func New(precall *hooks.PreCall, failure *hooks.FailureHook, opts ...Option) *Server {
	s := &Server{
		precall:   precall,
		failure:   failure,
		version:   "dev",
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	if s.transports != nil {
		r.Get("/transports", s.handleTransports)
	}

	r.Route("/hooks", func(r chi.Router) {
		if s.precall != nil {
			r.Post("/pre-call", s.handlePreCall)
		}
		if s.failure != nil {
			r.Post("/failure", s.handleFailure)
		}
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and drains in-flight notifications, both bounded by
// shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("server: listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("server: shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server: shutdown incomplete")
	}
	if s.failure != nil {
		if err := s.failure.Runner().Wait(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("server: notifications still in flight at exit")
		}
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("server: request")
	})
}
