package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/compresr/gateway-hooks/internal/config"
	"github.com/compresr/gateway-hooks/internal/hooks"
	"github.com/compresr/gateway-hooks/internal/reqctx"
)

// preCallRequest is the wire form of hooks.PreCallInput.
type preCallRequest struct {
	Caller   *hooks.Caller         `json:"caller,omitempty"`
	CallType string                `json:"call_type"`
	Data     reqctx.RequestContext `json:"data"`
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("server: failed to encode response")
	}
}

// writeError writes the JSON error shape the gateway surfaces to its caller.
func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": status, "message": msg},
	})
}

func (s *Server) handlePreCall(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)

	// Numbers stay json.Number so the rewritten context echoes them exactly.
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req preCallRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Data == nil {
		req.Data = reqctx.RequestContext{}
	}

	out, err := s.precall.Intercept(hooks.PreCallInput{
		Caller:   req.Caller,
		Data:     req.Data,
		CallType: req.CallType,
	})
	if err != nil {
		var rej *hooks.Rejection
		if errors.As(err, &rej) {
			writeError(w, rej.Message, rej.Code)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFailure(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if !json.Valid(payload) {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.failure.OnFailureEvent(payload)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
		"version": s.version,
	}
	if s.precall != nil {
		health["maintenance"] = s.precall.Maintenance()
	}
	if s.failure != nil {
		health["alerting"] = s.failure.Enabled()
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleTransports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     s.transports.Len(),
		"endpoints": s.transports.Endpoints(),
	})
}
