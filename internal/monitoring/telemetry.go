// Package monitoring - telemetry.go records hook events to a JSONL file.
//
// DESIGN: Tracker writes structured events as JSONL (one JSON object per line):
//   - AlertEvent: dispatch, suppression, and delivery results of failure alerts
//   - HookEvent:  transport interceptions and maintenance rejections
//
// Events are appended immediately so an operator can tail the file.
// A nil *Tracker is valid and records nothing.
package monitoring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Tracker handles alert/hook event recording to file and stdout.
type Tracker struct {
	config AlertLogConfig
	path   string
	count  int
	mu     sync.Mutex
}

// NewTracker creates a new event tracker. The log directory is created and
// the file touched so tailing works before the first event.
func NewTracker(cfg AlertLogConfig) (*Tracker, error) {
	t := &Tracker{config: cfg}

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0750); err != nil {
			return nil, err
		}
		t.path = cfg.Path
		if _, err := os.Stat(cfg.Path); os.IsNotExist(err) {
			if f, err := os.Create(cfg.Path); err == nil {
				_ = f.Close()
			}
		}
	}

	return t, nil
}

// appendJSONL appends a single JSON object as a line to the file.
func appendJSONL(path string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.Write(data)
	return err
}

// RecordAlert records an alert event. EventID, Timestamp and Event are filled when empty.
func (t *Tracker) RecordAlert(event AlertEvent) {
	if t == nil {
		return
	}
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Event = "alert"

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.config.LogToStdout {
		log.Info().
			Str("outcome", string(event.Outcome)).
			Str("category", event.Category).
			Str("model", event.Model).
			Str("endpoint", event.Endpoint).
			Str("channel", event.Channel).
			Msg("alert")
	}

	t.write(event)
}

// RecordHook records a pre-call interception event.
func (t *Tracker) RecordHook(event HookEvent) {
	if t == nil {
		return
	}
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Event = "pre_call"

	t.mu.Lock()
	defer t.mu.Unlock()

	t.write(event)
}

func (t *Tracker) write(event any) {
	if t.path == "" {
		return
	}
	if err := appendJSONL(t.path, event); err != nil {
		log.Error().Err(err).Str("path", t.path).Msg("telemetry: failed to write event")
	} else {
		t.count++
	}
}

// Count returns the number of events written to file.
func (t *Tracker) Count() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Close logs a session summary.
func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.path != "" && t.count > 0 {
		log.Info().
			Str("path", t.path).
			Int("events", t.count).
			Msg("telemetry: session complete")
	}

	return nil
}
