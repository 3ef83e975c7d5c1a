package hooks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/compresr/gateway-hooks/internal/alerting"
	"github.com/compresr/gateway-hooks/internal/monitoring"
)

// FailureHook is the failure-event hook. It never blocks on delivery.
type FailureHook struct {
	cooldown  *alerting.CooldownTracker
	notifiers []alerting.Notifier
	runner    *alerting.Runner
	telemetry *monitoring.Tracker
	timeout   time.Duration
	now       func() time.Time

	// Cumulative status reports have their own gate so a burst of failures
	// yields one report per key and window.
	enricher         *alerting.Enricher
	enricherCooldown *alerting.CooldownTracker
}

// FailureHookOption configures FailureHook.
type FailureHookOption func(*FailureHook)

// WithNotifier adds a single-event notification channel.
func WithNotifier(n alerting.Notifier) FailureHookOption {
	return func(h *FailureHook) {
		h.notifiers = append(h.notifiers, n)
	}
}

// WithEnricher enables cumulative status reports.
func WithEnricher(e *alerting.Enricher) FailureHookOption {
	return func(h *FailureHook) {
		h.enricher = e
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) FailureHookOption {
	return func(h *FailureHook) {
		h.now = now
	}
}

// WithNotifyTimeout bounds each channel delivery.
func WithNotifyTimeout(d time.Duration) FailureHookOption {
	return func(h *FailureHook) {
		h.timeout = d
	}
}

// WithFailureTelemetry records alert outcomes to the event log.
func WithFailureTelemetry(t *monitoring.Tracker) FailureHookOption {
	return func(h *FailureHook) {
		h.telemetry = t
	}
}

// NewFailureHook creates the failure hook. window is the per-key cooldown.
func NewFailureHook(window time.Duration, runner *alerting.Runner, opts ...FailureHookOption) *FailureHook {
	if runner == nil {
		runner = alerting.NewRunner(context.Background())
	}
	h := &FailureHook{
		cooldown:         alerting.NewCooldownTracker(window),
		enricherCooldown: alerting.NewCooldownTracker(window),
		runner:           runner,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements Hook.
func (h *FailureHook) Name() string { return "failure_alerts" }

// Enabled implements Hook.
func (h *FailureHook) Enabled() bool {
	return len(h.notifiers) > 0 || h.enricher != nil
}

// Runner returns the background runner, for draining on shutdown.
func (h *FailureHook) Runner() *alerting.Runner {
	return h.runner
}

// OnFailureEvent parses a raw gateway failure payload and handles it.
func (h *FailureHook) OnFailureEvent(payload []byte) {
	defer h.recoverPanic("parse")
	h.OnFailure(alerting.ParseFailureEvent(payload, h.now()))
}

// OnFailure classifies rec and, when alert-worthy and outside the cooldown,
// schedules notifications. Returns without waiting for delivery.
func (h *FailureHook) OnFailure(rec alerting.FailureRecord) {
	defer h.recoverPanic(rec.Model)

	if !h.Enabled() {
		return
	}

	category := alerting.Classify(rec.Exception)
	if !category.AlertWorthy() {
		log.Debug().Str("model", rec.Model).Msg("failure_hook: failure not alert-worthy")
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = h.now()
	}

	if h.enricher != nil && h.enricherCooldown.Acquire(rec.Key(), rec.Timestamp) {
		h.runner.Go("status_report", func(ctx context.Context) error {
			return h.enricher.Run(ctx, rec, category)
		})
	}

	if len(h.notifiers) == 0 {
		return
	}

	if !h.cooldown.Acquire(rec.Key(), rec.Timestamp) {
		h.telemetry.RecordAlert(monitoring.AlertEvent{
			Outcome:  monitoring.OutcomeSuppressed,
			Category: string(category),
			Model:    rec.Model,
			Endpoint: rec.Endpoint,
		})
		log.Debug().
			Str("model", rec.Model).
			Str("endpoint", rec.Endpoint).
			Msg("failure_hook: alert suppressed by cooldown")
		return
	}

	n := alerting.NewNotification(rec, category)
	h.telemetry.RecordAlert(monitoring.AlertEvent{
		AlertID:  n.ID,
		Outcome:  monitoring.OutcomeDispatched,
		Category: string(category),
		Model:    rec.Model,
		Endpoint: rec.Endpoint,
	})
	log.Warn().
		Str("alert_id", n.ID).
		Str("category", string(category)).
		Str("model", rec.Model).
		Str("endpoint", rec.Endpoint).
		Msg("failure_hook: dispatching alert")

	for _, notifier := range h.notifiers {
		notifier := notifier
		h.runner.Go("notify_"+notifier.Name(), func(ctx context.Context) error {
			return h.deliver(ctx, notifier, n)
		})
	}
}

func (h *FailureHook) deliver(ctx context.Context, notifier alerting.Notifier, n alerting.Notification) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	event := monitoring.AlertEvent{
		AlertID:  n.ID,
		Outcome:  monitoring.OutcomeDelivered,
		Category: string(n.Category),
		Model:    n.Model,
		Endpoint: n.Endpoint,
		Channel:  notifier.Name(),
	}
	err := notifier.Notify(ctx, n)
	if err != nil {
		event.Outcome = monitoring.OutcomeFailed
		event.Error = err.Error()
	}
	h.telemetry.RecordAlert(event)
	return err
}

func (h *FailureHook) recoverPanic(scope string) {
	if r := recover(); r != nil {
		log.Error().
			Str("scope", scope).
			Str("panic", fmt.Sprint(r)).
			Msg("failure_hook: recovered from panic")
	}
}
