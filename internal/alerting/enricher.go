package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// StatusSource lists endpoints the gateway currently considers unhealthy.
type StatusSource interface {
	UnhealthyEndpoints(ctx context.Context) ([]string, error)
}

// RawPoster delivers a prebuilt chat payload.
type RawPoster interface {
	PostRaw(ctx context.Context, payload []byte) error
}

// Enricher reports the full current set of unhealthy endpoints instead of
// only the one that triggered the alert.
type Enricher struct {
	status StatusSource
	poster RawPoster
	delay  time.Duration
}

// NewEnricher creates an enricher. delay gives the gateway time to mark the
// failing endpoint unhealthy before the query.
func NewEnricher(status StatusSource, poster RawPoster, delay time.Duration) *Enricher {
	return &Enricher{status: status, poster: poster, delay: delay}
}

// Run waits, queries, and posts the cumulative report. Meant for a detached
// task; delivery errors are logged and nil is returned.
func (e *Enricher) Run(ctx context.Context, rec FailureRecord, category Category) error {
	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	endpoints := e.currentUnhealthy(ctx, rec)

	payload, err := BuildChatPayload(
		fmt.Sprintf("%d unhealthy endpoint(s) after %s on %s", len(endpoints), category.Title(), rec.Model),
		fmt.Sprintf("Unhealthy endpoints: %d", len(endpoints)),
		formatEndpointList(rec, endpoints),
	)
	if err != nil {
		log.Error().Err(err).Str("model", rec.Model).Msg("enricher: failed to build payload")
		return nil
	}

	if err := e.poster.PostRaw(ctx, payload); err != nil {
		log.Warn().Err(err).Str("model", rec.Model).Msg("enricher: failed to post status report")
		return nil
	}

	log.Info().
		Str("model", rec.Model).
		Int("unhealthy", len(endpoints)).
		Msg("enricher: status report sent")
	return nil
}

// currentUnhealthy returns the deduplicated unhealthy set, or only the
// triggering endpoint when the query fails or comes back empty.
func (e *Enricher) currentUnhealthy(ctx context.Context, rec FailureRecord) []string {
	ids, err := e.status.UnhealthyEndpoints(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("enricher: status query failed, reporting trigger only")
		return []string{rec.Endpoint}
	}
	ids = Dedupe(ids)
	if len(ids) == 0 {
		return []string{rec.Endpoint}
	}
	return ids
}

func formatEndpointList(rec FailureRecord, endpoints []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Triggered by:* `%s` on `%s`\n", rec.Model, rec.Endpoint)
	for _, ep := range endpoints {
		fmt.Fprintf(&sb, "• `%s`\n", ep)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Dedupe removes repeated values, keeping first-occurrence order.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
