package alerting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeStatus struct {
	ids []string
	err error
}

func (f fakeStatus) UnhealthyEndpoints(context.Context) ([]string, error) {
	return f.ids, f.err
}

type capturePoster struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (c *capturePoster) PostRaw(_ context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return c.err
}

func (c *capturePoster) last(t *testing.T) gjson.Result {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.payloads)
	return gjson.ParseBytes(c.payloads[len(c.payloads)-1])
}

func TestEnricher_ReportsDedupedSet(t *testing.T) {
	poster := &capturePoster{}
	e := NewEnricher(fakeStatus{ids: []string{"A", "A", "B"}}, poster, 0)

	rec := FailureRecord{Model: "m", Endpoint: "trigger"}
	assert.Equal(t, []string{"A", "B"}, e.currentUnhealthy(context.Background(), rec))

	require.NoError(t, e.Run(context.Background(), rec, CategoryTimeout))
	body := poster.last(t).Get("blocks.1.text.text").String()
	assert.Contains(t, body, "`A`")
	assert.Contains(t, body, "`B`")
	assert.Equal(t, "Unhealthy endpoints: 2", poster.last(t).Get("blocks.0.text.text").String())
}

func TestEnricher_FallsBackToTrigger(t *testing.T) {
	rec := FailureRecord{Model: "m", Endpoint: "trigger"}

	tests := []struct {
		name   string
		status fakeStatus
	}{
		{"empty list", fakeStatus{ids: nil}},
		{"query failed", fakeStatus{err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnricher(tt.status, &capturePoster{}, 0)
			assert.Equal(t, []string{"trigger"}, e.currentUnhealthy(context.Background(), rec))
		})
	}
}

func TestEnricher_WaitsForDelay(t *testing.T) {
	poster := &capturePoster{}
	e := NewEnricher(fakeStatus{ids: []string{"A"}}, poster, 50*time.Millisecond)

	start := time.Now()
	require.NoError(t, e.Run(context.Background(), FailureRecord{Model: "m", Endpoint: "e"}, CategoryTimeout))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestEnricher_CancelledDuringDelay(t *testing.T) {
	poster := &capturePoster{}
	e := NewEnricher(fakeStatus{ids: []string{"A"}}, poster, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Run(ctx, FailureRecord{Model: "m"}, CategoryTimeout), context.Canceled)
	assert.Empty(t, poster.payloads)
}

func TestEnricher_PostErrorSwallowed(t *testing.T) {
	poster := &capturePoster{err: errors.New("503")}
	e := NewEnricher(fakeStatus{ids: []string{"A"}}, poster, 0)
	assert.NoError(t, e.Run(context.Background(), FailureRecord{Model: "m"}, CategoryTimeout))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Dedupe([]string{"b", "a", "b", "c", "a"}))
	assert.Empty(t, Dedupe(nil))
}

func TestRunner_RecoversAndWaits(t *testing.T) {
	r := NewRunner(context.Background())

	var mu sync.Mutex
	ran := 0
	r.Go("panics", func(context.Context) error { panic("boom") })
	r.Go("fails", func(context.Context) error { return errors.New("nope") })
	r.Go("ok", func(context.Context) error {
		mu.Lock()
		ran++
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
	assert.Equal(t, 1, ran)
}

func TestRunner_DetachedFromCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	r := NewRunner(parent)
	cancel()

	errCh := make(chan error, 1)
	r.Go("check", func(ctx context.Context) error {
		errCh <- ctx.Err()
		return nil
	})
	assert.NoError(t, <-errCh)
}

func TestRunner_WaitTimeout(t *testing.T) {
	r := NewRunner(context.Background())
	release := make(chan struct{})
	r.Go("slow", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
	close(release)
}
