package monitoring

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestTracker_WritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "alerts.jsonl")
	tr, err := NewTracker(AlertLogConfig{Path: path})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "file created eagerly")

	tr.RecordAlert(AlertEvent{Outcome: OutcomeDispatched, Category: "timeout", Model: "m", Endpoint: "e"})
	tr.RecordHook(HookEvent{Model: "m", Proxy: "socks5h://127.0.0.1:1080", Attached: true})
	require.NoError(t, tr.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, tr.Count())

	first := gjson.Parse(lines[0])
	assert.Equal(t, "alert", first.Get("event").String())
	assert.Equal(t, "dispatched", first.Get("outcome").String())
	assert.NotEmpty(t, first.Get("event_id").String())

	second := gjson.Parse(lines[1])
	assert.Equal(t, "pre_call", second.Get("event").String())
	assert.True(t, second.Get("attached").Bool())
}

func TestTracker_NoPathAndNil(t *testing.T) {
	tr, err := NewTracker(AlertLogConfig{})
	require.NoError(t, err)
	tr.RecordAlert(AlertEvent{Outcome: OutcomeSuppressed})
	assert.Equal(t, 0, tr.Count())

	var nilTracker *Tracker
	nilTracker.RecordAlert(AlertEvent{})
	nilTracker.RecordHook(HookEvent{})
	assert.Equal(t, 0, nilTracker.Count())
	assert.NoError(t, nilTracker.Close())
}
