package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// drainOne polls buf for a single JSON log line, since the logger's
// drain goroutine runs asynchronously.
func drainOne(t *testing.T, buf *syncBuffer) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if line := buf.firstLine(); line != "" {
			var m map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(line), &m))
			return m
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for a log line")
	return nil
}

// syncBuffer is a concurrency-safe io.Writer wrapping bytes.Buffer, so
// the drain goroutine can write while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newSyncBuffer() *syncBuffer { return &syncBuffer{} }

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) firstLine() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return ""
}

func TestInfoLogsExpectedFields(t *testing.T) {
	buf := newSyncBuffer()
	l := New(buf, false)

	l.Info("index", "indexed file", map[string]interface{}{"file": "chr1.fa", "records": 3})

	m := drainOne(t, buf)
	require.Equal(t, "indexed file", m["message"])
	require.Equal(t, "indexer", m["component"])
	require.Equal(t, "chr1.fa", m["file"])
}

func TestDumpDebugEmitsAtDebugLevel(t *testing.T) {
	buf := newSyncBuffer()
	l := New(buf, true)

	l.DumpDebug("index", "resolved options", struct{ Glob string }{Glob: "*.fa"})

	m := drainOne(t, buf)
	require.Equal(t, "debug", m["level"])
	dump, ok := m["dump"].(string)
	require.True(t, ok)
	require.Contains(t, dump, "Glob")
}

func TestUnknownLoggerFallsBackToIndex(t *testing.T) {
	buf := newSyncBuffer()
	l := New(buf, false)

	l.Warn("not-a-real-logger", "still gets logged", nil)

	m := drainOne(t, buf)
	require.Equal(t, "indexer", m["component"])
}

func TestDiscardDropsEverythingSilently(t *testing.T) {
	l := Discard()
	l.Info("index", "should vanish", nil)
	l.Perf("noop", time.Millisecond, nil)
	// no assertion beyond "does not panic and does not block"; Discard
	// writes to io.Discard so there is nothing observable to read back.
}
