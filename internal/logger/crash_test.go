package logger

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(fs afero.Fs) *Recorder {
	r := NewRecorder(fs, "/data", "1.0.0-test", nil)
	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	n := 0
	r.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return r
}

func TestRecorder_RecoverWritesCrashLog(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := newTestRecorder(fs)

	var reported string
	func() {
		defer r.Recover("router", "明日レポート提出", func(path string) { reported = path })
		panic("boom")
	}()

	require.NotEmpty(t, reported)
	assert.True(t, strings.HasPrefix(reported, "/data/crash_logs/crash_"))

	content, err := afero.ReadFile(fs, reported)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "TASK BOT CRASH LOG")
	assert.Contains(t, text, "Version:   1.0.0-test")
	assert.Contains(t, text, "Source:    router")
	assert.Contains(t, text, "boom")
	assert.Contains(t, text, "LAST MESSAGE\n")
	assert.Contains(t, text, "明日レポート提出")
}

func TestRecorder_RecoverWithoutPanic(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := newTestRecorder(fs)

	called := false
	func() {
		defer r.Recover("router", "", func(string) { called = true })
	}()

	assert.False(t, called)
	logs, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestRecorder_KeepsNewestLogs(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := newTestRecorder(fs)

	var paths []string
	for i := 0; i < MaxCrashLogs+3; i++ {
		p, err := r.Write("scheduler", "", fmt.Sprintf("panic %d", i), nil)
		require.NoError(t, err)
		paths = append(paths, p)
	}

	logs, err := r.List()
	require.NoError(t, err)
	assert.Len(t, logs, MaxCrashLogs)
	assert.Equal(t, paths[3:], logs)
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "short", truncateForLog("short", 10))
	long := truncateForLog(strings.Repeat("a", 600), 500)
	assert.True(t, strings.HasSuffix(long, "... [truncated]"))
	assert.Len(t, long, 500+len("... [truncated]"))
}
