package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuietSuppressesInfoButNotError(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Output: &buf, Quiet: true})

	l.Info("should be suppressed")
	assert.Empty(t, buf.String())

	l.Error("should appear", "host", "alpha")
	assert.Contains(t, buf.String(), "should appear")
	assert.True(t, l.IsQuiet())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Output: &buf, Format: FormatJSON})

	l.LogSessionStart("alpha", "u1", "uptime")

	out := buf.String()
	assert.Contains(t, out, `"msg":"session started"`)
	assert.Contains(t, out, `"host":"alpha"`)
}

func TestErrorLevelFiltersInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Output: &buf, Level: LevelError})

	l.LogRunStart(2, 1, 2)
	assert.Empty(t, buf.String())

	l.LogSessionError("beta", errors.New("connection refused"), "connection")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestSessionDoneIncludesExit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Output: &buf})

	l.LogSessionDone("alpha", 30*time.Millisecond, errors.New("Process exited with status 1"))
	assert.Contains(t, buf.String(), "Process exited with status 1")

	buf.Reset()
	l.LogSessionDone("alpha", 30*time.Millisecond, nil)
	assert.NotContains(t, buf.String(), "exit=")
}
