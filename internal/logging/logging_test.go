package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "count", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "todolist")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, "loud")
	assert.Error(t, err)
}

func TestOpenWritesLogfmtFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "todolist.log")
	l, closeFn, err := Open(p, "debug")
	require.NoError(t, err)

	l.Debug("fetching todos", "url", "http://x")
	require.NoError(t, closeFn())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `msg="fetching todos"`)
	assert.Contains(t, string(b), "url=http://x")
}

func TestOpenWithoutPathDiscards(t *testing.T) {
	l, closeFn, err := Open("", "info")
	require.NoError(t, err)
	l.Info("nowhere")
	assert.NoError(t, closeFn())
}
