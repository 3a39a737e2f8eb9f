package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func todoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Todo 1","completed":false},{"id":2,"title":"Todo 2","completed":true}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunListWithURLFlag(t *testing.T) {
	srv := todoServer(t)
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--url", srv.URL, "--theme", "mono", "ls"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Todo 1")
	assert.Contains(t, out.String(), "[x]")
}

func TestRunListUsesConfigFile(t *testing.T) {
	srv := todoServer(t)
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte("[source]\nurl = \""+srv.URL+"\"\n"), 0o644))
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--config", p, "ls"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Todo 2")
}

func TestRunFlagsOverrideEnv(t *testing.T) {
	srv := todoServer(t)
	t.Setenv("TODOLIST_URL", "http://127.0.0.1:1/unreachable")
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--url", srv.URL, "ls"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Todo 1")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--url", "ftp://example.com", "ls"}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "invalid source.url scheme")
}

func TestRunUnknownFlag(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--nope"}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "nope")
}

func TestRunHelpFlag(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--help"}, &out, &errOut)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRunHelpSkipsConfigValidation(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--theme", "bogus", "help"}, &out, &errOut)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Usage:")
	assert.Empty(t, errOut.String())
}
