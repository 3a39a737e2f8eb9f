package loader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/todolist/internal/model"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

const threeTodos = `[
	{"id":1,"title":"Todo 1","completed":false},
	{"id":2,"title":"Todo 2","completed":false},
	{"id":3,"title":"Todo 3","completed":false}
]`

func TestFetchDecodesItems(t *testing.T) {
	var gotURL, gotMethod string
	l := New(DefaultURL, doerFunc(func(req *http.Request) (*http.Response, error) {
		gotURL, gotMethod = req.URL.String(), req.Method
		return jsonResponse(http.StatusOK, threeTodos), nil
	}))

	items, err := l.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, gotURL)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, []model.Item{
		{ID: 1, Title: "Todo 1"},
		{ID: 2, Title: "Todo 2"},
		{ID: 3, Title: "Todo 3"},
	}, items)
}

func TestFetchRejectionKeepsMessage(t *testing.T) {
	cause := errors.New("Failed to fetch todos")
	l := New(DefaultURL, doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, cause
	}))

	items, err := l.Fetch(context.Background())
	assert.Nil(t, items)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "Failed to fetch todos", le.Message)
	assert.Equal(t, "Failed to fetch todos", err.Error())
	assert.Zero(t, le.StatusCode)
	assert.ErrorIs(t, err, cause)
}

func TestFetchNonOKStatus(t *testing.T) {
	l := New(DefaultURL, doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"error":"nope"}`), nil
	}))

	_, err := l.Fetch(context.Background())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusInternalServerError, le.StatusCode)
	assert.Equal(t, "Failed to fetch todos: Internal Server Error", le.Message)
}

func TestFetchMalformedBody(t *testing.T) {
	l := New(DefaultURL, doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"id":1}`), nil
	}))

	_, err := l.Fetch(context.Background())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "Failed to decode todos")
	assert.Equal(t, http.StatusOK, le.StatusCode)
}

func TestFetchNullBodyIsEmptyList(t *testing.T) {
	l := New(DefaultURL, doerFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `null`), nil
	}))

	items, err := l.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFetchSendsBearerToken(t *testing.T) {
	for _, tok := range []string{"abc", "Bearer abc", "  bearer abc  "} {
		var auth string
		l := New(DefaultURL, doerFunc(func(req *http.Request) (*http.Response, error) {
			auth = req.Header.Get("Authorization")
			return jsonResponse(http.StatusOK, `[]`), nil
		}))
		l.Token = tok

		_, err := l.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", auth, "token %q", tok)
	}
}

func TestFetchWithoutTokenSendsNoAuthorization(t *testing.T) {
	var auth []string
	l := New(DefaultURL, doerFunc(func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Values("Authorization")
		return jsonResponse(http.StatusOK, `[]`), nil
	}))

	_, err := l.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestFetchBadURL(t *testing.T) {
	l := New("://nope", doerFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("client must not be called")
		return nil, nil
	}))

	_, err := l.Fetch(context.Background())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.NotEmpty(t, le.Message)
}

func TestFetchAgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/todos" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, threeTodos)
	}))
	t.Cleanup(srv.Close)

	items, err := New(srv.URL+"/todos", srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = New(srv.URL+"/missing", srv.Client()).Fetch(context.Background())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusNotFound, le.StatusCode)
	assert.Equal(t, "Failed to fetch todos: 404 Not Found", le.Message)
}

func TestFetchHonorsCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, srv.Client()).Fetch(ctx)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDefaultsToHTTPClient(t *testing.T) {
	l := New(DefaultURL, nil)
	assert.Same(t, http.DefaultClient, l.Client)
}
