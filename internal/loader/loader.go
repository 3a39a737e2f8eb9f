// Package loader fetches the todo collection from the remote endpoint.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todolist/internal/model"
)

// DefaultURL is the collection endpoint used when nothing else is configured.
const DefaultURL = "https://jsonplaceholder.typicode.com/todos"

// Doer is the HTTP capability the Loader needs. *http.Client satisfies it;
// tests pass a fake.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LoadError is the single failure kind of a fetch. Message is what the UI
// shows after the "Error: " prefix.
type LoadError struct {
	Message    string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) Unwrap() error { return e.Err }

// Loader issues one GET per Fetch. There is no retry and no timeout;
// the caller's context is the only way to abandon a request.
type Loader struct {
	URL    string
	Token  string
	Client Doer
	Logger *log.Logger
}

// New returns a Loader for url using client, or http.DefaultClient when
// client is nil.
func New(url string, client Doer) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{URL: url, Client: client}
}

// Fetch requests the collection and decodes it. Every failure comes back as
// a *LoadError.
func (l *Loader) Fetch(ctx context.Context) ([]model.Item, error) {
	logger := l.logger()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, &LoadError{Message: err.Error(), Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if tok := stripBearer(strings.TrimSpace(l.Token)); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	logger.Debug("fetching todos", "url", l.URL)
	resp, err := l.Client.Do(req)
	if err != nil {
		logger.Warn("fetch failed", "url", l.URL, "err", err)
		return nil, &LoadError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Warn("fetch rejected", "url", l.URL, "status", resp.StatusCode)
		return nil, &LoadError{
			Message:    "Failed to fetch todos: " + statusText(resp),
			StatusCode: resp.StatusCode,
		}
	}

	var items []model.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		logger.Warn("decode failed", "url", l.URL, "err", err)
		return nil, &LoadError{
			Message:    "Failed to decode todos: " + err.Error(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("json decode: %w", err),
		}
	}
	if items == nil {
		items = []model.Item{}
	}
	logger.Info("todos fetched", "url", l.URL, "count", len(items))
	return items, nil
}

func (l *Loader) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.New(io.Discard)
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
