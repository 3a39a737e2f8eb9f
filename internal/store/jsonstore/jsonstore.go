package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/todolist/internal/loader"
	"github.com/Makepad-fr/todolist/internal/model"
)

// JSON-file source for the list. Same shape as the remote collection;
// read-only, nothing is ever written back.

const DefaultFileName = "todos.json"

// Loader reads the collection from Path on every Fetch.
type Loader struct {
	Path string
}

// New resolves path against the working directory. An empty path means
// DefaultFileName.
func New(path string) (*Loader, error) {
	if path == "" {
		path = DefaultFileName
	}
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, path)
	}
	return &Loader{Path: path}, nil
}

// Fetch mirrors loader.Loader: every failure is a *loader.LoadError.
func (l *Loader) Fetch(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, &loader.LoadError{Message: err.Error(), Err: err}
	}
	b, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, &loader.LoadError{
			Message: "Failed to read todos: " + err.Error(),
			Err:     fmt.Errorf("read file: %w", err),
		}
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, &loader.LoadError{
			Message: "Failed to decode todos: " + err.Error(),
			Err:     fmt.Errorf("json unmarshal: %w", err),
		}
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
