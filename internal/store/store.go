// Package store holds the in-memory state of one list display and the
// transitions the loader and the UI apply to it.
//
// A Store is owned by a single event loop and is not safe for concurrent use.
package store

import (
	"slices"
	"strings"

	"github.com/Makepad-fr/todolist/internal/model"
)

// Phase is the load designation of a ListState.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// ListState is an immutable snapshot. Items is never shared between two
// snapshots, so callers may keep old states around.
type ListState struct {
	Phase        Phase
	Items        []model.Item
	ErrorMessage string // set only in PhaseFailed
}

func (s ListState) Loading() bool { return s.Phase == PhaseLoading }
func (s ListState) Failed() bool  { return s.Phase == PhaseFailed }

// Editable reports whether local add and remove apply. Before a load has
// settled the list must stay empty.
func (s ListState) Editable() bool {
	return s.Phase == PhaseLoaded || s.Phase == PhaseFailed
}

// Listener receives the state before and after an effective transition.
type Listener func(prev, next ListState)

// Store is an observable ListState. Every effective transition bumps the
// version and notifies subscribers in subscription order; no-op
// operations do neither.
type Store struct {
	state     ListState
	version   uint64
	nextID    int
	listeners map[int]Listener
	order     []int
	lastSub   int
}

// New returns a store in PhaseIdle with no items.
func New() *Store {
	return &Store{
		nextID:    1,
		listeners: map[int]Listener{},
	}
}

// State returns the current snapshot.
func (s *Store) State() ListState { return s.state }

// Version increases by one on every effective transition.
func (s *Store) Version() uint64 { return s.version }

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.lastSub++
	id := s.lastSub
	s.listeners[id] = fn
	s.order = append(s.order, id)
	return func() {
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		s.order = slices.DeleteFunc(s.order, func(v int) bool { return v == id })
	}
}

// Start enters PhaseLoading with an empty list and no error.
func (s *Store) Start() ListState {
	return s.commit(ListState{Phase: PhaseLoading})
}

// SetItems enters PhaseLoaded holding a copy of items. Identifiers for
// later additions are seeded above the largest id seen so far.
func (s *Store) SetItems(items []model.Item) ListState {
	for _, it := range items {
		if it.ID >= s.nextID {
			s.nextID = it.ID + 1
		}
	}
	return s.commit(ListState{Phase: PhaseLoaded, Items: slices.Clone(items)})
}

// SetError enters PhaseFailed with an empty list.
func (s *Store) SetError(message string) ListState {
	return s.commit(ListState{Phase: PhaseFailed, ErrorMessage: message})
}

// AddItem appends a new pending item with a fresh identifier. A blank title,
// or a state that is not Editable, leaves the state untouched and reports
// false.
func (s *Store) AddItem(title string) (model.Item, bool) {
	title = strings.TrimSpace(title)
	if title == "" || !s.state.Editable() {
		return model.Item{}, false
	}
	it := model.Item{ID: s.nextID, Title: title}
	s.nextID++

	next := s.state
	next.Items = append(slices.Clone(s.state.Items), it)
	s.commit(next)
	return it, true
}

// RemoveItem deletes the first item with the given id and reports whether
// one was found. It is a no-op unless the state is Editable.
func (s *Store) RemoveItem(id int) bool {
	if !s.state.Editable() {
		return false
	}
	idx := slices.IndexFunc(s.state.Items, func(it model.Item) bool { return it.ID == id })
	if idx < 0 {
		return false
	}
	next := s.state
	next.Items = slices.Delete(slices.Clone(s.state.Items), idx, idx+1)
	s.commit(next)
	return true
}

func (s *Store) commit(next ListState) ListState {
	prev := s.state
	s.state = next
	s.version++
	for _, id := range slices.Clone(s.order) {
		if fn, ok := s.listeners[id]; ok {
			fn(prev, next)
		}
	}
	return next
}
