package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todolist/internal/loader"
	"github.com/Makepad-fr/todolist/internal/model"
	"github.com/Makepad-fr/todolist/internal/store"
)

// Fetcher loads the collection once per mount. Both the HTTP loader and the
// JSON file loader satisfy it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Item, error)
}

const (
	emptyTitleHint = "Title cannot be empty"
	loadingHint    = "Wait for todos to load"
)

type focus int

const (
	focusInput focus = iota
	focusAdd
	focusRows
	focusCount
)

// mount is one display session. Its pointer identifies which fetch a
// result belongs to; a result for a mount that is no longer current, or
// that was disposed, is dropped.
type mount struct {
	id          int
	ctx         context.Context
	cancel      context.CancelFunc
	alive       bool
	unsubscribe func()
}

// loadedMsg carries a fetch result back into the event loop.
type loadedMsg struct {
	mount *mount
	items []model.Item
	err   error
}

// row adapts model.Item to bubbles/list.Item
type row struct {
	item model.Item
}

func (r row) FilterValue() string { return r.item.Title }

// rowDelegate renders one item per line followed by its Remove control.
type rowDelegate struct {
	focused bool
}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	r, ok := li.(row)
	if !ok {
		return
	}
	t := Current()
	box := t.Muted.Render(t.BoxUnchecked)
	title := r.item.Title
	if r.item.Completed {
		box = t.Success.Render(t.BoxChecked)
		title = t.Done.Render(title)
	}

	prefix := "  "
	remove := t.Button.Render("[Remove]")
	if d.focused && index == m.Index() {
		prefix = t.Selected.Render(">") + " "
		remove = t.ButtonActive.Render("[Remove]")
	}
	fmt.Fprintf(w, "%s%s %s  %s", prefix, box, title, remove)
}

// Model is the ItemList component: it fetches the collection on mount,
// renders it with an add form, and applies local add/remove to its Store.
type Model struct {
	fetcher Fetcher
	logger  *log.Logger

	store  *store.Store
	mount  *mount
	mounts int
	synced uint64

	input  textinput.Model
	rows   list.Model
	help   help.Model
	keys   keyMap
	focus  focus
	hint   string
	width  int
	height int
}

type Option func(*Model)

func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithSize sets the initial size used until the first tea.WindowSizeMsg.
func WithSize(width, height int) Option {
	return func(m *Model) {
		if width > 0 && height > 0 {
			m.width, m.height = width, height
		}
	}
}

// New builds the component and mounts it: the store is already Loading and
// Init returns the fetch.
func New(f Fetcher, opts ...Option) Model {
	l := list.New(nil, rowDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("todo", "todos")
	l.Styles.HelpStyle = Current().Muted
	l.Styles.PaginationStyle = Current().Muted
	l.FilterInput.Prompt = "/ "

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter todo"
	ti.CharLimit = 200

	m := Model{
		fetcher: f,
		logger:  log.New(io.Discard),
		input:   ti,
		rows:    l,
		help:    help.New(),
		keys:    newKeyMap(),
		width:   80,
		height:  24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.setFocus(focusInput)
	m.layout()
	m.remount()
	return m
}

// Init starts the fetch for the current mount.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(m.mount), textinput.Blink)
}

// State returns the current list state.
func (m Model) State() store.ListState { return m.store.State() }

// Dispose ends the current mount: the in-flight request is canceled and a
// late result will not touch the store.
func (m Model) Dispose() {
	if m.mount == nil || !m.mount.alive {
		return
	}
	m.mount.alive = false
	m.mount.cancel()
	m.mount.unsubscribe()
	m.logger.Debug("list unmounted", "mount", m.mount.id)
}

// remount discards the current state and starts a fresh session.
func (m *Model) remount() {
	m.Dispose()
	m.mounts++
	s := store.New()
	ctx, cancel := context.WithCancel(context.Background())
	mt := &mount{id: m.mounts, ctx: ctx, cancel: cancel, alive: true}
	logger := m.logger
	mt.unsubscribe = s.Subscribe(func(prev, next store.ListState) {
		logger.Debug("list state changed",
			"mount", mt.id,
			"phase", next.Phase.String(),
			"items", len(next.Items),
			"prev_items", len(prev.Items),
		)
	})
	m.store, m.mount = s, mt
	m.synced = s.Version()
	s.Start()
	m.hint = ""
	m.input.SetValue("")
	m.rows.ResetFilter()
	_ = m.sync()
	m.logger.Debug("list mounted", "mount", mt.id)
}

func (m Model) load(mt *mount) tea.Cmd {
	f := m.fetcher
	return func() tea.Msg {
		items, err := f.Fetch(mt.ctx)
		return loadedMsg{mount: mt, items: items, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case loadedMsg:
		return m.applyLoad(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var inputCmd, rowsCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.rows, rowsCmd = m.rows.Update(msg)
	return m, tea.Batch(inputCmd, rowsCmd)
}

func (m Model) applyLoad(msg loadedMsg) Model {
	if msg.mount != m.mount || !msg.mount.alive {
		m.logger.Debug("dropping stale fetch result", "mount", msg.mount.id)
		return m
	}
	if !m.store.State().Loading() {
		return m
	}
	if msg.err != nil {
		text := errorText(msg.err)
		m.logger.Warn("todos load failed", "mount", m.mount.id, "err", text)
		m.store.SetError(text)
	} else {
		m.logger.Info("todos loaded", "mount", m.mount.id, "count", len(msg.items))
		m.store.SetItems(msg.items)
	}
	if m.hint == loadingHint {
		m.hint = ""
	}
	_ = m.sync()
	return m
}

func errorText(err error) string {
	var le *loader.LoadError
	if errors.As(err, &le) {
		return le.Message
	}
	return err.Error()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.forceQuit) {
		return m.quit()
	}
	// An active row filter owns the keyboard until it is applied or dropped.
	if m.focus == focusRows && m.rows.SettingFilter() {
		var cmd tea.Cmd
		m.rows, cmd = m.rows.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.next):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.remount):
		m.remount()
		return m, m.load(m.mount)
	}

	switch m.focus {
	case focusInput:
		switch {
		case key.Matches(msg, m.keys.submit):
			return m, m.add()
		case key.Matches(msg, m.keys.blur):
			return m, m.setFocus(focusRows)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.hint != "" && strings.TrimSpace(m.input.Value()) != "" {
			m.hint = ""
		}
		return m, cmd

	case focusAdd:
		switch {
		case key.Matches(msg, m.keys.press):
			return m, m.add()
		case key.Matches(msg, m.keys.toggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
		case key.Matches(msg, m.keys.quit):
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.remove):
		return m, m.remove()
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	}
	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Dispose()
	return m, tea.Quit
}

// add is the Add Todo action: append the pending title, then clear it.
// While the load is pending the title stays in the input.
func (m *Model) add() tea.Cmd {
	if !m.store.State().Editable() {
		m.hint = loadingHint
		return nil
	}
	it, ok := m.store.AddItem(m.input.Value())
	if !ok {
		m.hint = emptyTitleHint
		return nil
	}
	m.logger.Debug("todo added", "id", it.ID, "title", it.Title)
	m.hint = ""
	m.input.SetValue("")
	return m.sync()
}

// remove is the Remove action of the selected row.
func (m *Model) remove() tea.Cmd {
	r, ok := m.rows.SelectedItem().(row)
	if !ok {
		return nil
	}
	if !m.store.RemoveItem(r.item.ID) {
		return nil
	}
	m.logger.Debug("todo removed", "id", r.item.ID)
	return m.sync()
}

// sync rebuilds the list rows when the store moved past the version they
// were built from.
func (m *Model) sync() tea.Cmd {
	if m.synced == m.store.Version() {
		return nil
	}
	m.synced = m.store.Version()

	st := m.store.State()
	items := make([]list.Item, 0, len(st.Items))
	for _, it := range st.Items {
		items = append(items, row{item: it})
	}
	idx := m.rows.Index()
	cmd := m.rows.SetItems(items)
	if n := len(m.rows.VisibleItems()); n > 0 && idx >= n {
		m.rows.Select(n - 1)
	}
	return cmd
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.rows.SetDelegate(rowDelegate{focused: f == focusRows})
	if f == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *Model) layout() {
	m.help.Width = m.width - 4
	// header, progress, banner, input row, hint, help and the panel border
	reserved := 9
	if m.help.ShowAll {
		reserved += 3
	}
	h := m.height - reserved
	if h < 5 {
		h = 5
	}
	m.rows.SetSize(m.width-4, h)
}

func (m Model) View() string {
	t := Current()
	st := m.store.State()

	lines := []string{
		Header(st.Items),
		t.Muted.Render(ProgressBar(doneCount(st.Items), len(st.Items), 28)),
	}
	if st.Failed() {
		lines = append(lines, t.Error.Render("Error: "+st.ErrorMessage))
	}

	addBtn := t.Button.Render("[Add Todo]")
	if m.focus == focusAdd {
		addBtn = t.ButtonActive.Render("[Add Todo]")
	}
	lines = append(lines, m.input.View()+"  "+addBtn)
	if m.hint != "" {
		lines = append(lines, t.Error.Render(m.hint))
	}
	lines = append(lines, "")

	if st.Loading() {
		lines = append(lines, t.Muted.Render("Loading todos..."))
	} else {
		lines = append(lines, m.rows.View())
	}
	lines = append(lines, "", m.help.View(m.keys))
	return Panel(strings.Join(lines, "\n"))
}

func doneCount(items []model.Item) int {
	done, _ := model.Stats(items)
	return done
}
