package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	next       key.Binding
	prev       key.Binding
	submit     key.Binding
	press      key.Binding
	remove     key.Binding
	up         key.Binding
	down       key.Binding
	filter     key.Binding
	blur       key.Binding
	remount    key.Binding
	toggleHelp key.Binding
	quit       key.Binding
	forceQuit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next control")),
		prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous control")),
		submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add todo")),
		press:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "press")),
		remove:     key.NewBinding(key.WithKeys("enter", "d", "x", "delete"), key.WithHelp("enter/d/x", "remove")),
		up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		blur:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "to list")),
		remount:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		forceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.submit, k.remove, k.toggleHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.submit, k.press, k.blur},
		{k.up, k.down, k.remove, k.filter},
		{k.remount, k.toggleHelp, k.quit, k.forceQuit},
	}
}
