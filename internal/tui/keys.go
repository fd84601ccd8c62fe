package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Reload key.Binding
	Submit key.Binding
	Cancel key.Binding
	Next   key.Binding
	Prev   key.Binding
	Table  key.Binding
	Help   key.Binding
	Quit   key.Binding
	Abort  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add plan")),
		Edit:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Table:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "back to table")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Abort:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// contextHelp adapts the bindings relevant to the focused area for bubbles/help.
type contextHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h contextHelp) ShortHelp() []key.Binding  { return h.short }
func (h contextHelp) FullHelp() [][]key.Binding { return h.full }

func (k keyMap) forFocus(f focusArea) contextHelp {
	switch f {
	case focusAdd, focusEdit:
		return contextHelp{
			short: []key.Binding{k.Submit, k.Cancel, k.Next, k.Table},
			full: [][]key.Binding{
				{k.Submit, k.Cancel},
				{k.Next, k.Prev},
				{k.Table, k.Abort},
			},
		}
	default:
		return contextHelp{
			short: []key.Binding{k.Add, k.Edit, k.Delete, k.Reload, k.Help, k.Quit},
			full: [][]key.Binding{
				{k.Up, k.Down},
				{k.Add, k.Edit, k.Delete},
				{k.Reload, k.Cancel},
				{k.Help, k.Quit},
			},
		}
	}
}
