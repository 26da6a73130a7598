package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	View     key.Binding
	Search   key.Binding
	Priority key.Binding
	Assignee key.Binding
	Add      key.Binding
	Edit     key.Binding
	Done     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Column   key.Binding
	Theme    key.Binding
	Help     key.Binding
	Quit     key.Binding
	Escape   key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous column")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	View:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "board/list/calendar")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Priority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "filter priority")),
	Assignee: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "filter assignee")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
	Done:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
	Next:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move to next column")),
	Prev:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move to previous column")),
	Column:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "add column")),
	Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel/clear filters")),
}

// helpBindings lists the bindings shown on the help screen, in order
func helpBindings() []key.Binding {
	return []key.Binding{
		keys.Up, keys.Down, keys.Left, keys.Right,
		keys.View, keys.Search, keys.Priority, keys.Assignee, keys.Escape,
		keys.Add, keys.Edit, keys.Done, keys.Next, keys.Prev,
		keys.Column, keys.Theme, keys.Help, keys.Quit,
	}
}
