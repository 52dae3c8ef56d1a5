package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding

	// Page navigation
	RoomsPage   key.Binding
	NewRoomPage key.Binding

	// Context-specific
	Enter    key.Binding
	Tab      key.Binding
	Up       key.Binding
	Down     key.Binding
	NextRoom key.Binding
	PrevRoom key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),

	RoomsPage: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "rooms"),
	),
	NewRoomPage: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "new room"),
	),

	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "next field"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
	NextRoom: key.NewBinding(
		key.WithKeys("ctrl+down", "pgdown"),
		key.WithHelp("pgdn", "next room"),
	),
	PrevRoom: key.NewBinding(
		key.WithKeys("ctrl+up", "pgup"),
		key.WithHelp("pgup", "previous room"),
	),
}
