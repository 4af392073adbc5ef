package viewer

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the viewer key bindings. Moving the cursor over a row
// is the pointer-enter analog; esc is pointer-leave.
type KeyMap struct {
	Down           key.Binding
	Up             key.Binding
	ClearHover     key.Binding
	Select         key.Binding
	SortConfidence key.Binding
	SortName       key.Binding
	ViewToggle     key.Binding
	Open           key.Binding
	Snapshot       key.Binding
	Quit           key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next detection"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous detection"),
		),
		ClearHover: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear hover"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select/deselect"),
		),
		SortConfidence: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "sort by confidence"),
		),
		SortName: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort by name"),
		),
		ViewToggle: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "list/grid"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open photo"),
		),
		Snapshot: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save annotated copy"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
