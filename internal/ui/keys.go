package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Spin      key.Binding
	StartVote key.Binding
	StopVote  key.Binding
	ClearVote key.Binding
	Add       key.Binding
	Rename    key.Binding
	SetCount  key.Binding
	Remove    key.Binding
	TopK      key.Binding
	Export    key.Binding
	Import    key.Binding
	Reconnect key.Binding
	Up        key.Binding
	Down      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Spin, k.StartVote, k.StopVote, k.Add, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Spin, k.StartVote, k.StopVote, k.ClearVote},
		{k.Add, k.Rename, k.SetCount, k.Remove},
		{k.TopK, k.Export, k.Import, k.Reconnect},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Spin: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "spin"),
	),
	StartVote: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "start vote"),
	),
	StopVote: key.NewBinding(
		key.WithKeys("V"),
		key.WithHelp("V", "stop vote"),
	),
	ClearVote: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear votes"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add/update"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	SetCount: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "set count"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove"),
	),
	TopK: key.NewBinding(
		key.WithKeys("k"),
		key.WithHelp("k", "top-k"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Import: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "import"),
	),
	Reconnect: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reconnect"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("up", "row up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("down", "row down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}
