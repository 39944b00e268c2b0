package candidate

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/hay-kot/reviewdesk/internal/tui/diff"
)

type keyMap struct {
	Comment       key.Binding
	Ready         key.Binding
	Comments      key.Binding
	OpenPR        key.Binding
	CycleType     key.Binding
	CycleSeverity key.Binding
	Quit          key.Binding

	diff diff.KeyMap
}

func defaultKeys() keyMap {
	return keyMap{
		Comment:       key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "comment")),
		Ready:         key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "ready")),
		Comments:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "comments")),
		OpenPR:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open pr")),
		CycleType:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "type")),
		CycleSeverity: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "severity")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		diff:          diff.DefaultKeyMap(),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.diff.Down, k.diff.Select, k.Comment, k.Comments, k.Ready, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.diff.Up, k.diff.Down, k.diff.HalfUp, k.diff.HalfDown, k.diff.Top, k.diff.Bottom},
		{k.diff.NextFile, k.diff.PrevFile, k.diff.Select, k.diff.Cancel},
		{k.Comment, k.Comments, k.Ready, k.OpenPR, k.Quit},
	}
}
