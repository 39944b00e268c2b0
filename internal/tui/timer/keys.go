package timer

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Ready key.Binding
	Quit  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Ready: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "mark ready")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "close")),
	}
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Ready, k.Quit} }

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
