package dashboard

import "github.com/charmbracelet/bubbles/key"

// navKeys are the fixed keys of the dashboard. Session actions come from
// the keybindings config.
type navKeys struct {
	Open key.Binding
	Back key.Binding
	Info key.Binding
	Help key.Binding
	Quit key.Binding

	actions []key.Binding
}

func defaultNavKeys(actions []key.Binding) navKeys {
	return navKeys{
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Info:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		actions: actions,
	}
}

func (k navKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Info, k.Help, k.Quit}
}

func (k navKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), k.actions}
}
