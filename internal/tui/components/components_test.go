package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestOverlay(t *testing.T) {
	bg := strings.Repeat("..........\n", 4) + ".........."
	out := Overlay(bg, "AB\nCD", 10, 5)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "....AB....", lines[1])
	assert.Equal(t, "....CD....", lines[2])
	assert.Equal(t, "..........", lines[0])
}

func TestOverlay_ShortBackground(t *testing.T) {
	out := Overlay("x", "AB", 6, 3)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "  AB", lines[1])
}

func TestConfirmModal(t *testing.T) {
	tests := []struct {
		name      string
		keys      []tea.KeyMsg
		confirmed bool
		cancelled bool
	}{
		{name: "y confirms", keys: []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("y")}}, confirmed: true},
		{name: "esc cancels", keys: []tea.KeyMsg{{Type: tea.KeyEsc}}, cancelled: true},
		{name: "enter defaults to no", keys: []tea.KeyMsg{{Type: tea.KeyEnter}}, cancelled: true},
		{name: "toggle then enter", keys: []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyEnter}}, confirmed: true},
		{name: "other keys ignored", keys: []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("x")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConfirmModal("Mark the session ready?")
			for _, k := range tt.keys {
				m, _ = m.Update(k)
			}
			assert.Equal(t, tt.confirmed, m.Confirmed())
			assert.Equal(t, tt.cancelled, m.Cancelled())
			assert.Equal(t, tt.confirmed || tt.cancelled, m.Done())
		})
	}
}

func TestConfirmModal_View(t *testing.T) {
	m := NewConfirmModal("Finish this session?")
	out := m.Overlay(strings.Repeat("bg\n", 20), 80, 20)
	assert.Contains(t, out, "Finish this session?")
	assert.Contains(t, out, "Yes")
	assert.Contains(t, out, "No")
}
