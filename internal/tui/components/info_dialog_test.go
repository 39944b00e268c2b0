package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoDialog_RendersSectionsItemsFooter(t *testing.T) {
	d := NewInfoDialog(
		"Session 7",
		[]InfoSection{
			{
				Title: "Session",
				Items: []InfoItem{
					{Label: "Candidate", Value: "Alex"},
					{Label: "Token", Value: "abc1234"},
				},
			},
			{
				Title: "Checks",
				Items: []InfoItem{
					{Label: "api", Value: "reachable", Status: InfoStatusPass},
					{Label: "tmux", Value: "not inside tmux", Status: InfoStatusWarn},
					{Label: "store", Value: "locked", Status: InfoStatusFail},
				},
			},
		},
		"footer summary",
		"[j/k] scroll  [esc] close",
		120,
		40,
	)

	out := d.Overlay("bg", 120, 40)
	assert.Contains(t, out, "Session 7")
	assert.Contains(t, out, "Session")
	assert.Contains(t, out, "Candidate")
	assert.Contains(t, out, "abc1234")
	assert.Contains(t, out, "footer summary")
	assert.Contains(t, out, "✔")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "✘")
}

func TestInfoDialog_ScrollAndEmptySections(t *testing.T) {
	items := make([]InfoItem, 0, 50)
	for i := 0; i < 50; i++ {
		items = append(items, InfoItem{Label: "item", Value: "value"})
	}

	d := NewInfoDialog(
		"Doctor",
		[]InfoSection{
			{Title: "Many", Items: items},
			{Title: "Empty", Items: nil},
		},
		"",
		"help",
		70,
		18,
	)

	before := d.Overlay("bg", 70, 18)
	d.ScrollDown()
	after := d.Overlay("bg", 70, 18)

	assert.Contains(t, before, "Doctor")
	assert.Contains(t, after, "Doctor")
	assert.NotEqual(t, before, after)
}
