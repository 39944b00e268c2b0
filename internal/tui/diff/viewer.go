package diff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

// KeyMap defines the viewer's navigation keys.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	NextFile key.Binding
	PrevFile key.Binding
	Select   key.Binding
	Cancel   key.Binding
}

// DefaultKeyMap returns vim style navigation.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		HalfUp:   key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "half page up")),
		HalfDown: key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "half page down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		NextFile: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next file")),
		PrevFile: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev file")),
		Select:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "select lines")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
	}
}

// Viewer displays a Document with a line cursor and an optional visual
// selection.
type Viewer struct {
	keys KeyMap
	doc  Document

	cursor    int
	offset    int
	anchor    int
	selecting bool

	width  int
	height int

	marks map[string][]review.LineRange
}

func NewViewer() Viewer {
	return Viewer{keys: DefaultKeyMap(), height: 10}
}

// SetDocument replaces the content, keeping the cursor on the same row
// index when it still exists.
func (v *Viewer) SetDocument(doc Document) {
	v.doc = doc
	v.selecting = false
	v.cursor = min(v.cursor, max(len(doc.Rows)-1, 0))
	if len(doc.Rows) > 0 && !doc.Rows[v.cursor].Kind.IsCode() {
		v.cursor = v.nearestCode(v.cursor)
	}
	v.clampOffset()
}

func (v Viewer) Document() Document { return v.doc }

func (v *Viewer) SetSize(width, height int) {
	v.width = width
	v.height = max(height, 1)
	v.clampOffset()
}

// SetComments highlights the lines existing comments cover.
func (v *Viewer) SetComments(comments []review.Comment) {
	v.marks = make(map[string][]review.LineRange, len(comments))
	for _, c := range comments {
		v.marks[c.File] = append(v.marks[c.File], c.Lines)
	}
}

func (v Viewer) Keys() KeyMap { return v.keys }

// Selecting reports whether visual selection is active.
func (v Viewer) Selecting() bool { return v.selecting }

// ClearSelection leaves visual mode.
func (v *Viewer) ClearSelection() { v.selecting = false }

// Cursor returns the row under the cursor.
func (v Viewer) Cursor() (Row, bool) {
	if v.cursor < 0 || v.cursor >= len(v.doc.Rows) {
		return Row{}, false
	}
	return v.doc.Rows[v.cursor], true
}

// Selection returns the file and line range a comment would target: the
// selected rows in visual mode, otherwise the cursor row. Rows in other
// files than the cursor's are ignored.
func (v Viewer) Selection() (string, review.LineRange, bool) {
	cur, ok := v.Cursor()
	if !ok || !cur.Kind.IsCode() {
		return "", review.LineRange{}, false
	}

	lo, hi := v.cursor, v.cursor
	if v.selecting {
		lo, hi = min(v.anchor, v.cursor), max(v.anchor, v.cursor)
	}

	first, last := 0, 0
	for _, r := range v.doc.Rows[lo : hi+1] {
		if !r.Kind.IsCode() || r.File != cur.File {
			continue
		}
		n := r.Line()
		if first == 0 || n < first {
			first = n
		}
		last = max(last, n)
	}
	if first == 0 {
		return "", review.LineRange{}, false
	}
	return cur.File, review.Span(first, last), true
}

// Update handles navigation keys.
func (v Viewer) Update(msg tea.Msg) (Viewer, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(v.doc.Rows) == 0 {
		return v, nil
	}

	half := max(v.height/2, 1)

	switch {
	case key.Matches(keyMsg, v.keys.Down):
		v.cursor = v.nextCode(v.cursor, 1)
	case key.Matches(keyMsg, v.keys.Up):
		v.cursor = v.nextCode(v.cursor, -1)
	case key.Matches(keyMsg, v.keys.HalfDown):
		v.cursor = v.nearestCode(min(v.cursor+half, len(v.doc.Rows)-1))
	case key.Matches(keyMsg, v.keys.HalfUp):
		v.cursor = v.nearestCode(max(v.cursor-half, 0))
	case key.Matches(keyMsg, v.keys.Top):
		v.cursor = v.nearestCode(0)
	case key.Matches(keyMsg, v.keys.Bottom):
		v.cursor = v.nextCode(len(v.doc.Rows), -1)
	case key.Matches(keyMsg, v.keys.NextFile):
		v.cursor = v.jumpFile(1)
	case key.Matches(keyMsg, v.keys.PrevFile):
		v.cursor = v.jumpFile(-1)
	case key.Matches(keyMsg, v.keys.Select):
		v.selecting = !v.selecting
		v.anchor = v.cursor
	case key.Matches(keyMsg, v.keys.Cancel):
		v.selecting = false
	}

	v.clampOffset()
	return v, nil
}

// nextCode returns the first code row after from in direction dir, or the
// current cursor when there is none.
func (v Viewer) nextCode(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(v.doc.Rows); i += dir {
		if v.doc.Rows[i].Kind.IsCode() {
			return i
		}
	}
	if v.cursor < len(v.doc.Rows) && v.doc.Rows[v.cursor].Kind.IsCode() {
		return v.cursor
	}
	return 0
}

// nearestCode returns i when it is a code row, else the closest code row
// below it, else above it.
func (v Viewer) nearestCode(i int) int {
	if v.doc.Rows[i].Kind.IsCode() {
		return i
	}
	for j := i + 1; j < len(v.doc.Rows); j++ {
		if v.doc.Rows[j].Kind.IsCode() {
			return j
		}
	}
	return v.nextCode(i, -1)
}

func (v Viewer) jumpFile(dir int) int {
	for i := v.cursor + dir; i >= 0 && i < len(v.doc.Rows); i += dir {
		if v.doc.Rows[i].Kind == RowFile {
			if dir < 0 && v.doc.Rows[v.cursor].File == v.doc.Rows[i].File {
				continue
			}
			return v.nextCode(i, 1)
		}
	}
	return v.cursor
}

func (v *Viewer) clampOffset() {
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+v.height {
		v.offset = v.cursor - v.height + 1
	}
	v.offset = max(min(v.offset, len(v.doc.Rows)-v.height), 0)
}

func (v Viewer) marked(r Row) bool {
	for _, lr := range v.marks[r.File] {
		if lr.Contains(r.Line()) {
			return true
		}
	}
	return false
}

func (v Viewer) inSelection(i int) bool {
	if !v.selecting {
		return false
	}
	return i >= min(v.anchor, v.cursor) && i <= max(v.anchor, v.cursor)
}

// View renders the visible rows.
func (v Viewer) View() string {
	if len(v.doc.Rows) == 0 {
		return styles.MutedStyle.Render("No diff available")
	}

	end := min(v.offset+v.height, len(v.doc.Rows))
	lines := make([]string, 0, end-v.offset)
	for i := v.offset; i < end; i++ {
		lines = append(lines, v.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

func (v Viewer) renderRow(i int) string {
	r := v.doc.Rows[i]

	switch r.Kind {
	case RowFile:
		return styles.DiffFileStyle.Render(styles.FileIcon(r.File) + v.fileTitle(r.File))
	case RowHunk:
		return styles.DiffHunkStyle.Render(r.Text)
	}

	num := ""
	if n := r.Line(); n > 0 {
		num = strconv.Itoa(n)
	}

	gutter := " "
	if i == v.cursor {
		gutter = styles.TitleStyle.Render(styles.IconCursor)
	}

	var prefix string
	style := styles.DiffContextStyle
	switch r.Kind {
	case RowAdd:
		prefix, style = "+", styles.DiffAddStyle
	case RowDelete:
		prefix, style = "-", styles.DiffDeleteStyle
	default:
		prefix = " "
	}

	text := prefix + r.Text
	if v.width > 0 {
		text = truncate.StringWithTail(text, uint(max(v.width-8, 1)), "…")
	}

	switch {
	case v.inSelection(i) || (i == v.cursor && !v.selecting):
		text = styles.CursorLineStyle.Inherit(style).Render(text)
	case v.marked(r):
		text = styles.MarkedLineStyle.Render(text)
	default:
		text = style.Render(text)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, gutter, styles.LineNumberStyle.Render(num), text)
}

func (v Viewer) fileTitle(name string) string {
	for _, f := range v.doc.Files {
		if f.Name == name {
			if f.Additions == 0 && f.Deletions == 0 {
				return name
			}
			return fmt.Sprintf("%s (+%d -%d)", name, f.Additions, f.Deletions)
		}
	}
	return name
}
