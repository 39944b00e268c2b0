package diff

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/pkg/tuitest"
)

const sample = `diff --git a/main.py b/main.py
index 83db48f..bf269f4 100644
--- a/main.py
+++ b/main.py
@@ -1,4 +1,6 @@
 def total(items):
-    return sum(items)
+    result = 0
+    for i in range(len(items) + 1):
+        result += items[i]
+    return result
 
 print(total([1, 2, 3]))
diff --git a/poetry.lock b/poetry.lock
index 1111111..2222222 100644
--- a/poetry.lock
+++ b/poetry.lock
@@ -1 +1 @@
-old
+new
`

func TestParse(t *testing.T) {
	doc, err := Parse(sample, Options{Hide: []string{"**/*.lock", "*.lock"}})
	require.NoError(t, err)

	require.Len(t, doc.Files, 1)
	assert.Equal(t, FileStat{Name: "main.py", Additions: 4, Deletions: 1}, doc.Files[0])
	assert.Equal(t, []string{"poetry.lock"}, doc.Hidden)

	require.Len(t, doc.Rows, 10)

	tests := []struct {
		idx      int
		kind     RowKind
		old, new int
		text     string
	}{
		{0, RowFile, 0, 0, "main.py"},
		{2, RowContext, 1, 1, "def total(items):"},
		{3, RowDelete, 2, 0, "    return sum(items)"},
		{4, RowAdd, 0, 2, "    result = 0"},
		{7, RowAdd, 0, 5, "    return result"},
		{8, RowContext, 3, 6, ""},
		{9, RowContext, 4, 7, "print(total([1, 2, 3]))"},
	}
	for _, tt := range tests {
		r := doc.Rows[tt.idx]
		assert.Equal(t, tt.kind, r.Kind, "row %d", tt.idx)
		assert.Equal(t, tt.old, r.OldLine, "row %d", tt.idx)
		assert.Equal(t, tt.new, r.NewLine, "row %d", tt.idx)
		assert.Equal(t, tt.text, r.Text, "row %d", tt.idx)
	}
	assert.Equal(t, RowHunk, doc.Rows[1].Kind)
	assert.Equal(t, "@@ -1,4 +1,6 @@", doc.Rows[1].Text)
}

func TestParse_PlainText(t *testing.T) {
	doc, err := Parse("# No diff available\nx = 1\n", Options{FallbackFile: "main.py"})
	require.NoError(t, err)

	require.Len(t, doc.Rows, 3)
	assert.Equal(t, RowFile, doc.Rows[0].Kind)
	assert.Equal(t, "main.py", doc.Rows[2].File)
	assert.Equal(t, 2, doc.Rows[2].Line())
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse("  \n", Options{})
	require.NoError(t, err)
	assert.Empty(t, doc.Rows)
}

func newSampleViewer(t *testing.T) Viewer {
	t.Helper()
	doc, err := Parse(sample, Options{})
	require.NoError(t, err)

	v := NewViewer()
	v.SetSize(80, 20)
	v.SetDocument(doc)
	return v
}

func press(v Viewer, keys ...string) Viewer {
	for _, k := range keys {
		v, _ = v.Update(tuitest.KeyRunes(k))
	}
	return v
}

func TestViewer_CursorStartsOnCode(t *testing.T) {
	v := newSampleViewer(t)

	row, ok := v.Cursor()
	require.True(t, ok)
	assert.Equal(t, 1, row.NewLine)

	file, lines, ok := v.Selection()
	require.True(t, ok)
	assert.Equal(t, "main.py", file)
	assert.Equal(t, review.LineRange{Start: 1, End: 1}, lines)
}

func TestViewer_VisualSelection(t *testing.T) {
	v := newSampleViewer(t)

	v = press(v, "j", "j", "v", "j", "j")
	assert.True(t, v.Selecting())

	file, lines, ok := v.Selection()
	require.True(t, ok)
	assert.Equal(t, "main.py", file)
	assert.Equal(t, review.LineRange{Start: 2, End: 4}, lines)

	v, _ = v.Update(tuitest.Key(tea.KeyEsc))
	assert.False(t, v.Selecting())
	_, lines, _ = v.Selection()
	assert.Equal(t, review.LineRange{Start: 4, End: 4}, lines)
}

func TestViewer_DeletedLineUsesOldNumber(t *testing.T) {
	v := press(newSampleViewer(t), "j")

	row, _ := v.Cursor()
	assert.Equal(t, RowDelete, row.Kind)
	_, lines, ok := v.Selection()
	require.True(t, ok)
	assert.Equal(t, review.LineRange{Start: 2, End: 2}, lines)
}

func TestViewer_SkipsHeadersAndJumpsFiles(t *testing.T) {
	v := press(newSampleViewer(t), "]")

	row, _ := v.Cursor()
	assert.Equal(t, "poetry.lock", row.File)
	assert.True(t, row.Kind.IsCode())

	v = press(v, "[")
	row, _ = v.Cursor()
	assert.Equal(t, "main.py", row.File)

	v = press(v, "G")
	row, _ = v.Cursor()
	assert.Equal(t, "poetry.lock", row.File)
	assert.Equal(t, RowAdd, row.Kind)

	v = press(v, "g")
	row, _ = v.Cursor()
	assert.Equal(t, 1, row.NewLine)
}

func TestViewer_View(t *testing.T) {
	v := newSampleViewer(t)
	v.SetComments([]review.Comment{{File: "main.py", Lines: review.LineRange{Start: 2, End: 3}}})

	out := v.View()
	assert.Contains(t, out, "main.py (+4 -1)")
	assert.Contains(t, out, "result = 0")
	assert.Contains(t, out, "@@ -1,4 +1,6 @@")

	empty := NewViewer()
	assert.Contains(t, empty.View(), "No diff available")
}
