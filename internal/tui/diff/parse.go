// Package diff parses a session's unified diff and renders it as a
// scrollable, line-selectable viewer.
package diff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/bmatcuk/doublestar/v4"
)

// RowKind is the kind of a rendered diff row.
type RowKind int

const (
	RowFile RowKind = iota
	RowHunk
	RowContext
	RowAdd
	RowDelete
)

// IsCode reports whether the row is a line of source, as opposed to a header.
func (k RowKind) IsCode() bool { return k >= RowContext }

// Row is one rendered line of the diff.
type Row struct {
	Kind    RowKind
	File    string
	Text    string
	OldLine int // 0 for added lines and headers
	NewLine int // 0 for deleted lines and headers
}

// Line is the line number a comment on this row refers to: the new-file
// line, or the old-file line for deletions.
func (r Row) Line() int {
	if r.NewLine > 0 {
		return r.NewLine
	}
	return r.OldLine
}

// FileStat summarizes one file of the diff.
type FileStat struct {
	Name      string
	Additions int
	Deletions int
}

// Document is a parsed diff flattened into rows.
type Document struct {
	Files  []FileStat
	Rows   []Row
	Hidden []string // files left out by the hide globs
}

// Options controls Parse.
type Options struct {
	// Hide lists doublestar globs of file paths to leave out.
	Hide []string
	// FallbackFile names the content when raw is not a git diff at all.
	FallbackFile string
}

// Parse reads a unified git diff. Input without any file headers is shown
// as plain source under opts.FallbackFile, numbered from one.
func Parse(raw string, opts Options) (Document, error) {
	var doc Document
	if strings.TrimSpace(raw) == "" {
		return doc, nil
	}

	files, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return doc, fmt.Errorf("parse diff: %w", err)
	}

	if len(files) == 0 {
		return plain(raw, opts.FallbackFile), nil
	}

	for _, f := range files {
		name := FileName(f)
		if hidden(name, opts.Hide) {
			doc.Hidden = append(doc.Hidden, name)
			continue
		}
		doc.appendFile(name, f)
	}

	return doc, nil
}

// FileName is the path a file is known by after the change.
func FileName(f *gitdiff.File) string {
	if f.IsDelete || f.NewName == "" {
		return f.OldName
	}
	return f.NewName
}

func hidden(name string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (d *Document) appendFile(name string, f *gitdiff.File) {
	stat := FileStat{Name: name}
	d.Rows = append(d.Rows, Row{Kind: RowFile, File: name, Text: name})

	for _, frag := range f.TextFragments {
		stat.Additions += int(frag.LinesAdded)
		stat.Deletions += int(frag.LinesDeleted)

		d.Rows = append(d.Rows, Row{Kind: RowHunk, File: name, Text: hunkHeader(frag)})

		oldLine, newLine := int(frag.OldPosition), int(frag.NewPosition)
		for _, line := range frag.Lines {
			row := Row{File: name, Text: strings.TrimRight(line.Line, "\r\n")}
			switch line.Op {
			case gitdiff.OpAdd:
				row.Kind = RowAdd
				row.NewLine = newLine
				newLine++
			case gitdiff.OpDelete:
				row.Kind = RowDelete
				row.OldLine = oldLine
				oldLine++
			default:
				row.Kind = RowContext
				row.OldLine = oldLine
				row.NewLine = newLine
				oldLine++
				newLine++
			}
			d.Rows = append(d.Rows, row)
		}
	}

	d.Files = append(d.Files, stat)
}

func hunkHeader(frag *gitdiff.TextFragment) string {
	h := fmt.Sprintf("@@ -%d,%d +%d,%d @@", frag.OldPosition, frag.OldLines, frag.NewPosition, frag.NewLines)
	if frag.Comment != "" {
		h += " " + frag.Comment
	}
	return h
}

func plain(raw, name string) Document {
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	doc := Document{
		Files: []FileStat{{Name: name}},
		Rows:  make([]Row, 0, len(lines)+1),
	}
	doc.Rows = append(doc.Rows, Row{Kind: RowFile, File: name, Text: name})
	for i, l := range lines {
		doc.Rows = append(doc.Rows, Row{
			Kind:    RowContext,
			File:    name,
			Text:    strings.TrimRight(l, "\r"),
			OldLine: i + 1,
			NewLine: i + 1,
		})
	}
	return doc
}
