package candidate

import (
	"strings"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/tui/components/form"
)

const (
	fieldFile     = "file"
	fieldLines    = "lines"
	fieldType     = "type"
	fieldSeverity = "severity"
	fieldText     = "text"
)

// commentForm is the comment editor. It outlives a single submission so an
// interrupted draft (cancel, failed submit, expiry) is never lost.
type commentForm struct {
	*form.Dialog
	file     *form.TextField
	lines    *form.TextField
	kind     *form.ChoiceField
	severity *form.ChoiceField
	text     *form.TextAreaField
}

func newCommentForm() *commentForm {
	types := make([]string, len(review.Types))
	for i, t := range review.Types {
		types[i] = string(t)
	}
	severities := make([]string, len(review.Severities))
	for i, s := range review.Severities {
		severities[i] = string(s)
	}

	f := &commentForm{
		file:     form.NewTextField("File", "main.py", ""),
		lines:    form.NewTextField("Lines", "12 or 12-18", ""),
		kind:     form.NewChoiceField("Type", types, string(review.TypeBug)),
		severity: form.NewChoiceField("Severity", severities, string(review.SeverityMedium)),
		text:     form.NewTextAreaField("Comment", "What did you notice?", ""),
	}
	f.Dialog = form.NewDialog("New comment",
		[]form.Field{f.text, f.kind, f.severity, f.file, f.lines},
		[]string{fieldText, fieldType, fieldSeverity, fieldFile, fieldLines},
	)
	return f
}

// target points the draft at a file and line range. Text, type and
// severity are left alone.
func (f *commentForm) target(file string, lines review.LineRange) {
	f.file.SetValue(file)
	f.lines.SetValue(lines.String())
}

func (f *commentForm) cycleType() {
	f.kind.SetValue(string(review.Type(f.kind.Value()).Next()))
}

func (f *commentForm) cycleSeverity() {
	f.severity.SetValue(string(review.Severity(f.severity.Value()).Next()))
}

// comment builds the comment from the fields. A malformed line range is
// reported here; everything else is validated by the session service.
func (f *commentForm) comment() (review.Comment, error) {
	c := review.Comment{
		File:     strings.TrimSpace(f.file.Value()),
		Type:     review.Type(f.kind.Value()),
		Severity: review.Severity(f.severity.Value()),
		Text:     f.text.Value(),
	}

	if raw := strings.TrimSpace(f.lines.Value()); raw != "" {
		lr, err := review.ParseLineRange(raw)
		if err != nil {
			return review.Comment{}, err
		}
		c.Lines = lr
	}
	return c, nil
}

// clearText empties the text after a successful submit. The type and
// severity stick for the next comment.
func (f *commentForm) clearText() {
	f.text.SetValue("")
}
