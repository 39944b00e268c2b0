package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

// RenderComments lists comments with a severity/type/location heading and
// the text wrapped to width.
func RenderComments(comments []review.Comment, width int) string {
	if len(comments) == 0 {
		return styles.MutedStyle.Render("No comments yet.")
	}

	wrap := max(width-4, 20)
	var b strings.Builder
	for i, c := range comments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s %s  %s\n",
			styles.SeverityStyle(c.Severity).Render(string(c.Severity)),
			styles.ValueStyle.Render(string(c.Type)),
			styles.MutedStyle.Render(c.File+":"+c.Lines.String()),
		)
		b.WriteString(indent.String(wordwrap.String(c.Text, wrap), 2))
	}
	return b.String()
}
