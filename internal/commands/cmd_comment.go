package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/desk"
	"github.com/hay-kot/reviewdesk/pkg/iojson"
)

// CommentInput is the JSON shape accepted by comment add when --text is
// not given.
type CommentInput struct {
	File     string `json:"file"`
	Lines    string `json:"line_range"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

type CommentCmd struct {
	flags *Flags
	app   *desk.App
	fr    *iojson.FileReader[CommentInput]

	// flags
	jsonOutput bool
	file       string
	lines      string
	typ        string
	severity   string
	text       string
}

func NewCommentCmd(flags *Flags, app *desk.App) *CommentCmd {
	return &CommentCmd{
		flags: flags,
		app:   app,
		fr:    &iojson.FileReader[CommentInput]{},
	}
}

func (cmd *CommentCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "comment",
		Usage: "Review comment commands",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a comment to a session",
				UsageText: `reviewdesk comment add <id|token> --lines 3-5 --text "..." [options]

Read from stdin:
  echo '{"line_range":"3-5","type":"bug","severity":"high","text":"off by one"}' | reviewdesk comment add <token>`,
				Description: `Adds a review comment. A token adds the comment as the candidate, a
numeric id as the reviewer.

When --text is omitted the comment is read as JSON from --file or stdin.
Comments cannot be added once a session has expired or was marked ready.`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Usage: "file the comment refers to (defaults to candidate.default_file)", Destination: &cmd.file},
					&cli.StringFlag{Name: "lines", Aliases: []string{"l"}, Usage: "line range, e.g. 3 or 3-5", Destination: &cmd.lines},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "comment type", Value: string(review.TypeBug), Destination: &cmd.typ},
					&cli.StringFlag{Name: "severity", Aliases: []string{"s"}, Usage: "comment severity", Value: string(review.SeverityMedium), Destination: &cmd.severity},
					&cli.StringFlag{Name: "text", Aliases: []string{"m"}, Usage: "comment text", Destination: &cmd.text},
					cmd.fr.Flag(),
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "ls",
				Usage:     "List a session's comments",
				UsageText: "reviewdesk comment ls <id|token> [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runList,
			},
		},
	})
	return app
}

func (cmd *CommentCmd) input() (CommentInput, error) {
	if cmd.text != "" {
		return CommentInput{
			File:     cmd.file,
			Lines:    cmd.lines,
			Type:     cmd.typ,
			Severity: cmd.severity,
			Text:     cmd.text,
		}, nil
	}

	in, err := cmd.fr.Read()
	if err != nil {
		return in, err
	}
	if in.Type == "" {
		in.Type = cmd.typ
	}
	if in.Severity == "" {
		in.Severity = cmd.severity
	}
	return in, nil
}

// toComment parses the raw input fields.
func (in CommentInput) toComment() (review.Comment, error) {
	lines, err := review.ParseLineRange(in.Lines)
	if err != nil {
		return review.Comment{}, err
	}
	typ, err := review.ParseType(in.Type)
	if err != nil {
		return review.Comment{}, err
	}
	sev, err := review.ParseSeverity(in.Severity)
	if err != nil {
		return review.Comment{}, err
	}
	return review.Comment{
		File:     in.File,
		Lines:    lines,
		Type:     typ,
		Severity: sev,
		Text:     in.Text,
	}, nil
}

func (cmd *CommentCmd) runAdd(ctx context.Context, c *cli.Command) error {
	ref, err := argRef(c)
	if err != nil {
		return err
	}

	in, err := cmd.input()
	if err != nil {
		return err
	}
	comment, err := in.toComment()
	if err != nil {
		return err
	}

	saved, err := cmd.app.Sessions.AddComment(ctx, ref, comment)
	if err != nil {
		return err
	}

	successf(c, "Comment added on %s:%s", saved.File, saved.Lines)
	return nil
}

func (cmd *CommentCmd) runList(ctx context.Context, c *cli.Command) error {
	ref, err := argRef(c)
	if err != nil {
		return err
	}

	comments, err := cmd.app.Sessions.Comments(ctx, ref)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return writeJSON(c.Root().Writer, comments)
	}
	if len(comments) == 0 {
		warnf(c, "No comments yet")
		return nil
	}
	return writeComments(c.Root().Writer, comments)
}

func writeComments(w io.Writer, comments []review.Comment) error {
	for i, cm := range comments {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		head := fmt.Sprintf("[%s] %s  %s:%s", strings.ToUpper(string(cm.Severity)), cm.Type, cm.File, cm.Lines)
		body := indent.String(wordwrap.String(cm.Text, 76), 2)
		if _, err := fmt.Fprintf(w, "%s\n%s\n", head, body); err != nil {
			return err
		}
	}
	return nil
}
