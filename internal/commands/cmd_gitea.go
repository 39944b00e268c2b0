package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/desk"
)

type GiteaCmd struct {
	flags *Flags
	app   *desk.App

	// flags
	jsonOutput bool
	open       bool
}

func NewGiteaCmd(flags *Flags, app *desk.App) *GiteaCmd {
	return &GiteaCmd{flags: flags, app: app}
}

func (cmd *GiteaCmd) Register(app *cli.Command) *cli.Command {
	complete := SessionIDCompleter(cmd.app)

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "gitea",
		Usage: "Pull request commands for Gitea backed sessions",
		Description: `Commands for sessions reviewed through a Gitea pull request.

push copies the session's comments onto the pull request; pull copies
pull request comments back into the session.`,
		Commands: []*cli.Command{
			{
				Name:      "create-pr",
				Usage:     "Create the pull request for a session",
				UsageText: "reviewdesk gitea create-pr <id> [--open]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "open", Aliases: []string{"o"}, Usage: "open the pull request afterwards", Destination: &cmd.open},
				},
				ShellComplete: complete,
				Action:        cmd.runCreatePR,
			},
			{
				Name:      "pr",
				Usage:     "Show a session's pull request and its comments",
				UsageText: "reviewdesk gitea pr <id> [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
				},
				ShellComplete: complete,
				Action:        cmd.runPR,
			},
			{
				Name:          "push",
				Usage:         "Copy session comments to the pull request",
				UsageText:     "reviewdesk gitea push <id>",
				ShellComplete: complete,
				Action:        cmd.runSync(cmd.push, "Pushed"),
			},
			{
				Name:          "pull",
				Usage:         "Copy pull request comments into the session",
				UsageText:     "reviewdesk gitea pull <id>",
				ShellComplete: complete,
				Action:        cmd.runSync(cmd.pull, "Pulled"),
			},
		},
	})
	return app
}

func (cmd *GiteaCmd) runCreatePR(ctx context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	pr, err := cmd.app.Gitea.CreatePR(ctx, id)
	if err != nil {
		return err
	}

	successf(c, "Pull request #%d created", pr.Number)
	_, _ = fmt.Fprintln(c.Root().Writer, pr.URL)
	if cmd.open && pr.URL != "" {
		return cmd.app.Opener().Open(pr.URL)
	}
	return nil
}

func (cmd *GiteaCmd) runPR(ctx context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	pr, err := cmd.app.Gitea.PullRequest(ctx, id)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return writeJSON(out, pr)
	}

	_, _ = fmt.Fprintf(out, "#%d %s (%s)\n%s\n", pr.Number, pr.Title, pr.State, pr.URL)
	if len(pr.Comments) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "USER\tLOCATION\tCOMMENT")
	for _, cm := range pr.Comments {
		loc := cm.Path
		if cm.Line > 0 {
			loc = fmt.Sprintf("%s:%d", cm.Path, cm.Line)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", cm.User, loc, firstLine(cm.Body))
	}
	return w.Flush()
}

func (cmd *GiteaCmd) push(ctx context.Context, id int64) (review.SyncResult, error) {
	return cmd.app.Gitea.Push(ctx, id)
}

func (cmd *GiteaCmd) pull(ctx context.Context, id int64) (review.SyncResult, error) {
	return cmd.app.Gitea.Pull(ctx, id)
}

func (cmd *GiteaCmd) runSync(fn func(context.Context, int64) (review.SyncResult, error), verb string) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		id, err := argID(c)
		if err != nil {
			return err
		}

		res, err := fn(ctx, id)
		if err != nil {
			return err
		}

		successf(c, "%s %d of %d comment(s)", verb, res.Synced, res.Total)
		for _, e := range res.Errors {
			warnf(c, "%s", e)
		}
		return nil
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
