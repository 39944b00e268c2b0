package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewdesk/internal/core/countdown"
	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/core/validate"
	"github.com/hay-kot/reviewdesk/internal/desk"
)

type SessionCmd struct {
	flags *Flags
	app   *desk.App

	// flags
	jsonOutput bool
	candidate  string
	mrPackage  string
	reviewer   string
	mrIDs      []string
	yes        bool
	noWait     bool
	open       bool
}

// NewSessionCmd creates a new session command
func NewSessionCmd(flags *Flags, app *desk.App) *SessionCmd {
	return &SessionCmd{flags: flags, app: app}
}

func (cmd *SessionCmd) jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON",
		Destination: &cmd.jsonOutput,
	}
}

// Register adds the session command to the application
func (cmd *SessionCmd) Register(app *cli.Command) *cli.Command {
	complete := SessionIDCompleter(cmd.app)

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "session",
		Usage: "Review session commands",
		Description: `Commands for creating and managing review sessions.

Reviewer commands take a numeric session id. Candidate commands (ready) take
the session's access token.`,
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a review session",
				UsageText: "reviewdesk session create [options]",
				Description: `Creates a session for a candidate and prints its access token.

When --candidate is omitted and stdin is a terminal, an interactive form
prompts for input.`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "candidate", Aliases: []string{"n"}, Usage: "candidate name", Destination: &cmd.candidate},
					&cli.StringFlag{Name: "package", Aliases: []string{"p"}, Usage: "merge request package (defaults to reviewer.mr_package)", Destination: &cmd.mrPackage},
					&cli.StringFlag{Name: "reviewer", Aliases: []string{"r"}, Usage: "reviewer name (defaults to reviewer.name)", Destination: &cmd.reviewer},
					&cli.StringSliceFlag{Name: "mr", Usage: "merge request id to assign (repeatable)", Destination: &cmd.mrIDs},
					cmd.jsonFlag(),
				},
				Action: cmd.runCreate,
			},
			{
				Name:          "show",
				Usage:         "Show a session",
				UsageText:     "reviewdesk session show <id|token> [--json]",
				Flags:         []cli.Flag{cmd.jsonFlag()},
				ShellComplete: complete,
				Action:        cmd.runShow,
			},
			{
				Name:      "ls",
				Usage:     "List sessions",
				UsageText: "reviewdesk session ls [--json]",
				Flags:     []cli.Flag{cmd.jsonFlag()},
				Action:    cmd.runList,
			},
			{
				Name:          "extend",
				Usage:         "Extend a session",
				UsageText:     "reviewdesk session extend <id>",
				ShellComplete: complete,
				Action:        cmd.runExtend,
			},
			{
				Name:          "finish",
				Usage:         "Finish a session early",
				UsageText:     "reviewdesk session finish <id>",
				ShellComplete: complete,
				Action:        cmd.runFinish,
			},
			{
				Name:      "delete",
				Usage:     "Delete a session",
				UsageText: "reviewdesk session delete <id> [--yes]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt", Destination: &cmd.yes},
				},
				ShellComplete: complete,
				Action:        cmd.runDelete,
			},
			{
				Name:      "ready",
				Usage:     "Mark a session ready for review (candidate)",
				UsageText: "reviewdesk session ready <token>",
				Action:    cmd.runReady,
			},
			{
				Name:      "evaluate",
				Usage:     "Evaluate a session and print the report",
				UsageText: "reviewdesk session evaluate <id> [--no-wait]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-wait", Usage: "queue the evaluation and print the job id", Destination: &cmd.noWait},
				},
				ShellComplete: complete,
				Action:        cmd.runEvaluate,
			},
			{
				Name:          "report",
				Usage:         "Print a session's review report",
				UsageText:     "reviewdesk session report <id>",
				ShellComplete: complete,
				Action:        cmd.runReport,
			},
			{
				Name:      "pdf",
				Usage:     "Print or open the PDF report link",
				UsageText: "reviewdesk session pdf <id> [--open]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "open", Aliases: []string{"o"}, Usage: "open the link with effects.open_command", Destination: &cmd.open},
				},
				ShellComplete: complete,
				Action:        cmd.runPDF,
			},
			{
				Name:          "diff",
				Usage:         "Print a session's diff",
				UsageText:     "reviewdesk session diff <id|token>",
				ShellComplete: complete,
				Action:        cmd.runDiff,
			},
			{
				Name:      "upload",
				Usage:     "Upload a zipped merge request package",
				UsageText: "reviewdesk session upload <path.zip> [--json]",
				Flags:     []cli.Flag{cmd.jsonFlag()},
				Action:    cmd.runUpload,
			},
			{
				Name:      "watch",
				Usage:     "Print a live countdown for a session",
				UsageText: "reviewdesk session watch <id|token>",
				Description: `Counts the session down in the terminal with the same warnings, tick
sound and forced exit as the interactive views. Exits when time is up.`,
				ShellComplete: complete,
				Action:        cmd.runWatch,
			},
		},
	})
	return app
}

func (cmd *SessionCmd) runCreate(ctx context.Context, c *cli.Command) error {
	if cmd.candidate == "" && stdinIsTTY() {
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	res, err := cmd.app.Sessions.Create(ctx, desk.CreateInput{
		CandidateName: cmd.candidate,
		MRPackage:     cmd.mrPackage,
		ReviewerName:  cmd.reviewer,
		MRIDs:         cmd.mrIDs,
	})
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return writeJSON(c.Root().Writer, res)
	}

	successf(c, "Session %d created for %s", res.SessionID, strings.TrimSpace(cmd.candidate))
	_, _ = fmt.Fprintln(c.Root().Writer, res.AccessToken)
	infof(c, "Candidate command: reviewdesk candidate %s", res.AccessToken)
	return nil
}

func (cmd *SessionCmd) runForm() error {
	return NewCreateForm(&cmd.candidate, &cmd.mrPackage, cmd.flags.Config.Reviewer.MRPackage).Run()
}

// NewCreateForm builds the interactive session create form.
func NewCreateForm(candidate, mrPackage *string, defaultPackage string) *huh.Form {
	if *mrPackage == "" {
		*mrPackage = defaultPackage
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Candidate name").
				Value(candidate).
				Validate(validate.CandidateName),
			huh.NewInput().
				Title("Merge request package").
				Value(mrPackage),
		),
	)
}

func (cmd *SessionCmd) runShow(ctx context.Context, c *cli.Command) error {
	ref, err := argRef(c)
	if err != nil {
		return err
	}

	sess, err := cmd.app.Sessions.Fetch(ctx, ref)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return writeJSON(out, sess)
	}

	now := time.Now()
	snap := sessionclock.Compute(sess.RawExpiresAt, now, cmd.app.Config.Session.NominalWindow)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Session:\t%d\n", sess.ID)
	_, _ = fmt.Fprintf(w, "Candidate:\t%s\n", sess.CandidateName)
	_, _ = fmt.Fprintf(w, "Reviewer:\t%s\n", sess.ReviewerName)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", sess.EffectiveStatus(now))
	_, _ = fmt.Fprintf(w, "Remaining:\t%s\n", snap.Format())
	if sess.IsReady() {
		_, _ = fmt.Fprintf(w, "Ready:\t%s\n", sess.CandidateReadyAt.Local().Format(time.DateTime))
	}
	if sess.MergeRequest != nil {
		_, _ = fmt.Fprintf(w, "Merge request:\t%s\n", sess.MergeRequest.Title)
	}
	if url := sess.Gitea.URL(); url != "" {
		_, _ = fmt.Fprintf(w, "Pull request:\t%s\n", url)
	}
	if sess.AccessToken != "" {
		_, _ = fmt.Fprintf(w, "Token:\t%s\n", sess.AccessToken)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nComments (%d)\n", len(sess.Comments))
	return writeComments(out, sess.Comments)
}

func (cmd *SessionCmd) runList(ctx context.Context, c *cli.Command) error {
	sessions, err := cmd.app.Sessions.List(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return writeJSON(out, sessions)
	}

	if len(sessions) == 0 {
		warnf(c, "No sessions found")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCANDIDATE\tSTATUS\tREMAINING\tCOMMENTS\tREADY")
	for _, s := range sessions {
		snap := sessionclock.Compute(s.RawExpiresAt, now, cmd.app.Config.Session.NominalWindow)
		ready := ""
		if s.IsReady() {
			ready = "yes"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.CandidateName, s.EffectiveStatus(now), snap.Format(), len(s.Comments), ready)
	}
	return w.Flush()
}

func (cmd *SessionCmd) runExtend(ctx context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	exp, err := cmd.app.Sessions.Extend(ctx, id)
	if err != nil {
		return err
	}

	successf(c, "Session %d extended until %s", id, exp.Local().Format(time.DateTime))
	return nil
}

func (cmd *SessionCmd) runFinish(ctx context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	if _, err := cmd.app.Sessions.Finish(ctx, id); err != nil {
		return err
	}

	successf(c, "Session %d finished", id)
	return nil
}

func (cmd *SessionCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	if !cmd.yes {
		if !stdinIsTTY() {
			return fmt.Errorf("refusing to delete session %d without --yes", id)
		}
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete session %d?", id)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if !confirmed {
			return nil
		}
	}

	if err := cmd.app.Sessions.Delete(ctx, id); err != nil {
		return err
	}

	successf(c, "Session %d deleted", id)
	return nil
}

func (cmd *SessionCmd) runReady(ctx context.Context, c *cli.Command) error {
	token, err := argToken(c)
	if err != nil {
		return err
	}

	res, err := cmd.app.Sessions.MarkReady(ctx, token)
	if err != nil {
		return err
	}

	if res.AlreadyReady {
		infof(c, "Session was already marked ready")
		return nil
	}
	successf(c, "Marked ready for review")
	return nil
}

func (cmd *SessionCmd) runEvaluate(ctx context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	if cmd.noWait {
		jobID, err := cmd.app.Sessions.Evaluate(ctx, id)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(c.Root().Writer, jobID)
		return nil
	}

	var last review.JobStatus
	report, err := cmd.app.Sessions.EvaluateReport(ctx, id, func(j review.Job) {
		if j.Status != last {
			last = j.Status
			infof(c, "Evaluation %s", j.Status)
		}
	})
	if err != nil {
		return err
	}

	return writeMarkdown(c.Root().Writer, report)
}

func (cmd *SessionCmd) runReport(ctx context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	report, err := cmd.app.Sessions.Report(ctx, id)
	if err != nil {
		return err
	}
	return writeMarkdown(c.Root().Writer, report)
}

func (cmd *SessionCmd) runPDF(_ context.Context, c *cli.Command) error {
	id, err := argID(c)
	if err != nil {
		return err
	}

	url := cmd.app.Sessions.ReportPDFURL(id)
	if cmd.open {
		return cmd.app.Opener().Open(url)
	}
	_, _ = fmt.Fprintln(c.Root().Writer, url)
	return nil
}

func (cmd *SessionCmd) runDiff(ctx context.Context, c *cli.Command) error {
	ref, err := argRef(c)
	if err != nil {
		return err
	}

	diff, err := cmd.app.Sessions.Diff(ctx, ref)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.Root().Writer, diff)
	return err
}

func (cmd *SessionCmd) runUpload(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("package path is required")
	}

	created, err := cmd.app.Sessions.Upload(ctx, path)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return writeJSON(c.Root().Writer, created)
	}
	successf(c, "Uploaded as session %d", created.SessionID)
	_, _ = fmt.Fprintln(c.Root().Writer, created.AccessToken)
	return nil
}

func (cmd *SessionCmd) runWatch(ctx context.Context, c *cli.Command) error {
	ref, err := argRef(c)
	if err != nil {
		return err
	}

	sess, err := cmd.app.Sessions.Fetch(ctx, ref)
	if err != nil {
		return err
	}

	return Watch(ctx, cmd.app, sess, stderr(c))
}

// Watch counts sess down on out until it expires or ctx ends.
func Watch(ctx context.Context, app *desk.App, sess review.Session, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := countdown.NewLoop()
	fx := app.Desktop(out).WithExit(cancel)
	cd := app.NewCountdown(loop, fx, func(s sessionclock.Snapshot) {
		_, _ = fmt.Fprintf(out, "\r%s  %s  %5.1f%% ", sess.CandidateName, s.Format(), s.Percent)
	})

	loop.Post(func() { cd.Bind(sess.IDString()) })
	err := loop.Run(ctx)
	cd.Unbind()
	_, _ = fmt.Fprintln(out)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
