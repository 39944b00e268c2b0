package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewdesk/internal/desk"
	"github.com/hay-kot/reviewdesk/internal/tui"
	"github.com/hay-kot/reviewdesk/internal/tui/candidate"
	"github.com/hay-kot/reviewdesk/internal/tui/dashboard"
	"github.com/hay-kot/reviewdesk/internal/tui/timer"
)

// ViewsCmd registers the interactive views: the reviewer dashboard, the
// candidate view and the timer popup.
type ViewsCmd struct {
	flags *Flags
	app   *desk.App

	noWatch bool
}

func NewViewsCmd(flags *Flags, app *desk.App) *ViewsCmd {
	return &ViewsCmd{flags: flags, app: app}
}

// Flags returns the view flags for registration on the root command
func (cmd *ViewsCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-watch",
			Usage:       "disable the file watcher and rely on polling the expiry cache",
			Sources:     cli.EnvVars("REVIEWDESK_NO_WATCH"),
			Destination: &cmd.noWatch,
		},
	}
}

func (cmd *ViewsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "dashboard",
			Usage:     "Open the reviewer dashboard",
			UsageText: "reviewdesk dashboard",
			Description: `Lists sessions with their countdowns. Open a session to see its comments
and report, and extend, finish, delete or evaluate it.

This is the default command when reviewdesk runs without arguments.`,
			Action: cmd.RunDashboard,
		},
		&cli.Command{
			Name:      "candidate",
			Usage:     "Open the candidate review view",
			UsageText: "reviewdesk candidate <token>",
			Description: `Shows the session diff with a countdown. Select lines and press c to
comment, R to mark the review ready.

For pull request sessions the pull request page and the timer popup are
opened automatically, once per session.`,
			Action: cmd.runCandidate,
		},
		&cli.Command{
			Name:      "timer",
			Usage:     "Open the countdown timer popup",
			UsageText: "reviewdesk timer <token>",
			Action:    cmd.runTimer,
		},
	)
	return app
}

func (cmd *ViewsCmd) hostOptions() tui.HostOptions {
	return tui.HostOptions{Bell: os.Stderr, Watch: !cmd.noWatch}
}

func (cmd *ViewsCmd) runTimer(_ context.Context, c *cli.Command) error {
	token, err := argToken(c)
	if err != nil {
		return err
	}

	m := timer.New(cmd.app, token, cmd.hostOptions())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run timer: %w", err)
	}
	return nil
}

func (cmd *ViewsCmd) runCandidate(_ context.Context, c *cli.Command) error {
	token, err := argToken(c)
	if err != nil {
		return err
	}

	m := candidate.New(cmd.app, token, cmd.hostOptions())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run candidate view: %w", err)
	}
	return nil
}

// RunDashboard runs the dashboard. Exported for use as default command.
func (cmd *ViewsCmd) RunDashboard(ctx context.Context, c *cli.Command) error {
	for {
		m := dashboard.New(cmd.app, cmd.hostOptions())
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("run dashboard: %w", err)
		}

		if !m.CreateRequested() {
			return nil
		}

		// Handle pending session creation, then restart the dashboard
		if err := cmd.createFromForm(ctx, c); err != nil {
			_, _ = fmt.Fprintf(stderr(c), "Error creating session: %v\n", err)
			_, _ = fmt.Fprintln(stderr(c), "Press Enter to continue...")
			_, _ = fmt.Scanln()
		}
	}
}

func (cmd *ViewsCmd) createFromForm(ctx context.Context, c *cli.Command) error {
	var name, pkg string
	if err := NewCreateForm(&name, &pkg, cmd.app.Config.Reviewer.MRPackage).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("form: %w", err)
	}

	res, err := cmd.app.Sessions.Create(ctx, desk.CreateInput{CandidateName: name, MRPackage: pkg})
	if err != nil {
		return err
	}
	log.Info().Int64("session_id", res.SessionID).Msg("session created from dashboard")
	return nil
}
