package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/desk"
)

// SessionIDCompleter returns a ShellCompleteFunc that suggests the ids of
// sessions that are not deleted, annotated with the candidate name.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func SessionIDCompleter(app *desk.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app == nil || app.Sessions == nil {
			return
		}

		sessions, err := app.Sessions.List(ctx)
		if err != nil {
			return
		}

		now := time.Now()
		w := cmd.Root().Writer
		for _, s := range sessions {
			if s.EffectiveStatus(now) == review.StatusDeleted {
				continue
			}
			_, _ = fmt.Fprintf(w, "%d:%s\n", s.ID, s.CandidateName)
		}
	}
}
