package effects

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/reviewdesk/internal/core/expiry"
	"github.com/hay-kot/reviewdesk/internal/core/tmux"
	"github.com/hay-kot/reviewdesk/pkg/tmpl"
)

// ErrNoMultiplexer is returned when a companion pane cannot be spawned
// because the process does not run inside tmux.
var ErrNoMultiplexer = errors.New("not running inside tmux")

const timerPaneLines = 7

// Companion auto-opens the helpers of a candidate view at most once per
// access token: the timer pane and the pull request page.
type Companion struct {
	tmux     *tmux.Client
	opener   *Opener
	flags    *expiry.Companions
	selfPath string
}

// NewCompanion creates a Companion. selfPath is the reviewdesk executable
// used to start the timer pane.
func NewCompanion(tmuxClient *tmux.Client, opener *Opener, flags *expiry.Companions, selfPath string) *Companion {
	if selfPath == "" {
		if exe, err := os.Executable(); err == nil {
			selfPath = exe
		} else {
			selfPath = "reviewdesk"
		}
	}
	return &Companion{tmux: tmuxClient, opener: opener, flags: flags, selfPath: selfPath}
}

// OpenTimer spawns the timer pane for token unless one was already opened.
// It reports whether a pane was spawned.
func (c *Companion) OpenTimer(ctx context.Context, token string) (bool, error) {
	if !c.tmux.Inside() {
		return false, ErrNoMultiplexer
	}

	claimed, err := c.flags.Claim(ctx, expiry.KindTimer, token)
	if err != nil || !claimed {
		return false, err
	}

	cmd, err := tmpl.Render("{{ shq .Exe }} timer {{ shq .Token }}", map[string]string{
		"Exe":   c.selfPath,
		"Token": token,
	})
	if err != nil {
		return false, err
	}

	if _, err := c.tmux.SplitWindow(ctx, tmux.Pane{Command: cmd, Title: "review timer", Size: timerPaneLines}); err != nil {
		_ = c.flags.Release(ctx, expiry.KindTimer, token)
		return false, fmt.Errorf("open timer pane: %w", err)
	}
	return true, nil
}

// OpenPR opens the pull request page for token unless it was already opened.
func (c *Companion) OpenPR(ctx context.Context, token, prURL string) (bool, error) {
	if prURL == "" {
		return false, nil
	}

	claimed, err := c.flags.Claim(ctx, expiry.KindPR, token)
	if err != nil || !claimed {
		return false, err
	}

	if err := c.opener.Open(prURL); err != nil {
		_ = c.flags.Release(ctx, expiry.KindPR, token)
		return false, err
	}
	return true, nil
}

// TimerClosed clears the timer flag so the candidate view may reopen it.
func (c *Companion) TimerClosed(ctx context.Context, token string) error {
	return c.flags.Release(ctx, expiry.KindTimer, token)
}
