// Package tmux drives the terminal multiplexer that hosts companion panes,
// such as the timer popup opened next to the candidate view.
package tmux

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hay-kot/reviewdesk/pkg/executil"
	"github.com/rs/zerolog/log"
)

// Pane describes a pane to split off the current one.
type Pane struct {
	Command string // Command to run in the pane
	Title   string // Pane title (empty = tmux default)
	Size    int    // Lines (or columns when Beside) for the new pane; 0 = tmux default
	Beside  bool   // Split left/right instead of top/bottom
	Focus   bool   // Move focus to the new pane
}

// Client runs tmux commands through an executor.
type Client struct {
	exec   executil.Executor
	inside func() bool
}

// Option customizes a Client.
type Option func(*Client)

// WithDetector replaces the $TMUX based detection used by Inside.
func WithDetector(inside func() bool) Option {
	return func(c *Client) { c.inside = inside }
}

// New creates a Client with the given executor.
func New(exec executil.Executor, opts ...Option) *Client {
	c := &Client{exec: exec, inside: insideTmux}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Inside reports whether the current process runs inside a tmux client.
func (c *Client) Inside() bool {
	return c.inside() && c.exec.LookPath("tmux")
}

// SplitWindow opens a pane next to the current one and returns its pane id.
func (c *Client) SplitWindow(ctx context.Context, p Pane) (string, error) {
	if strings.TrimSpace(p.Command) == "" {
		return "", fmt.Errorf("tmux: pane command is required")
	}

	args := []string{"split-window", "-P", "-F", "#{pane_id}"}
	if p.Beside {
		args = append(args, "-h")
	} else {
		args = append(args, "-v")
	}
	if !p.Focus {
		args = append(args, "-d")
	}
	if p.Size > 0 {
		args = append(args, "-l", strconv.Itoa(p.Size))
	}
	args = append(args, "--", "sh", "-c", p.Command)

	log.Debug().Strs("args", args).Msg("executing tmux split-window")
	out, err := c.exec.Run(ctx, "tmux", args...)
	if err != nil {
		return "", fmt.Errorf("tmux split-window: %w", err)
	}

	paneID := strings.TrimSpace(string(out))
	if p.Title != "" && paneID != "" {
		if _, err := c.exec.Run(ctx, "tmux", "select-pane", "-t", paneID, "-T", p.Title); err != nil {
			log.Debug().Err(err).Str("pane", paneID).Msg("tmux select-pane title failed")
		}
	}
	return paneID, nil
}

// PaneAlive reports whether a pane id still exists.
func (c *Client) PaneAlive(ctx context.Context, paneID string) bool {
	if paneID == "" {
		return false
	}
	out, err := c.exec.Run(ctx, "tmux", "display-message", "-p", "-t", paneID, "#{pane_id}")
	return err == nil && strings.TrimSpace(string(out)) == paneID
}

// KillPane closes a pane.
func (c *Client) KillPane(ctx context.Context, paneID string) error {
	if _, err := c.exec.Run(ctx, "tmux", "kill-pane", "-t", paneID); err != nil {
		return fmt.Errorf("tmux kill-pane: %w", err)
	}
	return nil
}

// DisplayMessage shows msg in the status line of the current client.
func (c *Client) DisplayMessage(ctx context.Context, msg string) error {
	if _, err := c.exec.Run(ctx, "tmux", "display-message", msg); err != nil {
		return fmt.Errorf("tmux display-message: %w", err)
	}
	return nil
}

// insideTmux reports whether the current process is running inside tmux.
var insideTmux = func() bool {
	return strings.TrimSpace(os.Getenv("TMUX")) != ""
}
