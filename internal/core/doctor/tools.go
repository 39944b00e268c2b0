package doctor

import (
	"context"
	"os/exec"
	"runtime"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// ToolsCheck verifies that the external tools behind notifications, link
// opening and the timer popup are available. None of them is required.
type ToolsCheck struct {
	goos string
}

// NewToolsCheck creates a new tools check for the current platform.
func NewToolsCheck() *ToolsCheck {
	return &ToolsCheck{goos: runtime.GOOS}
}

func (c *ToolsCheck) Name() string {
	return "Tools"
}

func (c *ToolsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	c.optional(&result, "tmux", "not found on PATH (timer popup opens in the current terminal only)")

	switch c.goos {
	case "darwin":
		c.optional(&result, "osascript", "not found on PATH (desktop notifications fall back to the terminal bell)")
		c.optional(&result, "open", "not found on PATH (links are printed instead of opened)")
	default:
		c.optional(&result, "notify-send", "not found on PATH (desktop notifications fall back to the terminal bell)")
		c.optional(&result, "xdg-open", "not found on PATH (links are printed instead of opened)")
	}

	return result
}

func (c *ToolsCheck) optional(result *Result, tool, missing string) {
	if path, err := lookPathFunc(tool); err != nil {
		result.add(tool, StatusWarn, missing)
	} else {
		result.add(tool, StatusPass, path)
	}
}
