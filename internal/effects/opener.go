package effects

import (
	"fmt"
	"net/url"
	"runtime"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/pkg/executil"
	"github.com/hay-kot/reviewdesk/pkg/tmpl"
)

// Opener opens links in the user's browser.
type Opener struct {
	exec    executil.Executor
	command string
	goos    string
}

// NewOpener creates an Opener. command is an optional template with a .URL
// field; when empty the platform opener is used.
func NewOpener(exec executil.Executor, command string) *Opener {
	return &Opener{exec: exec, command: command, goos: runtime.GOOS}
}

// Open launches the browser for rawURL without waiting for it.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("open: %q is not an http(s) url", rawURL)
	}

	if o.command != "" {
		cmd, err := tmpl.Render(o.command, config.OpenTemplateData{URL: rawURL})
		if err != nil {
			return fmt.Errorf("render open_command: %w", err)
		}
		return o.exec.Start("sh", "-c", cmd)
	}

	switch o.goos {
	case "darwin":
		return o.exec.Start("open", rawURL)
	case "windows":
		return o.exec.Start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		if !o.exec.LookPath("xdg-open") {
			return fmt.Errorf("open: xdg-open not found, visit %s", rawURL)
		}
		return o.exec.Start("xdg-open", rawURL)
	}
}
