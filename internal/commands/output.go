package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
	"github.com/hay-kot/reviewdesk/internal/tui/jsoncolor"
	"github.com/hay-kot/reviewdesk/pkg/iojson"
)

// stderr is where status lines go; stdout carries command output only.
func stderr(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func successf(c *cli.Command, format string, args ...any) {
	_, _ = fmt.Fprintln(stderr(c), styles.SuccessStyle.Render("✔")+" "+fmt.Sprintf(format, args...))
}

func infof(c *cli.Command, format string, args ...any) {
	_, _ = fmt.Fprintln(stderr(c), styles.MutedStyle.Render("•")+" "+fmt.Sprintf(format, args...))
}

func warnf(c *cli.Command, format string, args ...any) {
	_, _ = fmt.Fprintln(stderr(c), styles.WarningStyle.Render("●")+" "+fmt.Sprintf(format, args...))
}

func errorf(c *cli.Command, format string, args ...any) {
	_, _ = fmt.Fprintln(stderr(c), styles.ErrorStyle.Render("✘")+" "+fmt.Sprintf(format, args...))
}

// argID parses the session id positional argument.
func argID(c *cli.Command) (int64, error) {
	raw := c.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("session id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q", raw)
	}
	return id, nil
}

// argToken returns the access token positional argument.
func argToken(c *cli.Command) (string, error) {
	token := strings.TrimSpace(c.Args().First())
	if token == "" {
		return "", fmt.Errorf("access token is required")
	}
	return token, nil
}

// argRef accepts a numeric session id or an access token.
func argRef(c *cli.Command) (review.Ref, error) {
	raw := strings.TrimSpace(c.Args().First())
	if raw == "" {
		return review.Ref{}, fmt.Errorf("session id or access token is required")
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		return review.ByID(id), nil
	}
	return review.ByToken(raw), nil
}

// isTTY reports whether w is an interactive terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeJSON writes obj as indented JSON, colored when w is a terminal.
func writeJSON(w io.Writer, obj any) error {
	if !isTTY(w) {
		return iojson.WriteTo(w, obj)
	}

	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, jsoncolor.Colorize(bits))
	return err
}

func stdinIsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// writeMarkdown renders markdown with glamour when w is a terminal and
// writes it verbatim otherwise.
func writeMarkdown(w io.Writer, text string) error {
	if !isTTY(w) {
		_, err := io.WriteString(w, text)
		return err
	}

	width := 100
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = min(cols, 120)
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(text)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
