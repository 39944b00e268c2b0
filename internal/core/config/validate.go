package config

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
	"github.com/hay-kot/reviewdesk/pkg/tmpl"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// template syntax, glob patterns, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		criterio.Run("api.base_url", c.API.BaseURL, isHTTPURL),
		c.validateDiffGlobs(),
		c.validateEffectTemplates(),
		c.validateKeybindingTemplates(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Session.WarnBefore > c.Session.NominalWindow {
		warnings = append(warnings, ValidationWarning{
			Category: "Session",
			Item:     "warn_before",
			Message:  "warn_before is longer than nominal_window; the warning fires as soon as a session opens",
		})
	}

	if c.Effects.DesktopNotifications && c.Effects.NotifyCommand == "" {
		if bin := defaultNotifier(); bin != "" {
			if _, err := exec.LookPath(bin); err != nil {
				warnings = append(warnings, ValidationWarning{
					Category: "Effects",
					Item:     "desktop_notifications",
					Message:  fmt.Sprintf("%s not found; notifications fall back to the terminal bell", bin),
				})
			}
		}
	}

	if _, ok := styles.GetPalette(c.UI.Theme); !ok {
		warnings = append(warnings, ValidationWarning{
			Category: "UI",
			Item:     "theme",
			Message:  fmt.Sprintf("unknown theme %q, using %s", c.UI.Theme, styles.DefaultTheme),
		})
	}

	for key, kb := range c.Keybindings {
		if kb.Help == "" {
			warnings = append(warnings, ValidationWarning{
				Category: "Keybindings",
				Item:     key,
				Message:  "keybinding has no help text",
			})
		}
	}

	return warnings
}

func defaultNotifier() string {
	switch runtime.GOOS {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	}
	return ""
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func (c *Config) validateDiffGlobs() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Diff.Hide {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("diff.hide[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}

func (c *Config) validateEffectTemplates() error {
	var errs criterio.FieldErrorsBuilder
	if c.Effects.NotifyCommand != "" {
		if err := validateTemplate(c.Effects.NotifyCommand, NotifyTemplateData{}); err != nil {
			errs = errs.Append("effects.notify_command", fmt.Errorf("template error: %w", err))
		}
	}
	if c.Effects.OpenCommand != "" {
		if err := validateTemplate(c.Effects.OpenCommand, OpenTemplateData{}); err != nil {
			errs = errs.Append("effects.open_command", fmt.Errorf("template error: %w", err))
		}
	}
	return errs.ToError()
}

func (c *Config) validateKeybindingTemplates() error {
	var errs criterio.FieldErrorsBuilder
	for key, kb := range c.Keybindings {
		if kb.Sh == "" {
			continue
		}
		if err := validateTemplate(kb.Sh, KeybindingTemplateData{}); err != nil {
			errs = errs.Append(fmt.Sprintf("keybindings[%q].sh", key), fmt.Errorf("template error: %w", err))
		}
	}
	return errs.ToError()
}

// validateTemplate checks if a template string is valid by rendering it
// against zero valued data.
func validateTemplate(tmplStr string, data any) error {
	_, err := tmpl.Render(tmplStr, data)
	return err
}
