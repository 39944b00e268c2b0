// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    "#7aa2f7",
		Secondary:  "#7dcfff",
		Foreground: "#c0caf5",
		Muted:      "#565f89",
		Background: "#1a1b26",
		Surface:    "#3b4261",
		Success:    "#9ece6a",
		Warning:    "#e0af68",
		Error:      "#f7768e",
	},
	"gruvbox": {
		Primary:    "#83a598",
		Secondary:  "#8ec07c",
		Foreground: "#ebdbb2",
		Muted:      "#665c54",
		Background: "#282828",
		Surface:    "#3c3836",
		Success:    "#b8bb26",
		Warning:    "#fabd2f",
		Error:      "#fb4934",
	},
	"light": {
		Primary:    "#2e7de9",
		Secondary:  "#007197",
		Foreground: "#3760bf",
		Muted:      "#848cb5",
		Background: "#e1e2e7",
		Surface:    "#c4c8da",
		Success:    "#587539",
		Warning:    "#8c6c3e",
		Error:      "#f52a65",
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	LabelStyle         lipgloss.Style
	ValueStyle         lipgloss.Style
	DividerStyle       lipgloss.Style
	MutedStyle         lipgloss.Style
	ErrorStyle         lipgloss.Style
	SuccessStyle       lipgloss.Style
	WarningStyle       lipgloss.Style

	// TUI shared styles.
	TitleStyle      lipgloss.Style
	HelpStyle       lipgloss.Style
	SelectedStyle   lipgloss.Style
	StatusBarStyle  lipgloss.Style
	BannerStyle     lipgloss.Style
	ExpiredStyle    lipgloss.Style
	ReadyBadgeStyle lipgloss.Style

	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style

	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	DiffFileStyle    lipgloss.Style
	DiffHunkStyle    lipgloss.Style
	DiffAddStyle     lipgloss.Style
	DiffDeleteStyle  lipgloss.Style
	DiffContextStyle lipgloss.Style
	LineNumberStyle  lipgloss.Style
	CursorLineStyle  lipgloss.Style
	MarkedLineStyle  lipgloss.Style

	FormFieldStyle        lipgloss.Style
	FormFieldFocusedStyle lipgloss.Style
	FormErrorStyle        lipgloss.Style
)

// ColorPool is used for deterministic color hashing of stack tags.
var ColorPool []lipgloss.Color

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	LabelStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Width(14)
	ValueStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	MutedStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error)
	SuccessStyle = lipgloss.NewStyle().
		Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().
		Foreground(p.Warning)

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	SelectedStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Background(p.Surface).
		Bold(true)
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		PaddingLeft(1)
	BannerStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Warning).
		Bold(true).
		Padding(0, 1)
	ExpiredStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Error).
		Bold(true).
		Padding(0, 1)
	ReadyBadgeStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Success).
		Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Surface).
		Foreground(p.Muted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Primary).
		Foreground(p.Background).
		Bold(true)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	ToastInfoStyle = toast.BorderForeground(p.Primary).Foreground(p.Foreground)
	ToastWarningStyle = toast.BorderForeground(p.Warning).Foreground(p.Warning)
	ToastErrorStyle = toast.BorderForeground(p.Error).Foreground(p.Error)

	DiffFileStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DiffHunkStyle = lipgloss.NewStyle().
		Foreground(p.Secondary)
	DiffAddStyle = lipgloss.NewStyle().Foreground(p.Success)
	DiffDeleteStyle = lipgloss.NewStyle().Foreground(p.Error)
	DiffContextStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	LineNumberStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Width(5).
		Align(lipgloss.Right).
		MarginRight(1)
	CursorLineStyle = lipgloss.NewStyle().Background(p.Surface)
	MarkedLineStyle = lipgloss.NewStyle().
		Background(p.Surface).
		Foreground(p.Warning)

	FormFieldStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Muted).
		PaddingLeft(1)
	FormFieldFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Primary).
		PaddingLeft(1)
	FormErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error)

	ColorPool = []lipgloss.Color{
		p.Primary,
		p.Secondary,
		p.Success,
		p.Warning,
		p.Error,
		p.Muted,
	}
}

// BandColor returns the countdown color for a band.
func BandColor(b sessionclock.Band) lipgloss.Color {
	switch b {
	case sessionclock.BandRed:
		return CurrentPalette.Error
	case sessionclock.BandAmber:
		return CurrentPalette.Warning
	default:
		return CurrentPalette.Success
	}
}

// BandStyle returns a bold style in the band's color.
func BandStyle(b sessionclock.Band) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(BandColor(b)).Bold(true)
}

// SeverityStyle colors a comment severity.
func SeverityStyle(s review.Severity) lipgloss.Style {
	c := CurrentPalette.Muted
	switch s {
	case review.SeverityCritical, review.SeverityHigh:
		c = CurrentPalette.Error
	case review.SeverityMedium:
		c = CurrentPalette.Warning
	case review.SeverityLow:
		c = CurrentPalette.Secondary
	}
	return lipgloss.NewStyle().Foreground(c)
}

// StatusStyle colors a session status.
func StatusStyle(s review.Status) lipgloss.Style {
	c := CurrentPalette.Muted
	switch s {
	case review.StatusActive:
		c = CurrentPalette.Success
	case review.StatusFinished:
		c = CurrentPalette.Primary
	case review.StatusExpired:
		c = CurrentPalette.Warning
	case review.StatusDeleted:
		c = CurrentPalette.Error
	}
	return lipgloss.NewStyle().Foreground(c)
}

// ColorForString returns a deterministic color for a given string.
// The same string always produces the same color.
func ColorForString(s string) lipgloss.Color {
	var hash uint32
	for _, c := range s {
		hash = hash*31 + uint32(c)
	}
	return ColorPool[hash%uint32(len(ColorPool))]
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func hexPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	p := CurrentPalette

	fg := hexPtr(p.Foreground)
	primary := hexPtr(p.Primary)
	secondary := hexPtr(p.Secondary)
	muted := hexPtr(p.Muted)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = hexPtr(p.Surface)
	cfg.H2.Color = primary
	cfg.H3.Color = primary
	cfg.H4.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
