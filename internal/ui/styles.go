package ui

import (
	"strings"

	"tally/internal/config"
	"tally/internal/tally"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the resolved theme: the colors picked from the config and every
// style the panes render with.
type Styles struct {
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color
	ColorSelection lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorDanger    lipgloss.Color

	// Frame
	TitleStyle       lipgloss.Style
	DateStyle        lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style

	// Task rows
	TaskNameStyle     lipgloss.Style
	TaskArchivedStyle lipgloss.Style
	TaskSelectedStyle lipgloss.Style
	CountStyle        lipgloss.Style
	CountTodayStyle   lipgloss.Style

	// Summary cards and range selector
	CardStyle          lipgloss.Style
	CardLabelStyle     lipgloss.Style
	CardValueStyle     lipgloss.Style
	RangeActiveStyle   lipgloss.Style
	RangeInactiveStyle lipgloss.Style

	ActivityTimeStyle lipgloss.Style
	ActivityQtyStyle  lipgloss.Style

	// Footer
	HelpStyle        lipgloss.Style
	HelpKeyStyle     lipgloss.Style
	StatusStyle      lipgloss.Style
	ErrorStyle       lipgloss.Style
	InputPromptStyle lipgloss.Style
}

// NewStyles resolves the theme section of cfg.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme resolves a theme. Blank colors fall back to the
// built-in dark palette.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{
		ColorPrimary:   hexOr(theme.Primary, "#4F46E5"),
		ColorAccent:    hexOr(theme.Accent, "#0EA5E9"),
		ColorMuted:     hexOr(theme.Muted, "#6B7280"),
		ColorText:      hexOr(theme.Text, "#F9FAFB"),
		ColorTextMuted: "#9CA3AF",
		ColorSelection: hexOr(theme.Background, "#374151"),
		ColorSuccess:   "#16A34A",
		ColorWarning:   "#D97706",
		ColorDanger:    "#DC2626",
	}
	s.build()
	return s
}

func hexOr(hex, fallback string) lipgloss.Color {
	if hex = strings.TrimSpace(hex); hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(fallback)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func boxed(border lipgloss.Border, c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(border).BorderForeground(c).Padding(0, 1)
}

func (s *Styles) build() {
	s.TitleStyle = fg(s.ColorText).Background(s.ColorPrimary).Bold(true).Padding(0, 1)
	s.DateStyle = fg(s.ColorTextMuted)
	s.PaneStyle = boxed(lipgloss.RoundedBorder(), s.ColorMuted)
	s.PaneFocusedStyle = boxed(lipgloss.RoundedBorder(), s.ColorPrimary)
	s.PaneTitleStyle = fg(s.ColorPrimary).Bold(true)

	s.TaskNameStyle = fg(s.ColorText)
	s.TaskArchivedStyle = fg(s.ColorTextMuted).Italic(true)
	s.TaskSelectedStyle = fg(s.ColorText).Background(s.ColorSelection).Bold(true)
	s.CountStyle = fg(s.ColorTextMuted)
	s.CountTodayStyle = fg(s.ColorSuccess).Bold(true)

	s.CardStyle = boxed(lipgloss.NormalBorder(), s.ColorMuted)
	s.CardLabelStyle = fg(s.ColorTextMuted)
	s.CardValueStyle = fg(s.ColorText).Bold(true)
	s.RangeActiveStyle = fg(s.ColorPrimary).Bold(true)
	s.RangeInactiveStyle = fg(s.ColorTextMuted)

	s.ActivityTimeStyle = fg(s.ColorTextMuted)
	s.ActivityQtyStyle = fg(s.ColorWarning).Bold(true)

	s.HelpStyle = fg(s.ColorTextMuted)
	s.HelpKeyStyle = fg(s.ColorAccent).Bold(true)
	s.StatusStyle = fg(s.ColorSuccess).Italic(true)
	s.ErrorStyle = fg(s.ColorDanger).Bold(true)
	s.InputPromptStyle = fg(s.ColorPrimary).Bold(true)
}

// Swatch renders the "●" marker in a task's palette color.
func (s *Styles) Swatch(color string) string {
	if color == "" {
		color = tally.PaletteColor(0)
	}
	return fg(lipgloss.Color(color)).Render("●")
}

// RenderHelp renders key/description pairs as "[k] desc  [k] desc".
// A trailing key without a description is dropped.
func (s *Styles) RenderHelp(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKeyStyle.Render("["+pairs[i]+"]")+" "+s.HelpStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
