package tui

import "github.com/charmbracelet/lipgloss"

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type palette struct {
	accent, subtle, ruler, label, emptyLane lipgloss.Color
	barText, previewBg, previewFg           lipgloss.Color
	overlap, danger, notice                 lipgloss.Color
}

var palettes = map[string]palette{
	ThemeDark: {
		accent:    "205",
		subtle:    "240",
		ruler:     "241",
		label:     "252",
		emptyLane: "238",
		barText:   "#1A1A1A",
		previewBg: "240",
		previewFg: "231",
		overlap:   "#B00020",
		danger:    "196",
		notice:    "214",
	},
	ThemeLight: {
		accent:    "162",
		subtle:    "245",
		ruler:     "244",
		label:     "236",
		emptyLane: "252",
		barText:   "#1A1A1A",
		previewBg: "250",
		previewFg: "232",
		overlap:   "#B00020",
		danger:    "160",
		notice:    "130",
	},
}

var (
	titleStyle      lipgloss.Style
	subtleStyle     lipgloss.Style
	rulerStyle      lipgloss.Style
	dayLabelStyle   lipgloss.Style
	todayLabelStyle lipgloss.Style
	emptyLaneStyle  lipgloss.Style
	previewStyle    lipgloss.Style
	dangerStyle     lipgloss.Style
	noticeStyle     lipgloss.Style

	barTextColor lipgloss.Color
	overlapColor lipgloss.Color

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

func init() {
	applyTheme(ThemeDark)
}

// applyTheme swaps the package styles to the named palette and returns the
// name actually applied. Unknown names fall back to dark.
func applyTheme(name string) string {
	p, ok := palettes[name]
	if !ok {
		name, p = ThemeDark, palettes[ThemeDark]
	}

	titleStyle = lipgloss.NewStyle().Foreground(p.accent).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(p.subtle)
	rulerStyle = lipgloss.NewStyle().Foreground(p.ruler)
	dayLabelStyle = lipgloss.NewStyle().Foreground(p.label).Bold(true)
	todayLabelStyle = dayLabelStyle.Foreground(p.accent)
	emptyLaneStyle = lipgloss.NewStyle().Foreground(p.emptyLane)
	previewStyle = lipgloss.NewStyle().
		Background(p.previewBg).
		Foreground(p.previewFg).
		Bold(true)
	dangerStyle = lipgloss.NewStyle().Foreground(p.danger).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(p.notice).Italic(true)

	barTextColor = p.barText
	overlapColor = p.overlap
	return name
}

func nextTheme(name string) string {
	if name == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// barStyle colours a bar by category. Overlapping bars get red underlined
// text; bars with a remote call in flight are dimmed.
func barStyle(color string, overlap, saving bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Background(lipgloss.Color(color)).
		Foreground(barTextColor)
	if overlap {
		s = s.Foreground(overlapColor).Bold(true).Underline(true)
	}
	if saving {
		s = s.Faint(true)
	}
	return s
}
