// Package agenda lists the active week's slots day by day in a scrollable
// viewport.
package agenda

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/schedule"
	"github.com/julianstephens/weekgrid/internal/utils"
)

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	overlapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type Model struct {
	viewport viewport.Model
	week     models.WeekKey
	slots    []models.Slot
	overlaps schedule.KeySet
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetWeek replaces the listed slots. slots must be ordered by day and start.
func (m *Model) SetWeek(week models.WeekKey, slots []models.Slot, overlaps schedule.KeySet) {
	m.week = week
	m.slots = slots
	m.overlaps = overlaps
	m.Render()
}

func (m *Model) Render() {
	if len(m.slots) == 0 {
		m.viewport.SetContent(fmt.Sprintf("Nothing planned for %s.", utils.WeekRange(m.week)))
		return
	}

	var b strings.Builder
	day := models.Day(-1)
	for _, slot := range m.slots {
		if slot.Day != day {
			if day >= 0 {
				b.WriteString("\n")
			}
			day = slot.Day
			b.WriteString(dayStyle.Render(day.String()) + "\n")
		}

		status := string(slot.Category.Normalize()) + " · " + utils.FormatDuration(slot.Duration)
		if slot.Reminder {
			status += " · reminder"
		}
		line := fmt.Sprintf("  %s %s %s",
			timeStyle.Render(fmt.Sprintf("%s - %s", slot.Start, slot.End())),
			taskStyle.Render(slot.Text),
			statusStyle.Render(status),
		)
		if m.overlaps.Has(slot.Key()) {
			line += " " + overlapStyle.Render("overlaps")
		}
		b.WriteString(line + "\n")
	}
	m.viewport.SetContent(b.String())
}
