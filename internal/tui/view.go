package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/weekgrid/internal/gesture"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/schedule"
	"github.com/julianstephens/weekgrid/internal/tui/components/goals"
	"github.com/julianstephens/weekgrid/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeEditor, modePicker, modeJump, modeGoalForm:
		return docStyle.Render(m.form.View())
	case modeAgenda:
		return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), "", m.agenda.View(), subtleStyle.Render("esc back"))
	case modeGoals:
		return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), "", m.goals.View(), subtleStyle.Render("esc back"))
	}

	// The header and ruler must stay one row each: mouse rows are mapped
	// from gridTop.
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewRuler(),
		m.viewLanes(),
		m.viewFooter(),
		m.help.View(m.keys),
	)
}

func (m Model) viewHeader() string {
	week := m.rec.Week()
	parts := []string{titleStyle.Render("weekgrid"), utils.WeekRange(week)}
	if week != "" && week == m.rec.StandardWeek() {
		parts = append(parts, "★ standard")
	}
	if m.rec.Online() {
		parts = append(parts, subtleStyle.Render("online"))
	} else {
		parts = append(parts, subtleStyle.Render("offline"))
	}
	if m.loading {
		parts = append(parts, m.spinner.View()+" syncing")
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewRuler() string {
	grid := m.rec.Grid()
	cells := []rune(strings.Repeat(" ", m.layout.laneWidth))
	next := 0
	for _, hour := range grid.Hours() {
		col := m.layout.column(hour)
		label := fmt.Sprintf("%02d", hour.Hour())
		if col < next || col+len(label) > len(cells) {
			continue
		}
		copy(cells[col:], []rune(label))
		next = col + len(label) + 1
	}
	return strings.Repeat(" ", labelWidth) + rulerStyle.Render(string(cells))
}

type bar struct {
	col   int
	width int
	text  [rowsPerDay]string
	style lipgloss.Style
}

func (m Model) viewLanes() string {
	store := m.rec.Store()
	overlaps := store.AllOverlaps()
	preview, dragging := m.ctl.Preview()
	today := models.WeekOf(m.now()) == m.rec.Week()
	todayDay := models.Day((int(m.now().Weekday()) + 6) % 7)

	hourCols := make(map[int]bool)
	for _, hour := range m.rec.Grid().Hours() {
		hourCols[m.layout.column(hour)] = true
	}

	lanes := make([]string, 0, len(models.Days))
	for _, day := range models.Days {
		bars := m.dayBars(store, day, overlaps)
		if dragging && preview.Day == day {
			bars = append(bars, m.previewBar(store, preview))
		}

		label := dayLabelStyle
		if today && day == todayDay {
			label = todayLabelStyle
		}
		rows := make([]string, rowsPerDay)
		for r := range rows {
			prefix := strings.Repeat(" ", labelWidth)
			if r == 0 {
				prefix = label.Render(fmt.Sprintf("%-*s", labelWidth, day.Short()))
			}
			rows[r] = prefix + renderRow(bars, r, m.layout.laneWidth, hourCols)
		}
		lanes = append(lanes, strings.Join(rows, "\n"))
	}
	return strings.Join(lanes, "\n")
}

func (m Model) dayBars(store *schedule.Store, day models.Day, overlaps schedule.KeySet) []bar {
	slots := store.ListForDay(day)
	bars := make([]bar, 0, len(slots))
	for _, slot := range slots {
		col, width := m.layout.span(slot.Start, slot.Duration)
		overlap := overlaps.Has(slot.Key())
		saving := m.rec.Saving(slot.Key())
		bars = append(bars, bar{
			col:   col,
			width: width,
			text: [rowsPerDay]string{
				" " + slot.Text,
				" " + slot.Start.String() + " " + utils.FormatDuration(slot.Duration),
			},
			style: barStyle(slot.DisplayColor(), overlap, saving),
		})
	}
	return bars
}

func (m Model) previewBar(store *schedule.Store, p gesture.Preview) bar {
	col, width := m.layout.span(p.Start, p.Duration)
	text := ""
	if src, ok := store.Get(p.Source); ok {
		text = src.Text
	}
	return bar{
		col:   col,
		width: width,
		text: [rowsPerDay]string{
			" " + text,
			" " + p.Start.String() + "-" + p.Start.Add(p.Duration).String(),
		},
		style: previewStyle,
	}
}

// renderRow draws one terminal row of a lane. Later bars are drawn over
// earlier ones.
func renderRow(bars []bar, row, width int, hourCols map[int]bool) string {
	owner := make([]int, width)
	for i := range owner {
		owner[i] = -1
	}
	for i, b := range bars {
		for c := b.col; c < b.col+b.width && c < width; c++ {
			if c >= 0 {
				owner[c] = i
			}
		}
	}

	var out strings.Builder
	for c := 0; c < width; {
		end := c
		for end < width && owner[end] == owner[c] {
			end++
		}
		if owner[c] < 0 {
			cells := make([]rune, end-c)
			for i := range cells {
				cells[i] = ' '
				if hourCols[c+i] {
					cells[i] = '·'
				}
			}
			out.WriteString(emptyLaneStyle.Render(string(cells)))
		} else {
			b := bars[owner[c]]
			out.WriteString(b.style.Render(fit(b.text[row], c-b.col, end-c)))
		}
		c = end
	}
	return out.String()
}

// fit returns n runes of s starting at rune from, padded with spaces.
func fit(s string, from, n int) string {
	r := []rune(s)
	if from < len(r) {
		r = r[from:]
	} else {
		r = nil
	}
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + strings.Repeat(" ", n-len(r))
}

func (m Model) viewFooter() string {
	notice := ""
	if m.notice != "" {
		style := noticeStyle
		if strings.HasPrefix(m.notice, "Could not") {
			style = dangerStyle
		}
		notice = style.Render(m.notice)
	}
	summary := "goals " + goals.Summary(m.rec.Goals(models.GoalWork), m.rec.Goals(models.GoalPersonal))
	if pending := m.rec.Pending(); pending > 0 {
		summary += fmt.Sprintf(" · %d pending", pending)
	}
	return lipgloss.JoinVertical(lipgloss.Left, notice, subtleStyle.Render(summary))
}
