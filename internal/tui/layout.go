package tui

import (
	"math"

	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/gesture"
	"github.com/julianstephens/weekgrid/internal/models"
)

const (
	labelWidth = 5
	rowsPerDay = 2
	// gridTop is the first screen row of the Monday lane: one title row and
	// one hour ruler above it.
	gridTop = 2
	// minCellsPerHour keeps lanes usable on narrow terminals.
	minCellsPerHour = 2
)

// layout maps terminal cells onto lane fractions and back.
type layout struct {
	grid      geometry.Grid
	left      int
	top       int
	laneWidth int
}

func newLayout(grid geometry.Grid, width int) layout {
	hours := grid.EndHour - grid.StartHour
	lane := width - labelWidth - 1
	if lane < hours*minCellsPerHour {
		lane = hours * minCellsPerHour
	}
	return layout{grid: grid, left: labelWidth, top: gridTop, laneWidth: lane}
}

// cell is the width of one terminal column as a lane fraction.
func (l layout) cell() float64 {
	return 1 / float64(l.laneWidth)
}

// event converts a mouse position to the day lane under it and the lane
// fraction at the centre of the cell. Rows outside the grid give NoDay.
func (l layout) event(x, y int) (models.Day, float64) {
	frac := (float64(x-l.left) + 0.5) / float64(l.laneWidth)
	rel := y - l.top
	if rel < 0 || rel >= len(models.Days)*rowsPerDay {
		return gesture.NoDay, frac
	}
	return models.Day(rel / rowsPerDay), frac
}

// column returns the lane column where c starts.
func (l layout) column(c models.Clock) int {
	off, err := l.grid.TimeToOffset(c)
	if err != nil {
		if c < l.grid.Start() {
			return 0
		}
		return l.laneWidth
	}
	return int(math.Round(off * float64(l.laneWidth)))
}

// span returns the first column and width of a bar, at least one cell wide
// and clipped to the lane.
func (l layout) span(start models.Clock, duration int) (int, int) {
	col := l.column(start)
	end := l.column(start.Add(duration))
	if end > l.laneWidth {
		end = l.laneWidth
	}
	width := end - col
	if width < 1 {
		width = 1
	}
	return col, width
}

// row returns the first screen row of day's lane.
func (l layout) row(day models.Day) int {
	return l.top + int(day)*rowsPerDay
}
