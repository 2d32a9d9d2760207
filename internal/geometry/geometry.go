// Package geometry maps between wall-clock time and fractional positions on
// the schedule grid.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/models"
)

// ErrOutsideWindow is returned for times before the window start or after its end.
var ErrOutsideWindow = errors.New("time outside display window")

// ErrPastWindowEnd is returned for slots that would end after the window.
var ErrPastWindowEnd = errors.New("slot ends after display window")

// Grid is a display window [StartHour, EndHour) with a snap unit in minutes.
type Grid struct {
	StartHour   int
	EndHour     int
	SnapMinutes int
}

// Default returns the 05:00-24:00 window with 15 minute snapping.
func Default() Grid {
	return Grid{
		StartHour:   constants.DefaultStartHour,
		EndHour:     constants.DefaultEndHour,
		SnapMinutes: constants.DefaultSnapMinutes,
	}
}

func (g Grid) Validate() error {
	if g.StartHour < 0 || g.EndHour > 24 || g.StartHour >= g.EndHour {
		return fmt.Errorf("invalid display window %02d:00-%02d:00", g.StartHour, g.EndHour)
	}
	if g.SnapMinutes <= 0 || g.SnapMinutes > 60 || 60%g.SnapMinutes != 0 {
		return fmt.Errorf("snap unit must divide an hour, got %d minutes", g.SnapMinutes)
	}
	return nil
}

func (g Grid) Start() models.Clock { return models.NewClock(g.StartHour, 0) }
func (g Grid) End() models.Clock   { return models.NewClock(g.EndHour, 0) }

// TotalMinutes is the length of the window.
func (g Grid) TotalMinutes() int {
	return (g.EndHour - g.StartHour) * 60
}

// Contains reports whether a slot may start at c.
func (g Grid) Contains(c models.Clock) bool {
	return c >= g.Start() && c < g.End()
}

// Fits reports whether a slot of duration minutes starting at c lies
// entirely inside the window.
func (g Grid) Fits(c models.Clock, duration int) bool {
	return g.Contains(c) && c.Add(duration) <= g.End()
}

// MaxDuration is the longest slot that can start at c, or zero when c is
// outside the window.
func (g Grid) MaxDuration(c models.Clock) int {
	if !g.Contains(c) {
		return 0
	}
	return g.End().Minutes() - c.Minutes()
}

// LatestStart is the last start at which a slot of duration minutes still
// ends inside the window. Slots longer than the window get the window start.
func (g Grid) LatestStart(duration int) models.Clock {
	latest := g.End().Add(-duration)
	if latest < g.Start() {
		return g.Start()
	}
	return latest
}

// TimeToOffset maps t to a fraction of the window. The window end maps to 1.
func (g Grid) TimeToOffset(t models.Clock) (float64, error) {
	if t < g.Start() || t > g.End() {
		return 0, fmt.Errorf("%w: %s", ErrOutsideWindow, t)
	}
	return float64(t-g.Start()) / float64(g.TotalMinutes()), nil
}

// OffsetToTime maps a fraction back to a time, rounded to the snap unit and
// clamped to the last start that fits inside the window.
func (g Grid) OffsetToTime(f float64) models.Clock {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	snap := float64(g.SnapMinutes)
	minutes := int(math.Round(f*float64(g.TotalMinutes())/snap)) * g.SnapMinutes
	if last := g.TotalMinutes() - g.SnapMinutes; minutes > last {
		minutes = last
	}
	return g.Start().Add(minutes)
}

// DurationToWidth maps a duration in minutes to a fraction of the window.
func (g Grid) DurationToWidth(minutes int) float64 {
	return float64(minutes) / float64(g.TotalMinutes())
}

// WidthToDuration maps a fraction to minutes, rounded to the snap unit and
// never shorter than one unit.
func (g Grid) WidthToDuration(w float64) int {
	snap := float64(g.SnapMinutes)
	minutes := int(math.Round(w*float64(g.TotalMinutes())/snap)) * g.SnapMinutes
	if minutes < g.SnapMinutes {
		return g.SnapMinutes
	}
	return minutes
}

// Snap rounds minutes to the nearest snap unit.
func (g Grid) Snap(minutes int) int {
	return int(math.Round(float64(minutes)/float64(g.SnapMinutes))) * g.SnapMinutes
}

// SnapClock rounds c to the nearest snap unit.
func (g Grid) SnapClock(c models.Clock) models.Clock {
	return models.Clock(g.Snap(c.Minutes()))
}

// SnapDuration rounds a duration to the snap unit, floored at one unit.
func (g Grid) SnapDuration(minutes int) int {
	d := g.Snap(minutes)
	if d < g.SnapMinutes {
		return g.SnapMinutes
	}
	return d
}

// Hours returns the ruler labels of the window.
func (g Grid) Hours() []models.Clock {
	hours := make([]models.Clock, 0, g.EndHour-g.StartHour)
	for h := g.StartHour; h < g.EndHour; h++ {
		hours = append(hours, models.NewClock(h, 0))
	}
	return hours
}
