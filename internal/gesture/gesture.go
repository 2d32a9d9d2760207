// Package gesture turns pointer events over the week grid into move,
// resize and edit intents. It never mutates the schedule; callers commit
// the returned Outcome.
package gesture

import (
	"math"
	"time"

	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/models"
)

// NoDay marks a pointer that is not over any day lane.
const NoDay models.Day = -1

// Lookup is the read side of the schedule store.
type Lookup interface {
	Get(key models.SlotKey) (models.Slot, bool)
	IsOccupied(key models.SlotKey) bool
	ListForDay(day models.Day) []models.Slot
}

type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	Click
	Cancel
)

// Event is one pointer event. X is the horizontal position as a fraction
// of the lane width.
type Event struct {
	Kind EventKind
	Day  models.Day
	X    float64
}

type HitKind int

const (
	HitNone HitKind = iota
	HitEmpty
	HitBar
	HitLeftEdge
	HitRightEdge
)

// Hit is what lies under a pointer position.
type Hit struct {
	Kind HitKind
	Key  models.SlotKey
}

type OutcomeKind int

const (
	None OutcomeKind = iota
	Moved
	Resized
	Conflict
	Cancelled
	Edit
)

func (k OutcomeKind) String() string {
	switch k {
	case Moved:
		return "moved"
	case Resized:
		return "resized"
	case Conflict:
		return "conflict"
	case Cancelled:
		return "cancelled"
	case Edit:
		return "edit"
	}
	return "none"
}

// Outcome is what the caller must commit after an event.
//
//   - Moved: From moves to To.
//   - Resized: From gets start To.Start and Duration.
//   - Conflict: the drop target To is taken; nothing changes.
//   - Edit: open the editor on To. Existing is false for empty space.
type Outcome struct {
	Kind     OutcomeKind
	From     models.SlotKey
	To       models.SlotKey
	Duration int
	Existing bool
}

type State int

const (
	Idle State = iota
	Pressed
	Dragging
	Resizing
)

// Preview is the view-only geometry of the slot being dragged or resized.
type Preview struct {
	Day      models.Day
	Start    models.Clock
	Duration int
	Source   models.SlotKey
}

type Options struct {
	Grid geometry.Grid
	// EdgeWidth is the width of a resize handle as a fraction of the lane.
	EdgeWidth float64
	// DragThreshold is how far the pointer must travel, as a fraction of
	// the lane, before a press becomes a drag.
	DragThreshold  float64
	SuppressWindow time.Duration
	Now            func() time.Time
}

// Controller runs one gesture at a time.
type Controller struct {
	grid      geometry.Grid
	lookup    Lookup
	edge      float64
	threshold float64
	suppress  time.Duration
	now       func() time.Time

	state State
	edgeK HitKind
	src   models.Slot
	downX float64
	downD models.Day
	grab  float64
	prev  Preview

	suppressKeys  []models.SlotKey
	suppressUntil time.Time
}

func New(lookup Lookup, opts Options) *Controller {
	c := &Controller{
		grid:      opts.Grid,
		lookup:    lookup,
		edge:      opts.EdgeWidth,
		threshold: opts.DragThreshold,
		suppress:  opts.SuppressWindow,
		now:       opts.Now,
	}
	if c.edge <= 0 {
		c.edge = c.grid.DurationToWidth(c.grid.SnapMinutes) / 2
	}
	if c.threshold <= 0 {
		c.threshold = c.grid.DurationToWidth(c.grid.SnapMinutes) / 2
	}
	if c.suppress <= 0 {
		c.suppress = constants.ClickSuppressWindow
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Controller) State() State { return c.state }

// Preview returns the in-flight geometry while dragging or resizing.
func (c *Controller) Preview() (Preview, bool) {
	if c.state != Dragging && c.state != Resizing {
		return Preview{}, false
	}
	return c.prev, true
}

// Handle advances the state machine.
func (c *Controller) Handle(ev Event) Outcome {
	switch ev.Kind {
	case PointerDown:
		return c.down(ev)
	case PointerMove:
		c.move(ev)
		return Outcome{}
	case PointerUp:
		return c.up(ev)
	case Click:
		return c.click(ev)
	case Cancel:
		if c.state == Idle {
			return Outcome{}
		}
		src := c.src.Key()
		c.reset()
		return Outcome{Kind: Cancelled, From: src, To: src}
	}
	return Outcome{}
}

// HitTest reports what lies at x in day's lane. Later-starting slots sit on
// top of earlier ones. Handles are only offered on bars wide enough to
// keep a grab area between them.
func (c *Controller) HitTest(day models.Day, x float64) Hit {
	if !day.Valid() || x < 0 || x > 1 {
		return Hit{Kind: HitNone}
	}
	slots := c.lookup.ListForDay(day)
	for i := len(slots) - 1; i >= 0; i-- {
		s := slots[i]
		left, err := c.grid.TimeToOffset(s.Start)
		if err != nil {
			continue
		}
		right := math.Min(1, left+c.grid.DurationToWidth(s.Duration))
		if x < left || x >= right {
			continue
		}
		width := right - left
		switch {
		case width >= 3*c.edge && x-left < c.edge:
			return Hit{Kind: HitLeftEdge, Key: s.Key()}
		case width >= 2*c.edge && right-x <= c.edge:
			return Hit{Kind: HitRightEdge, Key: s.Key()}
		}
		return Hit{Kind: HitBar, Key: s.Key()}
	}
	return Hit{Kind: HitEmpty}
}

func (c *Controller) down(ev Event) Outcome {
	if c.state != Idle {
		c.reset()
	}
	hit := c.HitTest(ev.Day, ev.X)
	switch hit.Kind {
	case HitBar, HitLeftEdge, HitRightEdge:
	default:
		return Outcome{}
	}
	slot, ok := c.lookup.Get(hit.Key)
	if !ok {
		return Outcome{}
	}
	left, _ := c.grid.TimeToOffset(slot.Start)
	c.src = slot
	c.downX, c.downD = ev.X, ev.Day
	c.grab = ev.X - left
	c.prev = Preview{Day: slot.Day, Start: slot.Start, Duration: slot.Duration, Source: slot.Key()}
	if hit.Kind == HitBar {
		c.state = Pressed
	} else {
		c.state = Resizing
		c.edgeK = hit.Kind
	}
	return Outcome{}
}

func (c *Controller) move(ev Event) {
	switch c.state {
	case Pressed:
		if ev.Day == c.downD && math.Abs(ev.X-c.downX) < c.threshold {
			return
		}
		c.state = Dragging
		fallthrough
	case Dragging:
		if !ev.Day.Valid() {
			return
		}
		c.prev.Day = ev.Day
		c.prev.Start = min(c.grid.OffsetToTime(ev.X-c.grab), c.grid.LatestStart(c.src.Duration))
	case Resizing:
		c.prev.Start, c.prev.Duration = c.resizeTo(ev.X)
	}
}

func (c *Controller) up(ev Event) Outcome {
	switch c.state {
	case Pressed:
		c.reset()
		return Outcome{}
	case Dragging:
		c.move(ev)
		src := c.src.Key()
		c.suppressAfter(src)
		if !ev.Day.Valid() {
			c.reset()
			return Outcome{Kind: Cancelled, From: src, To: src}
		}
		target := models.SlotKey{Day: c.prev.Day, Start: c.prev.Start}
		c.reset()
		switch {
		case target == src:
			return Outcome{Kind: Cancelled, From: src, To: src}
		case c.lookup.IsOccupied(target):
			return Outcome{Kind: Conflict, From: src, To: target}
		}
		c.suppressAfter(src, target)
		return Outcome{Kind: Moved, From: src, To: target, Duration: c.src.Duration}
	case Resizing:
		start, duration := c.resizeTo(ev.X)
		src := c.src.Key()
		target := models.SlotKey{Day: src.Day, Start: start}
		c.reset()
		c.suppressAfter(src)
		switch {
		case target == src && duration == c.src.Duration:
			return Outcome{Kind: Cancelled, From: src, To: src}
		case target != src && c.lookup.IsOccupied(target):
			return Outcome{Kind: Conflict, From: src, To: target}
		}
		c.suppressAfter(src, target)
		return Outcome{Kind: Resized, From: src, To: target, Duration: duration}
	}
	return Outcome{}
}

// resizeTo computes the candidate start and duration for a handle at x.
// The opposite edge stays fixed and the bar never shrinks below one snap
// unit or leaves the window.
func (c *Controller) resizeTo(x float64) (models.Clock, int) {
	snap := c.grid.SnapMinutes
	start := c.src.Start.Minutes()
	end := c.src.End().Minutes()
	at := c.grid.Start().Minutes() + c.grid.Snap(int(math.Round(x*float64(c.grid.TotalMinutes()))))

	if c.edgeK == HitLeftEdge {
		newStart := clamp(at, c.grid.Start().Minutes(), end-snap)
		return models.Clock(newStart), end - newStart
	}
	newEnd := clamp(at, start+snap, c.grid.End().Minutes())
	return c.src.Start, newEnd - start
}

func (c *Controller) click(ev Event) Outcome {
	if c.state != Idle {
		return Outcome{}
	}
	hit := c.HitTest(ev.Day, ev.X)
	switch hit.Kind {
	case HitNone:
		return Outcome{}
	case HitEmpty:
		return Outcome{Kind: Edit, To: c.hourAt(ev.Day, ev.X)}
	}
	if c.suppressed(hit.Key) {
		return Outcome{}
	}
	return Outcome{Kind: Edit, From: hit.Key, To: hit.Key, Existing: true}
}

// hourAt returns the key of the whole hour under x.
func (c *Controller) hourAt(day models.Day, x float64) models.SlotKey {
	minutes := c.grid.Start().Minutes() + int(x*float64(c.grid.TotalMinutes()))
	hour := clamp(minutes/60, c.grid.StartHour, c.grid.EndHour-1)
	return models.SlotKey{Day: day, Start: models.NewClock(hour, 0)}
}

func (c *Controller) suppressAfter(keys ...models.SlotKey) {
	c.suppressKeys = append(c.suppressKeys[:0], keys...)
	c.suppressUntil = c.now().Add(c.suppress)
}

func (c *Controller) suppressed(key models.SlotKey) bool {
	if !c.now().Before(c.suppressUntil) {
		return false
	}
	for _, k := range c.suppressKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (c *Controller) reset() {
	c.state = Idle
	c.edgeK = HitNone
	c.src = models.Slot{}
	c.prev = Preview{}
	c.grab = 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
