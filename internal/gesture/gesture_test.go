package gesture

import (
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/schedule"
)

type fixture struct {
	grid  geometry.Grid
	store *schedule.Store
	ctrl  *Controller
	now   time.Time
}

func newFixture(t *testing.T, slots ...models.Slot) *fixture {
	t.Helper()
	f := &fixture{grid: geometry.Default(), now: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)}
	f.store = schedule.New(f.grid)
	f.store.Replace(slots)
	f.ctrl = New(f.store, Options{Grid: f.grid, Now: func() time.Time { return f.now }})
	return f
}

func (f *fixture) x(t *testing.T, hour, minute int) float64 {
	t.Helper()
	off, err := f.grid.TimeToOffset(models.NewClock(hour, minute))
	if err != nil {
		t.Fatalf("TimeToOffset(%02d:%02d) error = %v", hour, minute, err)
	}
	return off
}

func slot(day models.Day, hour, minute, duration int) models.Slot {
	return models.Slot{Day: day, Start: models.NewClock(hour, minute), Text: "slot", Duration: duration}
}

func key(day models.Day, hour, minute int) models.SlotKey {
	return models.SlotKey{Day: day, Start: models.NewClock(hour, minute)}
}

func TestMoveOntoOccupiedKeyIsConflict(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60), slot(models.Monday, 10, 0, 60))
	before := f.store.Snapshot()

	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 30)})
	f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Monday, X: f.x(t, 10, 0)})
	out := f.ctrl.Handle(Event{Kind: PointerUp, Day: models.Monday, X: f.x(t, 10, 30)})

	want := Outcome{Kind: Conflict, From: key(models.Monday, 9, 0), To: key(models.Monday, 10, 0)}
	if out != want {
		t.Errorf("Outcome = %+v, want %+v", out, want)
	}
	if after := f.store.Snapshot(); !reflect.DeepEqual(after, before) {
		t.Errorf("store changed: %+v", after)
	}
	if f.ctrl.State() != Idle {
		t.Errorf("State() = %v, want Idle", f.ctrl.State())
	}
}

func TestMoveToAnotherDay(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60))

	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 30)})
	f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Tuesday, X: f.x(t, 11, 0)})

	p, ok := f.ctrl.Preview()
	if !ok || p.Day != models.Tuesday || p.Start != models.NewClock(10, 30) || p.Duration != 60 {
		t.Errorf("Preview() = %+v, %v", p, ok)
	}
	if !f.store.IsOccupied(key(models.Monday, 9, 0)) || f.store.Len() != 1 {
		t.Error("store mutated mid-gesture")
	}

	out := f.ctrl.Handle(Event{Kind: PointerUp, Day: models.Tuesday, X: f.x(t, 11, 37)})
	want := Outcome{Kind: Moved, From: key(models.Monday, 9, 0), To: key(models.Tuesday, 11, 0), Duration: 60}
	if out != want {
		t.Errorf("Outcome = %+v, want %+v", out, want)
	}
}

func TestDragStopsAtWindowEnd(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60))

	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 30)})
	f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Monday, X: f.x(t, 24, 0)})
	if p, _ := f.ctrl.Preview(); p.Start != models.NewClock(23, 0) {
		t.Errorf("Preview().Start = %s, want 23:00", p.Start)
	}

	out := f.ctrl.Handle(Event{Kind: PointerUp, Day: models.Monday, X: f.x(t, 24, 0)})
	want := Outcome{Kind: Moved, From: key(models.Monday, 9, 0), To: key(models.Monday, 23, 0), Duration: 60}
	if out != want {
		t.Errorf("Outcome = %+v, want %+v", out, want)
	}
	if !f.grid.Fits(out.To.Start, out.Duration) {
		t.Errorf("dropped slot %s/%d does not fit the window", out.To.Start, out.Duration)
	}
}

func TestDropOnSourceKeyIsNoop(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60))

	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 30)})
	f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Monday, X: f.x(t, 11, 0)})
	out := f.ctrl.Handle(Event{Kind: PointerUp, Day: models.Monday, X: f.x(t, 9, 35)})

	if out.Kind != Cancelled {
		t.Errorf("Outcome = %+v, want Cancelled", out)
	}
}

func TestDropOutsideLanesCancels(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60))

	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 30)})
	f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Monday, X: f.x(t, 12, 0)})
	if out := f.ctrl.Handle(Event{Kind: PointerUp, Day: NoDay, X: 0.5}); out.Kind != Cancelled {
		t.Errorf("Outcome = %+v, want Cancelled", out)
	}
}

func TestCancelEvent(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60))
	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 30)})
	f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Monday, X: f.x(t, 12, 0)})

	if out := f.ctrl.Handle(Event{Kind: Cancel}); out.Kind != Cancelled {
		t.Errorf("Outcome = %+v, want Cancelled", out)
	}
	if _, ok := f.ctrl.Preview(); ok {
		t.Error("Preview() still set after cancel")
	}
	if out := f.ctrl.Handle(Event{Kind: Cancel}); out.Kind != None {
		t.Errorf("Cancel while idle = %+v, want None", out)
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name    string
		grabAt  models.Clock
		offset  float64
		release models.Clock
		want    Outcome
	}{
		{
			name:    "left edge keeps right edge",
			grabAt:  models.NewClock(9, 0),
			offset:  0.001,
			release: models.NewClock(9, 15),
			want:    Outcome{Kind: Resized, From: key(models.Monday, 9, 0), To: key(models.Monday, 9, 15), Duration: 45},
		},
		{
			name:    "left edge grows earlier",
			grabAt:  models.NewClock(9, 0),
			offset:  0.001,
			release: models.NewClock(8, 30),
			want:    Outcome{Kind: Resized, From: key(models.Monday, 9, 0), To: key(models.Monday, 8, 30), Duration: 90},
		},
		{
			name:    "left edge floors at one unit",
			grabAt:  models.NewClock(9, 0),
			offset:  0.001,
			release: models.NewClock(11, 0),
			want:    Outcome{Kind: Resized, From: key(models.Monday, 9, 0), To: key(models.Monday, 9, 45), Duration: 15},
		},
		{
			name:    "right edge",
			grabAt:  models.NewClock(10, 0),
			offset:  -0.001,
			release: models.NewClock(11, 30),
			want:    Outcome{Kind: Resized, From: key(models.Monday, 9, 0), To: key(models.Monday, 9, 0), Duration: 150},
		},
		{
			name:    "right edge floors at one unit",
			grabAt:  models.NewClock(10, 0),
			offset:  -0.001,
			release: models.NewClock(6, 0),
			want:    Outcome{Kind: Resized, From: key(models.Monday, 9, 0), To: key(models.Monday, 9, 0), Duration: 15},
		},
		{
			name:    "right edge clamps to window end",
			grabAt:  models.NewClock(10, 0),
			offset:  -0.001,
			release: models.NewClock(24, 0),
			want:    Outcome{Kind: Resized, From: key(models.Monday, 9, 0), To: key(models.Monday, 9, 0), Duration: 900},
		},
		{
			name:    "unchanged",
			grabAt:  models.NewClock(10, 0),
			offset:  -0.001,
			release: models.NewClock(10, 0),
			want:    Outcome{Kind: Cancelled, From: key(models.Monday, 9, 0), To: key(models.Monday, 9, 0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, slot(models.Monday, 9, 0, 60))
			grab := f.x(t, tt.grabAt.Hour(), tt.grabAt.Minute()) + tt.offset

			f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: grab})
			if f.ctrl.State() != Resizing {
				t.Fatalf("State() = %v, want Resizing", f.ctrl.State())
			}
			release := f.x(t, tt.release.Hour(), tt.release.Minute())
			f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Monday, X: release})
			if got, _ := f.store.Get(key(models.Monday, 9, 0)); got.Duration != 60 {
				t.Error("store mutated mid-resize")
			}
			if out := f.ctrl.Handle(Event{Kind: PointerUp, Day: models.Monday, X: release}); out != tt.want {
				t.Errorf("Outcome = %+v, want %+v", out, tt.want)
			}
		})
	}
}

func TestLeftResizeOntoOccupiedKey(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 8, 0, 30), slot(models.Monday, 9, 0, 60))

	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 0) + 0.001})
	out := f.ctrl.Handle(Event{Kind: PointerUp, Day: models.Monday, X: f.x(t, 8, 0)})

	if out.Kind != Conflict || out.To != key(models.Monday, 8, 0) {
		t.Errorf("Outcome = %+v, want Conflict at 08:00", out)
	}
}

func TestClickOpensEditor(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60))

	tests := []struct {
		name string
		ev   Event
		want Outcome
	}{
		{"existing bar", Event{Kind: Click, Day: models.Monday, X: f.x(t, 9, 30)},
			Outcome{Kind: Edit, From: key(models.Monday, 9, 0), To: key(models.Monday, 9, 0), Existing: true}},
		{"empty space picks the hour", Event{Kind: Click, Day: models.Wednesday, X: f.x(t, 13, 40)},
			Outcome{Kind: Edit, To: key(models.Wednesday, 13, 0)}},
		{"last hour", Event{Kind: Click, Day: models.Sunday, X: 1},
			Outcome{Kind: Edit, To: key(models.Sunday, 23, 0)}},
		{"outside lanes", Event{Kind: Click, Day: NoDay, X: 0.5}, Outcome{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := f.ctrl.Handle(tt.ev); out != tt.want {
				t.Errorf("Outcome = %+v, want %+v", out, tt.want)
			}
		})
	}
}

func TestPressWithoutDragIsNotAGesture(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60))

	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 30)})
	f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Monday, X: f.x(t, 9, 31)})
	if f.ctrl.State() != Pressed {
		t.Fatalf("State() = %v, want Pressed below the drag threshold", f.ctrl.State())
	}
	if out := f.ctrl.Handle(Event{Kind: PointerUp, Day: models.Monday, X: f.x(t, 9, 31)}); out.Kind != None {
		t.Errorf("Outcome = %+v, want None", out)
	}
	if out := f.ctrl.Handle(Event{Kind: Click, Day: models.Monday, X: f.x(t, 9, 31)}); out.Kind != Edit {
		t.Errorf("click after a plain press = %+v, want Edit", out)
	}
}

func TestClickSuppressedAfterDrag(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60))

	f.ctrl.Handle(Event{Kind: PointerDown, Day: models.Monday, X: f.x(t, 9, 30)})
	f.ctrl.Handle(Event{Kind: PointerMove, Day: models.Monday, X: f.x(t, 12, 0)})
	out := f.ctrl.Handle(Event{Kind: PointerUp, Day: models.Monday, X: f.x(t, 12, 30)})
	if out.Kind != Moved {
		t.Fatalf("Outcome = %+v, want Moved", out)
	}
	moved, _ := f.store.Get(out.From)
	f.store.Remove(out.From)
	f.store.Upsert(out.To, moved)

	click := Event{Kind: Click, Day: models.Monday, X: f.x(t, 12, 30)}
	if got := f.ctrl.Handle(click); got.Kind != None {
		t.Errorf("click right after drag = %+v, want suppressed", got)
	}
	f.now = f.now.Add(time.Second)
	if got := f.ctrl.Handle(click); got.Kind != Edit {
		t.Errorf("click after the window = %+v, want Edit", got)
	}
}

func TestHitTest(t *testing.T) {
	f := newFixture(t, slot(models.Monday, 9, 0, 60), slot(models.Monday, 12, 0, 15))

	tests := []struct {
		name string
		day  models.Day
		x    float64
		want Hit
	}{
		{"left handle", models.Monday, f.x(t, 9, 0) + 0.001, Hit{HitLeftEdge, key(models.Monday, 9, 0)}},
		{"right handle", models.Monday, f.x(t, 10, 0) - 0.001, Hit{HitRightEdge, key(models.Monday, 9, 0)}},
		{"bar", models.Monday, f.x(t, 9, 30), Hit{HitBar, key(models.Monday, 9, 0)}},
		{"narrow bar has no left handle", models.Monday, f.x(t, 12, 0) + 0.001, Hit{HitBar, key(models.Monday, 12, 0)}},
		{"past the end", models.Monday, f.x(t, 10, 0) + 0.001, Hit{Kind: HitEmpty}},
		{"other day", models.Tuesday, f.x(t, 9, 30), Hit{Kind: HitEmpty}},
		{"no lane", NoDay, 0.5, Hit{Kind: HitNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ctrl.HitTest(tt.day, tt.x); got != tt.want {
				t.Errorf("HitTest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
