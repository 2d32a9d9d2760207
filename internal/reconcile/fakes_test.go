package reconcile

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/sheets"
)

var errRemote = errors.New("remote unavailable")

// fakeRemote is an in-memory sheet.
type fakeRemote struct {
	mu    sync.Mutex
	rows  map[models.WeekKey][]sheets.Row
	next  int
	calls []string

	readErr   error
	updateErr error
	deleteErr error
	createErr func(row sheets.Row) error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: make(map[models.WeekKey][]sheets.Row)}
}

func (f *fakeRemote) record(a string) {
	f.calls = append(f.calls, a)
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) Read(_ context.Context, week models.WeekKey) ([]sheets.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(sheets.ActionRead)
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]sheets.Row(nil), f.rows[week]...), nil
}

func (f *fakeRemote) Create(_ context.Context, row sheets.Row) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(sheets.ActionCreate)
	if f.createErr != nil {
		if err := f.createErr(row); err != nil {
			return 0, err
		}
	}
	week, err := sheets.ParseWeekStart(row.WeekStart)
	if err != nil {
		return 0, err
	}
	f.next++
	row.RowIndex = f.next
	f.rows[week] = append(f.rows[week], row)
	return row.RowIndex, nil
}

func (f *fakeRemote) Update(_ context.Context, row sheets.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(sheets.ActionUpdate)
	if f.updateErr != nil {
		return f.updateErr
	}
	for week, rows := range f.rows {
		for i := range rows {
			if rows[i].RowIndex == row.RowIndex {
				f.rows[week] = append(rows[:i:i], rows[i+1:]...)
				target, err := sheets.ParseWeekStart(row.WeekStart)
				if err != nil {
					return err
				}
				f.rows[target] = append(f.rows[target], row)
				return nil
			}
		}
	}
	return errors.New("row not found")
}

func (f *fakeRemote) Delete(_ context.Context, rowIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(sheets.ActionDelete)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for week, rows := range f.rows {
		for i := range rows {
			if rows[i].RowIndex == rowIndex {
				f.rows[week] = append(rows[:i:i], rows[i+1:]...)
				return nil
			}
		}
	}
	return errors.New("row not found")
}

func (f *fakeRemote) AvailableWeeks(context.Context) ([]models.WeekKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(sheets.ActionAvailableWeeks)
	var weeks []models.WeekKey
	for week, rows := range f.rows {
		if len(rows) > 0 {
			weeks = append(weeks, week)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i] < weeks[j] })
	return weeks, nil
}

type failure struct {
	action Action
	err    error
}

type fakeListener struct {
	changed  int
	failures []failure
}

func (l *fakeListener) Changed() { l.changed++ }

func (l *fakeListener) Failed(action Action, err error) {
	l.failures = append(l.failures, failure{action, err})
}

type fakeReminders struct {
	armed map[models.SlotKey]bool
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{armed: make(map[models.SlotKey]bool)}
}

func (f *fakeReminders) Schedule(_ models.WeekKey, slot models.Slot) bool {
	delete(f.armed, slot.Key())
	if slot.Reminder {
		f.armed[slot.Key()] = true
	}
	return slot.Reminder
}

func (f *fakeReminders) Cancel(_ models.WeekKey, key models.SlotKey) bool {
	ok := f.armed[key]
	delete(f.armed, key)
	return ok
}

func (f *fakeReminders) Move(week models.WeekKey, from models.SlotKey, slot models.Slot) bool {
	f.Cancel(week, from)
	return f.Schedule(week, slot)
}

func (f *fakeReminders) ScheduleWeek(week models.WeekKey, slots []models.Slot) int {
	f.armed = make(map[models.SlotKey]bool)
	n := 0
	for _, s := range slots {
		if f.Schedule(week, s) {
			n++
		}
	}
	return n
}
