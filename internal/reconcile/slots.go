package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/sheets"
)

// Edit is what the slot editor submits.
type Edit struct {
	Text     string
	Category models.Category
	// Duration in minutes; zero means the default duration.
	Duration int
	Reminder bool
	Color    string
}

// SaveSlot creates or updates the slot at key. Blank text deletes it. The
// default duration is shortened to fit the window; an explicit duration
// running past the window end is rejected with geometry.ErrPastWindowEnd.
func (r *Reconciler) SaveSlot(key models.SlotKey, edit Edit) (*Job, error) {
	if err := r.checkKey(key); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(edit.Text)
	if text == "" {
		if !r.store.IsOccupied(key) {
			return nil, nil
		}
		return r.DeleteSlot(key)
	}

	duration := r.store.SnapDuration(edit.Duration)
	if edit.Duration <= 0 {
		duration = min(r.defaultDuration, r.store.Grid().MaxDuration(key.Start))
	}
	if err := r.checkSpan(key, duration); err != nil {
		return nil, err
	}
	after := models.Slot{
		Day:      key.Day,
		Start:    key.Start,
		Text:     text,
		Category: edit.Category,
		Duration: duration,
		Reminder: edit.Reminder,
		Color:    edit.Color,
	}
	change := Change{Key: key, After: &after}
	if before, ok := r.store.Get(key); ok {
		after.RowIndex = before.RowIndex
		change.Before = slotPtr(before)
	}
	m := Mutation{Action: ActionSave, Week: r.week, Changes: []Change{change}}
	r.commitLocal(m)
	r.reminders.Schedule(r.week, after)

	if r.remote == nil {
		return nil, nil
	}
	remote, week := r.remote, r.week
	row := sheets.SlotToRow(week, after)
	if after.RowIndex == 0 {
		return r.newJob(ActionSave, week, []models.SlotKey{key}, &m, func(ctx context.Context) Result {
			rowIndex, err := remote.Create(ctx, row)
			if err != nil {
				return failed(err)
			}
			return Result{commit: func(r *Reconciler) { r.attachRowIndex(week, key, rowIndex) }}
		}), nil
	}
	return r.newJob(ActionSave, week, []models.SlotKey{key}, &m, func(ctx context.Context) Result {
		return failed(remote.Update(ctx, row))
	}), nil
}

// DeleteSlot removes the slot at key. Slots never stored remotely are
// removed without a remote call.
func (r *Reconciler) DeleteSlot(key models.SlotKey) (*Job, error) {
	if r.week == "" {
		return nil, ErrNoWeek
	}
	before, ok := r.store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	m := Mutation{Action: ActionDelete, Week: r.week, Changes: []Change{{Key: key, Before: slotPtr(before)}}}
	r.commitLocal(m)
	r.reminders.Cancel(r.week, key)

	if r.remote == nil || before.RowIndex == 0 {
		return nil, nil
	}
	remote, rowIndex := r.remote, before.RowIndex
	return r.newJob(ActionDelete, r.week, []models.SlotKey{key}, &m, func(ctx context.Context) Result {
		return failed(remote.Delete(ctx, rowIndex))
	}), nil
}

// MoveSlot moves the slot at from to the key to. The target start is
// snapped to the grid. An occupied target is rejected with ErrSlotOccupied
// and leaves the store untouched.
func (r *Reconciler) MoveSlot(from, to models.SlotKey) (*Job, error) {
	if r.week == "" {
		return nil, ErrNoWeek
	}
	src, ok := r.store.Get(from)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, from)
	}
	to.Start = r.store.SnapTime(to.Start)
	if err := r.checkSpan(to, src.Duration); err != nil {
		return nil, err
	}
	if to == from {
		return nil, ErrNoChange
	}
	if r.store.IsOccupied(to) {
		return nil, fmt.Errorf("%w: %s", ErrSlotOccupied, to)
	}

	moved := src.WithKey(to)
	m := Mutation{Action: ActionMove, Week: r.week, Changes: []Change{
		{Key: from, Before: slotPtr(src)},
		{Key: to, After: slotPtr(moved)},
	}}
	r.commitLocal(m)
	r.reminders.Move(r.week, from, moved)
	return r.updateJob(ActionMove, m, moved), nil
}

// ResizeSlot sets a new start and duration for the slot at key. The end
// is not checked against other slots; overlaps are reported by the store.
// A new start landing on another slot's key is rejected.
func (r *Reconciler) ResizeSlot(key models.SlotKey, start models.Clock, duration int) (*Job, error) {
	if r.week == "" {
		return nil, ErrNoWeek
	}
	src, ok := r.store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	target := models.SlotKey{Day: key.Day, Start: r.store.SnapTime(start)}
	duration = r.store.SnapDuration(duration)
	if err := r.checkSpan(target, duration); err != nil {
		return nil, err
	}
	if target == key && duration == src.Duration {
		return nil, ErrNoChange
	}

	resized := src.WithKey(target)
	resized.Duration = duration
	var m Mutation
	if target == key {
		m = Mutation{Action: ActionResize, Week: r.week, Changes: []Change{
			{Key: key, Before: slotPtr(src), After: slotPtr(resized)},
		}}
	} else {
		if r.store.IsOccupied(target) {
			return nil, fmt.Errorf("%w: %s", ErrSlotOccupied, target)
		}
		m = Mutation{Action: ActionResize, Week: r.week, Changes: []Change{
			{Key: key, Before: slotPtr(src)},
			{Key: target, After: slotPtr(resized)},
		}}
	}
	r.commitLocal(m)
	r.reminders.Move(r.week, key, resized)
	return r.updateJob(ActionResize, m, resized), nil
}

// updateJob pushes slot's new fields to its remote row, if it has one.
func (r *Reconciler) updateJob(action Action, m Mutation, slot models.Slot) *Job {
	if r.remote == nil || slot.RowIndex == 0 {
		return nil
	}
	remote := r.remote
	row := sheets.SlotToRow(r.week, slot)
	return r.newJob(action, r.week, m.Keys(), &m, func(ctx context.Context) Result {
		return failed(remote.Update(ctx, row))
	})
}

// attachRowIndex records the row a create produced on the slot still at key.
func (r *Reconciler) attachRowIndex(week models.WeekKey, key models.SlotKey, rowIndex int) {
	if rowIndex == 0 {
		return
	}
	if week != r.week {
		slots, err := r.cache.Slots(week)
		if err != nil {
			logger.Warn("Could not read cached week", "week", week, "error", err)
			return
		}
		for i := range slots {
			if slots[i].Key() == key && slots[i].RowIndex == 0 {
				slots[i].RowIndex = rowIndex
				if err := r.cache.SaveSlots(week, slots); err != nil {
					logger.Warn("Could not write cache", "week", week, "error", err)
				}
				return
			}
		}
		logger.Warn("Created row has no local slot", "week", week, "slot", key, "row", rowIndex)
		return
	}
	slot, ok := r.store.Get(key)
	if !ok || slot.RowIndex != 0 {
		logger.Warn("Created row has no local slot", "week", week, "slot", key, "row", rowIndex)
		return
	}
	slot.RowIndex = rowIndex
	r.store.Upsert(key, slot)
	r.persistSlots()
	r.snapshotHistory(r.week, r.store.All())
}

func (r *Reconciler) checkKey(key models.SlotKey) error {
	if r.week == "" {
		return ErrNoWeek
	}
	if !key.Day.Valid() {
		return fmt.Errorf("invalid day %d", key.Day)
	}
	if !r.store.Grid().Contains(key.Start) {
		return fmt.Errorf("%w: %s", geometry.ErrOutsideWindow, key.Start)
	}
	return nil
}

// checkSpan is checkKey plus the rule that the slot ends inside the window.
func (r *Reconciler) checkSpan(key models.SlotKey, duration int) error {
	if err := r.checkKey(key); err != nil {
		return err
	}
	if end := key.Start.Add(duration); end > r.store.Grid().End() {
		return fmt.Errorf("%w: %s-%s", geometry.ErrPastWindowEnd, key.Start, end)
	}
	return nil
}
