package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/sheets"
)

// copyConcurrency bounds the create calls a week copy keeps in flight.
const copyConcurrency = 4

// ErrNotEarlier is returned when copying from a week that is not before
// the active week.
var ErrNotEarlier = errors.New("source week must be before the active week")

// CopyError reports a week copy in which some creates failed. The slots
// that were created are kept.
type CopyError struct {
	Failed int
	Total  int
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("%d of %d slots could not be copied: %v", e.Failed, e.Total, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// ActivateWeek persists the outgoing week, shows the cached copy of week
// at once, and returns a job that refreshes it from the remote sheet.
func (r *Reconciler) ActivateWeek(week models.WeekKey) (*Job, error) {
	if !week.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWeek, week)
	}
	r.persistWeek()
	r.loadCached(week)
	if err := r.cache.SetCurrentWeek(week); err != nil {
		logger.Warn("Could not record current week", "week", week, "error", err)
	}
	r.reminders.ScheduleWeek(week, r.store.All())
	r.listener.Changed()

	if r.remote == nil {
		return nil, nil
	}
	remote := r.remote
	job := r.newJob(ActionLoad, week, nil, nil, func(ctx context.Context) Result {
		rows, err := remote.Read(ctx, week)
		if err != nil {
			return failed(err)
		}
		slots := sheets.RowsToSlots(rows)
		return Result{commit: func(r *Reconciler) { r.replaceFromRemote(week, slots) }}
	})
	job.quiet = true
	return job, nil
}

func (r *Reconciler) NextWeek() (*Job, error) { return r.shiftWeek(1) }
func (r *Reconciler) PrevWeek() (*Job, error) { return r.shiftWeek(-1) }

// ThisWeek activates the week containing today.
func (r *Reconciler) ThisWeek() (*Job, error) {
	return r.ActivateWeek(models.WeekOf(r.now()))
}

// JumpTo activates the week containing date.
func (r *Reconciler) JumpTo(date time.Time) (*Job, error) {
	return r.ActivateWeek(models.WeekOf(date))
}

func (r *Reconciler) shiftWeek(n int) (*Job, error) {
	if r.week == "" {
		return r.ThisWeek()
	}
	return r.ActivateWeek(r.week.AddWeeks(n))
}

func (r *Reconciler) loadCached(week models.WeekKey) {
	w, err := r.cache.Week(week)
	if err != nil {
		logger.Warn("Could not read cached week", "week", week, "error", err)
	}
	r.week = week
	r.store.Replace(w.Slots)
	r.workGoals = w.WorkGoals
	r.personalGoals = w.PersonalGoals
	r.retro = w.Retro
	r.note = w.Note
}

// replaceFromRemote swaps in the slots read from the sheet. An empty read
// keeps the cached week.
func (r *Reconciler) replaceFromRemote(week models.WeekKey, slots []models.Slot) {
	if len(slots) == 0 {
		return
	}
	if week != r.week {
		cached, err := r.cache.Slots(week)
		if err != nil {
			logger.Warn("Could not read cached week", "week", week, "error", err)
		}
		slots = carryReminders(cached, slots)
		if err := r.cache.SaveSlots(week, slots); err != nil {
			logger.Warn("Could not write cache", "week", week, "error", err)
		}
		r.snapshotHistory(week, slots)
		return
	}
	r.store.Replace(carryReminders(r.store.All(), slots))
	r.persistSlots()
	r.snapshotHistory(week, r.store.All())
	r.reminders.ScheduleWeek(week, r.store.All())
	logger.Debug("Week loaded from sheet", "week", week, "slots", r.store.Len())
}

// carryReminders keeps the local reminder flag, which the sheet does not
// store, on slots that still match the same key and row.
func carryReminders(local, remote []models.Slot) []models.Slot {
	flags := make(map[models.SlotKey]models.Slot, len(local))
	for _, s := range local {
		flags[s.Key()] = s
	}
	out := make([]models.Slot, len(remote))
	for i, s := range remote {
		if prev, ok := flags[s.Key()]; ok && prev.RowIndex == s.RowIndex {
			s.Reminder = prev.Reminder
		}
		out[i] = s
	}
	return out
}

// CopyCandidates returns a job listing the weeks that can be copied into
// the active week, newest first. Offline the list comes from history.
func (r *Reconciler) CopyCandidates() (*Job, error) {
	if r.week == "" {
		return nil, ErrNoWeek
	}
	week := r.week
	if r.remote == nil {
		known := make([]models.WeekKey, 0, len(r.history))
		for w := range r.history {
			known = append(known, w)
		}
		return r.newJob(ActionWeeks, week, nil, nil, func(context.Context) Result {
			return Result{Weeks: earlierWeeks(known, week)}
		}), nil
	}
	remote := r.remote
	return r.newJob(ActionWeeks, week, nil, nil, func(ctx context.Context) Result {
		weeks, err := remote.AvailableWeeks(ctx)
		if err != nil {
			return failed(err)
		}
		return Result{Weeks: earlierWeeks(weeks, week)}
	}), nil
}

func earlierWeeks(weeks []models.WeekKey, active models.WeekKey) []models.WeekKey {
	seen := make(map[models.WeekKey]bool, len(weeks))
	out := make([]models.WeekKey, 0, len(weeks))
	for _, w := range weeks {
		if seen[w] || !w.Before(active) {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	return out
}

// CopyWeek copies the slots of src into the active week. Slots whose key
// is already taken in the active week are skipped. Online, src is read
// from the sheet and each slot is created remotely; a partial failure is
// reported as *CopyError and the created slots are kept.
func (r *Reconciler) CopyWeek(src models.WeekKey) (*Job, error) {
	if r.week == "" {
		return nil, ErrNoWeek
	}
	if !src.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWeek, src)
	}
	if !src.Before(r.week) {
		return nil, fmt.Errorf("%w: %s", ErrNotEarlier, src)
	}
	dest := r.week
	occupied := r.store.Snapshot()

	if r.remote == nil {
		slots, ok := r.history[src]
		if !ok {
			return nil, fmt.Errorf("no saved schedule for week %s", src)
		}
		slots = append([]models.Slot(nil), slots...)
		return r.newJob(ActionCopy, dest, nil, nil, func(context.Context) Result {
			fresh, skipped := freeSlots(slots, occupied)
			return Result{
				Copied:  len(fresh),
				Skipped: skipped,
				commit:  func(r *Reconciler) { r.mergeCopied(dest, fresh) },
			}
		}), nil
	}

	remote := r.remote
	return r.newJob(ActionCopy, dest, nil, nil, func(ctx context.Context) Result {
		rows, err := remote.Read(ctx, src)
		if err != nil {
			return failed(fmt.Errorf("read week %s: %w", src, err))
		}
		fresh, skipped := freeSlots(sheets.RowsToSlots(rows), occupied)

		created := make([]*models.Slot, len(fresh))
		errs := make([]error, len(fresh))
		var g errgroup.Group
		g.SetLimit(copyConcurrency)
		for i, slot := range fresh {
			g.Go(func() error {
				rowIndex, err := remote.Create(ctx, sheets.SlotToRow(dest, slot))
				if err != nil {
					errs[i] = fmt.Errorf("%s: %w", slot.Key(), err)
					return nil
				}
				slot.RowIndex = rowIndex
				created[i] = &slot
				return nil
			})
		}
		_ = g.Wait()

		res := Result{Skipped: skipped}
		var copied []models.Slot
		for _, s := range created {
			if s != nil {
				copied = append(copied, *s)
			}
		}
		res.Copied = len(copied)
		if n := len(fresh) - len(copied); n > 0 {
			res.Err = &CopyError{Failed: n, Total: len(fresh), Err: errors.Join(errs...)}
		}

		refreshed, err := remote.Read(ctx, dest)
		if err != nil {
			logger.Warn("Could not refresh week after copy", "week", dest, "error", err)
		}
		res.commit = func(r *Reconciler) {
			if slots := sheets.RowsToSlots(refreshed); len(slots) > 0 {
				r.replaceFromRemote(dest, slots)
				return
			}
			r.mergeCopied(dest, copied)
		}
		return res
	}), nil
}

// freeSlots drops slots whose key is taken and clears row ids.
func freeSlots(slots []models.Slot, occupied map[models.SlotKey]models.Slot) ([]models.Slot, int) {
	out := make([]models.Slot, 0, len(slots))
	skipped := 0
	for _, s := range slots {
		if _, ok := occupied[s.Key()]; ok {
			skipped++
			continue
		}
		s.RowIndex = 0
		out = append(out, s)
	}
	return out, skipped
}

// mergeCopied adds copied slots to dest without overwriting existing keys.
func (r *Reconciler) mergeCopied(dest models.WeekKey, slots []models.Slot) {
	if len(slots) == 0 {
		return
	}
	if dest != r.week {
		cached, err := r.cache.Slots(dest)
		if err != nil {
			logger.Warn("Could not read cached week", "week", dest, "error", err)
		}
		taken := make(map[models.SlotKey]bool, len(cached))
		for _, s := range cached {
			taken[s.Key()] = true
		}
		for _, s := range slots {
			if !taken[s.Key()] {
				cached = append(cached, s)
			}
		}
		if err := r.cache.SaveSlots(dest, cached); err != nil {
			logger.Warn("Could not write cache", "week", dest, "error", err)
		}
		r.snapshotHistory(dest, cached)
		return
	}
	m := Mutation{Action: ActionCopy, Week: dest}
	for _, s := range slots {
		if r.store.IsOccupied(s.Key()) {
			continue
		}
		m.Changes = append(m.Changes, Change{Key: s.Key(), After: slotPtr(s)})
	}
	r.commitLocal(m)
	r.reminders.ScheduleWeek(dest, r.store.All())
}

// MarkStandard toggles the standard-week marker on the active week and
// reports whether it is now marked.
func (r *Reconciler) MarkStandard() (bool, error) {
	if r.week == "" {
		return false, ErrNoWeek
	}
	next := r.week
	if r.standard == r.week {
		next = ""
	}
	if err := r.cache.SetStandardWeek(next); err != nil {
		logger.Warn("Could not record standard week", "week", next, "error", err)
	}
	r.standard = next
	r.listener.Changed()
	return next != "", nil
}

// ClearStandard removes the standard-week marker from whichever week has it.
func (r *Reconciler) ClearStandard() {
	if r.standard == "" {
		return
	}
	if err := r.cache.SetStandardWeek(""); err != nil {
		logger.Warn("Could not clear standard week", "error", err)
	}
	r.standard = ""
	r.listener.Changed()
}
