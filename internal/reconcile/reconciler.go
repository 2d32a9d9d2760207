// Package reconcile owns the active week's state and keeps it in step with
// the local cache and the remote sheet. Local changes are applied at once;
// remote calls run as Jobs whose failures roll the change back.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/weekgrid/internal/cache"
	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/schedule"
	"github.com/julianstephens/weekgrid/internal/sheets"
)

var (
	ErrSlotOccupied = errors.New("target slot is occupied")
	ErrNoChange     = errors.New("nothing to change")
	ErrNotFound     = errors.New("slot not found")
	ErrGoalNotFound = errors.New("goal not found")
	ErrEmptyGoal    = errors.New("goal text is empty")
	ErrInvalidWeek  = errors.New("week key must be a Monday")
	ErrNoWeek       = errors.New("no active week")
)

// Remote is the sheet API the reconciler talks to. *sheets.Client
// satisfies it.
type Remote interface {
	Read(ctx context.Context, week models.WeekKey) ([]sheets.Row, error)
	Create(ctx context.Context, row sheets.Row) (int, error)
	Update(ctx context.Context, row sheets.Row) error
	Delete(ctx context.Context, rowIndex int) error
	AvailableWeeks(ctx context.Context) ([]models.WeekKey, error)
}

// Reminders arms and disarms slot reminders. *reminder.Scheduler satisfies it.
type Reminders interface {
	Schedule(week models.WeekKey, slot models.Slot) bool
	Cancel(week models.WeekKey, key models.SlotKey) bool
	Move(week models.WeekKey, from models.SlotKey, slot models.Slot) bool
	ScheduleWeek(week models.WeekKey, slots []models.Slot) int
}

// Listener is told about state changes and failed remote actions.
type Listener interface {
	Changed()
	Failed(action Action, err error)
}

type Options struct {
	Grid  geometry.Grid
	Cache *cache.Cache
	// Remote may be nil, in which case the reconciler runs offline.
	Remote          Remote
	Reminders       Reminders
	Listener        Listener
	DefaultDuration int
	Now             func() time.Time
}

// Reconciler is driven from a single goroutine. Only Job.Run may execute
// elsewhere.
type Reconciler struct {
	store     *schedule.Store
	cache     *cache.Cache
	remote    Remote
	reminders Reminders
	listener  Listener
	now       func() time.Time

	defaultDuration int

	week          models.WeekKey
	workGoals     []models.Goal
	personalGoals []models.Goal
	retro         string
	note          string

	history  models.History
	standard models.WeekKey

	pending int
	saving  map[models.SlotKey]int
}

func New(opts Options) (*Reconciler, error) {
	if err := opts.Grid.Validate(); err != nil {
		return nil, err
	}
	if opts.Cache == nil {
		return nil, errors.New("reconciler requires a cache")
	}
	r := &Reconciler{
		store:           schedule.New(opts.Grid),
		cache:           opts.Cache,
		remote:          opts.Remote,
		reminders:       opts.Reminders,
		listener:        opts.Listener,
		now:             opts.Now,
		defaultDuration: opts.DefaultDuration,
		saving:          make(map[models.SlotKey]int),
	}
	if r.reminders == nil {
		r.reminders = nopReminders{}
	}
	if r.listener == nil {
		r.listener = nopListener{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.defaultDuration <= 0 {
		r.defaultDuration = constants.DefaultDurationMinutes
	}
	r.defaultDuration = opts.Grid.SnapDuration(r.defaultDuration)

	history, err := r.cache.History()
	if err != nil {
		logger.Warn("Could not load week history", "error", err)
	}
	r.history = history
	if r.standard, err = r.cache.StandardWeek(); err != nil {
		logger.Warn("Could not load standard week", "error", err)
	}
	return r, nil
}

func (r *Reconciler) Grid() geometry.Grid { return r.store.Grid() }

// Store exposes the active week's slots for reading. Mutate only through
// the reconciler.
func (r *Reconciler) Store() *schedule.Store { return r.store }

func (r *Reconciler) Week() models.WeekKey { return r.week }

// Online reports whether a remote sheet is configured.
func (r *Reconciler) Online() bool { return r.remote != nil }

func (r *Reconciler) DefaultDuration() int { return r.defaultDuration }

// Pending is the number of jobs handed out and not yet applied.
func (r *Reconciler) Pending() int { return r.pending }

// Saving reports whether a remote call touching key is in flight.
func (r *Reconciler) Saving(key models.SlotKey) bool { return r.saving[key] > 0 }

func (r *Reconciler) StandardWeek() models.WeekKey { return r.standard }

// SetListener replaces the listener. A nil listener discards notifications.
func (r *Reconciler) SetListener(l Listener) {
	if l == nil {
		l = nopListener{}
	}
	r.listener = l
}

// History returns a deep copy of the week history.
func (r *Reconciler) History() models.History {
	out := make(models.History, len(r.history))
	for week, slots := range r.history {
		out[week] = append([]models.Slot(nil), slots...)
	}
	return out
}

// Apply folds a finished job back into the reconciler. It must run on the
// goroutine that owns r.
func (r *Reconciler) Apply(res Result) {
	job := res.Job
	if job == nil {
		return
	}
	if r.pending > 0 {
		r.pending--
	}
	for _, key := range job.keys {
		if r.saving[key] > 1 {
			r.saving[key]--
		} else {
			delete(r.saving, key)
		}
	}

	if res.commit != nil {
		res.commit(r)
	}
	if res.Err != nil {
		logger.Error("Remote action failed", "action", job.Action, "week", job.Week, "error", res.Err)
		if job.rollback != nil {
			r.rollback(*job.rollback)
		}
		if !job.quiet {
			r.listener.Failed(job.Action, res.Err)
		}
	}
	r.listener.Changed()
}

func (r *Reconciler) newJob(action Action, week models.WeekKey, keys []models.SlotKey, rollback *Mutation, call func(ctx context.Context) Result) *Job {
	r.pending++
	for _, key := range keys {
		r.saving[key]++
	}
	return &Job{Action: action, Week: week, keys: keys, rollback: rollback, call: call}
}

// commitLocal applies m to the active week and records the result.
func (r *Reconciler) commitLocal(m Mutation) {
	m.apply(r.store)
	r.persistSlots()
	r.snapshotHistory(r.week, r.store.All())
	r.listener.Changed()
}

func (r *Reconciler) rollback(m Mutation) {
	if m.Week == r.week {
		m.revert(r.store)
		r.persistSlots()
		r.snapshotHistory(r.week, r.store.All())
		r.reminders.ScheduleWeek(r.week, r.store.All())
		return
	}
	// The user navigated away; revert the cached copy of that week.
	slots, err := r.cache.Slots(m.Week)
	if err != nil {
		logger.Warn("Could not read cached week for rollback", "week", m.Week, "error", err)
		return
	}
	tmp := schedule.New(r.store.Grid())
	tmp.Replace(slots)
	m.revert(tmp)
	if err := r.cache.SaveSlots(m.Week, tmp.All()); err != nil {
		logger.Warn("Could not write cache", "week", m.Week, "error", err)
	}
	r.snapshotHistory(m.Week, tmp.All())
}

func (r *Reconciler) persistSlots() {
	if err := r.cache.SaveSlots(r.week, r.store.All()); err != nil {
		logger.Warn("Could not write cache", "week", r.week, "error", err)
	}
}

func (r *Reconciler) persistWeek() {
	if r.week == "" {
		return
	}
	if err := r.cache.SaveWeek(r.snapshot()); err != nil {
		logger.Warn("Could not write cache", "week", r.week, "error", err)
	}
}

// snapshotHistory records a deep copy of a non-empty week. An emptied week
// leaves the history.
func (r *Reconciler) snapshotHistory(week models.WeekKey, slots []models.Slot) {
	if len(slots) == 0 {
		if _, ok := r.history[week]; !ok {
			return
		}
		delete(r.history, week)
	} else {
		r.history[week] = append([]models.Slot(nil), slots...)
	}
	if err := r.cache.SaveHistory(r.history); err != nil {
		logger.Warn("Could not write week history", "error", err)
	}
}

func (r *Reconciler) snapshot() models.Week {
	return models.Week{
		Key:           r.week,
		Slots:         r.store.All(),
		WorkGoals:     append([]models.Goal(nil), r.workGoals...),
		PersonalGoals: append([]models.Goal(nil), r.personalGoals...),
		Retro:         r.retro,
		Note:          r.note,
	}
}

type nopReminders struct{}

func (nopReminders) Schedule(models.WeekKey, models.Slot) bool             { return false }
func (nopReminders) Cancel(models.WeekKey, models.SlotKey) bool            { return false }
func (nopReminders) Move(models.WeekKey, models.SlotKey, models.Slot) bool { return false }
func (nopReminders) ScheduleWeek(models.WeekKey, []models.Slot) int        { return 0 }

type nopListener struct{}

func (nopListener) Changed()             {}
func (nopListener) Failed(Action, error) {}
