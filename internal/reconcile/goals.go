package reconcile

import (
	"fmt"
	"strings"

	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/schedule"
)

// Goals returns a copy of the active week's goals of kind.
func (r *Reconciler) Goals(kind models.GoalKind) []models.Goal {
	return append([]models.Goal(nil), *r.goals(kind)...)
}

func (r *Reconciler) AddGoal(kind models.GoalKind, text string) (models.Goal, error) {
	if r.week == "" {
		return models.Goal{}, ErrNoWeek
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Goal{}, ErrEmptyGoal
	}
	goal := models.NewGoal(text)
	list := r.goals(kind)
	*list = append(*list, goal)
	r.saveGoals(kind)
	return goal, nil
}

// ToggleGoal flips the completed flag and returns the new state.
func (r *Reconciler) ToggleGoal(kind models.GoalKind, id string) (bool, error) {
	g, err := r.findGoal(kind, id)
	if err != nil {
		return false, err
	}
	g.Completed = !g.Completed
	r.saveGoals(kind)
	return g.Completed, nil
}

func (r *Reconciler) RenameGoal(kind models.GoalKind, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyGoal
	}
	g, err := r.findGoal(kind, id)
	if err != nil {
		return err
	}
	g.Text = text
	r.saveGoals(kind)
	return nil
}

func (r *Reconciler) DeleteGoal(kind models.GoalKind, id string) error {
	list := r.goals(kind)
	for i, g := range *list {
		if g.ID == id {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			r.saveGoals(kind)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrGoalNotFound, id)
}

func (r *Reconciler) goals(kind models.GoalKind) *[]models.Goal {
	if kind == models.GoalPersonal {
		return &r.personalGoals
	}
	return &r.workGoals
}

// findGoal matches id exactly or as a unique prefix.
func (r *Reconciler) findGoal(kind models.GoalKind, id string) (*models.Goal, error) {
	if r.week == "" {
		return nil, ErrNoWeek
	}
	list := *r.goals(kind)
	var match *models.Goal
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
		if id != "" && strings.HasPrefix(list[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("goal id %q is ambiguous", id)
			}
			match = &list[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, id)
	}
	return match, nil
}

func (r *Reconciler) saveGoals(kind models.GoalKind) {
	if err := r.cache.SaveGoals(r.week, kind, *r.goals(kind)); err != nil {
		logger.Warn("Could not write goals", "week", r.week, "kind", kind, "error", err)
	}
	r.listener.Changed()
}

func (r *Reconciler) Retro() string { return r.retro }
func (r *Reconciler) Note() string  { return r.note }

func (r *Reconciler) SetRetro(text string) error {
	if r.week == "" {
		return ErrNoWeek
	}
	r.retro = text
	if err := r.cache.SaveRetro(r.week, text); err != nil {
		logger.Warn("Could not write retro", "week", r.week, "error", err)
	}
	r.listener.Changed()
	return nil
}

func (r *Reconciler) SetNote(text string) error {
	if r.week == "" {
		return ErrNoWeek
	}
	r.note = text
	if err := r.cache.SaveNote(r.week, text); err != nil {
		logger.Warn("Could not write note", "week", r.week, "error", err)
	}
	r.listener.Changed()
	return nil
}

// Export returns the full state of the active week.
func (r *Reconciler) Export() models.Week {
	return r.snapshot()
}

// Import replaces the local state of w.Key, or of the active week when the
// key is empty. Nothing is sent to the remote sheet; imported slots carry
// no row id and are shortened to end inside the window.
func (r *Reconciler) Import(w models.Week) (models.Week, error) {
	if w.Key == "" {
		w.Key = r.week
	}
	if !w.Key.Valid() {
		return w, fmt.Errorf("%w: %s", ErrInvalidWeek, w.Key)
	}
	tmp := schedule.New(r.store.Grid())
	for _, s := range w.Slots {
		s.RowIndex = 0
		if s.Duration <= 0 {
			s.Duration = r.defaultDuration
		}
		if limit := r.store.Grid().MaxDuration(s.Start); limit > 0 && s.Duration > limit {
			s.Duration = limit
		}
		tmp.Upsert(s.Key(), s)
	}
	w.Slots = tmp.All()

	if w.Key != r.week {
		if err := r.cache.SaveWeek(w); err != nil {
			return w, fmt.Errorf("write week %s: %w", w.Key, err)
		}
		r.snapshotHistory(w.Key, w.Slots)
		return w, nil
	}
	r.store.Replace(w.Slots)
	r.workGoals = w.WorkGoals
	r.personalGoals = w.PersonalGoals
	r.retro = w.Retro
	r.note = w.Note
	r.persistWeek()
	r.snapshotHistory(r.week, w.Slots)
	r.reminders.ScheduleWeek(r.week, w.Slots)
	r.listener.Changed()
	return w, nil
}
