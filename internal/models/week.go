package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/weekgrid/internal/constants"
)

// WeekKey is the Monday date of a week in YYYY-MM-DD form.
type WeekKey string

// WeekOf returns the key of the week containing t.
func WeekOf(t time.Time) WeekKey {
	offset := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
	return WeekKey(monday.Format(constants.DateFormat))
}

// ParseWeekKey accepts any YYYY-MM-DD date and returns the key of its week.
func ParseWeekKey(s string) (WeekKey, error) {
	t, err := time.ParseInLocation(constants.DateFormat, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return WeekOf(t), nil
}

// ParseSheetDate parses the dd/MM/yyyy wire form.
func ParseSheetDate(s string) (WeekKey, error) {
	t, err := time.ParseInLocation(constants.SheetDateFormat, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid sheet date %q: %w", s, err)
	}
	return WeekOf(t), nil
}

// Monday returns local midnight of the week's Monday.
func (w WeekKey) Monday() time.Time {
	t, err := time.ParseInLocation(constants.DateFormat, string(w), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (w WeekKey) Valid() bool {
	return !w.Monday().IsZero() && w.Monday().Weekday() == time.Monday
}

// SheetDate renders the dd/MM/yyyy form used by the remote store.
func (w WeekKey) SheetDate() string {
	return w.Monday().Format(constants.SheetDateFormat)
}

// AddWeeks returns the key n weeks away.
func (w WeekKey) AddWeeks(n int) WeekKey {
	return WeekOf(w.Monday().AddDate(0, 0, 7*n))
}

// At returns the absolute time of clock c on day d of this week.
func (w WeekKey) At(d Day, c Clock) time.Time {
	m := w.Monday()
	return time.Date(m.Year(), m.Month(), m.Day()+int(d), 0, c.Minutes(), 0, 0, m.Location())
}

func (w WeekKey) Before(other WeekKey) bool {
	return w < other
}

func (w WeekKey) String() string { return string(w) }

type GoalKind string

const (
	GoalWork     GoalKind = "work"
	GoalPersonal GoalKind = "personal"
)

func ParseGoalKind(s string) (GoalKind, error) {
	switch GoalKind(s) {
	case GoalWork, GoalPersonal:
		return GoalKind(s), nil
	case "me":
		return GoalPersonal, nil
	}
	return "", fmt.Errorf("invalid goal kind %q", s)
}

// Goal is a per-week checklist item. Goals live only in the local cache.
type Goal struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func NewGoal(text string) Goal {
	return Goal{ID: uuid.New().String(), Text: text}
}

// Week is the full state of one week.
type Week struct {
	Key           WeekKey `json:"week"`
	Slots         []Slot  `json:"slots"`
	WorkGoals     []Goal  `json:"work_goals"`
	PersonalGoals []Goal  `json:"personal_goals"`
	Retro         string  `json:"retro"`
	Note          string  `json:"note"`
}

// History maps a week to a deep snapshot of its slots.
type History map[WeekKey][]Slot
