package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/weekgrid/internal/models"
)

// Cache stores weekgrid's typed state as JSON values in a Provider.
type Cache struct {
	p Provider
}

func New(p Provider) *Cache {
	return &Cache{p: p}
}

func (c *Cache) Provider() Provider {
	return c.p
}

// GetJSON decodes the value at key into v. It reports false when the key is
// absent.
func (c *Cache) GetJSON(key string, v interface{}) (bool, error) {
	data, err := c.p.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) PutJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.p.Put(key, data)
}

func (c *Cache) Slots(week models.WeekKey) ([]models.Slot, error) {
	var slots []models.Slot
	_, err := c.GetJSON(WeekKey(KindSchedule, week), &slots)
	return slots, err
}

func (c *Cache) SaveSlots(week models.WeekKey, slots []models.Slot) error {
	if slots == nil {
		slots = []models.Slot{}
	}
	return c.PutJSON(WeekKey(KindSchedule, week), slots)
}

func (c *Cache) Goals(week models.WeekKey, kind models.GoalKind) ([]models.Goal, error) {
	var goals []models.Goal
	_, err := c.GetJSON(WeekKey(GoalsKind(kind), week), &goals)
	return goals, err
}

func (c *Cache) SaveGoals(week models.WeekKey, kind models.GoalKind, goals []models.Goal) error {
	if goals == nil {
		goals = []models.Goal{}
	}
	return c.PutJSON(WeekKey(GoalsKind(kind), week), goals)
}

func (c *Cache) text(kind string, week models.WeekKey) (string, error) {
	var s string
	_, err := c.GetJSON(WeekKey(kind, week), &s)
	return s, err
}

func (c *Cache) Retro(week models.WeekKey) (string, error) { return c.text(KindRetro, week) }
func (c *Cache) Note(week models.WeekKey) (string, error)  { return c.text(KindNote, week) }

func (c *Cache) SaveRetro(week models.WeekKey, text string) error {
	return c.PutJSON(WeekKey(KindRetro, week), text)
}

func (c *Cache) SaveNote(week models.WeekKey, text string) error {
	return c.PutJSON(WeekKey(KindNote, week), text)
}

// Week loads every week-scoped entry of week.
func (c *Cache) Week(week models.WeekKey) (models.Week, error) {
	w := models.Week{Key: week}
	var err error
	if w.Slots, err = c.Slots(week); err != nil {
		return w, err
	}
	if w.WorkGoals, err = c.Goals(week, models.GoalWork); err != nil {
		return w, err
	}
	if w.PersonalGoals, err = c.Goals(week, models.GoalPersonal); err != nil {
		return w, err
	}
	if w.Retro, err = c.Retro(week); err != nil {
		return w, err
	}
	if w.Note, err = c.Note(week); err != nil {
		return w, err
	}
	return w, nil
}

// SaveWeek writes every week-scoped entry of w.
func (c *Cache) SaveWeek(w models.Week) error {
	if err := c.SaveSlots(w.Key, w.Slots); err != nil {
		return err
	}
	if err := c.SaveGoals(w.Key, models.GoalWork, w.WorkGoals); err != nil {
		return err
	}
	if err := c.SaveGoals(w.Key, models.GoalPersonal, w.PersonalGoals); err != nil {
		return err
	}
	if err := c.SaveRetro(w.Key, w.Retro); err != nil {
		return err
	}
	return c.SaveNote(w.Key, w.Note)
}

// CachedWeeks lists every week with a cached schedule, oldest first.
func (c *Cache) CachedWeeks() ([]models.WeekKey, error) {
	keys, err := c.p.Keys(Prefix + "_" + KindSchedule + "_")
	if err != nil {
		return nil, err
	}
	weeks := make([]models.WeekKey, 0, len(keys))
	for _, key := range keys {
		if kind, week, ok := ParseWeekKey(key); ok && kind == KindSchedule {
			weeks = append(weeks, week)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i] < weeks[j] })
	return weeks, nil
}

// CurrentWeek returns the last active week, or "" if none was recorded.
func (c *Cache) CurrentWeek() (models.WeekKey, error) {
	var week models.WeekKey
	_, err := c.GetJSON(KeyCurrentWeek, &week)
	return week, err
}

func (c *Cache) SetCurrentWeek(week models.WeekKey) error {
	return c.PutJSON(KeyCurrentWeek, week)
}

func (c *Cache) Theme() (string, error) {
	var theme string
	_, err := c.GetJSON(KeyTheme, &theme)
	return theme, err
}

func (c *Cache) SetTheme(theme string) error {
	return c.PutJSON(KeyTheme, theme)
}

func (c *Cache) History() (models.History, error) {
	history := models.History{}
	_, err := c.GetJSON(KeyWeekHistory, &history)
	if history == nil {
		history = models.History{}
	}
	return history, err
}

func (c *Cache) SaveHistory(history models.History) error {
	return c.PutJSON(KeyWeekHistory, history)
}

// StandardWeek returns the marked template week, or "" if none is marked.
func (c *Cache) StandardWeek() (models.WeekKey, error) {
	var week models.WeekKey
	_, err := c.GetJSON(KeyStandardWeek, &week)
	return week, err
}

// SetStandardWeek marks week; the empty key clears the marker.
func (c *Cache) SetStandardWeek(week models.WeekKey) error {
	if week == "" {
		return c.p.Delete(KeyStandardWeek)
	}
	return c.PutJSON(KeyStandardWeek, week)
}
