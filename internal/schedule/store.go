// Package schedule holds the in-memory slot set of the active week.
package schedule

import (
	"fmt"
	"sort"

	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/models"
)

type entry struct {
	slot models.Slot
	seq  uint64
}

// Store maps slot keys to slots. At most one slot exists per key; overlap
// between slots is allowed and reported by ComputeOverlaps.
type Store struct {
	grid  geometry.Grid
	slots map[models.SlotKey]entry
	seq   uint64
}

func New(grid geometry.Grid) *Store {
	return &Store{
		grid:  grid,
		slots: make(map[models.SlotKey]entry),
	}
}

func (s *Store) Grid() geometry.Grid {
	return s.grid
}

// Upsert inserts or replaces the slot at key. A replaced slot keeps its
// insertion position.
func (s *Store) Upsert(key models.SlotKey, slot models.Slot) {
	slot = slot.WithKey(key)
	if existing, ok := s.slots[key]; ok {
		s.slots[key] = entry{slot: slot, seq: existing.seq}
		return
	}
	s.seq++
	s.slots[key] = entry{slot: slot, seq: s.seq}
}

// Remove deletes the slot at key and reports whether one was present.
func (s *Store) Remove(key models.SlotKey) bool {
	if _, ok := s.slots[key]; !ok {
		return false
	}
	delete(s.slots, key)
	return true
}

func (s *Store) Get(key models.SlotKey) (models.Slot, bool) {
	e, ok := s.slots[key]
	return e.slot, ok
}

func (s *Store) IsOccupied(key models.SlotKey) bool {
	_, ok := s.slots[key]
	return ok
}

func (s *Store) Len() int {
	return len(s.slots)
}

// ListForDay returns the day's slots by ascending start time.
func (s *Store) ListForDay(day models.Day) []models.Slot {
	entries := make([]entry, 0)
	for key, e := range s.slots {
		if key.Day == day {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].slot.Start != entries[j].slot.Start {
			return entries[i].slot.Start < entries[j].slot.Start
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]models.Slot, len(entries))
	for i, e := range entries {
		out[i] = e.slot
	}
	return out
}

// All returns every slot ordered by day then start time.
func (s *Store) All() []models.Slot {
	out := make([]models.Slot, 0, len(s.slots))
	for _, day := range models.Days {
		out = append(out, s.ListForDay(day)...)
	}
	return out
}

// Snapshot returns a copy of the slot map.
func (s *Store) Snapshot() map[models.SlotKey]models.Slot {
	snap := make(map[models.SlotKey]models.Slot, len(s.slots))
	for key, e := range s.slots {
		snap[key] = e.slot
	}
	return snap
}

// Replace discards the current contents and loads slots in order. Later
// slots win on duplicate keys.
func (s *Store) Replace(slots []models.Slot) {
	s.slots = make(map[models.SlotKey]entry, len(slots))
	s.seq = 0
	for _, slot := range slots {
		s.Upsert(slot.Key(), slot)
	}
}

func (s *Store) Clear() {
	s.Replace(nil)
}

func (s *Store) Clone() *Store {
	c := &Store{grid: s.grid, slots: make(map[models.SlotKey]entry, len(s.slots)), seq: s.seq}
	for key, e := range s.slots {
		c.slots[key] = e
	}
	return c
}

// SnapTime rounds a start time to the grid's snap unit.
func (s *Store) SnapTime(c models.Clock) models.Clock {
	return s.grid.SnapClock(c)
}

// SnapDuration rounds a duration to the snap unit, floored at one unit.
func (s *Store) SnapDuration(minutes int) int {
	return s.grid.SnapDuration(minutes)
}

// KeySet is a set of slot keys.
type KeySet map[models.SlotKey]struct{}

func (ks KeySet) Has(key models.SlotKey) bool {
	_, ok := ks[key]
	return ok
}

// Overlap is one intersecting pair of slots on the same day.
type Overlap struct {
	First  models.Slot
	Second models.Slot
}

func (o Overlap) Description() string {
	return fmt.Sprintf("%s: %s-%s %q overlaps %s-%s %q",
		o.First.Day, o.First.Start, o.First.End(), o.First.Text,
		o.Second.Start, o.Second.End(), o.Second.Text)
}

// OverlapPairs returns every intersecting pair on day, earlier slot first.
func (s *Store) OverlapPairs(day models.Day) []Overlap {
	slots := s.ListForDay(day)
	var pairs []Overlap
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if slotsOverlap(slots[i], slots[j]) {
				pairs = append(pairs, Overlap{First: slots[i], Second: slots[j]})
			}
		}
	}
	return pairs
}

// ComputeOverlaps returns the keys on day that intersect another slot.
func (s *Store) ComputeOverlaps(day models.Day) KeySet {
	set := make(KeySet)
	for _, o := range s.OverlapPairs(day) {
		set[o.First.Key()] = struct{}{}
		set[o.Second.Key()] = struct{}{}
	}
	return set
}

// AllOverlaps merges ComputeOverlaps over the whole week.
func (s *Store) AllOverlaps() KeySet {
	set := make(KeySet)
	for _, day := range models.Days {
		for key := range s.ComputeOverlaps(day) {
			set[key] = struct{}{}
		}
	}
	return set
}

// slotsOverlap compares [start, end) intervals in whole minutes. The ordering
// matches grid offsets, which are a linear function of minutes.
func slotsOverlap(a, b models.Slot) bool {
	return a.Start < b.End() && b.Start < a.End()
}
