package reconcile

import (
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/schedule"
)

// Action names a user-visible operation in failure notices.
type Action string

const (
	ActionSave   Action = "save"
	ActionDelete Action = "delete"
	ActionMove   Action = "move"
	ActionResize Action = "resize"
	ActionCopy   Action = "copy"
	ActionLoad   Action = "load"
	ActionImport Action = "import"
	ActionWeeks  Action = "list weeks"
)

// Change records one key's value before and after a mutation. A nil side
// means the key was empty.
type Change struct {
	Key    models.SlotKey
	Before *models.Slot
	After  *models.Slot
}

// Mutation is every change one action made to one week. The same value is
// used to apply the action and to roll it back.
type Mutation struct {
	Action  Action
	Week    models.WeekKey
	Changes []Change
}

func (m Mutation) apply(store *schedule.Store) {
	for _, c := range m.Changes {
		if c.After != nil {
			store.Upsert(c.Key, *c.After)
		} else {
			store.Remove(c.Key)
		}
	}
}

func (m Mutation) revert(store *schedule.Store) {
	for i := len(m.Changes) - 1; i >= 0; i-- {
		c := m.Changes[i]
		if c.Before != nil {
			store.Upsert(c.Key, *c.Before)
		} else {
			store.Remove(c.Key)
		}
	}
}

// Keys returns every key the mutation touched.
func (m Mutation) Keys() []models.SlotKey {
	keys := make([]models.SlotKey, 0, len(m.Changes))
	for _, c := range m.Changes {
		keys = append(keys, c.Key)
	}
	return keys
}

func slotPtr(s models.Slot) *models.Slot {
	return &s
}
