// Package reminder arms timers that announce a slot shortly before it starts.
package reminder

import (
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
)

// Notifier displays one notification.
type Notifier interface {
	Notify(title, body string) error
}

// LogNotifier writes notifications to the log. It is the fallback when the
// desktop notifier fails.
type LogNotifier struct{}

func (LogNotifier) Notify(title, body string) error {
	logger.Info("Reminder", "title", title, "body", body)
	return nil
}

type stopper interface {
	Stop() bool
}

type timerID struct {
	week models.WeekKey
	key  models.SlotKey
}

// Scheduler owns one timer per (week, slot key). Timers fire on their own
// goroutine, so the scheduler is safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[timerID]stopper
	notifier Notifier
	lead     time.Duration

	now       func() time.Time
	afterFunc func(time.Duration, func()) stopper
}

func New(n Notifier) *Scheduler {
	if n == nil {
		n = LogNotifier{}
	}
	return &Scheduler{
		timers:   make(map[timerID]stopper),
		notifier: n,
		lead:     constants.ReminderLead,
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Schedule arms a reminder for slot in week, replacing any earlier one for
// the same key. It reports false when the slot has no reminder or the
// reminder time has passed.
func (s *Scheduler) Schedule(week models.WeekKey, slot models.Slot) bool {
	id := timerID{week: week, key: slot.Key()}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked(id)
	if !slot.Reminder {
		return false
	}

	fireAt := week.At(slot.Day, slot.Start).Add(-s.lead)
	wait := fireAt.Sub(s.now())
	if wait <= 0 {
		return false
	}

	s.timers[id] = s.afterFunc(wait, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.fire(slot)
	})
	logger.Debug("Reminder scheduled", "week", week, "slot", id.key, "at", fireAt)
	return true
}

// Cancel stops the reminder for key in week and reports whether one was armed.
func (s *Scheduler) Cancel(week models.WeekKey, key models.SlotKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(timerID{week: week, key: key})
}

// Move re-arms the reminder of a slot that changed key.
func (s *Scheduler) Move(week models.WeekKey, from models.SlotKey, slot models.Slot) bool {
	s.Cancel(week, from)
	return s.Schedule(week, slot)
}

// ScheduleWeek replaces every reminder of week with the reminders of slots.
func (s *Scheduler) ScheduleWeek(week models.WeekKey, slots []models.Slot) int {
	s.mu.Lock()
	for id := range s.timers {
		if id.week == week {
			s.stopLocked(id)
		}
	}
	s.mu.Unlock()

	armed := 0
	for _, slot := range slots {
		if s.Schedule(week, slot) {
			armed++
		}
	}
	return armed
}

// CancelAll stops every timer.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.stopLocked(id)
	}
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) stopLocked(id timerID) bool {
	t, ok := s.timers[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, id)
	return true
}

func (s *Scheduler) fire(slot models.Slot) {
	title, body := Message(slot, s.lead)
	if err := s.notifier.Notify(title, body); err != nil {
		logger.Warn("Desktop notification failed", "error", err)
		_ = LogNotifier{}.Notify(title, body)
	}
}

// Message renders the notification text for slot.
func Message(slot models.Slot, lead time.Duration) (string, string) {
	title := "Upcoming Activity " + slot.Category.Emoji()
	body := fmt.Sprintf("%s starts in %d minutes!\nTime: %s on %s", slot.Text, int(lead.Minutes()), slot.Start, slot.Day)
	return title, body
}
