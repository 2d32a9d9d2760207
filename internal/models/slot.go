package models

import (
	"fmt"
	"strings"
)

// SlotKey identifies a slot within one week.
type SlotKey struct {
	Day   Day
	Start Clock
}

func (k SlotKey) String() string {
	return k.Day.String() + "-" + k.Start.String()
}

// ParseSlotKey parses the "Monday-09:00" form.
func ParseSlotKey(s string) (SlotKey, error) {
	dayPart, timePart, ok := strings.Cut(s, "-")
	if !ok {
		return SlotKey{}, fmt.Errorf("invalid slot key %q", s)
	}
	day, err := ParseDay(dayPart)
	if err != nil {
		return SlotKey{}, err
	}
	start, err := ParseClock(timePart)
	if err != nil {
		return SlotKey{}, err
	}
	return SlotKey{Day: day, Start: start}, nil
}

func (k SlotKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SlotKey) UnmarshalText(b []byte) error {
	parsed, err := ParseSlotKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Slot is one scheduled activity. RowIndex is the remote row id; zero means
// the slot has never been persisted remotely.
type Slot struct {
	Day      Day      `json:"day"`
	Start    Clock    `json:"start"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Duration int      `json:"duration"`
	Reminder bool     `json:"reminder"`
	Color    string   `json:"color,omitempty"`
	RowIndex int      `json:"row_index,omitempty"`
}

func (s Slot) Key() SlotKey {
	return SlotKey{Day: s.Day, Start: s.Start}
}

// End returns Start + Duration.
func (s Slot) End() Clock {
	return s.Start.Add(s.Duration)
}

// Persisted reports whether the slot has a remote row.
func (s Slot) Persisted() bool {
	return s.RowIndex != 0
}

// WithKey returns a copy of s relocated to key.
func (s Slot) WithKey(key SlotKey) Slot {
	s.Day = key.Day
	s.Start = key.Start
	return s
}

// DisplayColor returns the explicit color or the category color.
func (s Slot) DisplayColor() string {
	if s.Color != "" {
		return s.Color
	}
	return s.Category.Color()
}
