package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		input   string
		want    Day
		wantErr bool
	}{
		{input: "Monday", want: Monday},
		{input: "sunday", want: Sunday},
		{input: "Wed", want: Wednesday},
		{input: " fri ", want: Friday},
		{input: "Funday", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseDay(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    Clock
		wantErr bool
	}{
		{input: "09:00", want: NewClock(9, 0)},
		{input: "9:30", want: NewClock(9, 30)},
		{input: "23:45", want: NewClock(23, 45)},
		{input: "24:00", want: EndOfDay},
		{input: "25:00", wantErr: true},
		{input: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlotKeyString(t *testing.T) {
	key := SlotKey{Day: Monday, Start: NewClock(9, 0)}
	if key.String() != "Monday-09:00" {
		t.Errorf("String() = %q", key.String())
	}

	parsed, err := ParseSlotKey("Monday-09:00")
	if err != nil {
		t.Fatalf("ParseSlotKey() error = %v", err)
	}
	if parsed != key {
		t.Errorf("ParseSlotKey() = %v, want %v", parsed, key)
	}

	if _, err := ParseSlotKey("Monday"); err == nil {
		t.Error("expected error for key without time")
	}
}

func TestSlotJSON(t *testing.T) {
	slot := Slot{Day: Tuesday, Start: NewClock(7, 15), Text: "Run", Category: CategoryWorkout, Duration: 45, Reminder: true, RowIndex: 12}

	data, err := json.Marshal(slot)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded Slot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != slot {
		t.Errorf("decoded = %+v, want %+v", decoded, slot)
	}
	if slot.End() != NewClock(8, 0) {
		t.Errorf("End() = %v, want 08:00", slot.End())
	}
}

func TestCategoryNormalize(t *testing.T) {
	if Category("").Normalize() != CategoryOther {
		t.Error("empty category should normalize to other")
	}
	if Category("").Color() != CategoryOther.Color() {
		t.Error("empty category should use the other color")
	}
	if CategoryCoding.Emoji() != "💻" {
		t.Errorf("Emoji() = %q", CategoryCoding.Emoji())
	}
	if _, err := ParseCategory("gardening"); err == nil {
		t.Error("expected error for unknown category")
	}
	if c, err := ParseCategory(""); err != nil || c != "" {
		t.Errorf("ParseCategory(\"\") = %q, %v", c, err)
	}
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want WeekKey
	}{
		{name: "monday", date: time.Date(2024, 6, 10, 8, 0, 0, 0, time.Local), want: "2024-06-10"},
		{name: "sunday", date: time.Date(2024, 6, 16, 23, 0, 0, 0, time.Local), want: "2024-06-10"},
		{name: "across month", date: time.Date(2024, 7, 3, 0, 0, 0, 0, time.Local), want: "2024-07-01"},
		{name: "across year", date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), want: "2024-12-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekOf(tt.date); got != tt.want {
				t.Errorf("WeekOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekKeyHelpers(t *testing.T) {
	week := WeekKey("2024-06-10")

	if !week.Valid() {
		t.Fatal("expected week to be valid")
	}
	if WeekKey("2024-06-11").Valid() {
		t.Error("tuesday key should not be valid")
	}
	if week.SheetDate() != "10/06/2024" {
		t.Errorf("SheetDate() = %q", week.SheetDate())
	}
	if week.AddWeeks(1) != "2024-06-17" || week.AddWeeks(-1) != "2024-06-03" {
		t.Errorf("AddWeeks() = %v, %v", week.AddWeeks(1), week.AddWeeks(-1))
	}

	parsed, err := ParseSheetDate("12/06/2024")
	if err != nil || parsed != week {
		t.Errorf("ParseSheetDate() = %v, %v", parsed, err)
	}

	at := week.At(Wednesday, NewClock(9, 30))
	want := time.Date(2024, 6, 12, 9, 30, 0, 0, time.Local)
	if !at.Equal(want) {
		t.Errorf("At() = %v, want %v", at, want)
	}
}

func TestNewGoal(t *testing.T) {
	a, b := NewGoal("Ship release"), NewGoal("Ship release")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected unique non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Completed {
		t.Error("new goal should not be completed")
	}
}
