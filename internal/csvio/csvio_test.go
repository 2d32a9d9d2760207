package csvio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/schedule"
)

func TestRoundTrip(t *testing.T) {
	store := schedule.New(geometry.Default())
	for _, s := range []models.Slot{
		{Day: models.Monday, Start: models.NewClock(9, 0), Text: "Deep work, part 1", Category: models.CategoryCoding, Duration: 90, RowIndex: 4},
		{Day: models.Wednesday, Start: models.NewClock(18, 30), Text: `Dinner "at home"`, Category: models.CategoryCooking, Duration: 45, Reminder: true},
		{Day: models.Sunday, Start: models.NewClock(22, 0), Text: "Sleep", Duration: 60},
	} {
		store.Upsert(s.Key(), s)
	}
	in := models.Week{
		Key:           "2024-01-08",
		Slots:         store.All(),
		WorkGoals:     []models.Goal{{ID: "a", Text: "Ship", Completed: true}},
		PersonalGoals: []models.Goal{{ID: "b", Text: "Run 10k"}},
		Retro:         "Went well,\nmostly",
		Note:          "Remember the dentist",
	}

	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	imported := schedule.New(geometry.Default())
	for _, s := range out.Slots {
		imported.Upsert(s.Key(), s)
	}
	if imported.Len() != store.Len() {
		t.Fatalf("imported %d slots, want %d", imported.Len(), store.Len())
	}
	for key, want := range store.Snapshot() {
		got, ok := imported.Get(key)
		if !ok {
			t.Errorf("missing slot %s", key)
			continue
		}
		if got.Text != want.Text || got.Category != want.Category || got.Reminder != want.Reminder || got.Duration != want.Duration {
			t.Errorf("slot %s = %+v, want %+v", key, got, want)
		}
		if got.RowIndex != 0 {
			t.Errorf("slot %s kept row index %d", key, got.RowIndex)
		}
	}
	if out.Key != in.Key || out.Retro != in.Retro || out.Note != in.Note {
		t.Errorf("week = %q retro %q note %q", out.Key, out.Retro, out.Note)
	}
	if len(out.WorkGoals) != 1 || out.WorkGoals[0].Text != "Ship" || !out.WorkGoals[0].Completed || out.WorkGoals[0].ID == "a" {
		t.Errorf("work goals = %+v, want text and state with a fresh id", out.WorkGoals)
	}
	if len(out.PersonalGoals) != 1 || out.PersonalGoals[0].Completed {
		t.Errorf("personal goals = %+v", out.PersonalGoals)
	}
}

func TestReadLegacyExport(t *testing.T) {
	legacy := strings.Join([]string{
		"Weekly Planner Export",
		"",
		"Week Date,2024-01-10T09:30:00.000Z",
		"",
		"SCHEDULE",
		"Day,Time,Activity,Category,Reminder",
		"Monday,09:00,Standup,working,No",
		"Tuesday,10:00,\"Plan, review\",,Yes",
		"Friday,25:00,Bad time,other,No",
		"Saturday,11:00,,relax,No",
		"",
		"WORK GOALS",
		"Goal,Completed",
		"Finish report,Yes",
		"",
		"ME GOALS",
		"Goal,Completed",
		"",
		"RETRO",
		"Solid week",
		"",
		"NOTES",
		"",
	}, "\n")

	w, err := Read(strings.NewReader(legacy))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if w.Key != "2024-01-08" {
		t.Errorf("Key = %q, want 2024-01-08", w.Key)
	}
	if len(w.Slots) != 2 {
		t.Fatalf("slots = %+v, want 2 valid rows", w.Slots)
	}
	if s := w.Slots[1]; s.Text != "Plan, review" || !s.Reminder || s.Category != "" || s.Duration != 60 {
		t.Errorf("second slot = %+v", s)
	}
	if len(w.WorkGoals) != 1 || !w.WorkGoals[0].Completed {
		t.Errorf("work goals = %+v", w.WorkGoals)
	}
	if len(w.PersonalGoals) != 0 || w.Retro != "Solid week" || w.Note != "" {
		t.Errorf("week = %+v", w)
	}
}

func TestReadRejectsUnrelatedCSV(t *testing.T) {
	_, err := Read(strings.NewReader("name,email\nada,ada@example.com\n"))
	if !errors.Is(err, ErrNotExport) {
		t.Errorf("Read() error = %v, want ErrNotExport", err)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("2024-01-08"); got != "weekgrid-2024-01-08.csv" {
		t.Errorf("FileName() = %q", got)
	}
}
