package weeks

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/weekgrid/internal/cache"
	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/config"
	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
	"github.com/julianstephens/weekgrid/internal/sheetproxy"
	"github.com/julianstephens/weekgrid/internal/sheets"
)

var testNow = time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)

const (
	testWeek  = models.WeekKey("2024-01-08")
	lastWeek  = models.WeekKey("2024-01-01")
	twoBefore = models.WeekKey("2023-12-25")
)

func setupTestContext(t *testing.T, remote reconcile.Remote) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	p := cache.NewMemory()
	out := &bytes.Buffer{}
	return &cli.Context{
		Ctx: context.Background(),
		Config: &config.Config{
			StartHour:       constants.DefaultStartHour,
			EndHour:         constants.DefaultEndHour,
			SnapMinutes:     constants.DefaultSnapMinutes,
			DefaultDuration: constants.DefaultDurationMinutes,
			HTTPTimeout:     5 * time.Second,
		},
		Provider: p,
		Cache:    cache.New(p),
		Remote:   remote,
		Now:      func() time.Time { return testNow },
		In:       strings.NewReader(""),
		Out:      out,
	}, out
}

func setupTestProxy(t *testing.T) *sheets.Client {
	t.Helper()
	store, err := sheetproxy.Open(filepath.Join(t.TempDir(), "proxy.db"))
	if err != nil {
		t.Fatalf("sheetproxy.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	srv := httptest.NewServer(sheetproxy.NewServer(store).Handler())
	t.Cleanup(srv.Close)

	client, err := sheets.New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("sheets.New() error = %v", err)
	}
	return client
}

func slot(day models.Day, hour int, text string, duration int) models.Slot {
	return models.Slot{
		Day:      day,
		Start:    models.NewClock(hour, 0),
		Text:     text,
		Category: models.CategoryOther,
		Duration: duration,
	}
}

func currentWeek(t *testing.T, ctx *cli.Context) models.WeekKey {
	t.Helper()
	week, err := ctx.Cache.CurrentWeek()
	if err != nil {
		t.Fatalf("CurrentWeek() error = %v", err)
	}
	return week
}

func TestShowCmd(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	gym := slot(models.Monday, 9, "Gym", 60)
	gym.Reminder = true
	overlapping := models.Slot{Day: models.Monday, Start: models.NewClock(9, 30), Text: "Call", Category: models.CategoryEvent, Duration: 30}
	if err := ctx.Cache.SaveSlots(testWeek, []models.Slot{gym, overlapping}); err != nil {
		t.Fatal(err)
	}

	if err := (&ShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("ShowCmd.Run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Week of Jan 8 - Jan 14, 2024 (offline)",
		"DAY", "ACTIVITY",
		"Gym", "09:00-10:00", "1h",
		"Call", "09:30-10:00",
		"reminder,overlap",
		"! Monday: 09:00-10:00 \"Gym\" overlaps 09:30-10:00 \"Call\"",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestShowCmd_EmptyWeek(t *testing.T) {
	ctx, out := setupTestContext(t, nil)

	if err := (&ShowCmd{Week: "2024-02-14"}).Run(ctx); err != nil {
		t.Fatalf("ShowCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Nothing planned.") {
		t.Errorf("output = %q", out.String())
	}
	if got := currentWeek(t, ctx); got != "2024-02-12" {
		t.Errorf("current week = %q, want 2024-02-12", got)
	}
}

func TestShowCmd_InvalidDate(t *testing.T) {
	ctx, _ := setupTestContext(t, nil)

	if err := (&ShowCmd{Week: "not-a-date"}).Run(ctx); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestNextPrevGoto(t *testing.T) {
	ctx, _ := setupTestContext(t, nil)

	steps := []struct {
		name string
		run  func() error
		want models.WeekKey
	}{
		{"next from today", func() error { return (&NextCmd{}).Run(ctx) }, "2024-01-15"},
		{"next again", func() error { return (&NextCmd{}).Run(ctx) }, "2024-01-22"},
		{"prev", func() error { return (&PrevCmd{}).Run(ctx) }, "2024-01-15"},
		{"goto", func() error { return (&GotoCmd{Date: "2024-03-06"}).Run(ctx) }, "2024-03-04"},
		{"prev after goto", func() error { return (&PrevCmd{}).Run(ctx) }, "2024-02-26"},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: error = %v", step.name, err)
		}
		if got := currentWeek(t, ctx); got != step.want {
			t.Errorf("%s: current week = %q, want %q", step.name, got, step.want)
		}
	}
}

func TestListCmd(t *testing.T) {
	ctx, out := setupTestContext(t, nil)

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("ListCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No weeks found.") {
		t.Errorf("empty output = %q", out.String())
	}
	out.Reset()

	if err := ctx.Cache.SaveSlots(lastWeek, []models.Slot{slot(models.Monday, 9, "Gym", 60)}); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Cache.SaveSlots(testWeek, []models.Slot{slot(models.Monday, 9, "Gym", 60), slot(models.Friday, 18, "Dinner", 90)}); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Cache.SetCurrentWeek(testWeek); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Cache.SetStandardWeek(lastWeek); err != nil {
		t.Fatal(err)
	}

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("ListCmd.Run() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], string(testWeek)) || !strings.Contains(lines[1], "◀") {
		t.Errorf("newest week first with current mark, got %q", lines[1])
	}
	if fields := strings.Fields(lines[1]); len(fields) < 9 || fields[7] != "2" || fields[8] != "cache" {
		t.Errorf("current week row = %q, want 2 cached slots", lines[1])
	}
	if !strings.HasPrefix(lines[2], string(lastWeek)) || !strings.Contains(lines[2], "★") {
		t.Errorf("standard week row = %q", lines[2])
	}
}

func TestListCmd_Online(t *testing.T) {
	client := setupTestProxy(t)
	ctx, out := setupTestContext(t, client)

	if _, err := client.Create(context.Background(), sheets.SlotToRow(twoBefore, slot(models.Tuesday, 7, "Run", 30))); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Cache.SaveSlots(testWeek, []models.Slot{slot(models.Monday, 9, "Gym", 60)}); err != nil {
		t.Fatal(err)
	}

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("ListCmd.Run() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{string(twoBefore), "sheet", string(testWeek), "cache"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestCopyCmd_FromHistory(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	history := models.History{
		lastWeek: {slot(models.Monday, 9, "Gym", 60), slot(models.Tuesday, 10, "Read", 30)},
	}
	if err := ctx.Cache.SaveHistory(history); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Cache.SaveSlots(testWeek, []models.Slot{slot(models.Monday, 9, "Dentist", 60)}); err != nil {
		t.Fatal(err)
	}

	cmd := &CopyCmd{From: string(lastWeek)}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("CopyCmd.Run() error = %v", err)
	}

	if !strings.Contains(out.String(), "Copied 1 slots from Jan 1 - Jan 7, 2024 into Jan 8 - Jan 14, 2024, skipped 1 already taken.") {
		t.Errorf("output = %q", out.String())
	}
	slots, err := ctx.Cache.Slots(testWeek)
	if err != nil {
		t.Fatal(err)
	}
	byText := map[string]models.Slot{}
	for _, s := range slots {
		byText[s.Text] = s
	}
	if _, ok := byText["Dentist"]; !ok {
		t.Error("existing slot overwritten")
	}
	if _, ok := byText["Gym"]; ok {
		t.Error("occupied key copied over")
	}
	if s, ok := byText["Read"]; !ok || s.Day != models.Tuesday || s.Duration != 30 {
		t.Errorf("copied slot = %+v, found %v", s, ok)
	}
}

func TestCopyCmd_PrefersStandardWeek(t *testing.T) {
	ctx, out := setupTestContext(t, nil)
	history := models.History{
		lastWeek:  {slot(models.Monday, 9, "Recent", 60)},
		twoBefore: {slot(models.Wednesday, 12, "Template", 60)},
	}
	if err := ctx.Cache.SaveHistory(history); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Cache.SetStandardWeek(twoBefore); err != nil {
		t.Fatal(err)
	}

	if err := (&CopyCmd{}).Run(ctx); err != nil {
		t.Fatalf("CopyCmd.Run() error = %v", err)
	}
	slots, _ := ctx.Cache.Slots(testWeek)
	if len(slots) != 1 || slots[0].Text != "Template" {
		t.Errorf("copied slots = %+v, want the standard week's", slots)
	}
	if !strings.Contains(out.String(), "Copied 1 slots from Dec 25 - Dec 31, 2023") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCopyCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		cmd  CopyCmd
		want error
	}{
		{name: "no earlier weeks", cmd: CopyCmd{}},
		{name: "later source", cmd: CopyCmd{From: "2024-01-20"}, want: reconcile.ErrNotEarlier},
		{name: "same week", cmd: CopyCmd{From: "2024-01-09"}, want: reconcile.ErrNotEarlier},
		{name: "unknown source", cmd: CopyCmd{From: "2023-06-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestContext(t, nil)
			err := tt.cmd.Run(ctx)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCopyCmd_Online(t *testing.T) {
	client := setupTestProxy(t)
	ctx, out := setupTestContext(t, client)
	bg := context.Background()

	for _, s := range []models.Slot{slot(models.Monday, 9, "Gym", 60), slot(models.Thursday, 19, "Choir", 90)} {
		if _, err := client.Create(bg, sheets.SlotToRow(lastWeek, s)); err != nil {
			t.Fatal(err)
		}
	}

	if err := (&CopyCmd{}).Run(ctx); err != nil {
		t.Fatalf("CopyCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Copied 2 slots") {
		t.Errorf("output = %q", out.String())
	}

	rows, err := client.Read(bg, testWeek)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("remote rows in target week = %d, want 2", len(rows))
	}
	slots, _ := ctx.Cache.Slots(testWeek)
	for _, s := range slots {
		if !s.Persisted() {
			t.Errorf("copied slot %s has no row index", s.Key())
		}
	}
}

func TestStandardCmd(t *testing.T) {
	ctx, out := setupTestContext(t, nil)

	if err := (&StandardCmd{}).Run(ctx); err != nil {
		t.Fatalf("StandardCmd.Run() error = %v", err)
	}
	if got, _ := ctx.Cache.StandardWeek(); got != testWeek {
		t.Errorf("standard week = %q, want %q", got, testWeek)
	}
	if !strings.Contains(out.String(), "Marked Jan 8 - Jan 14, 2024 as the standard week.") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&StandardCmd{}).Run(ctx); err != nil {
		t.Fatalf("second StandardCmd.Run() error = %v", err)
	}
	if got, _ := ctx.Cache.StandardWeek(); got != "" {
		t.Errorf("standard week after toggle = %q, want none", got)
	}

	if err := (&StandardCmd{Week: string(lastWeek)}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&StandardCmd{Clear: true}).Run(ctx); err != nil {
		t.Fatalf("StandardCmd{Clear}.Run() error = %v", err)
	}
	if got, _ := ctx.Cache.StandardWeek(); got != "" {
		t.Errorf("standard week after clear = %q, want none", got)
	}
	if !strings.Contains(out.String(), "Standard week cleared.") {
		t.Errorf("output = %q", out.String())
	}
}
