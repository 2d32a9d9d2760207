package goals

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/weekgrid/internal/cache"
	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/config"
	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
)

var testNow = time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)

const testWeek = models.WeekKey("2024-01-08")

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
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
		},
		Provider: p,
		Cache:    cache.New(p),
		Now:      func() time.Time { return testNow },
		In:       strings.NewReader(""),
		Out:      out,
	}, out
}

func cachedGoals(t *testing.T, ctx *cli.Context, kind models.GoalKind) []models.Goal {
	t.Helper()
	goals, err := ctx.Cache.Goals(testWeek, kind)
	if err != nil {
		t.Fatalf("Goals() error = %v", err)
	}
	return goals
}

func addGoals(t *testing.T, ctx *cli.Context, kind string, texts ...string) {
	t.Helper()
	for _, text := range texts {
		if err := (&AddCmd{Kind: kind, Text: text}).Run(ctx); err != nil {
			t.Fatalf("AddCmd.Run(%q) error = %v", text, err)
		}
	}
}

func TestAddCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	addGoals(t, ctx, "work", "Ship release", "Review PRs")
	addGoals(t, ctx, "me", "Call mum")

	work := cachedGoals(t, ctx, models.GoalWork)
	if len(work) != 2 || work[0].Text != "Ship release" || work[1].Text != "Review PRs" {
		t.Errorf("work goals = %+v", work)
	}
	personal := cachedGoals(t, ctx, models.GoalPersonal)
	if len(personal) != 1 || personal[0].Text != "Call mum" || personal[0].ID == "" {
		t.Errorf("personal goals = %+v", personal)
	}
	if !strings.Contains(out.String(), "Added work goal #2: Review PRs") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAddCmd_EmptyText(t *testing.T) {
	ctx, _ := setupTestContext(t)

	err := (&AddCmd{Kind: "work", Text: "   "}).Run(ctx)
	if !errors.Is(err, reconcile.ErrEmptyGoal) {
		t.Errorf("error = %v, want ErrEmptyGoal", err)
	}
}

func TestDoneCmd_Toggles(t *testing.T) {
	ctx, out := setupTestContext(t)
	addGoals(t, ctx, "work", "Ship release")

	cmd := &DoneCmd{Target: Target{Kind: "work", N: 1}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("DoneCmd.Run() error = %v", err)
	}
	if !cachedGoals(t, ctx, models.GoalWork)[0].Completed {
		t.Error("goal not completed")
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("second DoneCmd.Run() error = %v", err)
	}
	if cachedGoals(t, ctx, models.GoalWork)[0].Completed {
		t.Error("goal still completed after second toggle")
	}
	if !strings.Contains(out.String(), "Completed: Ship release") || !strings.Contains(out.String(), "Reopened: Ship release") {
		t.Errorf("output = %q", out.String())
	}
}

func TestTarget_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		target Target
	}{
		{"zero", Target{Kind: "work", N: 0}},
		{"past end", Target{Kind: "work", N: 2}},
		{"empty list", Target{Kind: "me", N: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestContext(t)
			addGoals(t, ctx, "work", "Ship release")

			err := (&DoneCmd{Target: tt.target}).Run(ctx)
			if !errors.Is(err, reconcile.ErrGoalNotFound) {
				t.Errorf("error = %v, want ErrGoalNotFound", err)
			}
		})
	}
}

func TestRenameCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addGoals(t, ctx, "me", "Run", "Read")

	if err := (&RenameCmd{Target: Target{Kind: "personal", N: 2}, Text: "Read a novel"}).Run(ctx); err != nil {
		t.Fatalf("RenameCmd.Run() error = %v", err)
	}
	goals := cachedGoals(t, ctx, models.GoalPersonal)
	if goals[0].Text != "Run" || goals[1].Text != "Read a novel" {
		t.Errorf("goals = %+v", goals)
	}

	err := (&RenameCmd{Target: Target{Kind: "me", N: 1}, Text: ""}).Run(ctx)
	if !errors.Is(err, reconcile.ErrEmptyGoal) {
		t.Errorf("error = %v, want ErrEmptyGoal", err)
	}
}

func TestDeleteCmd_KeepsOrder(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addGoals(t, ctx, "work", "A", "B", "C")

	if err := (&DeleteCmd{Target: Target{Kind: "work", N: 2}}).Run(ctx); err != nil {
		t.Fatalf("DeleteCmd.Run() error = %v", err)
	}
	goals := cachedGoals(t, ctx, models.GoalWork)
	if len(goals) != 2 || goals[0].Text != "A" || goals[1].Text != "C" {
		t.Errorf("goals = %+v", goals)
	}
}

func TestListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	addGoals(t, ctx, "work", "Ship release", "Review PRs")
	if err := (&DoneCmd{Target: Target{Kind: "work", N: 1}}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	out.Reset()

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("ListCmd.Run() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Goals for Jan 8 - Jan 14, 2024",
		"Work (1/2)",
		"[x]  Ship release",
		"[ ]  Review PRs",
		"Me (0/0)",
		"none",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestGoalsArePerWeek(t *testing.T) {
	ctx, out := setupTestContext(t)
	addGoals(t, ctx, "work", "This week")

	if err := (&AddCmd{Kind: "work", Text: "Next week", Week: "2024-01-15"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&ListCmd{Week: "2024-01-08"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Next week") || !strings.Contains(out.String(), "This week") {
		t.Errorf("goals leaked between weeks:\n%s", out.String())
	}
}

func TestRetroCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&RetroCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(empty)") {
		t.Errorf("empty retro output = %q", out.String())
	}

	if err := (&RetroCmd{Text: []string{"Good", "week."}}).Run(ctx); err != nil {
		t.Fatalf("RetroCmd.Run() error = %v", err)
	}
	if err := (&RetroCmd{Text: []string{"Sleep", "more."}, Append: true}).Run(ctx); err != nil {
		t.Fatalf("RetroCmd.Run(append) error = %v", err)
	}
	retro, err := ctx.Cache.Retro(testWeek)
	if err != nil {
		t.Fatal(err)
	}
	if retro != "Good week.\nSleep more." {
		t.Errorf("retro = %q", retro)
	}

	if err := (&RetroCmd{Text: []string{"Replaced"}}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if retro, _ := ctx.Cache.Retro(testWeek); retro != "Replaced" {
		t.Errorf("retro after replace = %q", retro)
	}
}

func TestGeneralCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&GeneralCmd{Text: []string{"Dentist", "moved"}}).Run(ctx); err != nil {
		t.Fatalf("GeneralCmd.Run() error = %v", err)
	}
	note, err := ctx.Cache.Note(testWeek)
	if err != nil || note != "Dentist moved" {
		t.Errorf("note = %q, %v", note, err)
	}
	if retro, _ := ctx.Cache.Retro(testWeek); retro != "" {
		t.Errorf("retro written by note command: %q", retro)
	}

	out.Reset()
	if err := (&GeneralCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "Dentist moved" {
		t.Errorf("output = %q", out.String())
	}
}
