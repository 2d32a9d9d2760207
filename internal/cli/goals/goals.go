// Package goals holds the commands for a week's goal lists and notes.
package goals

import (
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
	"github.com/julianstephens/weekgrid/internal/utils"
)

// Target names one goal by list and 1-based position.
type Target struct {
	Kind string `arg:"" enum:"work,me,personal" help:"Goal list: work or me."`
	N    int    `arg:"" help:"Position in the list, as shown by 'goal list'."`
}

func (t Target) find(rec *reconcile.Reconciler) (models.GoalKind, models.Goal, error) {
	kind, err := models.ParseGoalKind(t.Kind)
	if err != nil {
		return "", models.Goal{}, err
	}
	list := rec.Goals(kind)
	if t.N < 1 || t.N > len(list) {
		return "", models.Goal{}, fmt.Errorf("%w: no %s goal #%d", reconcile.ErrGoalNotFound, kind, t.N)
	}
	return kind, list[t.N-1], nil
}

type AddCmd struct {
	Kind string `arg:"" enum:"work,me,personal" help:"Goal list: work or me."`
	Text string `arg:"" help:"Goal text."`
	Week string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	kind, err := models.ParseGoalKind(c.Kind)
	if err != nil {
		return err
	}
	rec, err := ctx.OpenLocal(c.Week)
	if err != nil {
		return err
	}
	goal, err := rec.AddGoal(kind, c.Text)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added %s goal #%d: %s\n", kind, len(rec.Goals(kind)), goal.Text)
	return nil
}

// DoneCmd toggles a goal's completed flag.
type DoneCmd struct {
	Target `embed:""`
	Week   string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.OpenLocal(c.Week)
	if err != nil {
		return err
	}
	kind, goal, err := c.find(rec)
	if err != nil {
		return err
	}
	done, err := rec.ToggleGoal(kind, goal.ID)
	if err != nil {
		return err
	}
	if done {
		ctx.Printf("✓ Completed: %s\n", goal.Text)
	} else {
		ctx.Printf("Reopened: %s\n", goal.Text)
	}
	return nil
}

type RenameCmd struct {
	Target `embed:""`
	Text   string `arg:"" help:"New goal text."`
	Week   string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *RenameCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.OpenLocal(c.Week)
	if err != nil {
		return err
	}
	kind, goal, err := c.find(rec)
	if err != nil {
		return err
	}
	if err := rec.RenameGoal(kind, goal.ID, c.Text); err != nil {
		return err
	}
	ctx.Printf("✓ Renamed %q to %q\n", goal.Text, c.Text)
	return nil
}

type DeleteCmd struct {
	Target `embed:""`
	Week   string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.OpenLocal(c.Week)
	if err != nil {
		return err
	}
	kind, goal, err := c.find(rec)
	if err != nil {
		return err
	}
	if err := rec.DeleteGoal(kind, goal.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted: %s\n", goal.Text)
	return nil
}

type ListCmd struct {
	Week string `arg:"" optional:"" help:"Week to show. Defaults to the week last shown."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.OpenLocal(c.Week)
	if err != nil {
		return err
	}
	ctx.Printf("Goals for %s\n", utils.WeekRange(rec.Week()))
	for _, kind := range []models.GoalKind{models.GoalWork, models.GoalPersonal} {
		list := rec.Goals(kind)
		ctx.Println()
		done := 0
		tbl := uitable.New()
		tbl.Separator = "  "
		for i, g := range list {
			mark := "[ ]"
			if g.Completed {
				mark = "[x]"
				done++
			}
			tbl.AddRow(fmt.Sprintf("%d.", i+1), mark, g.Text)
		}
		ctx.Printf("%s (%d/%d)\n", title(kind), done, len(list))
		if len(list) == 0 {
			ctx.Println("  none")
			continue
		}
		ctx.Println(tbl)
	}
	return nil
}

func title(kind models.GoalKind) string {
	if kind == models.GoalPersonal {
		return "Me"
	}
	return "Work"
}
