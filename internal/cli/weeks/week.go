// Package weeks holds the commands that show, switch and copy weeks.
package weeks

import (
	"github.com/julianstephens/weekgrid/internal/cli"
)

type ShowCmd struct {
	Week string `arg:"" optional:"" help:"Any date in the week (YYYY-MM-DD, dd/MM/yyyy, today, next, prev, +N, -N). Defaults to the week last shown."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.Open(c.Week)
	if err != nil {
		return err
	}
	ctx.PrintWeek(rec)
	return nil
}

type NextCmd struct{}

func (c *NextCmd) Run(ctx *cli.Context) error {
	return shift(ctx, 1)
}

type PrevCmd struct{}

func (c *PrevCmd) Run(ctx *cli.Context) error {
	return shift(ctx, -1)
}

func shift(ctx *cli.Context, n int) error {
	week, err := ctx.ResolveWeek("")
	if err != nil {
		return err
	}
	rec, err := ctx.OpenWeek(week.AddWeeks(n))
	if err != nil {
		return err
	}
	ctx.PrintWeek(rec)
	return nil
}

type GotoCmd struct {
	Date string `arg:"" help:"Any date in the target week."`
}

func (c *GotoCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.Open(c.Date)
	if err != nil {
		return err
	}
	ctx.PrintWeek(rec)
	return nil
}
