package weeks

import (
	"errors"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
	"github.com/julianstephens/weekgrid/internal/utils"
)

// CopyCmd copies an earlier week's slots into the target week. Keys that
// are already taken are skipped.
type CopyCmd struct {
	From string `help:"Source week (any date in it). Defaults to the standard week, else the most recent earlier week."`
	Week string `short:"w" help:"Target week. Defaults to the week last shown."`
}

func (c *CopyCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.Open(c.Week)
	if err != nil {
		return err
	}

	src, err := c.source(ctx, rec)
	if err != nil {
		return err
	}

	job, err := rec.CopyWeek(src)
	if err != nil {
		return err
	}
	res, err := ctx.Sync(rec, job)
	var copyErr *reconcile.CopyError
	if err != nil && !errors.As(err, &copyErr) {
		return err
	}
	ctx.Printf("Copied %d slots from %s into %s, skipped %d already taken.\n",
		res.Copied, utils.WeekRange(src), utils.WeekRange(rec.Week()), res.Skipped)
	return err
}

func (c *CopyCmd) source(ctx *cli.Context, rec *reconcile.Reconciler) (models.WeekKey, error) {
	if c.From != "" {
		return ctx.ResolveWeek(c.From)
	}
	job, err := rec.CopyCandidates()
	if err != nil {
		return "", err
	}
	res, err := ctx.Sync(rec, job)
	if err != nil {
		return "", err
	}
	if len(res.Weeks) == 0 {
		return "", errors.New("no earlier weeks to copy from")
	}
	standard := rec.StandardWeek()
	for _, w := range res.Weeks {
		if w == standard {
			return w, nil
		}
	}
	return res.Weeks[0], nil
}

// StandardCmd toggles the standard-week marker on a week.
type StandardCmd struct {
	Week  string `arg:"" optional:"" help:"Week to mark. Defaults to the week last shown."`
	Clear bool   `help:"Remove the marker from whichever week has it."`
}

func (c *StandardCmd) Run(ctx *cli.Context) error {
	if c.Clear {
		rec, err := ctx.Reconciler()
		if err != nil {
			return err
		}
		if rec.StandardWeek() == "" {
			ctx.Println("No standard week is marked.")
			return nil
		}
		rec.ClearStandard()
		ctx.Println("Standard week cleared.")
		return nil
	}

	rec, err := ctx.OpenLocal(c.Week)
	if err != nil {
		return err
	}
	week := rec.Week()
	marked, err := rec.MarkStandard()
	if err != nil {
		return err
	}
	if marked {
		ctx.Printf("Marked %s as the standard week.\n", utils.WeekRange(week))
	} else {
		ctx.Printf("%s is no longer the standard week.\n", utils.WeekRange(week))
	}
	return nil
}
