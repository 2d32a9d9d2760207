package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/notifier"
	"github.com/julianstephens/weekgrid/internal/reminder"
	"github.com/julianstephens/weekgrid/internal/tui"
)

type TuiCmd struct {
	Week string `arg:"" optional:"" help:"Week to open. Defaults to this week."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	if ctx.Config.Notifications {
		sched := reminder.New(notifier.New())
		defer sched.CancelAll()
		ctx.Reminders = sched
	}

	var week models.WeekKey
	if c.Week != "" {
		var err error
		if week, err = ctx.ResolveWeek(c.Week); err != nil {
			return err
		}
	}

	rec, err := ctx.Reconciler()
	if err != nil {
		return err
	}
	theme, err := ctx.Cache.Theme()
	if err != nil {
		logger.Warn("Could not read saved theme", "error", err)
	}
	model, err := tui.New(ctx.Ctx, rec, tui.Options{
		Week:      week,
		Now:       ctx.Now,
		Theme:     theme,
		SaveTheme: ctx.Cache.SetTheme,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx.Ctx))
	_, err = p.Run()
	return err
}
