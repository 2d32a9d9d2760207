package goals

import (
	"strings"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/reconcile"
)

// RetroCmd prints or replaces the week's retrospective.
type RetroCmd struct {
	Text   []string `arg:"" optional:"" help:"New text. Omit to print the current text."`
	Append bool     `short:"a" help:"Append a line instead of replacing."`
	Week   string   `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *RetroCmd) Run(ctx *cli.Context) error {
	return runNote(ctx, c.Week, c.Text, c.Append, (*reconcile.Reconciler).Retro, (*reconcile.Reconciler).SetRetro)
}

// GeneralCmd prints or replaces the week's general notes.
type GeneralCmd struct {
	Text   []string `arg:"" optional:"" help:"New text. Omit to print the current text."`
	Append bool     `short:"a" help:"Append a line instead of replacing."`
	Week   string   `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *GeneralCmd) Run(ctx *cli.Context) error {
	return runNote(ctx, c.Week, c.Text, c.Append, (*reconcile.Reconciler).Note, (*reconcile.Reconciler).SetNote)
}

func runNote(
	ctx *cli.Context,
	week string,
	words []string,
	appendLine bool,
	get func(*reconcile.Reconciler) string,
	set func(*reconcile.Reconciler, string) error,
) error {
	rec, err := ctx.OpenLocal(week)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		if text := get(rec); text != "" {
			ctx.Println(text)
		} else {
			ctx.Println("(empty)")
		}
		return nil
	}
	text := strings.Join(words, " ")
	if prev := get(rec); appendLine && prev != "" {
		text = prev + "\n" + text
	}
	if err := set(rec, text); err != nil {
		return err
	}
	ctx.Println("✓ Saved")
	return nil
}
