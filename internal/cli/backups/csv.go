package backups

import (
	"fmt"
	"os"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/csvio"
	"github.com/julianstephens/weekgrid/internal/utils"
)

// ExportCmd writes one week as a sectioned CSV file.
type ExportCmd struct {
	Week   string `arg:"" optional:"" help:"Week to export. Defaults to the week last shown."`
	Output string `short:"o" help:"Output file, '-' for stdout. Defaults to weekgrid-<week>.csv in the current directory."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.Open(c.Week)
	if err != nil {
		return err
	}
	week := rec.Export()

	if c.Output == "-" {
		return csvio.Write(ctx.Out, week)
	}
	path := c.Output
	if path == "" {
		path = csvio.FileName(week.Key)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := csvio.Write(f, week); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("✓ Exported %s (%d slots) to %s\n", utils.WeekRange(week.Key), len(week.Slots), path)
	return nil
}

// ImportCmd replaces a week's local state with a CSV export. Nothing is
// written to the remote sheet.
type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"CSV export to read."`
	Week string `short:"w" help:"Import into this week instead of the one named in the file."`
	Yes  bool   `short:"y" help:"Do not ask before replacing a week that has slots."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := csvio.Read(f)
	if err != nil {
		return err
	}
	if c.Week != "" {
		if w.Key, err = ctx.ResolveWeek(c.Week); err != nil {
			return err
		}
	}

	rec, err := ctx.OpenLocal(string(w.Key))
	if err != nil {
		return err
	}
	if w.Key == "" {
		w.Key = rec.Week()
	}
	if !c.Yes && rec.Store().Len() > 0 {
		ok, err := ctx.Confirm(fmt.Sprintf("Replace the %d local slots of %s?", rec.Store().Len(), utils.WeekRange(w.Key)))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	imported, err := rec.Import(w)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Imported %d slots, %d goals into %s\n",
		len(imported.Slots), len(imported.WorkGoals)+len(imported.PersonalGoals), utils.WeekRange(imported.Key))
	return nil
}
