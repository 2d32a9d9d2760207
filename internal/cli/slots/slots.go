// Package slots holds the commands that edit single slots.
package slots

import (
	"errors"
	"fmt"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
	"github.com/julianstephens/weekgrid/internal/utils"
)

// KeyArgs names a slot by day and start time.
type KeyArgs struct {
	Day string `arg:"" help:"Day of the week (mon, Monday, ...)."`
	At  string `arg:"" help:"Start time (HH:MM)."`
}

func (k KeyArgs) key() (models.SlotKey, error) {
	day, err := models.ParseDay(k.Day)
	if err != nil {
		return models.SlotKey{}, err
	}
	start, err := models.ParseClock(k.At)
	if err != nil {
		return models.SlotKey{}, err
	}
	return models.SlotKey{Day: day, Start: start}, nil
}

type AddCmd struct {
	KeyArgs `embed:""`
	Text     string `arg:"" help:"Activity text."`
	Category string `short:"c" help:"Category (workout, coding, selfcare, sleep, relax, cooking, reading, working, event, other)." default:"other"`
	Duration int    `short:"d" help:"Length in minutes. Defaults to the configured default duration, shortened to end by the window end."`
	Reminder bool   `short:"r" help:"Notify 5 minutes before the slot starts."`
	Week     string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	key, err := c.key()
	if err != nil {
		return err
	}
	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return err
	}
	rec, err := ctx.Open(c.Week)
	if err != nil {
		return err
	}
	key.Start = rec.Grid().SnapClock(key.Start)
	if rec.Store().IsOccupied(key) {
		return fmt.Errorf("%w: %s, use 'weekgrid slot edit' to change it", reconcile.ErrSlotOccupied, key)
	}

	job, err := rec.SaveSlot(key, reconcile.Edit{
		Text:     c.Text,
		Category: category,
		Duration: c.Duration,
		Reminder: c.Reminder,
	})
	if err != nil {
		return err
	}
	if _, err := ctx.Sync(rec, job); err != nil {
		return err
	}
	slot, _ := rec.Store().Get(key)
	ctx.Printf("✓ Added %s %s-%s %s (%s)\n", slot.Day, slot.Start, slot.End(), slot.Text, utils.FormatDuration(slot.Duration))
	return nil
}

type EditCmd struct {
	KeyArgs `embed:""`
	Text       string `short:"t" help:"New activity text."`
	Category   string `short:"c" help:"New category."`
	Duration   int    `short:"d" help:"New length in minutes."`
	Reminder   bool   `xor:"reminder" help:"Turn the reminder on."`
	NoReminder bool   `xor:"reminder" help:"Turn the reminder off."`
	Week       string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	key, err := c.key()
	if err != nil {
		return err
	}
	rec, err := ctx.Open(c.Week)
	if err != nil {
		return err
	}
	slot, ok := rec.Store().Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", reconcile.ErrNotFound, key)
	}

	edit := reconcile.Edit{
		Text:     slot.Text,
		Category: slot.Category,
		Duration: slot.Duration,
		Reminder: slot.Reminder,
		Color:    slot.Color,
	}
	if c.Text != "" {
		edit.Text = c.Text
	}
	if c.Category != "" {
		if edit.Category, err = models.ParseCategory(c.Category); err != nil {
			return err
		}
	}
	if c.Duration > 0 {
		edit.Duration = c.Duration
	}
	switch {
	case c.Reminder:
		edit.Reminder = true
	case c.NoReminder:
		edit.Reminder = false
	}

	job, err := rec.SaveSlot(key, edit)
	if err != nil {
		return err
	}
	if _, err := ctx.Sync(rec, job); err != nil {
		return err
	}
	ctx.Printf("✓ Updated %s\n", key)
	return nil
}

type DeleteCmd struct {
	KeyArgs `embed:""`
	Week string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	key, err := c.key()
	if err != nil {
		return err
	}
	rec, err := ctx.Open(c.Week)
	if err != nil {
		return err
	}
	job, err := rec.DeleteSlot(key)
	if err != nil {
		return err
	}
	if _, err := ctx.Sync(rec, job); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted %s\n", key)
	return nil
}

type MoveCmd struct {
	KeyArgs `embed:""`
	ToDay string `arg:"" help:"Target day."`
	ToAt  string `arg:"" help:"Target start time (HH:MM)."`
	Week  string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *MoveCmd) Run(ctx *cli.Context) error {
	from, err := c.key()
	if err != nil {
		return err
	}
	to, err := KeyArgs{Day: c.ToDay, At: c.ToAt}.key()
	if err != nil {
		return err
	}
	rec, err := ctx.Open(c.Week)
	if err != nil {
		return err
	}
	job, err := rec.MoveSlot(from, to)
	if errors.Is(err, reconcile.ErrNoChange) {
		ctx.Println("Nothing to move.")
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := ctx.Sync(rec, job); err != nil {
		return err
	}
	to.Start = rec.Grid().SnapClock(to.Start)
	ctx.Printf("✓ Moved %s to %s\n", from, to)
	return nil
}

// ResizeCmd changes a slot's start or length. Moving the start keeps the
// end in place unless a duration is given too.
type ResizeCmd struct {
	KeyArgs `embed:""`
	Start    string `help:"New start time (HH:MM)."`
	Duration int    `short:"d" help:"New length in minutes."`
	End      string `help:"New end time (HH:MM)."`
	Week     string `short:"w" help:"Week to edit. Defaults to the week last shown."`
}

func (c *ResizeCmd) Run(ctx *cli.Context) error {
	key, err := c.key()
	if err != nil {
		return err
	}
	if c.Start == "" && c.Duration == 0 && c.End == "" {
		return errors.New("give at least one of --start, --duration or --end")
	}
	if c.Duration > 0 && c.End != "" {
		return errors.New("--duration and --end cannot be combined")
	}

	rec, err := ctx.Open(c.Week)
	if err != nil {
		return err
	}
	slot, ok := rec.Store().Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", reconcile.ErrNotFound, key)
	}

	start, end := slot.Start, slot.End()
	if c.Start != "" {
		if start, err = models.ParseClock(c.Start); err != nil {
			return err
		}
	}
	if c.End != "" {
		if end, err = models.ParseClock(c.End); err != nil {
			return err
		}
	}
	duration := end.Minutes() - start.Minutes()
	if c.Duration > 0 {
		duration = c.Duration
	}
	if duration <= 0 {
		return fmt.Errorf("end must be after start %s", start)
	}

	job, err := rec.ResizeSlot(key, start, duration)
	if errors.Is(err, reconcile.ErrNoChange) {
		ctx.Println("Nothing to resize.")
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := ctx.Sync(rec, job); err != nil {
		return err
	}
	ctx.Printf("✓ Resized %s\n", key)
	return nil
}
