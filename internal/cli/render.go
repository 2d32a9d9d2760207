package cli

import (
	"strings"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
	"github.com/julianstephens/weekgrid/internal/utils"
)

const maxActivityWidth = 40

// PrintWeek writes the active week as a table, one row per slot.
func (c *Context) PrintWeek(rec *reconcile.Reconciler) {
	week := rec.Week()
	title := "Week of " + utils.WeekRange(week)
	if rec.StandardWeek() == week {
		title += " ★ standard"
	}
	if !rec.Online() {
		title += " (offline)"
	}
	c.Println(title)
	c.Println()

	store := rec.Store()
	if store.Len() == 0 {
		c.Println("  Nothing planned.")
		return
	}

	overlaps := store.AllOverlaps()
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = maxActivityWidth
	tbl.AddRow("DAY", "TIME", "ACTIVITY", "CATEGORY", "LENGTH", "FLAGS")
	for _, slot := range store.All() {
		tbl.AddRow(
			slot.Day.Short(),
			slot.Start.String()+"-"+slot.End().String(),
			slot.Text,
			slot.Category.Emoji()+" "+string(slot.Category.Normalize()),
			utils.FormatDuration(slot.Duration),
			slotFlags(slot, overlaps.Has(slot.Key()), rec.Online()),
		)
	}
	c.Println(tbl)

	if len(overlaps) > 0 {
		c.Println()
		for _, day := range models.Days {
			for _, o := range store.OverlapPairs(day) {
				c.Println("  ! " + o.Description())
			}
		}
	}
}

// slotFlags marks reminders, overlaps and, when online, slots the sheet
// does not hold yet.
func slotFlags(slot models.Slot, overlap, online bool) string {
	var flags []string
	if slot.Reminder {
		flags = append(flags, "reminder")
	}
	if overlap {
		flags = append(flags, "overlap")
	}
	if online && !slot.Persisted() {
		flags = append(flags, "local")
	}
	return strings.Join(flags, ",")
}
