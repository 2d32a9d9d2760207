package weeks

import (
	"sort"
	"strconv"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/utils"
)

// ListCmd lists every week known locally or on the sheet.
type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	cached, err := ctx.Cache.CachedWeeks()
	if err != nil {
		return err
	}
	history, err := ctx.Cache.History()
	if err != nil {
		logger.Warn("Could not load week history", "error", err)
	}
	standard, err := ctx.Cache.StandardWeek()
	if err != nil {
		logger.Warn("Could not load standard week", "error", err)
	}
	current, _ := ctx.Cache.CurrentWeek()

	var remote []models.WeekKey
	if ctx.Remote != nil {
		if remote, err = ctx.Remote.AvailableWeeks(ctx.Ctx); err != nil {
			ctx.Printf("Warning: could not list remote weeks: %v\n", err)
		}
	}

	local := make(map[models.WeekKey]bool, len(cached))
	onSheet := make(map[models.WeekKey]bool, len(remote))
	all := make(map[models.WeekKey]bool)
	for _, w := range cached {
		local[w] = true
		all[w] = true
	}
	for _, w := range remote {
		onSheet[w] = true
		all[w] = true
	}
	if len(all) == 0 {
		ctx.Println("No weeks found.")
		return nil
	}

	weeks := make([]models.WeekKey, 0, len(all))
	for w := range all {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[j].Before(weeks[i]) })

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("WEEK", "RANGE", "SLOTS", "WHERE", "")
	for _, w := range weeks {
		slots := "-"
		if s, ok := history[w]; ok {
			slots = strconv.Itoa(len(s))
		} else if local[w] {
			cachedSlots, err := ctx.Cache.Slots(w)
			if err == nil {
				slots = strconv.Itoa(len(cachedSlots))
			}
		}
		tbl.AddRow(string(w), utils.WeekRange(w), slots, where(local[w], onSheet[w]), marks(w == current, w == standard))
	}
	ctx.Println(tbl)
	return nil
}

func where(local, remote bool) string {
	switch {
	case local && remote:
		return "cache+sheet"
	case remote:
		return "sheet"
	default:
		return "cache"
	}
}

func marks(current, standard bool) string {
	switch {
	case current && standard:
		return "◀ ★"
	case current:
		return "◀"
	case standard:
		return "★"
	}
	return ""
}
