package sheets

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
)

// Row is one schedule row as the proxy stores it.
type Row struct {
	WeekStart string `json:"week_start"`
	Day       string `json:"day"`
	Task      string `json:"task"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color"`
	Category  string `json:"category"`
	RowIndex  int    `json:"rowIndex,omitempty"`
}

// ParseWeekStart accepts the dd/MM/yyyy wire form and, for rows written by
// older clients, YYYY-MM-DD.
func ParseWeekStart(s string) (models.WeekKey, error) {
	s = strings.TrimSpace(s)
	if week, err := models.ParseSheetDate(s); err == nil {
		return week, nil
	}
	if _, err := time.Parse(constants.DateFormat, s); err == nil {
		return models.ParseWeekKey(s)
	}
	return "", fmt.Errorf("invalid week_start %q", s)
}

// RowToSlot translates one row. Rows without both times, or with an end not
// after the start, are rejected.
func RowToSlot(row Row) (models.Slot, error) {
	if strings.TrimSpace(row.StartTime) == "" || strings.TrimSpace(row.EndTime) == "" {
		return models.Slot{}, fmt.Errorf("row %d: missing start_time or end_time", row.RowIndex)
	}
	day, err := models.ParseDay(row.Day)
	if err != nil {
		return models.Slot{}, fmt.Errorf("row %d: %w", row.RowIndex, err)
	}
	start, err := models.ParseClock(row.StartTime)
	if err != nil {
		return models.Slot{}, fmt.Errorf("row %d: %w", row.RowIndex, err)
	}
	end, err := models.ParseClock(row.EndTime)
	if err != nil {
		return models.Slot{}, fmt.Errorf("row %d: %w", row.RowIndex, err)
	}
	if end <= start {
		return models.Slot{}, fmt.Errorf("row %d: end %s not after start %s", row.RowIndex, end, start)
	}

	category, err := models.ParseCategory(row.Category)
	if err != nil {
		category = models.CategoryOther
	}

	return models.Slot{
		Day:      day,
		Start:    start,
		Text:     row.Task,
		Category: category,
		Duration: end.Minutes() - start.Minutes(),
		Color:    row.Color,
		RowIndex: row.RowIndex,
	}, nil
}

// RowsToSlots translates rows, skipping and logging the ones that cannot be
// placed on the grid.
func RowsToSlots(rows []Row) []models.Slot {
	slots := make([]models.Slot, 0, len(rows))
	for _, row := range rows {
		slot, err := RowToSlot(row)
		if err != nil {
			logger.Warn("Skipping remote row", "task", row.Task, "error", err)
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// SlotToRow builds the full row for slot in week. The end time is derived
// from the duration.
func SlotToRow(week models.WeekKey, slot models.Slot) Row {
	return Row{
		WeekStart: week.SheetDate(),
		Day:       slot.Day.String(),
		Task:      slot.Text,
		StartTime: slot.Start.String(),
		EndTime:   slot.End().String(),
		Color:     slot.DisplayColor(),
		Category:  string(slot.Category),
		RowIndex:  slot.RowIndex,
	}
}
