// Package csvio reads and writes the sectioned weekly CSV export.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
)

const (
	title           = "Weekly Planner Export"
	weekDateLabel   = "Week Date"
	sectionSchedule = "SCHEDULE"
	sectionWork     = "WORK GOALS"
	sectionMe       = "ME GOALS"
	sectionRetro    = "RETRO"
	sectionNotes    = "NOTES"

	yes = "Yes"
	no  = "No"
)

var ErrNotExport = errors.New("not a weekly planner export")

// FileName is the default export name for the week.
func FileName(week models.WeekKey) string {
	return fmt.Sprintf("%s%s.csv", constants.ExportFilePrefix, week)
}

// Write encodes w. The Duration column is an addition older readers ignore.
func Write(out io.Writer, w models.Week) error {
	cw := csv.NewWriter(out)
	records := [][]string{
		{title},
		{weekDateLabel, string(w.Key)},
		{sectionSchedule},
		{"Day", "Time", "Activity", "Category", "Reminder", "Duration"},
	}
	for _, s := range w.Slots {
		records = append(records, []string{
			s.Day.String(),
			s.Start.String(),
			s.Text,
			string(s.Category),
			yesNo(s.Reminder),
			strconv.Itoa(s.Duration),
		})
	}
	records = append(records, []string{sectionWork}, []string{"Goal", "Completed"})
	for _, g := range w.WorkGoals {
		records = append(records, []string{g.Text, yesNo(g.Completed)})
	}
	records = append(records, []string{sectionMe}, []string{"Goal", "Completed"})
	for _, g := range w.PersonalGoals {
		records = append(records, []string{g.Text, yesNo(g.Completed)})
	}
	records = append(records,
		[]string{sectionRetro}, []string{w.Retro},
		[]string{sectionNotes}, []string{w.Note},
	)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Read decodes an export. Rows that cannot be placed are skipped and
// logged. Slots without a duration get the default; goals get fresh ids.
func Read(in io.Reader) (models.Week, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		w       models.Week
		section string
		header  bool
		sawHead bool
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return w, fmt.Errorf("read csv: %w", err)
		}
		first := strings.TrimSpace(rec[0])

		switch {
		case first == title:
			sawHead = true
			continue
		case first == weekDateLabel:
			if len(rec) > 1 {
				w.Key = parseWeekDate(rec[1])
			}
			continue
		case len(rec) == 1 && isSection(first):
			section = first
			header = section == sectionSchedule || section == sectionWork || section == sectionMe
			continue
		}
		if header {
			header = false
			continue
		}

		switch section {
		case sectionSchedule:
			slot, err := parseSlot(rec)
			if err != nil {
				logger.Warn("Skipping CSV schedule row", "row", strings.Join(rec, ","), "error", err)
				continue
			}
			if slot.Text != "" {
				w.Slots = append(w.Slots, slot)
			}
		case sectionWork:
			if g, ok := parseGoal(rec); ok {
				w.WorkGoals = append(w.WorkGoals, g)
			}
		case sectionMe:
			if g, ok := parseGoal(rec); ok {
				w.PersonalGoals = append(w.PersonalGoals, g)
			}
		case sectionRetro:
			w.Retro = joinText(w.Retro, strings.Join(rec, ","))
		case sectionNotes:
			w.Note = joinText(w.Note, strings.Join(rec, ","))
		}
	}
	if !sawHead && section == "" {
		return w, ErrNotExport
	}
	return w, nil
}

func parseSlot(rec []string) (models.Slot, error) {
	if len(rec) < 3 {
		return models.Slot{}, fmt.Errorf("want at least 3 fields, got %d", len(rec))
	}
	day, err := models.ParseDay(rec[0])
	if err != nil {
		return models.Slot{}, err
	}
	start, err := models.ParseClock(strings.TrimSpace(rec[1]))
	if err != nil {
		return models.Slot{}, err
	}
	slot := models.Slot{
		Day:      day,
		Start:    start,
		Text:     strings.TrimSpace(rec[2]),
		Duration: constants.DefaultDurationMinutes,
	}
	if len(rec) > 3 {
		if slot.Category, err = models.ParseCategory(strings.TrimSpace(rec[3])); err != nil {
			slot.Category = models.CategoryOther
		}
	}
	if len(rec) > 4 {
		slot.Reminder = strings.TrimSpace(rec[4]) == yes
	}
	if len(rec) > 5 {
		if d, err := strconv.Atoi(strings.TrimSpace(rec[5])); err == nil && d > 0 {
			slot.Duration = d
		}
	}
	return slot, nil
}

func parseGoal(rec []string) (models.Goal, bool) {
	text := strings.TrimSpace(rec[0])
	if text == "" {
		return models.Goal{}, false
	}
	g := models.NewGoal(text)
	g.Completed = len(rec) > 1 && strings.TrimSpace(rec[1]) == yes
	return g, true
}

// parseWeekDate accepts a week key or an ISO timestamp and returns the
// key of its week, or "" if neither parses.
func parseWeekDate(s string) models.WeekKey {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return models.WeekOf(t.Local())
	}
	if len(s) >= len(constants.DateFormat) {
		if week, err := models.ParseWeekKey(s[:len(constants.DateFormat)]); err == nil {
			return week
		}
	}
	logger.Warn("Ignoring unreadable week date", "value", s)
	return ""
}

func isSection(s string) bool {
	switch s {
	case sectionSchedule, sectionWork, sectionMe, sectionRetro, sectionNotes:
		return true
	}
	return false
}

func joinText(prev, next string) string {
	if prev == "" {
		return next
	}
	return prev + "\n" + next
}

func yesNo(b bool) string {
	if b {
		return yes
	}
	return no
}
