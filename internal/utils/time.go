package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/models"
)

// ParseDate resolves a user-supplied date relative to now. It accepts
// "today", "next", "prev", week offsets such as "+2" or "-1w", YYYY-MM-DD
// and dd/MM/yyyy.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "today", "now", "this":
		return now, nil
	case "next":
		return now.AddDate(0, 0, 7), nil
	case "prev", "previous", "last":
		return now.AddDate(0, 0, -7), nil
	}

	if s[0] == '+' || s[0] == '-' {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "w"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid week offset %q", s)
		}
		return now.AddDate(0, 0, 7*n), nil
	}

	for _, layout := range []string{constants.DateFormat, constants.SheetDateFormat} {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD, dd/MM/yyyy, today, next, prev or +N)", s)
}

// WeekRange renders a week as "Jan 8 - Jan 14, 2024".
func WeekRange(week models.WeekKey) string {
	monday := week.Monday()
	if monday.IsZero() {
		return string(week)
	}
	sunday := monday.AddDate(0, 0, 6)
	return fmt.Sprintf("%s - %s", monday.Format("Jan 2"), sunday.Format("Jan 2, 2006"))
}

// FormatDuration renders minutes as "45m", "2h" or "1h30m".
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, m)
	}
}
