package cache

import (
	"strings"

	"github.com/julianstephens/weekgrid/internal/models"
)

// Prefix namespaces every key weekgrid writes.
const Prefix = "weekgrid"

// Week-scoped entries.
const (
	KindSchedule      = "schedule"
	KindWorkGoals     = "work_goals"
	KindPersonalGoals = "personal_goals"
	KindRetro         = "retro"
	KindNote          = "note"
)

// Global entries.
var (
	KeyCurrentWeek  = Prefix + "_current_week"
	KeyTheme        = Prefix + "_theme"
	KeyWeekHistory  = Prefix + "_week_history"
	KeyStandardWeek = Prefix + "_standard_week"
)

// WeekKey builds the key of a week-scoped entry.
func WeekKey(kind string, week models.WeekKey) string {
	return Prefix + "_" + kind + "_" + string(week)
}

// GoalsKind returns the entry kind that stores goals of kind k.
func GoalsKind(k models.GoalKind) string {
	if k == models.GoalPersonal {
		return KindPersonalGoals
	}
	return KindWorkGoals
}

// ParseWeekKey splits a week-scoped key into its kind and week.
func ParseWeekKey(key string) (string, models.WeekKey, bool) {
	rest, ok := strings.CutPrefix(key, Prefix+"_")
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return "", "", false
	}
	week := models.WeekKey(rest[i+1:])
	if !week.Valid() {
		return "", "", false
	}
	return rest[:i], week, true
}
