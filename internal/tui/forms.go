package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/utils"
)

type editorForm struct {
	key      models.SlotKey
	existing bool
	color    string
	// maxDuration keeps the slot inside the display window.
	maxDuration int

	Text     string
	Category models.Category
	Duration string
	Reminder bool
}

// validateDuration is the editor's duration check.
func (ef *editorForm) validateDuration(s string) error {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if i <= 0 {
		return fmt.Errorf("duration must be a positive number of minutes")
	}
	if ef.maxDuration > 0 && i > ef.maxDuration {
		return fmt.Errorf("at most %d minutes fit before %s", ef.maxDuration, ef.key.Start.Add(ef.maxDuration))
	}
	return nil
}

func newEditorForm(ef *editorForm) *huh.Form {
	options := make([]huh.Option[models.Category], 0, len(models.Categories))
	for _, c := range models.Categories {
		options = append(options, huh.NewOption(c.Emoji()+" "+string(c), c))
	}

	title := "New activity"
	if ef.existing {
		title = "Edit activity"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description(ef.key.String() + " · leave empty to remove").
				Value(&ef.Text),
			huh.NewSelect[models.Category]().
				Title("Category").
				Options(options...).
				Value(&ef.Category),
			huh.NewInput().
				Title("Duration (min)").
				Value(&ef.Duration).
				Validate(ef.validateDuration),
			huh.NewConfirm().
				Title("Remind me 5 minutes before").
				Value(&ef.Reminder),
		),
	)
}

type pickerForm struct {
	Week models.WeekKey
}

func newPickerForm(pf *pickerForm, weeks []models.WeekKey, standard models.WeekKey) *huh.Form {
	options := make([]huh.Option[models.WeekKey], 0, len(weeks))
	for _, w := range weeks {
		label := utils.WeekRange(w)
		if w == standard {
			label += " ★ standard"
		}
		options = append(options, huh.NewOption(label, w))
	}
	pf.Week = weeks[0]
	for _, w := range weeks {
		if w == standard {
			pf.Week = w
		}
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.WeekKey]().
				Title("Copy schedule from").
				Description("Slots already taken this week are skipped").
				Options(options...).
				Value(&pf.Week),
		),
	)
}

type jumpForm struct {
	Date string
}

func newJumpForm(jf *jumpForm, now func() time.Time) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Go to week").
				Placeholder("YYYY-MM-DD, next, prev, +2").
				Value(&jf.Date).
				Validate(func(s string) error {
					_, err := utils.ParseDate(s, now())
					return err
				}),
		),
	)
}

type goalForm struct {
	kind models.GoalKind
	id   string
	Text string
}

func newGoalForm(gf *goalForm) *huh.Form {
	title := "New work goal"
	if gf.kind == models.GoalPersonal {
		title = "New personal goal"
	}
	if gf.id != "" {
		title = "Rename goal"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&gf.Text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("goal cannot be empty")
					}
					return nil
				}),
		),
	)
}
