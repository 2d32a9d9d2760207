package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weekgrid/internal/geometry"
	"github.com/julianstephens/weekgrid/internal/gesture"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
	"github.com/julianstephens/weekgrid/internal/tui/components/goals"
	"github.com/julianstephens/weekgrid/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case jobDoneMsg:
		return m.applyResult(msg.res)

	case spinnerDelayMsg:
		if msg.gen == m.loadGen && m.rec.Pending() > 0 && !m.loading {
			m.loading = true
			return m, m.spinner.Tick
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.mode {
	case modeEditor, modePicker, modeJump, modeGoalForm:
		return m.updateForm(msg)
	case modeAgenda:
		return m.updateAgenda(msg)
	case modeGoals:
		return m.updateGoals(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) applyResult(res reconcile.Result) (tea.Model, tea.Cmd) {
	m.rec.Apply(res)
	if m.rec.Pending() == 0 {
		m.loading = false
	}

	var cmd tea.Cmd
	if res.Job != nil && res.Err == nil {
		switch res.Job.Action {
		case reconcile.ActionWeeks:
			cmd = m.openPicker(res.Weeks)
		case reconcile.ActionCopy:
			m.notice = fmt.Sprintf("Copied %d slots, skipped %d already taken.", res.Copied, res.Skipped)
		}
	}
	m.refresh()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	var (
		job *reconcile.Job
		err error
	)
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		if out := m.ctl.Handle(gesture.Event{Kind: gesture.Cancel}); out.Kind == gesture.Cancelled {
			m.pressed = false
		}
		return m, nil
	case key.Matches(msg, m.keys.PrevWeek):
		job, err = m.rec.PrevWeek()
	case key.Matches(msg, m.keys.NextWeek):
		job, err = m.rec.NextWeek()
	case key.Matches(msg, m.keys.ThisWeek):
		job, err = m.rec.ThisWeek()
	case key.Matches(msg, m.keys.Jump):
		m.jump = &jumpForm{}
		m.form = newJumpForm(m.jump, m.now)
		m.mode = modeJump
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Copy):
		job, err = m.rec.CopyCandidates()
		if err != nil {
			m.fail(reconcile.ActionWeeks, err)
			return m, nil
		}
		return m, m.run(job)
	case key.Matches(msg, m.keys.Standard):
		marked, err := m.rec.MarkStandard()
		if err != nil {
			m.fail(reconcile.ActionSave, err)
		} else if marked {
			m.notice = "Marked " + utils.WeekRange(m.rec.Week()) + " as the standard week."
		} else {
			m.notice = "Standard week cleared."
		}
		return m, nil
	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Agenda):
		m.refresh()
		m.mode = modeAgenda
		return m, nil
	case key.Matches(msg, m.keys.Goals):
		m.refresh()
		m.mode = modeGoals
		return m, nil
	default:
		return m, nil
	}

	if err != nil {
		m.fail(reconcile.ActionLoad, err)
	}
	m.refresh()
	return m, m.run(job)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	day, x := m.layout.event(msg.X, msg.Y)
	ev := gesture.Event{Day: day, X: x}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.notice = ""
		m.pressed = true
		ev.Kind = gesture.PointerDown
		m.ctl.Handle(ev)
	case tea.MouseActionMotion:
		if !m.pressed {
			return m, nil
		}
		ev.Kind = gesture.PointerMove
		m.ctl.Handle(ev)
	case tea.MouseActionRelease:
		if !m.pressed {
			return m, nil
		}
		m.pressed = false
		dragged := m.ctl.State() == gesture.Dragging || m.ctl.State() == gesture.Resizing
		ev.Kind = gesture.PointerUp
		out := m.ctl.Handle(ev)
		if out.Kind == gesture.None && !dragged {
			ev.Kind = gesture.Click
			out = m.ctl.Handle(ev)
		}
		return m.commit(out)
	}
	return m, nil
}

// commit turns a gesture outcome into a reconciler call.
func (m Model) commit(out gesture.Outcome) (tea.Model, tea.Cmd) {
	var (
		job    *reconcile.Job
		err    error
		action reconcile.Action
	)
	switch out.Kind {
	case gesture.Moved:
		action = reconcile.ActionMove
		job, err = m.rec.MoveSlot(out.From, out.To)
	case gesture.Resized:
		action = reconcile.ActionResize
		job, err = m.rec.ResizeSlot(out.From, out.To.Start, out.Duration)
	case gesture.Conflict:
		m.notice = fmt.Sprintf("%s is already taken.", out.To)
		return m, nil
	case gesture.Edit:
		return m, m.openEditor(out.To, out.Existing)
	default:
		return m, nil
	}

	if err != nil {
		if errors.Is(err, reconcile.ErrSlotOccupied) {
			m.notice = fmt.Sprintf("%s is already taken.", out.To)
		} else if errors.Is(err, geometry.ErrPastWindowEnd) {
			m.notice = fmt.Sprintf("%s would end after %s.", out.To, m.rec.Grid().End())
		} else if !errors.Is(err, reconcile.ErrNoChange) {
			m.fail(action, err)
		}
	}
	m.refresh()
	return m, m.run(job)
}

func (m *Model) openEditor(key models.SlotKey, existing bool) tea.Cmd {
	maxDuration := m.rec.Grid().MaxDuration(key.Start)
	ef := &editorForm{
		key:         key,
		maxDuration: maxDuration,
		Category:    models.CategoryOther,
		Duration:    strconv.Itoa(min(m.rec.DefaultDuration(), maxDuration)),
	}
	if slot, ok := m.rec.Store().Get(key); ok && existing {
		ef.existing = true
		ef.color = slot.Color
		ef.Text = slot.Text
		ef.Category = slot.Category.Normalize()
		ef.Duration = strconv.Itoa(slot.Duration)
		ef.Reminder = slot.Reminder
	}
	m.editor = ef
	m.form = newEditorForm(ef)
	m.mode = modeEditor
	return m.form.Init()
}

func (m *Model) openPicker(weeks []models.WeekKey) tea.Cmd {
	if len(weeks) == 0 {
		m.notice = "No earlier weeks to copy from."
		return nil
	}
	m.picker = &pickerForm{}
	m.form = newPickerForm(m.picker, weeks, m.rec.StandardWeek())
	m.mode = modePicker
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m.closeForm(), nil
		case m.mode == modeEditor && m.editor.existing && key.Matches(msg, m.keys.Delete):
			job, err := m.rec.DeleteSlot(m.editor.key)
			if err != nil {
				m.fail(reconcile.ActionDelete, err)
			}
			m = m.closeForm()
			m.refresh()
			return m, m.run(job)
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var submit tea.Cmd
		switch m.mode {
		case modeEditor:
			submit = m.submitEditor()
		case modePicker:
			submit = m.submitPicker()
		case modeJump:
			submit = m.submitJump()
		case modeGoalForm:
			m.submitGoal()
		}
		m = m.closeForm()
		m.refresh()
		return m, submit
	case huh.StateAborted:
		return m.closeForm(), nil
	}
	return m, cmd
}

func (m Model) closeForm() Model {
	back := modeGrid
	if m.mode == modeGoalForm {
		back = modeGoals
	}
	m.form = nil
	m.editor = nil
	m.picker = nil
	m.jump = nil
	m.goalForm = nil
	m.mode = back
	return m
}

func (m *Model) submitEditor() tea.Cmd {
	ef := m.editor
	duration, _ := strconv.Atoi(strings.TrimSpace(ef.Duration))
	job, err := m.rec.SaveSlot(ef.key, reconcile.Edit{
		Text:     ef.Text,
		Category: ef.Category,
		Duration: duration,
		Reminder: ef.Reminder,
		Color:    ef.color,
	})
	if err != nil {
		m.fail(reconcile.ActionSave, err)
		return nil
	}
	return m.run(job)
}

func (m *Model) submitPicker() tea.Cmd {
	job, err := m.rec.CopyWeek(m.picker.Week)
	if err != nil {
		m.fail(reconcile.ActionCopy, err)
		return nil
	}
	return m.run(job)
}

func (m *Model) submitJump() tea.Cmd {
	date, err := utils.ParseDate(m.jump.Date, m.now())
	if err != nil {
		m.fail(reconcile.ActionLoad, err)
		return nil
	}
	job, err := m.rec.JumpTo(date)
	if err != nil {
		m.fail(reconcile.ActionLoad, err)
		return nil
	}
	return m.run(job)
}

func (m *Model) submitGoal() {
	gf := m.goalForm
	var err error
	if gf.id != "" {
		err = m.rec.RenameGoal(gf.kind, gf.id, gf.Text)
	} else {
		_, err = m.rec.AddGoal(gf.kind, gf.Text)
	}
	if err != nil {
		m.fail(reconcile.ActionSave, err)
	}
}

func (m Model) updateAgenda(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Agenda):
			m.mode = modeGrid
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.agenda, cmd = m.agenda.Update(msg)
	return m, cmd
}

func (m Model) updateGoals(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Goals):
			m.mode = modeGrid
			return m, nil
		}
	case goals.AddGoalMsg:
		m.goalForm = &goalForm{kind: msg.Kind}
		m.form = newGoalForm(m.goalForm)
		m.mode = modeGoalForm
		return m, m.form.Init()
	case goals.RenameGoalMsg:
		m.goalForm = &goalForm{kind: msg.Kind, id: msg.Goal.ID, Text: msg.Goal.Text}
		m.form = newGoalForm(m.goalForm)
		m.mode = modeGoalForm
		return m, m.form.Init()
	case goals.ToggleGoalMsg:
		if _, err := m.rec.ToggleGoal(msg.Kind, msg.ID); err != nil {
			m.fail(reconcile.ActionSave, err)
		}
		m.refresh()
		return m, nil
	case goals.DeleteGoalMsg:
		if err := m.rec.DeleteGoal(msg.Kind, msg.ID); err != nil {
			m.fail(reconcile.ActionDelete, err)
		}
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.goals, cmd = m.goals.Update(msg)
	return m, cmd
}
