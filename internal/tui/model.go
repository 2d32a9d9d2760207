// Package tui is the interactive week grid. Mouse input drives the gesture
// controller; the resulting intents go through the reconciler, and remote
// jobs run as bubbletea commands.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weekgrid/internal/constants"
	apperrors "github.com/julianstephens/weekgrid/internal/errors"
	"github.com/julianstephens/weekgrid/internal/gesture"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
	"github.com/julianstephens/weekgrid/internal/tui/components/agenda"
	"github.com/julianstephens/weekgrid/internal/tui/components/goals"
)

type mode int

const (
	modeGrid mode = iota
	modeEditor
	modePicker
	modeJump
	modeAgenda
	modeGoals
	modeGoalForm
)

// events collects reconciler notifications between updates. It is shared
// by pointer across Model copies.
type events struct {
	failures []string
	changed  bool
}

func (e *events) Changed() { e.changed = true }

func (e *events) Failed(action reconcile.Action, err error) {
	e.failures = append(e.failures, apperrors.Action(string(action), err))
}

type jobDoneMsg struct {
	res reconcile.Result
}

type spinnerDelayMsg struct {
	gen int
}

type Options struct {
	// Week is shown first; empty means the current week.
	Week models.WeekKey
	Now  func() time.Time
	// Theme is the saved colour theme; SaveTheme persists a toggled one.
	Theme     string
	SaveTheme func(string) error
}

type Model struct {
	ctx    context.Context
	rec    *reconcile.Reconciler
	ctl    *gesture.Controller
	events *events
	layout layout
	now    func() time.Time

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	loading bool
	loadGen int

	mode     mode
	form     *huh.Form
	editor   *editorForm
	picker   *pickerForm
	jump     *jumpForm
	goalForm *goalForm
	agenda   agenda.Model
	goals    goals.Model

	theme     string
	saveTheme func(string) error

	pressed bool
	notice  string
	initial *reconcile.Job

	width    int
	height   int
	quitting bool
}

// New activates the first week and returns the model. The reconciler's
// listener is replaced by the model's own.
func New(ctx context.Context, rec *reconcile.Reconciler, opts Options) (Model, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ev := &events{}
	rec.SetListener(ev)

	week := opts.Week
	if week == "" {
		week = models.WeekOf(opts.Now())
	}
	job, err := rec.ActivateWeek(week)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		ctx:     ctx,
		rec:     rec,
		events:  ev,
		now:     opts.Now,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		agenda:  agenda.New(0, 0),
		goals:   goals.New(0, 0),
		initial: job,
		loadGen: 1,

		theme:     applyTheme(opts.Theme),
		saveTheme: opts.SaveTheme,
	}
	m.resize(0, 0)
	m.refresh()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	if m.initial == nil {
		return nil
	}
	job, ctx, gen := m.initial, m.ctx, m.loadGen
	return tea.Batch(
		func() tea.Msg { return jobDoneMsg{res: job.Run(ctx)} },
		tea.Tick(constants.LoadingIndicatorDelay, func(time.Time) tea.Msg { return spinnerDelayMsg{gen: gen} }),
	)
}

// run turns a job into a command. The spinner shows only if the job is
// still pending after the loading delay.
func (m *Model) run(job *reconcile.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	ctx := m.ctx
	cmds := []tea.Cmd{func() tea.Msg { return jobDoneMsg{res: job.Run(ctx)} }}
	if !m.loading {
		m.loadGen++
		gen := m.loadGen
		cmds = append(cmds, tea.Tick(constants.LoadingIndicatorDelay, func(time.Time) tea.Msg {
			return spinnerDelayMsg{gen: gen}
		}))
	}
	return tea.Batch(cmds...)
}

// resize rebuilds size-dependent parts. The gesture controller is only
// replaced between gestures.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.layout = newLayout(m.rec.Grid(), width)
	if m.ctl == nil || m.ctl.State() == gesture.Idle {
		cell := m.layout.cell()
		m.ctl = gesture.New(m.rec.Store(), gesture.Options{
			Grid:          m.rec.Grid(),
			EdgeWidth:     cell,
			DragThreshold: cell,
			Now:           m.now,
		})
	}
	bodyHeight := height - 4
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.agenda.SetSize(width, bodyHeight)
	m.goals.SetSize(width, bodyHeight)
}

// refresh copies reconciler state into the side views and drains failure
// notices.
func (m *Model) refresh() {
	store := m.rec.Store()
	m.agenda.SetWeek(m.rec.Week(), store.All(), store.AllOverlaps())
	m.goals.SetGoals(m.rec.Goals(models.GoalWork), m.rec.Goals(models.GoalPersonal))
	if n := len(m.events.failures); n > 0 {
		m.notice = m.events.failures[n-1]
		m.events.failures = nil
	}
	m.events.changed = false
}

// toggleTheme switches palettes and persists the choice when a saver is set.
func (m *Model) toggleTheme() {
	m.theme = applyTheme(nextTheme(m.theme))
	if m.saveTheme == nil {
		return
	}
	if err := m.saveTheme(m.theme); err != nil {
		m.notice = apperrors.Action("save theme", err)
	}
}

func (m *Model) fail(action reconcile.Action, err error) {
	m.notice = apperrors.Action(string(action), err)
}
