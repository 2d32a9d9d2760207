// Package goals shows the active week's work and personal goals as one
// selectable list.
package goals

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/weekgrid/internal/models"
)

type AddGoalMsg struct {
	Kind models.GoalKind
}

type ToggleGoalMsg struct {
	Kind models.GoalKind
	ID   string
}

type RenameGoalMsg struct {
	Kind models.GoalKind
	Goal models.Goal
}

type DeleteGoalMsg struct {
	Kind models.GoalKind
	ID   string
}

type Item struct {
	Kind models.GoalKind
	Goal models.Goal
}

func (i Item) Title() string {
	if i.Goal.Completed {
		return "[x] " + i.Goal.Text
	}
	return "[ ] " + i.Goal.Text
}

func (i Item) Description() string {
	if i.Kind == models.GoalPersonal {
		return "me"
	}
	return string(i.Kind)
}

func (i Item) FilterValue() string { return i.Goal.Text }

type KeyMap struct {
	AddWork     key.Binding
	AddPersonal key.Binding
	Toggle      key.Binding
	Rename      key.Binding
	Delete      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		AddWork: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "add work goal"),
		),
		AddPersonal: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "add me goal"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.AddWork, keys.AddPersonal, keys.Toggle, keys.Rename, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

// SetGoals lists work goals first, then personal goals.
func (m *Model) SetGoals(work, personal []models.Goal) {
	items := make([]list.Item, 0, len(work)+len(personal))
	for _, g := range work {
		items = append(items, Item{Kind: models.GoalWork, Goal: g})
	}
	for _, g := range personal {
		items = append(items, Item{Kind: models.GoalPersonal, Goal: g})
	}
	m.list.SetItems(items)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.AddWork):
			return m, func() tea.Msg { return AddGoalMsg{Kind: models.GoalWork} }
		case key.Matches(msg, m.keys.AddPersonal):
			return m, func() tea.Msg { return AddGoalMsg{Kind: models.GoalPersonal} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleGoalMsg{Kind: i.Kind, ID: i.Goal.ID} }
			}
		case key.Matches(msg, m.keys.Rename):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return RenameGoalMsg(i) }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteGoalMsg{Kind: i.Kind, ID: i.Goal.ID} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No goals this week.\n  Press 'w' for a work goal or 'm' for a personal one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Summary renders "work 1/3 · me 0/2".
func Summary(work, personal []models.Goal) string {
	return fmt.Sprintf("work %d/%d · me %d/%d", done(work), len(work), done(personal), len(personal))
}

func done(goals []models.Goal) int {
	n := 0
	for _, g := range goals {
		if g.Completed {
			n++
		}
	}
	return n
}
