// Package tui is the interactive day and week view.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/tracker"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateWeek
)

var tabTitles = []string{"Day", "Week"}

// item is a habit due on the selected day.
type item struct {
	habit   models.Habit
	checked bool
}

type Model struct {
	tracker  *tracker.Tracker
	today    time.Time
	day      time.Time
	state    SessionState
	cursor   int
	items    []item
	week     tracker.WeekView
	status   string
	keys     KeyMap
	help     help.Model
	width    int
	height   int
	quitting bool
}

// NewModel opens the day view on today. today must be the start of a day in
// the tracker's calendar.
func NewModel(t *tracker.Tracker, today time.Time) Model {
	m := Model{
		tracker: t,
		today:   today,
		day:     today,
		state:   StateDay,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads the due habits and the week around the selected day.
func (m *Model) refresh() {
	due := m.tracker.DueHabits(m.day)
	m.items = make([]item, len(due))
	for i, h := range due {
		m.items[i] = item{habit: h, checked: m.tracker.IsChecked(h, m.day)}
	}
	m.cursor = min(m.cursor, max(len(m.items)-1, 0))
	m.week = m.tracker.Week(m.day)
}

// shift moves the selected day; the week tab moves by whole weeks.
func (m *Model) shift(dir int) {
	step := 1
	if m.state == StateWeek {
		step = 7
	}
	m.day = m.tracker.Calendar().AddDays(m.day, dir*step)
	m.status = ""
	m.refresh()
}

func (m *Model) toggle() {
	if m.state != StateDay || len(m.items) == 0 {
		return
	}
	if m.day.After(m.today) {
		m.status = "Cannot mark a day that has not happened yet."
		return
	}
	if _, err := m.tracker.Toggle(m.items[m.cursor].habit, m.day); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.refresh()
}
