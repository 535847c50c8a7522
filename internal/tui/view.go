package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = m.viewDay()
	case StateWeek:
		content = m.viewWeek()
	}
	if m.status != "" {
		content += "\n\n" + dangerStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		docStyle.Render(content),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewDay() string {
	loc := m.tracker.Calendar().Location()
	var b strings.Builder
	title := m.day.In(loc).Format("Monday, Jan 2 2006")
	if m.tracker.Calendar().SameDay(m.day, m.today) {
		title += " (today)"
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("Nothing due."))
		return b.String()
	}

	done := 0
	for i, it := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ]"
		line := it.habit.Label()
		if it.checked {
			done++
			box = "[x]"
			line = doneStyle.Render(line)
		}
		b.WriteString(cursor + box + " " + line + "\n")
	}
	fmt.Fprintf(&b, "\nDone: %d/%d", done, len(m.items))
	return b.String()
}

func (m Model) viewWeek() string {
	loc := m.tracker.Calendar().Location()
	title := titleStyle.Render(fmt.Sprintf("%s – %s",
		m.week.Days[0].In(loc).Format("Jan 2"),
		m.week.Days[6].In(loc).Format("Jan 2 2006")))
	if len(m.week.Rows) == 0 {
		return title + "\n\n" + mutedStyle.Render("No habits yet.")
	}

	headers := []string{"HABIT"}
	for _, d := range m.week.Days {
		headers = append(headers, d.In(loc).Format("Mon 2"))
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, row := range m.week.Rows {
		cells := []string{row.Habit.Label()}
		for _, c := range row.Cells {
			cells = append(cells, marker(c.Due, c.Checked))
		}
		t.Row(cells...)
	}
	return title + "\n" + t.String()
}

func marker(due, checked bool) string {
	switch {
	case checked:
		return doneStyle.Render("✓")
	case due:
		return "○"
	default:
		return mutedStyle.Render("·")
	}
}
