package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/tracker"
)

// dayItem is one due habit in a day list.
type dayItem struct {
	Label   string
	Checked bool
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.BorderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cli.HeaderStyle
			}
			return cli.CellStyle
		})
}

func renderDay(cal calendar.Calendar, day time.Time, items []dayItem) string {
	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render(day.In(cal.Location()).Format("Monday, Jan 2 2006")))
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString(cli.MutedStyle.Render("Nothing due."))
		return b.String()
	}

	done := 0
	for _, it := range items {
		line := cli.Checkbox(it.Checked) + " " + it.Label
		if it.Checked {
			done++
			line = cli.DoneStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\nDone: %d/%d", done, len(items))
	return b.String()
}

func renderWeek(cal calendar.Calendar, view tracker.WeekView) string {
	title := cli.TitleStyle.Render(fmt.Sprintf("%s – %s",
		view.Days[0].In(cal.Location()).Format("Jan 2"),
		view.Days[6].In(cal.Location()).Format("Jan 2 2006")))
	if len(view.Rows) == 0 {
		return title + "\n\n" + cli.MutedStyle.Render("No habits yet.")
	}

	headers := []string{"HABIT"}
	for _, d := range view.Days {
		headers = append(headers, d.In(cal.Location()).Format("Mon 2"))
	}
	t := newTable(headers...)
	for _, row := range view.Rows {
		cells := []string{row.Habit.Label()}
		for _, c := range row.Cells {
			cells = append(cells, cli.Marker(c.Due, c.Checked))
		}
		t.Row(cells...)
	}
	return title + "\n" + t.String()
}

func renderMonth(cal calendar.Calendar, year int, month time.Month, days []tracker.MonthDay, today time.Time) string {
	title := cli.TitleStyle.Render(cal.Date(year, month, 1).Format("January 2006"))

	headers := make([]string, 7)
	for i := range headers {
		headers[i] = time.Weekday((i + 1) % 7).String()[:3]
	}
	t := newTable(headers...)

	// Monday-first grid with blanks before the 1st.
	var week []string
	if len(days) > 0 {
		for range (int(days[0].Date.In(cal.Location()).Weekday()) + 6) % 7 {
			week = append(week, "")
		}
	}
	for _, d := range days {
		cell := strconv.Itoa(d.Date.In(cal.Location()).Day())
		if len(d.Due) > 0 {
			cell += fmt.Sprintf(" •%d", len(d.Due))
		}
		if cal.SameDay(d.Date, today) {
			cell = cli.DoneStyle.Render(cell)
		}
		week = append(week, cell)
		if len(week) == 7 {
			t.Row(week...)
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, "")
		}
		t.Row(week...)
	}
	return title + "\n" + t.String() + "\n" + cli.MutedStyle.Render("•N: habits due that day")
}

func renderStats(year int, rows []tracker.MonthRow) string {
	title := cli.TitleStyle.Render(strconv.Itoa(year))
	if len(rows) == 0 || len(rows[0].Cells) == 0 {
		return title + "\n\n" + cli.MutedStyle.Render("No habits to show.")
	}

	headers := []string{"MONTH"}
	for _, c := range rows[0].Cells {
		headers = append(headers, c.Habit.Label())
	}
	t := newTable(headers...)
	for _, row := range rows {
		cells := []string{row.Range.Start.Format(constants.MonthFormat)}
		for _, c := range row.Cells {
			cells = append(cells, fmt.Sprintf("%d / %d", c.Checked, c.Expected))
		}
		t.Row(cells...)
	}
	return title + "\n" + t.String()
}

// windowLine is one habit's completion over the stats window.
type windowLine struct {
	Label   string
	Percent float64
	OK      bool
}

func renderWindow(days int, lines []windowLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Last %d days:\n", days)
	for _, l := range lines {
		value := cli.MutedStyle.Render("nothing due")
		if l.OK {
			value = fmt.Sprintf("%3.0f%%", l.Percent)
		}
		fmt.Fprintf(&b, "  %-24s %s\n", l.Label, value)
	}
	return strings.TrimRight(b.String(), "\n")
}

// dueLine lists the due days of one habit.
type dueLine struct {
	Label string
	Dates []time.Time
}

func renderDue(cal calendar.Calendar, r calendar.Range, lines []dueLine) string {
	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render(fmt.Sprintf("Due %s to %s", cal.Format(r.Start), cal.Format(r.End))))
	b.WriteString("\n")
	if len(lines) == 0 {
		b.WriteString("\n" + cli.MutedStyle.Render("No habits yet."))
		return b.String()
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "\n%s (%d)\n", l.Label, len(l.Dates))
		if len(l.Dates) == 0 {
			b.WriteString("  " + cli.MutedStyle.Render("not due") + "\n")
			continue
		}
		dates := make([]string, len(l.Dates))
		for i, d := range l.Dates {
			dates[i] = d.In(cal.Location()).Format("Mon 01-02")
		}
		b.WriteString("  " + strings.Join(dates, ", ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
