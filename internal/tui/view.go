package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/taskboard/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	statusBar := m.renderStatusBar()

	var main string
	switch m.view {
	case ViewList:
		main = m.renderList()
	case ViewCalendar:
		main = m.renderCalendar()
	default:
		main = m.renderBoard()
	}
	main = lipgloss.JoinVertical(lipgloss.Left, main, m.renderActivity())

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var modal string
	switch m.mode {
	case ModeAddTask, ModeEditTask, ModeAddColumn, ModeSearch:
		modal = m.renderModal()
	case ModeHelp:
		modal = m.renderHelp()
	}
	if modal != "" {
		main = lipgloss.Place(
			m.width, bodyHeight,
			lipgloss.Center, lipgloss.Center,
			modal,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, main, statusBar)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render("Taskboard")
	info := m.styles.Muted.Render(fmt.Sprintf("%s view | %d/%d tasks", m.view, len(m.tasks), m.total))

	var filters []string
	if m.criteria.Priority != "" {
		filters = append(filters, "priority:"+string(m.criteria.Priority))
	}
	if m.criteria.AssigneeID != "" {
		filters = append(filters, "assignee:"+m.userName(m.criteria.AssigneeID))
	}
	if m.criteria.SearchText != "" {
		filters = append(filters, fmt.Sprintf("search:%q", m.criteria.SearchText))
	}

	line := title + " " + info
	if len(filters) > 0 {
		line += "  " + m.styles.Info.Render(strings.Join(filters, " "))
	}
	return line
}

// renderBoard draws one column per board column, in order
func (m Model) renderBoard() string {
	if len(m.columns) == 0 {
		return m.styles.Muted.Render("  No columns")
	}

	colWidth := m.width / len(m.columns)
	if colWidth < 16 {
		colWidth = 16
	}
	today := m.board.Today()

	cols := make([]string, 0, len(m.columns))
	for ci, col := range m.columns {
		tasks := m.columnTasks(col.ID)

		var lines []string
		head := lipgloss.NewStyle().
			Inherit(m.styles.ColumnHead).
			Foreground(lipgloss.Color(col.Color)).
			Render(truncate(fmt.Sprintf("%s (%d)", col.Name, len(tasks)), colWidth-3))
		if ci == m.colCursor {
			head = "▸ " + head
		}
		lines = append(lines, head, "")

		for ti, t := range tasks {
			selected := ci == m.colCursor && ti == m.taskCursor
			lines = append(lines, m.renderCard(t, selected, today, colWidth-3)...)
		}
		if len(tasks) == 0 {
			lines = append(lines, m.styles.Muted.Render("(empty)"))
		}

		cols = append(cols, m.styles.Column.Width(colWidth-1).Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderCard(t model.Task, selected bool, today model.Date, width int) []string {
	style := m.styles.Task
	switch {
	case selected:
		style = m.styles.TaskCursor
	case t.IsDone():
		style = m.styles.TaskDone
	}

	title := style.Render(truncate(t.Title, width))
	meta := m.styles.Priority(t.Priority)
	if initials := m.userInitials(t.AssigneeID); initials != "" {
		meta += " " + m.styles.Muted.Render(initials)
	}
	if t.DueDate != nil {
		due := t.DueDate.String()
		if t.IsOverdue(today) {
			meta += " " + m.styles.Overdue.Render(due+" !")
		} else {
			meta += " " + m.styles.Muted.Render(due)
		}
	}
	return []string{title, meta, ""}
}

// renderList draws every visible task as a row
func (m Model) renderList() string {
	if len(m.tasks) == 0 {
		return m.renderEmpty()
	}

	today := m.board.Today()
	titleWidth := m.width - 50
	if titleWidth < 20 {
		titleWidth = 20
	}

	var b strings.Builder
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %-*s %-9s %-12s %-14s %s",
		titleWidth, "Title", "Priority", "Due", "Column", "Assignee")))
	b.WriteString("\n")

	for i, t := range m.tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		assignee := m.userName(t.AssigneeID)
		if assignee == "" {
			assignee = "-"
		}

		prefix := "  "
		style := m.styles.Task
		if i == m.taskCursor {
			prefix = "▸ "
			style = m.styles.TaskCursor
		} else if t.IsDone() {
			style = m.styles.TaskDone
		}

		row := style.Render(fmt.Sprintf("%-*s", titleWidth, truncate(t.Title, titleWidth)))
		priority := m.styles.Priority(t.Priority) + strings.Repeat(" ", max(0, 9-len(t.Priority)))
		dueCell := fmt.Sprintf("%-12s", due)
		if t.IsOverdue(today) {
			dueCell = m.styles.Overdue.Render(dueCell)
		}
		column := fmt.Sprintf("%-14s", truncate(m.columnName(t.ColumnID), 14))

		b.WriteString(prefix + row + " " + priority + " " + dueCell + " " + column + " " + assignee + "\n")
	}
	return b.String()
}

// renderCalendar groups dated tasks under their due date
func (m Model) renderCalendar() string {
	tasks := m.calendarTasks()
	if len(tasks) == 0 {
		return m.renderEmpty()
	}

	today := m.board.Today()
	var b strings.Builder
	var current model.Date
	for i, t := range tasks {
		if i == 0 || !t.DueDate.Equal(current) {
			current = *t.DueDate
			label := current.Time().Format("Mon Jan 2, 2006")
			switch {
			case current.Equal(today):
				label += " (today)"
			case current.Before(today):
				label = m.styles.Overdue.Render(label)
			}
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(m.styles.ColumnHead.Render(label) + "\n")
		}

		prefix := "  "
		style := m.styles.Task
		if i == m.taskCursor {
			prefix = "▸ "
			style = m.styles.TaskCursor
		} else if t.IsDone() {
			style = m.styles.TaskDone
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", prefix, m.styles.Priority(t.Priority), style.Render(truncate(t.Title, m.width-16))))
	}
	return b.String()
}

func (m Model) renderEmpty() string {
	if m.criteria.Active() {
		return m.styles.Muted.Render("\n  No tasks match the current filters. Press esc to clear them.")
	}
	return m.styles.Muted.Render("\n  No tasks yet. Press 'a' to add one.")
}

// renderActivity shows the most recent activity entries
func (m Model) renderActivity() string {
	lines := []string{m.styles.ColumnHead.Render("Recent activity")}
	if len(m.activities) == 0 {
		lines = append(lines, m.styles.Muted.Render("Nothing yet"))
	}
	for _, a := range m.activities {
		lines = append(lines, fmt.Sprintf("%s %s",
			m.styles.Muted.Render(a.Timestamp.Local().Format("15:04")),
			truncate(a.Message, m.width-10)))
	}
	return m.styles.Panel.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.notice != nil:
		left = m.styles.Notice(*m.notice)
	case strings.HasPrefix(m.message, "Error"):
		left = m.styles.Error.Render(m.message)
	case m.message != "":
		left = m.message
	default:
		left = "a:add  e:edit  x:done  [/]:move  v:view  /:search  p/u:filter  ?:help  q:quit"
	}
	return m.styles.StatusBar.Width(m.width).Render(left)
}

func (m Model) renderModal() string {
	var title string
	switch m.mode {
	case ModeAddTask:
		title = "Add Task"
	case ModeEditTask:
		title = "Edit Task"
	case ModeAddColumn:
		title = "Add Column"
	case ModeSearch:
		title = "Search"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		"",
		m.input.View(),
		"",
		m.styles.Muted.Render("enter: confirm  esc: cancel"),
	)
	return m.styles.Modal.Render(content)
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Keys") + "\n\n")
	for _, k := range helpBindings() {
		h := k.Help()
		b.WriteString(fmt.Sprintf("%-10s %s\n", h.Key, h.Desc))
	}
	b.WriteString("\n" + m.styles.Muted.Render("press any key to close"))
	return m.styles.Modal.Render(b.String())
}

func (m Model) columnName(id string) string {
	if i := m.columnIndex(id); i >= 0 {
		return m.columns[i].Name
	}
	return id
}
