package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/realtime"
)

// tickMsg is sent every second for time updates
type tickMsg time.Time

// refreshMsg is sent when the board changed
type refreshMsg struct{}

// searchMsg carries settled search text
type searchMsg string

// noticeMsg carries a realtime notice
type noticeMsg realtime.Notice

// Init initializes the model with a tick command and the signal listeners
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForRefresh(), m.waitForSearch(), m.waitForNotice())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForRefresh listens for board change signals
func (m Model) waitForRefresh() tea.Cmd {
	return func() tea.Msg {
		<-m.refreshChan
		return refreshMsg{}
	}
}

// waitForSearch listens for debounced search text
func (m Model) waitForSearch() tea.Cmd {
	return func() tea.Msg {
		return searchMsg(<-m.searchChan)
	}
}

// waitForNotice listens for realtime notices
func (m Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.noticeChan)
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.notice != nil && m.sched.Now().Sub(m.noticeAt) >= noticeTTL {
			m.notice = nil
		}
		return m, tickCmd()

	case refreshMsg:
		m.loadData()
		return m, m.waitForRefresh()

	case searchMsg:
		m.criteria.SearchText = string(msg)
		m.taskCursor = 0
		m.loadData()
		return m, m.waitForSearch()

	case noticeMsg:
		n := realtime.Notice(msg)
		m.notice = &n
		m.noticeAt = m.sched.Now()
		return m, m.waitForNotice()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask, ModeEditTask, ModeAddColumn:
			return m.updateInput(msg)
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.taskCursor > 0 {
			m.taskCursor--
		}

	case key.Matches(msg, keys.Down):
		if m.taskCursor < len(m.navigable())-1 {
			m.taskCursor++
		}

	case key.Matches(msg, keys.Left):
		if m.view == ViewBoard && m.colCursor > 0 {
			m.colCursor--
			m.taskCursor = 0
		}

	case key.Matches(msg, keys.Right):
		if m.view == ViewBoard && m.colCursor < len(m.columns)-1 {
			m.colCursor++
			m.taskCursor = 0
		}

	case key.Matches(msg, keys.View):
		m.view = (m.view + 1) % 3
		m.taskCursor = 0
		m.message = m.view.String() + " view"

	case key.Matches(msg, keys.Search):
		return m.startInput(ModeSearch, m.criteria.SearchText, "Search title or description...")

	case key.Matches(msg, keys.Priority):
		m.cyclePriority()

	case key.Matches(msg, keys.Assignee):
		m.cycleAssignee()

	case key.Matches(msg, keys.Escape):
		if m.criteria.Active() {
			m.criteria.Priority, m.criteria.AssigneeID = "", ""
			m.criteria.SearchText = ""
			m.search.Cancel()
			m.loadData()
			m.message = "Filters cleared"
		}

	case key.Matches(msg, keys.Add):
		return m.startInput(ModeAddTask, "", "Task title...")

	case key.Matches(msg, keys.Edit):
		if task := m.currentTask(); task != nil {
			return m.startInput(ModeEditTask, task.Title, "Edit title...")
		}

	case key.Matches(msg, keys.Done):
		m.handleToggleDone()

	case key.Matches(msg, keys.Next):
		m.handleMove(1)

	case key.Matches(msg, keys.Prev):
		m.handleMove(-1)

	case key.Matches(msg, keys.Column):
		return m.startInput(ModeAddColumn, "", "Column name...")

	case key.Matches(msg, keys.Theme):
		m.handleTheme()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m Model) startInput(mode Mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m *Model) cyclePriority() {
	next := model.Priorities[0]
	for i, p := range model.Priorities {
		if p == m.criteria.Priority {
			if i == len(model.Priorities)-1 {
				next = ""
			} else {
				next = model.Priorities[i+1]
			}
			break
		}
	}
	m.criteria.Priority = next
	m.taskCursor = 0
	m.loadData()

	if next == "" {
		m.message = "Priority filter cleared"
	} else {
		m.message = fmt.Sprintf("Priority: %s", next)
	}
}

func (m *Model) cycleAssignee() {
	next := ""
	if len(m.users) > 0 {
		next = m.users[0].ID
	}
	for i, u := range m.users {
		if u.ID == m.criteria.AssigneeID {
			next = ""
			if i < len(m.users)-1 {
				next = m.users[i+1].ID
			}
			break
		}
	}
	m.criteria.AssigneeID = next
	m.taskCursor = 0
	m.loadData()

	if next == "" {
		m.message = "Assignee filter cleared"
	} else {
		m.message = fmt.Sprintf("Assignee: %s", m.userName(next))
	}
}

func (m *Model) handleToggleDone() {
	task := m.currentTask()
	if task == nil {
		return
	}
	updated, err := m.board.ToggleTaskCompletion(context.Background(), task.ID)
	if err != nil {
		m.fail(err)
		return
	}
	m.loadData()
	if updated.IsDone() {
		m.message = "Completed: " + truncate(updated.Title, 40)
	} else {
		m.message = "Reopened: " + truncate(updated.Title, 40)
	}
}

// handleMove moves the selected task dir columns along the column order
func (m *Model) handleMove(dir int) {
	task := m.currentTask()
	if task == nil {
		return
	}
	i := m.columnIndex(task.ColumnID) + dir
	if i < 0 || i >= len(m.columns) {
		return
	}
	target := m.columns[i]

	if _, err := m.board.MoveTask(context.Background(), task.ID, target.ID); err != nil {
		m.fail(err)
		return
	}
	if m.view == ViewBoard {
		// follow the task
		m.colCursor = i
		m.loadData()
		for j, t := range m.navigable() {
			if t.ID == task.ID {
				m.taskCursor = j
			}
		}
	} else {
		m.loadData()
	}
	m.message = fmt.Sprintf("Moved to %s", target.Name)
}

func (m *Model) handleTheme() {
	next := board.ThemeDark
	if m.theme == board.ThemeDark {
		next = board.ThemeLight
	}
	if err := m.board.SetTheme(context.Background(), string(next)); err != nil {
		m.fail(err)
		return
	}
	m.loadData()
	m.message = fmt.Sprintf("Theme: %s", next)
}

func (m *Model) fail(err error) {
	var verr model.ValidationError
	if errors.As(err, &verr) {
		msgs := make([]string, 0, len(verr))
		for _, field := range []string{"title", "description", "dueDate", "tags", "priority", "columnId", "assigneeId"} {
			if msg, ok := verr[field]; ok {
				msgs = append(msgs, msg)
			}
		}
		m.message = "Error: " + strings.Join(msgs, "; ")
		return
	}
	logger.Warn("Command failed", logger.F("error", err))
	m.message = fmt.Sprintf("Error: %v", err)
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := m.input.Value()
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()

		switch mode {
		case ModeAddTask:
			m.addTask(value)
		case ModeEditTask:
			m.editTitle(value)
		case ModeAddColumn:
			m.addColumn(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) addTask(title string) {
	columnID := model.ColumnTodo
	if col := m.currentColumn(); col != nil && m.view == ViewBoard {
		columnID = col.ID
	} else if m.columnIndex(columnID) < 0 && len(m.columns) > 0 {
		columnID = m.columns[0].ID
	}

	in := model.TaskInput{
		Title:      title,
		ColumnID:   columnID,
		Priority:   m.criteria.Priority,
		AssigneeID: m.criteria.AssigneeID,
	}
	task, err := m.board.CreateTask(context.Background(), in)
	if err != nil {
		m.fail(err)
		return
	}
	m.loadData()
	m.message = "Added: " + truncate(task.Title, 40)
}

func (m *Model) editTitle(title string) {
	task := m.currentTask()
	if task == nil {
		return
	}
	if _, err := m.board.UpdateTask(context.Background(), task.ID, model.TaskPatch{Title: &title}); err != nil {
		m.fail(err)
		return
	}
	m.loadData()
	m.message = "Task updated"
}

func (m *Model) addColumn(name string) {
	col, ok := m.board.AddColumn(context.Background(), name)
	if !ok {
		m.message = "Column name is required"
		return
	}
	m.loadData()
	m.message = fmt.Sprintf("Added column %s", col.Name)
}

// updateSearch feeds keystrokes to the debounced search
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.search.Set(m.input.Value())
	return m, cmd
}
