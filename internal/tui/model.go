package tui

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/filter"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/realtime"
	"github.com/existflow/taskboard/internal/schedule"
)

// View is one of the ways the board can be drawn
type View int

const (
	ViewBoard View = iota
	ViewList
	ViewCalendar
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "List"
	case ViewCalendar:
		return "Calendar"
	default:
		return "Board"
	}
}

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeEditTask
	ModeAddColumn
	ModeSearch
	ModeHelp
)

// noticeTTL is how long a notice stays in the status bar
const noticeTTL = 4 * time.Second

// Options configure the model
type Options struct {
	Scheduler      schedule.Scheduler
	SearchDebounce time.Duration
}

// Model is the main TUI model
type Model struct {
	board       *board.Board
	sched       schedule.Scheduler
	search      *filter.Search
	unsubscribe func()

	// Signals from other goroutines
	refreshChan chan struct{}
	searchChan  chan string
	noticeChan  chan realtime.Notice

	// Board snapshot
	columns    []model.Column
	users      []model.User
	tasks      []model.Task // filtered
	total      int
	activities []model.Activity
	theme      board.Theme
	styles     Styles

	// UI state
	criteria   filter.Criteria
	view       View
	mode       Mode
	colCursor  int
	taskCursor int
	width      int
	height     int

	// Input
	input textinput.Model

	message  string
	notice   *realtime.Notice
	noticeAt time.Time
}

// NewModel creates a TUI model over a board
func NewModel(b *board.Board, opts Options) Model {
	logger.Info("Initializing TUI model")

	if opts.Scheduler == nil {
		opts.Scheduler = schedule.NewReal()
	}

	ti := textinput.New()
	ti.CharLimit = model.MaxTitleLength + 20
	ti.Width = 50

	m := Model{
		board:       b,
		sched:       opts.Scheduler,
		refreshChan: make(chan struct{}, 1),
		searchChan:  make(chan string, 1),
		noticeChan:  make(chan realtime.Notice, 8),
		input:       ti,
	}

	searchChan := m.searchChan
	m.search = filter.NewSearch(opts.Scheduler, opts.SearchDebounce, func(text string) {
		// keep only the latest settled text
		select {
		case <-searchChan:
		default:
		}
		searchChan <- text
	})

	refreshChan := m.refreshChan
	m.unsubscribe = b.Subscribe(func(board.Event) {
		select {
		case refreshChan <- struct{}{}:
		default:
		}
	})

	m.loadData()
	logger.Debug("TUI model initialized",
		logger.F("columns", len(m.columns)),
		logger.F("tasks", m.total))
	return m
}

// Notify queues a realtime notice for display. It never blocks.
func (m Model) Notify(n realtime.Notice) {
	select {
	case m.noticeChan <- n:
	default:
		logger.Debug("Dropping notice", logger.F("message", n.Message))
	}
}

// Close stops the pending search and detaches from the board
func (m Model) Close() {
	m.search.Stop()
	m.unsubscribe()
}

func (m *Model) loadData() {
	m.columns = m.board.Columns()
	m.users = m.board.Users()
	all := m.board.Tasks()
	m.total = len(all)
	m.tasks = filter.Tasks(all, m.criteria)
	m.activities = m.board.RecentActivities()
	if theme := m.board.Theme(); theme != m.theme {
		m.theme = theme
		m.styles = NewStyles(theme)
	}

	m.colCursor = clamp(m.colCursor, len(m.columns))
	m.taskCursor = clamp(m.taskCursor, len(m.navigable()))
}

// navigable returns the tasks the cursor moves over in the current view
func (m *Model) navigable() []model.Task {
	switch m.view {
	case ViewList:
		return m.tasks
	case ViewCalendar:
		return m.calendarTasks()
	default:
		if len(m.columns) == 0 {
			return nil
		}
		return m.columnTasks(m.columns[m.colCursor].ID)
	}
}

func (m *Model) columnTasks(columnID string) []model.Task {
	var out []model.Task
	for _, t := range m.tasks {
		if t.ColumnID == columnID {
			out = append(out, t)
		}
	}
	return out
}

// calendarTasks returns the dated tasks ordered by due date
func (m *Model) calendarTasks() []model.Task {
	var out []model.Task
	for _, t := range m.tasks {
		if t.DueDate != nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return out
}

func (m *Model) currentTask() *model.Task {
	tasks := m.navigable()
	if m.taskCursor < len(tasks) {
		return &tasks[m.taskCursor]
	}
	return nil
}

func (m *Model) currentColumn() *model.Column {
	if m.colCursor < len(m.columns) {
		return &m.columns[m.colCursor]
	}
	return nil
}

func (m *Model) columnIndex(id string) int {
	for i, c := range m.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) userName(id string) string {
	for _, u := range m.users {
		if u.ID == id {
			return u.Name
		}
	}
	return ""
}

func (m *Model) userInitials(id string) string {
	for _, u := range m.users {
		if u.ID == id {
			return u.Avatar
		}
	}
	return ""
}
