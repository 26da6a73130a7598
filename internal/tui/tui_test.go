package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/kv"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/realtime"
	"github.com/existflow/taskboard/internal/schedule"
)

var epoch = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *board.Board, *schedule.Fake) {
	t.Helper()
	fake := schedule.NewFake(epoch)
	b, err := board.Open(context.Background(), kv.NewAdapter(kv.NewMemory()), board.WithScheduler(fake))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m := NewModel(b, Options{Scheduler: fake})
	t.Cleanup(m.Close)
	return send(m, tea.WindowSizeMsg{Width: 120, Height: 40}), b, fake
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends named keys or a run of typed characters
func press(m Model, k string) Model {
	switch k {
	case "enter":
		return send(m, tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return send(m, tea.KeyMsg{Type: tea.KeyEsc})
	}
	return send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func findTask(t *testing.T, b *board.Board, title string) model.Task {
	t.Helper()
	for _, task := range b.Tasks() {
		if task.Title == title {
			return task
		}
	}
	t.Fatalf("Task %q not found", title)
	return model.Task{}
}

func TestAddTaskToCurrentColumn(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = press(m, "a")
	if m.mode != ModeAddTask {
		t.Fatalf("Expected add mode, got %v", m.mode)
	}
	m = press(m, "Ship it")
	m = press(m, "enter")

	if m.mode != ModeNormal {
		t.Errorf("Expected normal mode after enter, got %v", m.mode)
	}
	task := findTask(t, b, "Ship it")
	if task.ColumnID != "col-backlog" {
		t.Errorf("Expected task in col-backlog, got %s", task.ColumnID)
	}
	if m.total != 7 {
		t.Errorf("Expected 7 tasks, got %d", m.total)
	}
	if m.message != "Added: Ship it" {
		t.Errorf("Unexpected message %q", m.message)
	}
}

func TestAddTaskShowsValidationError(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = press(m, "a")
	m = press(m, "enter")

	if !strings.HasPrefix(m.message, "Error: ") {
		t.Errorf("Expected an error message, got %q", m.message)
	}
	if n := len(b.Tasks()); n != 6 {
		t.Errorf("Expected no task to be created, got %d tasks", n)
	}
}

func TestEscapeCancelsInput(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = press(m, "a")
	m = press(m, "Never mind")
	m = press(m, "esc")

	if m.mode != ModeNormal {
		t.Errorf("Expected normal mode, got %v", m.mode)
	}
	if n := len(b.Tasks()); n != 6 {
		t.Errorf("Expected 6 tasks, got %d", n)
	}
}

func TestToggleDone(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = press(m, "l") // To Do
	if task := m.currentTask(); task == nil || task.Title != "Fix login redirect" {
		t.Fatalf("Expected cursor on Fix login redirect, got %+v", task)
	}
	m = press(m, "x")

	task := findTask(t, b, "Fix login redirect")
	if task.ColumnID != model.ColumnDone || task.Status != "done" {
		t.Errorf("Expected task done, got column %s status %s", task.ColumnID, task.Status)
	}
	if !strings.HasPrefix(m.message, "Completed") {
		t.Errorf("Unexpected message %q", m.message)
	}
}

func TestMoveFollowsTask(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = press(m, "l")
	m = press(m, "]")

	task := findTask(t, b, "Fix login redirect")
	if task.ColumnID != "col-in-progress" {
		t.Errorf("Expected col-in-progress, got %s", task.ColumnID)
	}
	if m.colCursor != 2 {
		t.Errorf("Expected cursor on column 2, got %d", m.colCursor)
	}
	if cur := m.currentTask(); cur == nil || cur.ID != task.ID {
		t.Errorf("Expected cursor to follow the moved task")
	}
	if m.message != "Moved to In Progress" {
		t.Errorf("Unexpected message %q", m.message)
	}

	// first column has nothing before it
	m = press(m, "h")
	m = press(m, "h")
	first := m.currentTask()
	m = press(m, "[")
	if got := findTask(t, b, first.Title); got.ColumnID != "col-backlog" {
		t.Errorf("Expected task to stay in backlog, got %s", got.ColumnID)
	}
}

func TestEditTitle(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = press(m, "l")
	m = press(m, "e")
	if m.input.Value() != "Fix login redirect" {
		t.Fatalf("Expected input prefilled with title, got %q", m.input.Value())
	}
	m = press(m, " now")
	m = press(m, "enter")

	findTask(t, b, "Fix login redirect now")
	if m.message != "Task updated" {
		t.Errorf("Unexpected message %q", m.message)
	}
}

func TestViewCycle(t *testing.T) {
	m, _, _ := newTestModel(t)

	want := []View{ViewList, ViewCalendar, ViewBoard}
	for _, v := range want {
		m = press(m, "v")
		if m.view != v {
			t.Errorf("Expected %s view, got %s", v, m.view)
		}
	}
}

func TestDebouncedSearch(t *testing.T) {
	m, _, fake := newTestModel(t)

	m = press(m, "/")
	if m.mode != ModeSearch {
		t.Fatalf("Expected search mode, got %v", m.mode)
	}
	m = press(m, "OAUTH")

	fake.Advance(299 * time.Millisecond)
	select {
	case text := <-m.searchChan:
		t.Fatalf("Search applied early with %q", text)
	default:
	}
	if len(m.tasks) != 6 {
		t.Errorf("Expected unfiltered tasks before debounce, got %d", len(m.tasks))
	}

	fake.Advance(time.Millisecond)
	var text string
	select {
	case text = <-m.searchChan:
	default:
		t.Fatal("Search not applied after debounce")
	}
	m = send(m, searchMsg(text))

	if len(m.tasks) != 1 || m.tasks[0].Title != "Fix login redirect" {
		t.Errorf("Expected only the OAuth task, got %d tasks", len(m.tasks))
	}

	m = press(m, "enter")
	m = press(m, "esc")
	if m.criteria.Active() || len(m.tasks) != 6 {
		t.Errorf("Expected filters cleared, got %+v with %d tasks", m.criteria, len(m.tasks))
	}

	// clearing filters must leave search usable
	m = press(m, "/")
	m = press(m, "roadmap")
	fake.Advance(300 * time.Millisecond)
	select {
	case text = <-m.searchChan:
	default:
		t.Fatal("Search not applied after filters were cleared")
	}
	m = send(m, searchMsg(text))
	if len(m.tasks) != 1 || m.tasks[0].Title != "Plan Q3 roadmap" {
		t.Errorf("Expected only the roadmap task, got %d tasks", len(m.tasks))
	}
}

func TestPriorityFilterCycles(t *testing.T) {
	m, _, _ := newTestModel(t)

	want := []struct {
		priority model.Priority
		count    int
	}{
		{model.PriorityLow, 1},
		{model.PriorityMedium, 2},
		{model.PriorityHigh, 2},
		{model.PriorityCritical, 1},
		{"", 6},
	}
	for _, w := range want {
		m = press(m, "p")
		if m.criteria.Priority != w.priority {
			t.Fatalf("Expected priority %q, got %q", w.priority, m.criteria.Priority)
		}
		if len(m.tasks) != w.count {
			t.Errorf("Priority %q: expected %d tasks, got %d", w.priority, w.count, len(m.tasks))
		}
	}
}

func TestAssigneeFilterCycles(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(m, "u")
	if m.criteria.AssigneeID != "user-1" {
		t.Fatalf("Expected user-1, got %q", m.criteria.AssigneeID)
	}
	if len(m.tasks) != 2 {
		t.Errorf("Expected 2 tasks for user-1, got %d", len(m.tasks))
	}
	for range 4 {
		m = press(m, "u")
	}
	if m.criteria.AssigneeID != "" {
		t.Errorf("Expected assignee filter cleared, got %q", m.criteria.AssigneeID)
	}
}

func TestRefreshOnBoardChange(t *testing.T) {
	m, b, _ := newTestModel(t)

	_, err := b.CreateTask(context.Background(), model.TaskInput{Title: "From elsewhere", ColumnID: model.ColumnTodo})
	if err != nil {
		t.Fatal(err)
	}

	msg := m.waitForRefresh()()
	m = send(m, msg)
	if m.total != 7 {
		t.Errorf("Expected 7 tasks after refresh, got %d", m.total)
	}
}

func TestThemeToggle(t *testing.T) {
	m, b, _ := newTestModel(t)

	before := b.Theme()
	m = press(m, "t")
	if b.Theme() == before {
		t.Fatalf("Expected theme to change from %s", before)
	}
	if m.theme != b.Theme() {
		t.Errorf("Model theme %s does not match board %s", m.theme, b.Theme())
	}
	m = press(m, "t")
	if b.Theme() != before {
		t.Errorf("Expected theme back to %s, got %s", before, b.Theme())
	}
}

func TestAddColumn(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = press(m, "c")
	m = press(m, "Blocked")
	m = press(m, "enter")

	cols := b.Columns()
	if len(cols) != 6 || cols[5].ID != "col-blocked" {
		t.Fatalf("Expected col-blocked appended, got %+v", cols)
	}
	if len(m.columns) != 6 {
		t.Errorf("Expected model to show 6 columns, got %d", len(m.columns))
	}

	m = press(m, "c")
	m = press(m, "enter")
	if m.message != "Column name is required" {
		t.Errorf("Unexpected message %q", m.message)
	}
}

func TestNoticeExpires(t *testing.T) {
	m, _, fake := newTestModel(t)

	m.Notify(realtime.Notice{Level: realtime.LevelError, Message: "Sync error: test"})
	m = send(m, m.waitForNotice()())
	if m.notice == nil {
		t.Fatal("Expected notice to be shown")
	}
	if !strings.Contains(m.View(), "Sync error: test") {
		t.Error("Expected notice in status bar")
	}

	fake.Advance(noticeTTL)
	m = send(m, tickMsg(fake.Now()))
	if m.notice != nil {
		t.Error("Expected notice to expire")
	}
}

func TestViews(t *testing.T) {
	m, _, _ := newTestModel(t)

	out := m.View()
	for _, want := range []string{"Backlog", "Fix login redirect", "Recent activity", "Board created"} {
		if !strings.Contains(out, want) {
			t.Errorf("Board view missing %q", want)
		}
	}

	m = press(m, "v")
	if out := m.View(); !strings.Contains(out, "Write API documentation") {
		t.Error("List view missing task")
	}

	m = press(m, "v")
	out = m.View()
	if !strings.Contains(out, "Fix login redirect") {
		t.Error("Calendar view missing dated task")
	}
	if strings.Contains(out, "Plan Q3 roadmap") {
		t.Error("Calendar view shows undated task")
	}

	m = press(m, "?")
	if !strings.Contains(m.View(), "toggle theme") {
		t.Error("Help missing bindings")
	}
	m = press(m, "z")
	if m.mode != ModeNormal {
		t.Errorf("Expected help to close, got mode %v", m.mode)
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected QuitMsg")
	}
}
