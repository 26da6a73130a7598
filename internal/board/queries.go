package board

import (
	"github.com/existflow/taskboard/internal/model"
)

// Tasks returns a copy of all tasks in stored order
func (b *Board) Tasks() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return model.CloneTasks(b.tasks)
}

// Task returns a copy of the task with the given id
func (b *Board) Task(id string) (model.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.taskIndex(id); i >= 0 {
		return b.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

// Columns returns the columns sorted by order
func (b *Board) Columns() []model.Column {
	b.mu.Lock()
	defer b.mu.Unlock()
	cols := append([]model.Column(nil), b.columns...)
	model.SortColumns(cols)
	return cols
}

// Column returns the column with the given id
func (b *Board) Column(id string) (model.Column, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.columnIndex(id); i >= 0 {
		return b.columns[i], true
	}
	return model.Column{}, false
}

// Users returns all board members
func (b *Board) Users() []model.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.User(nil), b.users...)
}

// User returns the member with the given id
func (b *Board) User(id string) (model.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.userIndex(id); i >= 0 {
		return b.users[i], true
	}
	return model.User{}, false
}

// Activities returns the whole activity log, most recent first
func (b *Board) Activities() []model.Activity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Activity(nil), b.activities...)
}

// RecentActivities returns the activities shown in the activity panel
func (b *Board) RecentActivities() []model.Activity {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := min(len(b.activities), RecentLimit)
	return append([]model.Activity(nil), b.activities[:n]...)
}

// Theme returns the active theme
func (b *Board) Theme() Theme {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.theme
}

// TasksInColumn returns the tasks of one column in stored order
func (b *Board) TasksInColumn(columnID string) []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []model.Task
	for _, t := range b.tasks {
		if t.ColumnID == columnID {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (b *Board) taskIndex(id string) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) columnIndex(id string) int {
	for i := range b.columns {
		if b.columns[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) userIndex(id string) int {
	for i := range b.users {
		if b.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) columnName(id string) string {
	if i := b.columnIndex(id); i >= 0 {
		return b.columns[i].Name
	}
	return id
}

// actorName is the display name of the session user
func (b *Board) actorName() string {
	if i := b.userIndex(b.userID); i >= 0 {
		return b.users[i].Name
	}
	if b.userID == "" {
		return "Someone"
	}
	return b.userID
}
