package model

import (
	"strings"
	"time"
)

// Priority levels for tasks
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists every priority, lowest first
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities, critical highest
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Task represents a single card on the board.
// Status always mirrors ColumnID and is only written through SetColumn.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    Priority  `json:"priority"`
	AssigneeID  string    `json:"assigneeId,omitempty"`
	DueDate     *Date     `json:"dueDate,omitempty"`
	Tags        []string  `json:"tags"`
	ColumnID    string    `json:"columnId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SetColumn moves the task to a column and derives its status
func (t *Task) SetColumn(columnID string) {
	t.ColumnID = columnID
	t.Status = StatusForColumn(columnID)
}

// Normalize repairs fields of a task hydrated from storage
func (t *Task) Normalize() {
	t.SetColumn(t.ColumnID)
	t.Tags = NormalizeTags(t.Tags)
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// Touch sets UpdatedAt to now, or just past the previous value when the clock
// has not moved, so every mutation strictly increases it
func (t *Task) Touch(now time.Time) {
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Millisecond)
	}
	t.UpdatedAt = now
}

// Clone returns a deep copy
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return c
}

// IsDone reports whether the task sits in the done column
func (t *Task) IsDone() bool {
	return t.ColumnID == ColumnDone
}

// IsOverdue returns true if the task is past its due date and not done
func (t *Task) IsOverdue(today Date) bool {
	if t.DueDate == nil || t.IsDone() {
		return false
	}
	return t.DueDate.Before(today)
}

// NormalizeTags trims tags and removes blanks and duplicates, keeping first occurrence order
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// CloneTasks deep-copies a task slice
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
