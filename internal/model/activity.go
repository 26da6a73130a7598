package model

import "time"

// ActivityType classifies an activity log entry
type ActivityType string

const (
	ActivityTaskCreated   ActivityType = "task_created"
	ActivityTaskUpdated   ActivityType = "task_updated"
	ActivityTaskMoved     ActivityType = "task_moved"
	ActivityTaskCompleted ActivityType = "task_completed"
	ActivitySystem        ActivityType = "system"
)

// Activity is an immutable, pre-rendered log entry. TaskID is a weak reference:
// the task may no longer exist when the entry is shown.
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	UserID    string       `json:"userId"`
	TaskID    string       `json:"taskId,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
