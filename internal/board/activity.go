package board

import (
	"context"

	"github.com/google/uuid"

	"github.com/existflow/taskboard/internal/model"
)

func newActivityID() string {
	return "activity-" + uuid.NewString()
}

// record prepends an activity. Callers hold b.mu and persist afterwards.
func (b *Board) record(typ model.ActivityType, userID, taskID, message string) model.Activity {
	a := model.Activity{
		ID:        newActivityID(),
		Type:      typ,
		Message:   message,
		UserID:    userID,
		TaskID:    taskID,
		Timestamp: b.sched.Now(),
	}
	b.activities = append([]model.Activity{a}, b.activities...)
	return a
}

// AppendActivity prepends an entry to the log and persists it. Empty ID and
// Timestamp are filled in; an empty UserID attributes it to the system.
func (b *Board) AppendActivity(ctx context.Context, entry model.Activity) model.Activity {
	b.mu.Lock()
	if entry.ID == "" {
		entry.ID = newActivityID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = b.sched.Now()
	}
	if entry.UserID == "" {
		entry.UserID = model.SystemUserID
	}
	if entry.Type == "" {
		entry.Type = model.ActivitySystem
	}
	b.activities = append([]model.Activity{entry}, b.activities...)
	b.persist(ctx, KeyActivities)
	b.mu.Unlock()

	b.emit(Event{Kind: EventActivities, TaskID: entry.TaskID})
	return entry
}

// ReplaceActivities swaps in an activity log written by another session
func (b *Board) ReplaceActivities(activities []model.Activity) {
	if activities == nil {
		activities = []model.Activity{}
	}
	b.mu.Lock()
	b.activities = append([]model.Activity(nil), activities...)
	b.mu.Unlock()

	b.emit(Event{Kind: EventActivities, Remote: true})
}

// ReplaceTasks swaps in a task collection written by another session. Status is
// re-derived from each task's column.
func (b *Board) ReplaceTasks(tasks []model.Task) {
	tasks = model.CloneTasks(tasks)
	for i := range tasks {
		tasks[i].Normalize()
	}
	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()

	b.emit(Event{Kind: EventTasks, Remote: true})
}
