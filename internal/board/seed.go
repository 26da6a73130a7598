package board

import (
	"time"

	"github.com/google/uuid"

	"github.com/existflow/taskboard/internal/model"
)

type sampleTask struct {
	title, description string
	priority           model.Priority
	assignee, column   string
	dueIn              int // days from today, 0 for none
	tags               []string
}

var sampleTasks = []sampleTask{
	{"Design onboarding flow", "Wireframes for the first-run experience", model.PriorityHigh, "user-3", "col-in-progress", 3, []string{"design", "ux"}},
	{"Fix login redirect", "Users land on a blank page after OAuth callback", model.PriorityCritical, "user-2", "col-todo", 1, []string{"bug", "auth"}},
	{"Write API documentation", "Cover every endpoint with request and response examples", model.PriorityMedium, "user-1", "col-backlog", 10, []string{"docs"}},
	{"Regression test suite", "Automate the smoke tests run before each release", model.PriorityHigh, "user-4", "col-review", 5, []string{"qa", "testing"}},
	{"Set up CI pipeline", "", model.PriorityMedium, "user-2", "col-done", 0, []string{"devops"}},
	{"Plan Q3 roadmap", "Collect input from stakeholders", model.PriorityLow, "user-1", "col-backlog", 0, nil},
}

// seed fills an empty board with the default users, columns, sample tasks and
// a single system activity. Callers hold b.mu.
func (b *Board) seed() {
	now := b.sched.Now()
	today := model.DateOf(now)

	b.users = model.DefaultUsers()
	b.columns = model.DefaultColumns()
	b.tasks = make([]model.Task, 0, len(sampleTasks))
	for i, s := range sampleTasks {
		created := now.Add(-time.Duration(len(sampleTasks)-i) * time.Hour)
		t := model.Task{
			ID:          "task-" + uuid.NewString(),
			Title:       s.title,
			Description: s.description,
			Priority:    s.priority,
			AssigneeID:  s.assignee,
			Tags:        model.NormalizeTags(s.tags),
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if s.dueIn > 0 {
			d := today.AddDays(s.dueIn)
			t.DueDate = &d
		}
		t.SetColumn(s.column)
		b.tasks = append(b.tasks, t)
	}
	b.activities = []model.Activity{}
	b.record(model.ActivitySystem, model.SystemUserID, "", "Board created")
}
