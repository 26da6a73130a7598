// Package filter narrows the visible task set by priority, assignee and text.
package filter

import (
	"strings"
	"time"

	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/schedule"
)

// DefaultDebounce is the quiet period before a search text change is applied
const DefaultDebounce = 300 * time.Millisecond

// Criteria is the session-scoped filter triple. Empty fields match everything.
type Criteria struct {
	Priority   model.Priority `json:"priority"`
	AssigneeID string         `json:"assigneeId"`
	SearchText string         `json:"searchText"`
}

// Active reports whether any criterion is set
func (c Criteria) Active() bool {
	return c.Priority != "" || c.AssigneeID != "" || strings.TrimSpace(c.SearchText) != ""
}

// Match reports whether a task satisfies every criterion
func (c Criteria) Match(t model.Task) bool {
	if c.Priority != "" && t.Priority != c.Priority {
		return false
	}
	if c.AssigneeID != "" && t.AssigneeID != c.AssigneeID {
		return false
	}
	if c.SearchText != "" {
		q := strings.ToLower(c.SearchText)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// Tasks returns the tasks matching c, in their original order
func Tasks(tasks []model.Task, c Criteria) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Search debounces search text edits: only the latest text is delivered, once
// typing has paused for the configured delay
type Search struct {
	debouncer *schedule.Debouncer
	apply     func(text string)
}

// NewSearch creates a debounced search that calls apply with the settled text
func NewSearch(sched schedule.Scheduler, delay time.Duration, apply func(text string)) *Search {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Search{debouncer: schedule.NewDebouncer(sched, delay), apply: apply}
}

// Set records a keystroke
func (s *Search) Set(text string) {
	s.debouncer.Trigger(func() { s.apply(text) })
}

// Pending reports whether a text change is waiting to be applied
func (s *Search) Pending() bool {
	return s.debouncer.Pending()
}

// Cancel drops any pending change and keeps accepting new text
func (s *Search) Cancel() {
	s.debouncer.Cancel()
}

// Stop drops any pending change and ignores later text
func (s *Search) Stop() {
	s.debouncer.Stop()
}
