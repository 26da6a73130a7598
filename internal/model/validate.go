package model

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Field limits for task input
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxTags              = 10
)

// ValidationError maps a field name to the message shown next to it
type ValidationError map[string]string

// Error implements error, listing fields in a stable order
func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records the first message for a field
func (e ValidationError) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns nil when no field failed
func (e ValidationError) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// TaskInput carries the raw fields of a create or the merged fields of an update
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	AssigneeID  string   `json:"assigneeId,omitempty"`
	DueDate     *Date    `json:"dueDate,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ColumnID    string   `json:"columnId"`
}

// TaskPatch holds the fields an update changes; nil leaves a field untouched
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	AssigneeID   *string
	DueDate      *Date
	ClearDueDate bool
	Tags         *[]string
	ColumnID     *string
}

// Empty reports whether the patch changes nothing
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.AssigneeID == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.Tags == nil && p.ColumnID == nil
}

// Validate checks the field rules that need no board context. A nil DueDate is
// not checked, which lets updates skip an untouched due date.
func (in TaskInput) Validate(today Date) ValidationError {
	errs := ValidationError{}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		errs.Add("title", fmt.Sprintf("Title must be %d characters or less", MaxTitleLength))
	}

	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		errs.Add("description", fmt.Sprintf("Description must be %d characters or less", MaxDescriptionLength))
	}

	if in.Priority != "" && !in.Priority.Valid() {
		errs.Add("priority", fmt.Sprintf("Unknown priority %q", in.Priority))
	}

	if in.DueDate != nil && in.DueDate.Before(today) {
		errs.Add("dueDate", "Due date cannot be in the past")
	}

	if len(NormalizeTags(in.Tags)) > MaxTags {
		errs.Add("tags", fmt.Sprintf("Maximum %d tags allowed", MaxTags))
	}

	if in.ColumnID == "" {
		errs.Add("columnId", "Column is required")
	}

	return errs
}
