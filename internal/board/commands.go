package board

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
)

// validateRefs checks the fields that need board context. Callers hold b.mu.
func (b *Board) validateRefs(in model.TaskInput, errs model.ValidationError) {
	if in.ColumnID != "" && b.columnIndex(in.ColumnID) < 0 {
		errs.Add("columnId", "Unknown column")
	}
	if in.AssigneeID != "" && b.userIndex(in.AssigneeID) < 0 {
		errs.Add("assigneeId", "Unknown assignee")
	}
}

// CreateTask validates the input and appends a new task to its column
func (b *Board) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	b.mu.Lock()

	errs := in.Validate(model.DateOf(b.sched.Now()))
	b.validateRefs(in, errs)
	if err := errs.Err(); err != nil {
		b.mu.Unlock()
		return model.Task{}, err
	}

	now := b.sched.Now()
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	t := model.Task{
		ID:          "task-" + uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		AssigneeID:  in.AssigneeID,
		Tags:        model.NormalizeTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}
	t.SetColumn(in.ColumnID)

	b.tasks = append(b.tasks, t)
	b.record(model.ActivityTaskCreated, b.userID, t.ID,
		fmt.Sprintf("%s created %q", b.actorName(), t.Title))
	b.persist(ctx, KeyTasks, KeyActivities)
	b.mu.Unlock()

	logger.Info("Task created", logger.F("id", t.ID), logger.F("column", t.ColumnID))
	b.emit(Event{Kind: EventTasks, TaskID: t.ID}, Event{Kind: EventActivities, TaskID: t.ID})
	return t.Clone(), nil
}

// UpdateTask merges patch into the task. The merged result is validated as a
// whole; the due date is only checked when the patch sets it.
func (b *Board) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	b.mu.Lock()

	i := b.taskIndex(id)
	if i < 0 {
		b.mu.Unlock()
		return model.Task{}, notFound("task", id)
	}
	cur := b.tasks[i]

	in := model.TaskInput{
		Title:       cur.Title,
		Description: cur.Description,
		Priority:    cur.Priority,
		AssigneeID:  cur.AssigneeID,
		Tags:        cur.Tags,
		ColumnID:    cur.ColumnID,
	}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.Priority != nil {
		in.Priority = *patch.Priority
	}
	if patch.AssigneeID != nil {
		in.AssigneeID = *patch.AssigneeID
	}
	if patch.Tags != nil {
		in.Tags = *patch.Tags
	}
	if patch.ColumnID != nil {
		in.ColumnID = *patch.ColumnID
	}
	if patch.DueDate != nil && !patch.ClearDueDate {
		in.DueDate = patch.DueDate
	}

	errs := in.Validate(model.DateOf(b.sched.Now()))
	b.validateRefs(in, errs)
	if err := errs.Err(); err != nil {
		b.mu.Unlock()
		return model.Task{}, err
	}

	t := cur.Clone()
	t.Title = strings.TrimSpace(in.Title)
	t.Description = strings.TrimSpace(in.Description)
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	t.AssigneeID = in.AssigneeID
	t.Tags = model.NormalizeTags(in.Tags)
	switch {
	case patch.ClearDueDate:
		t.DueDate = nil
	case patch.DueDate != nil:
		d := *patch.DueDate
		t.DueDate = &d
	}
	if in.ColumnID != t.ColumnID {
		t.SetColumn(in.ColumnID)
	}
	t.Touch(b.sched.Now())

	b.tasks[i] = t
	b.record(model.ActivityTaskUpdated, b.userID, t.ID,
		fmt.Sprintf("%s updated %q", b.actorName(), t.Title))
	b.persist(ctx, KeyTasks, KeyActivities)
	b.mu.Unlock()

	logger.Debug("Task updated", logger.F("id", t.ID))
	b.emit(Event{Kind: EventTasks, TaskID: t.ID}, Event{Kind: EventActivities, TaskID: t.ID})
	return t.Clone(), nil
}

// MoveTask moves a task to another column. Moving to the current column
// changes nothing and reports false.
func (b *Board) MoveTask(ctx context.Context, id, columnID string) (bool, error) {
	b.mu.Lock()

	i := b.taskIndex(id)
	if i < 0 {
		b.mu.Unlock()
		return false, notFound("task", id)
	}
	if b.columnIndex(columnID) < 0 {
		b.mu.Unlock()
		return false, notFound("column", columnID)
	}

	t := &b.tasks[i]
	if t.ColumnID == columnID {
		b.mu.Unlock()
		return false, nil
	}

	from := b.columnName(t.ColumnID)
	t.SetColumn(columnID)
	t.Touch(b.sched.Now())
	b.record(model.ActivityTaskMoved, b.userID, t.ID,
		fmt.Sprintf("%s moved %q from %s to %s", b.actorName(), t.Title, from, b.columnName(columnID)))
	b.persist(ctx, KeyTasks, KeyActivities)
	b.mu.Unlock()

	logger.Debug("Task moved", logger.F("id", id), logger.F("column", columnID))
	b.emit(Event{Kind: EventTasks, TaskID: id}, Event{Kind: EventActivities, TaskID: id})
	return true, nil
}

// ToggleTaskCompletion moves a done task back to To Do and any other task to Done
func (b *Board) ToggleTaskCompletion(ctx context.Context, id string) (model.Task, error) {
	b.mu.Lock()

	i := b.taskIndex(id)
	if i < 0 {
		b.mu.Unlock()
		return model.Task{}, notFound("task", id)
	}

	t := &b.tasks[i]
	target, typ, verb := model.ColumnDone, model.ActivityTaskCompleted, "completed"
	if t.IsDone() {
		target, typ, verb = model.ColumnTodo, model.ActivityTaskUpdated, "reopened"
	}
	if b.columnIndex(target) < 0 {
		b.mu.Unlock()
		return model.Task{}, notFound("column", target)
	}

	t.SetColumn(target)
	t.Touch(b.sched.Now())
	b.record(typ, b.userID, t.ID, fmt.Sprintf("%s %s %q", b.actorName(), verb, t.Title))
	out := t.Clone()
	b.persist(ctx, KeyTasks, KeyActivities)
	b.mu.Unlock()

	b.emit(Event{Kind: EventTasks, TaskID: id}, Event{Kind: EventActivities, TaskID: id})
	return out, nil
}

// AddColumn appends a column named name. A blank name is rejected and reports
// false without changing the board.
func (b *Board) AddColumn(ctx context.Context, name string) (model.Column, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Column{}, false
	}

	b.mu.Lock()
	col := model.Column{
		ID:    b.uniqueColumnID(name),
		Name:  name,
		Order: len(b.columns),
		Color: model.ColumnPalette[b.rand.IntN(len(model.ColumnPalette))],
	}
	b.columns = append(b.columns, col)
	b.record(model.ActivitySystem, b.userID, "",
		fmt.Sprintf("%s added column %q", b.actorName(), name))
	b.persist(ctx, KeyColumns, KeyActivities)
	b.mu.Unlock()

	logger.Info("Column added", logger.F("id", col.ID), logger.F("order", col.Order))
	b.emit(Event{Kind: EventColumns}, Event{Kind: EventActivities})
	return col, true
}

// SetTheme persists the active theme
func (b *Board) SetTheme(ctx context.Context, theme string) error {
	t, err := ParseTheme(theme)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.theme = t
	b.persist(ctx, KeyTheme)
	b.mu.Unlock()

	b.emit(Event{Kind: EventTheme})
	return nil
}

// uniqueColumnID slugs name into a column id, suffixing -2, -3, ... on clash.
// Callers hold b.mu.
func (b *Board) uniqueColumnID(name string) string {
	base := model.ColumnPrefix + slug(name)
	id := base
	for n := 2; b.columnIndex(id) >= 0; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}

func slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(sb.String(), "-")
	if s == "" {
		return "column"
	}
	return s
}
