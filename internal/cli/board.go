package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/kv"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
)

// openBoard opens the configured store and hydrates a board from it.
// The returned func closes the store.
func openBoard(ctx context.Context) (*board.Board, func(), error) {
	store, err := kv.Open(cfg.Store, cfg.DSN, kv.WithPollInterval(cfg.PollInterval))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", logger.F("error", err))
		}
	}

	b, err := board.Open(ctx, kv.NewAdapter(store), board.WithUser(cfg.User))
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to load board: %w", err)
	}
	logger.Debug("Board opened", logger.F("store", cfg.Store), logger.F("tasks", len(b.Tasks())))
	return b, closeStore, nil
}

// minimalBoard is the fallback when the store cannot be used
func minimalBoard() (*board.Board, func()) {
	return board.NewMinimal(board.WithUser(cfg.User)), func() {}
}

// resolveTask finds a task by full id or by an unambiguous id prefix.
// The "task-" prefix may be left out.
func resolveTask(b *board.Board, ref string) (model.Task, error) {
	if t, ok := b.Task(ref); ok {
		return t, nil
	}

	var matches []model.Task
	for _, t := range b.Tasks() {
		if strings.HasPrefix(t.ID, ref) || strings.HasPrefix(t.ID, "task-"+ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveColumn finds a column by id, by id without the "col-" prefix, or by name
func resolveColumn(b *board.Board, ref string) (model.Column, error) {
	for _, c := range b.Columns() {
		if c.ID == ref || c.ID == model.ColumnPrefix+ref || strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return model.Column{}, fmt.Errorf("column not found: %s", ref)
}

// shortID trims the task- prefix and keeps enough of the uuid to be typed back
func shortID(id string) string {
	id = strings.TrimPrefix(id, "task-")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

func printTask(w io.Writer, b *board.Board, t model.Task) {
	check := " "
	if t.IsDone() {
		check = "✓"
	}

	var extra []string
	if u, ok := b.User(t.AssigneeID); ok {
		extra = append(extra, "@"+u.Name)
	}
	if t.DueDate != nil {
		due := "due " + t.DueDate.String()
		if t.IsOverdue(b.Today()) {
			due += " (overdue)"
		}
		extra = append(extra, due)
	}
	if len(t.Tags) > 0 {
		extra = append(extra, "#"+strings.Join(t.Tags, " #"))
	}

	line := fmt.Sprintf("  [%s] %s  %-8s %s", check, shortID(t.ID), t.Priority, t.Title)
	if len(extra) > 0 {
		line += "  " + strings.Join(extra, "  ")
	}
	fmt.Fprintln(w, line)
}

// printValidation lists field errors one per line
func printValidation(w io.Writer, verr model.ValidationError) {
	for _, field := range []string{"title", "description", "priority", "dueDate", "tags", "columnId", "assigneeId"} {
		if msg, ok := verr[field]; ok {
			fmt.Fprintf(w, "  %s: %s\n", field, msg)
		}
	}
}
