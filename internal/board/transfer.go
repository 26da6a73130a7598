package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
)

// ExportVersion is written into every export document
const ExportVersion = "1.0"

// Document is the export file format
type Document struct {
	Tasks      []model.Task     `json:"tasks"`
	Columns    []model.Column   `json:"columns"`
	Users      []model.User     `json:"users"`
	Activities []model.Activity `json:"activities"`
	ExportDate time.Time        `json:"exportDate"`
	Version    string           `json:"version"`
}

// ImportError reports an import document that could not be parsed
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed: %v", e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// ImportResult counts the collections an import replaced; -1 means untouched
type ImportResult struct {
	Tasks   int `json:"tasks"`
	Columns int `json:"columns"`
	Users   int `json:"users"`
}

// Snapshot returns the current board as an export document
func (b *Board) Snapshot() Document {
	b.mu.Lock()
	defer b.mu.Unlock()

	cols := append([]model.Column(nil), b.columns...)
	model.SortColumns(cols)
	return Document{
		Tasks:      model.CloneTasks(b.tasks),
		Columns:    cols,
		Users:      append([]model.User(nil), b.users...),
		Activities: append([]model.Activity(nil), b.activities...),
		ExportDate: b.sched.Now().UTC(),
		Version:    ExportVersion,
	}
}

// Export serialises the board as an indented JSON document
func (b *Board) Export() ([]byte, error) {
	data, err := json.MarshalIndent(b.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// Import replaces tasks, columns and users with the arrays present in data.
// Unknown or missing keys, and keys whose value is not an array, are ignored.
// Everything is parsed before anything is assigned, so a malformed document
// leaves the board untouched.
func (b *Board) Import(ctx context.Context, data []byte) (ImportResult, error) {
	res := ImportResult{Tasks: -1, Columns: -1, Users: -1}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return res, &ImportError{Err: err}
	}

	var tasks []model.Task
	var columns []model.Column
	var users []model.User
	hasTasks, err := decodeArray(raw, KeyTasks, &tasks)
	if err != nil {
		return res, err
	}
	hasColumns, err := decodeArray(raw, KeyColumns, &columns)
	if err != nil {
		return res, err
	}
	hasUsers, err := decodeArray(raw, KeyUsers, &users)
	if err != nil {
		return res, err
	}

	for i := range tasks {
		tasks[i].Normalize()
	}
	model.SortColumns(columns)

	var keys []string
	var events []Event
	b.mu.Lock()
	if hasTasks {
		b.tasks = tasks
		res.Tasks = len(tasks)
		keys = append(keys, KeyTasks)
		events = append(events, Event{Kind: EventTasks})
	}
	if hasColumns {
		b.columns = columns
		res.Columns = len(columns)
		keys = append(keys, KeyColumns)
		events = append(events, Event{Kind: EventColumns})
	}
	if hasUsers {
		b.users = users
		res.Users = len(users)
		keys = append(keys, KeyUsers)
		events = append(events, Event{Kind: EventUsers})
	}
	b.persist(ctx, keys...)
	b.mu.Unlock()

	logger.Info("Board imported",
		logger.F("tasks", res.Tasks),
		logger.F("columns", res.Columns),
		logger.F("users", res.Users))
	b.emit(events...)
	return res, nil
}

func decodeArray[T any](raw map[string]json.RawMessage, key string, out *[]T) (bool, error) {
	v, ok := raw[key]
	if !ok {
		return false, nil
	}
	if trimmed := bytes.TrimSpace(v); len(trimmed) == 0 || trimmed[0] != '[' {
		return false, nil
	}
	items := []T{}
	if err := json.Unmarshal(v, &items); err != nil {
		return false, &ImportError{Err: fmt.Errorf("%s: %w", key, err)}
	}
	*out = items
	return true, nil
}
