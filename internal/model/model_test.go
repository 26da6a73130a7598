package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStatusForColumn(t *testing.T) {
	cases := map[string]string{
		"col-todo":        "todo",
		"col-in-progress": "in-progress",
		"col-done":        "done",
		"custom":          "custom",
	}
	for in, want := range cases {
		if got := StatusForColumn(in); got != want {
			t.Errorf("StatusForColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetColumnKeepsStatusInLockstep(t *testing.T) {
	task := Task{}
	task.SetColumn("col-review")
	if task.ColumnID != "col-review" || task.Status != "review" {
		t.Errorf("Unexpected column/status: %s/%s", task.ColumnID, task.Status)
	}

	task.Status = "stale"
	task.Normalize()
	if task.Status != "review" {
		t.Errorf("Normalize should re-derive status, got %s", task.Status)
	}
}

func TestTouchStrictlyIncreases(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	task := Task{UpdatedAt: now}

	task.Touch(now)
	if !task.UpdatedAt.After(now) {
		t.Fatalf("Expected UpdatedAt after %v, got %v", now, task.UpdatedAt)
	}
	prev := task.UpdatedAt
	task.Touch(now.Add(-time.Hour))
	if !task.UpdatedAt.After(prev) {
		t.Errorf("Expected UpdatedAt to keep increasing, got %v after %v", task.UpdatedAt, prev)
	}
	later := now.Add(time.Hour)
	task.Touch(later)
	if !task.UpdatedAt.Equal(later) {
		t.Errorf("Expected UpdatedAt %v, got %v", later, task.UpdatedAt)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" ui ", "api", "", "ui", "docs"})
	want := []string{"ui", "api", "docs"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("NormalizeTags = %v, want %v", got, want)
	}
}

func TestValidateTitleBoundary(t *testing.T) {
	today := NewDate(2026, 3, 10)

	ok := TaskInput{Title: strings.Repeat("a", 100), ColumnID: "col-todo"}
	if errs := ok.Validate(today); len(errs) != 0 {
		t.Errorf("100-char title should pass, got %v", errs)
	}

	tooLong := TaskInput{Title: strings.Repeat("a", 101), ColumnID: "col-todo"}
	errs := tooLong.Validate(today)
	if _, found := errs["title"]; !found {
		t.Errorf("101-char title should fail, got %v", errs)
	}

	// runes, not bytes
	unicode := TaskInput{Title: strings.Repeat("é", 100), ColumnID: "col-todo"}
	if errs := unicode.Validate(today); len(errs) != 0 {
		t.Errorf("100-rune title should pass, got %v", errs)
	}
}

func TestValidateCollectsAllFields(t *testing.T) {
	today := NewDate(2026, 3, 10)
	past := today.AddDays(-1)
	tags := make([]string, 11)
	for i := range tags {
		tags[i] = string(rune('a' + i))
	}

	errs := TaskInput{
		Title:       "  ",
		Description: strings.Repeat("d", 501),
		Priority:    "urgent",
		DueDate:     &past,
		Tags:        tags,
	}.Validate(today)

	for _, field := range []string{"title", "description", "priority", "dueDate", "tags", "columnId"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("Expected error for %s, got %v", field, errs)
		}
	}
	if errs.Err() == nil {
		t.Error("Expected Err() to be non-nil")
	}
}

func TestValidateDueDateToday(t *testing.T) {
	today := NewDate(2026, 3, 10)
	in := TaskInput{Title: "x", ColumnID: "col-todo", DueDate: &today}
	if errs := in.Validate(today); len(errs) != 0 {
		t.Errorf("Due today should be accepted, got %v", errs)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, 2, 28)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2026-02-28"` {
		t.Errorf("Unexpected JSON %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d) {
		t.Errorf("Expected %v, got %v", d, back)
	}

	var fromTimestamp Date
	if err := json.Unmarshal([]byte(`"2026-02-28T15:04:05Z"`), &fromTimestamp); err != nil {
		t.Fatalf("Expected timestamp to parse: %v", err)
	}
	if !fromTimestamp.Equal(d) {
		t.Errorf("Expected %v, got %v", d, fromTimestamp)
	}
}

func TestInitials(t *testing.T) {
	if got := Initials("sarah chen"); got != "SC" {
		t.Errorf("Expected SC, got %s", got)
	}
	if got := Initials("Prince"); got != "P" {
		t.Errorf("Expected P, got %s", got)
	}
}

func TestSortColumns(t *testing.T) {
	cols := []Column{{ID: "b", Order: 2}, {ID: "a", Order: 0}, {ID: "c", Order: 2}}
	SortColumns(cols)
	if cols[0].ID != "a" || cols[1].ID != "b" || cols[2].ID != "c" {
		t.Errorf("Unexpected order %v", cols)
	}
}
