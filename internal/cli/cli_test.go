package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/existflow/taskboard/internal/archive"
	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/kv"
	"github.com/existflow/taskboard/internal/model"
)

// setup points HOME and the store at a fresh temp directory
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKBOARD_STORE", "sqlite")
	t.Setenv("TASKBOARD_DSN", filepath.Join(home, "board.db"))
	t.Setenv("TASKBOARD_USER", "user-1")
	t.Setenv(passphraseEnv, "")
	return home
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("taskboard %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// loadTasks reads the board straight from the store the commands wrote
func loadTasks(t *testing.T, home string) []model.Task {
	t.Helper()
	store, err := kv.OpenSQLite(filepath.Join(home, "board.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	b, err := board.Open(context.Background(), kv.NewAdapter(store))
	if err != nil {
		t.Fatal(err)
	}
	return b.Tasks()
}

func taskID(t *testing.T, home, title string) string {
	t.Helper()
	for _, task := range loadTasks(t, home) {
		if task.Title == title {
			return task.ID
		}
	}
	t.Fatalf("Task %q not found", title)
	return ""
}

func TestAddListAndDone(t *testing.T) {
	home := setup(t)

	out := mustExecute(t, "add", "Write", "tests", "-p", "high", "--tags", "go,cli")
	if !strings.Contains(out, `✓ Added to [To Do]: "Write tests" (high)`) {
		t.Errorf("Unexpected add output: %q", out)
	}

	out = mustExecute(t, "list", "--view", "list")
	if !strings.Contains(out, "Write tests") || !strings.Contains(out, "#go #cli") {
		t.Errorf("List missing new task: %q", out)
	}

	out = mustExecute(t, "list", "--priority", "critical")
	if !strings.Contains(out, "Fix login redirect") || strings.Contains(out, "Write tests") {
		t.Errorf("Priority filter not applied: %q", out)
	}

	id := taskID(t, home, "Write tests")
	out = mustExecute(t, "done", shortID(id))
	if !strings.Contains(out, `✓ Completed: "Write tests"`) {
		t.Errorf("Unexpected done output: %q", out)
	}

	out = mustExecute(t, "activity", "-n", "1")
	if !strings.Contains(out, `Sarah Chen completed "Write tests"`) {
		t.Errorf("Unexpected activity output: %q", out)
	}

	out = mustExecute(t, "done", id)
	if !strings.Contains(out, "Reopened") {
		t.Errorf("Expected task reopened: %q", out)
	}
}

func TestAddRejectsInvalidTask(t *testing.T) {
	home := setup(t)

	out, err := execute(t, "add", "Too late", "--due", "2000-01-01")
	if err == nil {
		t.Fatal("Expected an error for a past due date")
	}
	if !strings.Contains(out, "dueDate: Due date cannot be in the past") {
		t.Errorf("Expected field error in output: %q", out)
	}
	if n := len(loadTasks(t, home)); n != 6 {
		t.Errorf("Expected the seeded 6 tasks, got %d", n)
	}

	if _, err := execute(t, "add", "Nobody", "--assignee", "ghost"); err == nil {
		t.Error("Expected an error for an unknown assignee")
	}
}

func TestEditAndMove(t *testing.T) {
	home := setup(t)
	id := taskID(t, home, "Fix login redirect")

	mustExecute(t, "edit", id, "--title", "Fix OAuth redirect", "--due", "none", "--assignee", "elena")
	var task model.Task
	for _, tk := range loadTasks(t, home) {
		if tk.ID == id {
			task = tk
		}
	}
	if task.Title != "Fix OAuth redirect" || task.DueDate != nil || task.AssigneeID != "user-3" {
		t.Errorf("Edit not applied: %+v", task)
	}

	if _, err := execute(t, "edit", id); err == nil {
		t.Error("Expected an error for an edit without changes")
	}

	out := mustExecute(t, "move", id, "review")
	if !strings.Contains(out, `✓ Moved "Fix OAuth redirect" to Review`) {
		t.Errorf("Unexpected move output: %q", out)
	}
	out = mustExecute(t, "move", id, "Review")
	if !strings.Contains(out, "already in Review") {
		t.Errorf("Expected no-op move: %q", out)
	}

	if _, err := execute(t, "move", id, "nowhere"); err == nil {
		t.Error("Expected an error for an unknown column")
	}
}

func TestColumnCommands(t *testing.T) {
	setup(t)

	out := mustExecute(t, "column", "add", "Blocked")
	if !strings.Contains(out, "(col-blocked)") {
		t.Errorf("Unexpected column add output: %q", out)
	}

	out = mustExecute(t, "column", "ls")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 || !strings.Contains(lines[5], "Blocked") {
		t.Errorf("Expected Blocked as the sixth column: %q", out)
	}

	if _, err := execute(t, "column", "add", "   "); err == nil {
		t.Error("Expected an error for a blank column name")
	}
}

func TestSealedExportRoundTrip(t *testing.T) {
	home := setup(t)
	t.Setenv(passphraseEnv, "correct horse")
	path := filepath.Join(home, "backup.json")

	mustExecute(t, "export", "-o", path, "--encrypt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !archive.IsSealed(data) {
		t.Fatal("Expected a sealed export")
	}

	mustExecute(t, "add", "Temporary")
	if n := len(loadTasks(t, home)); n != 7 {
		t.Fatalf("Expected 7 tasks, got %d", n)
	}

	out := mustExecute(t, "import", path)
	if !strings.Contains(out, "tasks    6") {
		t.Errorf("Unexpected import output: %q", out)
	}
	if n := len(loadTasks(t, home)); n != 6 {
		t.Errorf("Expected 6 tasks after import, got %d", n)
	}

	t.Setenv(passphraseEnv, "wrong")
	if _, err := execute(t, "import", path); err == nil {
		t.Error("Expected wrong passphrase to fail")
	}
}

func TestImportRejectsMalformedFile(t *testing.T) {
	home := setup(t)
	path := filepath.Join(home, "bad.json")
	if err := os.WriteFile(path, []byte(`{"tasks": [`), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "import", path); err == nil {
		t.Error("Expected malformed import to fail")
	}
	if n := len(loadTasks(t, home)); n != 6 {
		t.Errorf("Expected board untouched, got %d tasks", n)
	}
}

func TestThemeCommand(t *testing.T) {
	setup(t)

	if out := mustExecute(t, "theme"); strings.TrimSpace(out) != "light" {
		t.Errorf("Expected light theme, got %q", out)
	}
	mustExecute(t, "theme", "dark")
	if out := mustExecute(t, "theme"); strings.TrimSpace(out) != "dark" {
		t.Errorf("Expected dark theme, got %q", out)
	}
	if _, err := execute(t, "theme", "purple"); err == nil {
		t.Error("Expected an error for an unknown theme")
	}
}

func TestUnknownStoreIsRejected(t *testing.T) {
	setup(t)

	if _, err := execute(t, "list", "--store", "bogus"); err == nil {
		t.Error("Expected an error for an unknown store driver")
	}
}

func TestResolveTask(t *testing.T) {
	b := board.NewMinimal()
	ctx := context.Background()
	first, err := b.CreateTask(ctx, model.TaskInput{Title: "First", ColumnID: model.ColumnTodo})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateTask(ctx, model.TaskInput{Title: "Second", ColumnID: model.ColumnTodo}); err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{first.ID, first.ID[:12], strings.TrimPrefix(first.ID, "task-")} {
		got, err := resolveTask(b, ref)
		if err != nil || got.ID != first.ID {
			t.Errorf("resolveTask(%q) = %s, %v", ref, got.ID, err)
		}
	}

	if _, err := resolveTask(b, "task-"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("Expected ambiguous error, got %v", err)
	}
	if _, err := resolveTask(b, "nope"); err == nil {
		t.Error("Expected not found error")
	}
}
