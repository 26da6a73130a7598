package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task between done and to do",
	Long: `Mark a task as completed, or reopen it when it is already done.

Examples:
  taskboard done 3f2a`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}

	updated, err := b.ToggleTaskCompletion(cmd.Context(), task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if updated.IsDone() {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Completed: %q\n", updated.Title)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "○ Reopened: %q\n", updated.Title)
	}
	return nil
}
