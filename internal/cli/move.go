package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [column]",
	Short: "Move a task to another column",
	Long: `Move a task to a column, given by id or name.

Examples:
  taskboard move 3f2a in-progress
  taskboard move 3f2a "Review"`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func runMove(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}
	col, err := resolveColumn(b, args[1])
	if err != nil {
		return err
	}

	moved, err := b.MoveTask(cmd.Context(), task.ID, col.ID)
	if err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}
	if !moved {
		fmt.Fprintf(cmd.OutOrStdout(), "%q is already in %s\n", task.Title, col.Name)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved %q to %s\n", task.Title, col.Name)
	return nil
}
