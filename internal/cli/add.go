package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task to the board.

Examples:
  taskboard add "Buy groceries"
  taskboard add "Fix login" -p critical -a marcus --due 2026-05-01
  taskboard add "Write docs" --column backlog --tags docs,api`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addPriority    string
	addAssignee    string
	addDue         string
	addTags        string
	addColumn      string
)

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "Priority (low, medium, high, critical)")
	addCmd.Flags().StringVarP(&addAssignee, "assignee", "a", "", "Assignee id or name")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags")
	addCmd.Flags().StringVarP(&addColumn, "column", "c", "todo", "Column id or name")
}

func runAdd(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	col, err := resolveColumn(b, addColumn)
	if err != nil {
		return err
	}

	in := model.TaskInput{
		Title:       strings.Join(args, " "),
		Description: addDescription,
		Priority:    model.Priority(strings.ToLower(addPriority)),
		Tags:        splitTags(addTags),
		ColumnID:    col.ID,
	}
	if addAssignee != "" {
		u, err := resolveUser(b, addAssignee)
		if err != nil {
			return err
		}
		in.AssigneeID = u.ID
	}
	if addDue != "" {
		due, err := model.ParseDate(addDue)
		if err != nil {
			return fmt.Errorf("invalid due date %q: want YYYY-MM-DD", addDue)
		}
		in.DueDate = &due
	}

	task, err := b.CreateTask(cmd.Context(), in)
	if err != nil {
		return reportCommandError(cmd, "create task", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added to [%s]: %q (%s) %s\n", col.Name, task.Title, task.Priority, shortID(task.ID))
	return nil
}

// resolveUser finds a user by id, full name or first name, ignoring case
func resolveUser(b *board.Board, ref string) (model.User, error) {
	for _, u := range b.Users() {
		first, _, _ := strings.Cut(u.Name, " ")
		if u.ID == ref || strings.EqualFold(u.Name, ref) || strings.EqualFold(first, ref) {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("user not found: %s", ref)
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// reportCommandError prints field errors of a rejected command
func reportCommandError(cmd *cobra.Command, action string, err error) error {
	var verr model.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "✗ Invalid task:")
		printValidation(cmd.ErrOrStderr(), verr)
		return fmt.Errorf("failed to %s: %d invalid field(s)", action, len(verr))
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
