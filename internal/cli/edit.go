package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskboard/internal/model"
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task",
	Long: `Change fields of a task. Only the flags given are changed.

Examples:
  taskboard edit 3f2a --title "New title"
  taskboard edit 3f2a -p high --due 2026-05-01
  taskboard edit 3f2a --due none --assignee none`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
	editPriority    string
	editAssignee    string
	editDue         string
	editTags        string
)

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority")
	editCmd.Flags().StringVarP(&editAssignee, "assignee", "a", "", "Assignee id or name, 'none' to unassign")
	editCmd.Flags().StringVar(&editDue, "due", "", "Due date (YYYY-MM-DD), 'none' to clear")
	editCmd.Flags().StringVar(&editTags, "tags", "", "Comma-separated tags, replaces existing")
}

func runEdit(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}

	var patch model.TaskPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &editTitle
	}
	if flags.Changed("description") {
		patch.Description = &editDescription
	}
	if flags.Changed("priority") {
		p := model.Priority(strings.ToLower(editPriority))
		patch.Priority = &p
	}
	if flags.Changed("assignee") {
		id := ""
		if editAssignee != "none" {
			u, err := resolveUser(b, editAssignee)
			if err != nil {
				return err
			}
			id = u.ID
		}
		patch.AssigneeID = &id
	}
	if flags.Changed("due") {
		if editDue == "none" || editDue == "" {
			patch.ClearDueDate = true
		} else {
			due, err := model.ParseDate(editDue)
			if err != nil {
				return fmt.Errorf("invalid due date %q: want YYYY-MM-DD", editDue)
			}
			patch.DueDate = &due
		}
	}
	if flags.Changed("tags") {
		tags := splitTags(editTags)
		patch.Tags = &tags
	}

	if patch.Empty() {
		return fmt.Errorf("nothing to change: pass at least one of --title --description --priority --assignee --due --tags")
	}

	updated, err := b.UpdateTask(cmd.Context(), task.ID, patch)
	if err != nil {
		return reportCommandError(cmd, "update task", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated: %q\n", updated.Title)
	return nil
}
