package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/filter"
	"github.com/existflow/taskboard/internal/model"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks grouped by column, as a flat list, or by due date.

Examples:
  taskboard list
  taskboard list --priority critical
  taskboard list --assignee sarah --search oauth
  taskboard list --view calendar`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listPriority string
	listAssignee string
	listSearch   string
	listView     string
)

func init() {
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Only tasks with this priority")
	listCmd.Flags().StringVarP(&listAssignee, "assignee", "a", "", "Only tasks assigned to this user (id or name)")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only tasks whose title or description contains the text")
	listCmd.Flags().StringVar(&listView, "view", "board", "Layout: board, list or calendar")
}

func runList(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	criteria := filter.Criteria{
		Priority:   model.Priority(strings.ToLower(listPriority)),
		SearchText: listSearch,
	}
	if criteria.Priority != "" && !criteria.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", listPriority)
	}
	if listAssignee != "" {
		u, err := resolveUser(b, listAssignee)
		if err != nil {
			return err
		}
		criteria.AssigneeID = u.ID
	}

	tasks := filter.Tasks(b.Tasks(), criteria)
	out := cmd.OutOrStdout()

	if len(tasks) == 0 {
		if criteria.Active() {
			fmt.Fprintln(out, "No tasks match the given filters.")
		} else {
			fmt.Fprintln(out, "No tasks found. Add one with: taskboard add \"Your task\"")
		}
		return nil
	}

	switch listView {
	case "board":
		printBoard(out, b, tasks)
	case "list":
		fmt.Fprintf(out, "\n%d task(s)\n", len(tasks))
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, t := range tasks {
			printTask(out, b, t)
		}
		fmt.Fprintln(out)
	case "calendar":
		printCalendar(out, b, tasks)
	default:
		return fmt.Errorf("unknown view %q (want board, list or calendar)", listView)
	}
	return nil
}

func printBoard(w io.Writer, b *board.Board, tasks []model.Task) {
	for _, col := range b.Columns() {
		var inCol []model.Task
		for _, t := range tasks {
			if t.ColumnID == col.ID {
				inCol = append(inCol, t)
			}
		}

		fmt.Fprintf(w, "\n📋 %s (%d)\n", col.Name, len(inCol))
		fmt.Fprintln(w, strings.Repeat("─", 60))
		for _, t := range inCol {
			printTask(w, b, t)
		}
	}
	fmt.Fprintln(w)
}

func printCalendar(w io.Writer, b *board.Board, tasks []model.Task) {
	var dated []model.Task
	for _, t := range tasks {
		if t.DueDate != nil {
			dated = append(dated, t)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].DueDate.Before(*dated[j].DueDate)
	})

	today := b.Today()
	for i, t := range dated {
		if i == 0 || !t.DueDate.Equal(*dated[i-1].DueDate) {
			label := t.DueDate.Time().Format("Mon Jan 2, 2006")
			switch {
			case t.DueDate.Equal(today):
				label += " (today)"
			case t.DueDate.Before(today):
				label += " (past)"
			}
			fmt.Fprintf(w, "\n📅 %s\n", label)
		}
		printTask(w, b, t)
	}

	if n := len(tasks) - len(dated); n > 0 {
		fmt.Fprintf(w, "\n%d task(s) without a due date\n", n)
	}
	fmt.Fprintln(w)
}
