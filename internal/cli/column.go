package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var columnCmd = &cobra.Command{
	Use:     "column",
	Aliases: []string{"col"},
	Short:   "Manage board columns",
}

var columnAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Append a column to the board",
	Long: `Append a column after the existing ones.

Examples:
  taskboard column add Blocked
  taskboard column add "Waiting on QA"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runColumnAdd,
}

var columnListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List columns in board order",
	Args:    cobra.NoArgs,
	RunE:    runColumnList,
}

func init() {
	columnCmd.AddCommand(columnAddCmd)
	columnCmd.AddCommand(columnListCmd)
}

func runColumnAdd(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	col, ok := b.AddColumn(cmd.Context(), strings.Join(args, " "))
	if !ok {
		return fmt.Errorf("column name is required")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added column %s (%s)\n", col.Name, col.ID)
	return nil
}

func runColumnList(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	for _, col := range b.Columns() {
		fmt.Fprintf(out, "  %d  %-20s %-22s %s  %d task(s)\n",
			col.Order, col.Name, col.ID, col.Color, len(b.TasksInColumn(col.ID)))
	}
	return nil
}
