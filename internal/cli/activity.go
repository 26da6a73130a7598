package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the activity log, newest first",
	Args:  cobra.NoArgs,
	RunE:  runActivity,
}

var activityLimit int

func init() {
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 5, "Number of entries to show, 0 for all")
}

func runActivity(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	entries := b.Activities()
	if activityLimit > 0 && len(entries) > activityLimit {
		entries = entries[:activityLimit]
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No activity yet.")
		return nil
	}
	for _, a := range entries {
		fmt.Fprintf(out, "  %s  %s\n", a.Timestamp.Local().Format("2006-01-02 15:04"), a.Message)
	}
	return nil
}
