package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/confsync-project/confsync/internal/history"
	"github.com/confsync-project/confsync/pkg/color"
)

var (
	historyLimit int
	historySince string
)

var historyCmd = &cobra.Command{
	Use:   "history <itemType>",
	Short: "Walk snapshot history as consecutive diffs",
	Long: `Walk regular snapshots of an item type chronologically, showing the
diff between each consecutive pair of the most recent snapshots.

Examples:
  confsync history roles             # Last 5 transitions
  confsync history roles -n 10       # Last 10 transitions
  confsync history roles --since 2024-03-01`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		opts := history.TimeMachineOptions{Limit: historyLimit}
		if historySince != "" {
			ts, err := time.Parse("2006-01-02", historySince)
			if err != nil {
				ts, err = time.Parse(time.RFC3339, historySince)
			}
			if err != nil {
				fmtErr("parse --since %q: expected YYYY-MM-DD or RFC 3339", historySince)
				os.Exit(1)
			}
			opts.StartTime = ts
		}

		steps, err := client.TimeMachine(args[0], opts)
		if err != nil {
			fmtErr("history: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(steps)
			return
		}

		for i, step := range steps {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s %s %s %s\n",
				color.Header("==="),
				color.SnapshotID(step.FromID),
				color.Header("->"),
				color.SnapshotID(step.ToID))
			printReport(step.Report)
		}
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultTimeMachineLimit, "number of transitions to show")
	historyCmd.Flags().StringVar(&historySince, "since", "", "only consider snapshots at or after this time")
	rootCmd.AddCommand(historyCmd)
}
