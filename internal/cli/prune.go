package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pruneAll bool

var pruneCmd = &cobra.Command{
	Use:   "prune [itemType]",
	Short: "Apply the retention policy to snapshots",
	Long: `Delete snapshots older than the retention period.

Minimum counts always survive regardless of age: the newest regular
snapshots, and the newest import sets. Import sets are deleted whole or
not at all. The audit ledger is never pruned.

Examples:
  confsync prune roles
  confsync prune --all`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		if pruneAll == (len(args) == 1) {
			fmtErr("provide exactly one of an item type or --all")
			os.Exit(1)
		}

		var removed int
		var err error
		if pruneAll {
			removed, err = client.PruneAll()
		} else {
			removed, err = client.Prune(args[0])
		}
		if err != nil {
			fmtErr("prune: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(map[string]int{"removed": removed})
			return
		}
		fmt.Printf("Removed %d snapshot file(s).\n", removed)
	},
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneAll, "all", false, "prune every item type")
	rootCmd.AddCommand(pruneCmd)
}
