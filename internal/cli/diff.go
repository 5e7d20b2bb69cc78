package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var diffItemType string

var diffCmd = &cobra.Command{
	Use:   "diff <fileA> <fileB>",
	Short: "Show a structural diff between two snapshots",
	Long: `Show a structural diff between two snapshot files.

Both sides are re-serialized to canonical pretty JSON before comparison,
so formatting differences never show up as changes.

With --item-type, the arguments are snapshot ids (or unique prefixes)
resolved within that item type instead of file paths.

Examples:
  confsync diff audit/snapshots/roles/a.json audit/snapshots/roles/b.json
  confsync diff --item-type roles 2024-03-01T12-00-00-000Z 2024-03-02T12-00-00-000Z`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		pathA, pathB := args[0], args[1]
		if diffItemType != "" {
			var err error
			if pathA, err = resolveSnapshot(client, diffItemType, args[0]); err != nil {
				fmtErr("%v", err)
				os.Exit(1)
			}
			if pathB, err = resolveSnapshot(client, diffItemType, args[1]); err != nil {
				fmtErr("%v", err)
				os.Exit(1)
			}
		}

		report, err := client.Diff(pathA, pathB)
		if err != nil {
			fmtErr("diff: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(report)
			return
		}
		printReport(report)
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffItemType, "item-type", "t", "", "resolve arguments as snapshot ids within this item type")
	rootCmd.AddCommand(diffCmd)
}
