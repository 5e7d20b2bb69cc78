package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confsync-project/confsync/pkg/color"
)

var importDiffCmd = &cobra.Command{
	Use:   "import-diff <itemType>",
	Short: "Show what the latest import changed",
	Long: `Show the two sides of the most recent import for an item type:

  preview  - remote before vs. local config (what the import intended)
  actual   - remote before vs. remote after (what it actually changed)

Dry-run imports have no after snapshot, so only the preview is shown.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		result, err := client.LatestImportDiff(args[0])
		if err != nil {
			fmtErr("import-diff: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(result)
			return
		}

		fmt.Printf("Import %s", color.SnapshotID(result.Timestamp))
		if result.DryRun {
			fmt.Printf("  %s", color.Warning("(dry run)"))
		}
		fmt.Println()

		fmt.Println(color.Header("--- preview (before -> local) ---"))
		printReport(result.Preview)

		if result.Actual != nil {
			fmt.Println(color.Header("--- actual (before -> after) ---"))
			printReport(result.Actual)
		}
	},
}

func init() {
	rootCmd.AddCommand(importDiffCmd)
}
