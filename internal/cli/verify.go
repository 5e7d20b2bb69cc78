package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confsync-project/confsync/pkg/color"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [itemType]",
	Short: "Verify snapshot integrity",
	Long: `Re-compute checksums for stored snapshots and compare against the
metadata recorded at write time. Legacy snapshots without metadata are
reported but always pass.

With no item type, verifies every item type.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		types := args
		if len(types) == 0 {
			var err error
			types, err = client.ItemTypes()
			if err != nil {
				fmtErr("list item types: %v", err)
				os.Exit(1)
			}
		}

		failed := 0
		checked := 0
		for _, itemType := range types {
			results, err := client.Verify(itemType)
			if err != nil {
				fmtErr("verify %s: %v", itemType, err)
				os.Exit(1)
			}
			for _, r := range results {
				checked++
				if jsonOutput {
					outputJSON(r)
					continue
				}
				switch {
				case r.Error != "":
					failed++
					fmt.Printf("%s  %s/%s: %s\n", color.Error("FAIL"), itemType, r.File, r.Error)
				case r.Legacy:
					fmt.Printf("%s    %s/%s %s\n", color.Success("OK"), itemType, r.File, color.Dim("(legacy)"))
				default:
					fmt.Printf("%s    %s/%s\n", color.Success("OK"), itemType, r.File)
				}
			}
		}

		if !jsonOutput {
			fmt.Printf("\nVerified %d snapshot(s), %d failure(s).\n", checked, failed)
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
