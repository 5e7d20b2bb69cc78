package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confsync-project/confsync/internal/audit"
	"github.com/confsync-project/confsync/pkg/color"
	"github.com/confsync-project/confsync/pkg/model"
)

var (
	auditItemType  string
	auditOperation string
	auditStatus    string
	auditTail      int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit ledger",
	Long: `Show entries from the append-only audit ledger, oldest first.

Examples:
  confsync audit
  confsync audit --item-type roles
  confsync audit --operation import --status failure
  confsync audit --tail 20`,
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		f := audit.Filter{
			ItemType:  auditItemType,
			Operation: model.Operation(auditOperation),
			Status:    model.Status(auditStatus),
		}

		entries, err := client.AuditTail(auditTail, f)
		if err != nil {
			fmtErr("read audit ledger: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			if entries == nil {
				entries = []model.AuditEntry{}
			}
			outputJSON(entries)
			return
		}

		if len(entries) == 0 {
			fmt.Println("No audit entries found.")
			return
		}
		for _, e := range entries {
			status := color.Success(string(e.Status))
			if e.Status == model.StatusFailure {
				status = color.Error(string(e.Status))
			}
			fmt.Printf("%s  %-6s  %-8s  %s", color.Dim(e.Timestamp), e.Operation, status, e.ItemType)
			if e.Message != "" {
				fmt.Printf("  %s", e.Message)
			}
			fmt.Println()
		}
	},
}

func init() {
	auditCmd.Flags().StringVarP(&auditItemType, "item-type", "t", "", "filter by item type")
	auditCmd.Flags().StringVar(&auditOperation, "operation", "", "filter by operation (import, export)")
	auditCmd.Flags().StringVar(&auditStatus, "status", "", "filter by status (success, failure)")
	auditCmd.Flags().IntVarP(&auditTail, "tail", "n", 0, "show only the last n entries (0 = all)")
	rootCmd.AddCommand(auditCmd)
}
