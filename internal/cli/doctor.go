package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confsync-project/confsync/pkg/color"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check audit directory health",
	Long: `Run health checks over the audit directory: layout, ledger
integrity, snapshot naming and import-set completeness.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		result, err := client.Doctor()
		if err != nil {
			fmtErr("doctor: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(result)
			if !result.Healthy {
				os.Exit(1)
			}
			return
		}

		if len(result.Findings) == 0 {
			fmt.Println(color.Success("Everything looks healthy."))
			return
		}

		for _, f := range result.Findings {
			severity := f.Severity
			switch f.Severity {
			case "critical", "error":
				severity = color.Error(f.Severity)
			case "warning":
				severity = color.Warning(f.Severity)
			default:
				severity = color.Dim(f.Severity)
			}
			fmt.Printf("[%s] %s: %s", severity, f.Category, f.Description)
			if f.Path != "" {
				fmt.Printf("  %s", color.Dim(f.Path))
			}
			fmt.Println()
		}

		if !result.Healthy {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
