package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confsync-project/confsync/pkg/color"
)

var (
	jsonOutput     bool
	noColor        bool
	verbose        bool
	flagConfigPath string
	flagAuditDir   string

	rootCmd = &cobra.Command{
		Use:   "confsync",
		Short: "Confsync - configuration audit and snapshot engine",
		Long: `Confsync records configuration state over time: timestamped JSON
snapshots per item type, an append-only audit ledger, structural diffs
between any two snapshots, and a before/local/after capture protocol
around imports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Init(noColor)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "configuration directory (holds confsync.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagAuditDir, "audit-dir", "", "audit directory override")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// outputJSON prints v as JSON if --json flag is set, otherwise does nothing.
func outputJSON(v any) error {
	if !jsonOutput {
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
