package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confsync-project/confsync/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config <command>",
	Short: "Manage confsync configuration",
	Long: `Manage confsync configuration stored in <config-path>/confsync.yaml.

Configuration options:
  audit_dir       - Audit directory override
  retention_days  - Snapshot retention period in days
  logging.level   - Log level (debug, info, warn, error)
  logging.format  - Log format (text, json)

Environment overrides:
  CONFSYNC_CONFIG_PATH     - Configuration directory
  CONFSYNC_AUDIT_DIR       - Audit directory
  CONFSYNC_RETENTION_DAYS  - Retention period in days`,
	DisableFlagsInUseLine: true,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(flagConfigPath)
		if err != nil {
			fmtErr("load config: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(map[string]any{
				"audit_dir":      cfg.ResolveAuditDir(),
				"retention_days": cfg.RetentionDays,
				"logging":        cfg.Logging,
			})
			return
		}

		fmt.Printf("audit_dir: %s\n", cfg.ResolveAuditDir())
		fmt.Printf("retention_days: %d\n", cfg.RetentionDays)
		fmt.Printf("logging.level: %s\n", cfg.Logging.Level)
		fmt.Printf("logging.format: %s\n", cfg.Logging.Format)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Write a default configuration file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Save(args[0], config.Default()); err != nil {
			fmtErr("write config: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s/confsync.yaml\n", args[0])
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
