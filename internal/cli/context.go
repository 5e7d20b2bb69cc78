package cli

import (
	"fmt"
	"os"

	"github.com/confsync-project/confsync/pkg/color"
	"github.com/confsync-project/confsync/pkg/confsync"
	"github.com/confsync-project/confsync/pkg/log"
)

// requireClient builds a client from flags, configuration and environment,
// or exits with an error.
func requireClient() *confsync.Client {
	level := "warn"
	if verbose {
		level = "debug"
	}

	client, err := confsync.New(confsync.Options{
		ConfigPath: flagConfigPath,
		AuditDir:   flagAuditDir,
		Logger:     log.NewWithLevel(level),
	})
	if err != nil {
		fmtErr("%v", err)
		os.Exit(1)
	}
	return client
}

func fmtErr(format string, args ...any) {
	prefix := "confsync: "
	if color.Enabled() {
		prefix = color.Error("confsync:") + " "
	}
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
