// Package log constructs the process-wide logger for confsync.
package log

import (
	"github.com/sirupsen/logrus"
)

// InitLogs returns a configured logrus logger. Components receive it as a
// logrus.FieldLogger so tests can substitute their own.
func InitLogs() *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return log
}

// NewWithLevel returns a logger with the given level name; unknown names
// fall back to info.
func NewWithLevel(level string) *logrus.Logger {
	log := InitLogs()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
