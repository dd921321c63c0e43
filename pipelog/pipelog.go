// Package pipelog provides one structured logger per pipeline subsystem.
// Logging here is diagnostic only (§7): nothing in the pipelines branches on
// whether a line was written, and no error is ever constructed from a log
// call.
package pipelog

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	loggers = map[string]*log.Logger{}
)

// For returns the logger for the named subsystem (e.g. "atlas",
// "imagepipe", "upload", "threadmodel"), creating it on first use.
func For(subsystem string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[subsystem]; ok {
		return l
	}
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          subsystem,
		ReportTimestamp: true,
	})
	l.SetLevel(defaultLevel)
	loggers[subsystem] = l
	return l
}

// SetLevel sets the log level for every subsystem logger created so far
// and for any created afterward via the default level below.
func SetLevel(level log.Level) {
	mu.Lock()
	defer mu.Unlock()
	defaultLevel = level
	for _, l := range loggers {
		l.SetLevel(level)
	}
}

var defaultLevel = log.InfoLevel
