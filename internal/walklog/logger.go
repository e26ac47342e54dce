// Package walklog provides leveled logging for the scan pipeline.
package walklog

import (
	"io"
	"log"
	"os"
)

var (
	// Logger is the global logger for the scan pipeline.
	Logger *log.Logger

	// Verbose controls whether debug/info messages are printed.
	Verbose bool
)

func init() {
	Logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
	Verbose = os.Getenv("CROSSING_VERBOSE") == "1"
}

// SetVerbose enables or disables verbose logging at runtime.
func SetVerbose(enabled bool) {
	Verbose = enabled
}

// SetOutput redirects logger output (useful for testing).
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// Debugf prints a debug message if verbose mode is enabled.
func Debugf(format string, args ...interface{}) {
	if Verbose {
		Logger.Printf("[DEBUG] "+format, args...)
	}
}

// Infof prints an info message if verbose mode is enabled.
func Infof(format string, args ...interface{}) {
	if Verbose {
		Logger.Printf("[INFO] "+format, args...)
	}
}

// Warnf prints a warning message regardless of verbose mode — files skipped
// for read or parse errors are surfaced even in quiet runs.
func Warnf(format string, args ...interface{}) {
	Logger.Printf("[WARN] "+format, args...)
}

// Errorf always prints an error message regardless of verbose mode.
func Errorf(format string, args ...interface{}) {
	Logger.Printf("[ERROR] "+format, args...)
}
