// Package errors formats command failures for the terminal.
package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/cadence/internal/logger"
)

// exit is replaced in tests.
var exit = os.Exit

// Format formats an error message with a consistent "Error: " prefix.
// Multi-line errors, such as those built with errors.Join, are indented
// under the first line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	lines := strings.Split(strings.TrimRight(err.Error(), "\n"), "\n")
	return "Error: " + strings.Join(lines, "\n       ")
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Report logs err and writes it to w. It reports whether there was an error.
func Report(w io.Writer, err error) bool {
	if err == nil {
		return false
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(w, Format(err))
	return true
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if Report(os.Stderr, err) {
		exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...any) {
	logger.Error("Command execution failed", "error", fmt.Sprintf(format, args...))
	fmt.Fprintln(os.Stderr, Formatf(format, args...))
	exit(1)
}
