package util

import (
	"os"

	"github.com/fatih/color"
)

// IsTTY reports whether stdout is a terminal. The browse command
// refuses to start its full-screen UI without one.
func IsTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// InitColor disables colored output when the --no-color flag is set or
// stdout is not a terminal.
func InitColor(noColor bool) {
	if noColor || !IsTTY() {
		color.NoColor = true
	}
}
