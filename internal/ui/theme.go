// Package ui provides terminal output styling for the CLI
package ui

import (
	"os"

	"golang.org/x/term"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Cyan   = "\033[36m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Red    = "\033[31m"
)

var (
	colorEnabled = true
	isTTY        = true
)

func init() {
	// Check NO_COLOR env var (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		colorEnabled = false
	}
	// Check if stdout is a TTY
	isTTY = term.IsTerminal(int(os.Stdout.Fd()))
	if !isTTY {
		colorEnabled = false
	}
}

// IsTTY returns whether stdout is a terminal
func IsTTY() bool {
	return isTTY
}

// Color wraps text with an ANSI color code
func Color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + Reset
}
