package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode is a tri-state switch for terminal features (color, progress UI).
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeOn   Mode = "on"
	ModeOff  Mode = "off"
)

func ParseMode(value string) (Mode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return ModeAuto, nil
	case "on", "always", "true":
		return ModeOn, nil
	case "off", "never", "false":
		return ModeOff, nil
	default:
		return "", fmt.Errorf("invalid value %q (expected auto|on|off)", value)
	}
}

// Enabled resolves the mode for f; auto means "f is a terminal".
func (m Mode) Enabled(f *os.File) bool {
	mode, err := ParseMode(string(m))
	if err != nil {
		return false
	}
	switch mode {
	case ModeOn:
		return true
	case ModeOff:
		return false
	default:
		return IsTerminal(f)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- fd fits int
}
