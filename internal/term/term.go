// Package term holds the ANSI color state shared by the logger, the banner
// and the progress bar, plus TTY detection.
//
// [Configure] fills the exported sequences once at startup. With colors off
// they are empty strings, so concatenating them is a no-op.
package term

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/backmassage/speedy/internal/config"
)

// ANSI sequences, empty while colors are disabled.
var (
	Red     string
	Green   string
	Yellow  string
	Blue    string
	Cyan    string
	Magenta string
	Dim     string
	NC      string // Reset.
)

var palette = []struct {
	dst *string
	seq string
}{
	{&Red, "\033[1;91m"},
	{&Green, "\033[1;92m"},
	{&Yellow, "\033[1;93m"},
	{&Blue, "\033[1;94m"},
	{&Cyan, "\033[1;96m"},
	{&Magenta, "\033[1;95m"},
	{&Dim, "\033[2m"},
	{&NC, "\033[0m"},
}

// Configure resolves mode against the environment and sets the sequences.
func Configure(mode config.ColorMode) {
	on := resolve(mode)
	for _, p := range palette {
		if on {
			*p.dst = p.seq
		} else {
			*p.dst = ""
		}
	}
}

// Enabled reports whether colors are active.
func Enabled() bool { return NC != "" }

// Wrap surrounds s with color and a reset. It returns s unchanged when
// colors are off.
func Wrap(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + NC
}

// resolve honors NO_COLOR (https://no-color.org) and TERM=dumb in auto mode.
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return false
	}
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is attached to a TTY, including Cygwin/MSYS
// pseudo terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
