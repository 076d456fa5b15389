package ffmpeg

import (
	"fmt"
	"regexp"
	"strings"
)

// StartError means the engine process could not be spawned at all.
type StartError struct {
	Binary string
	Err    error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Binary, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExitError means the engine ran and exited with a non-zero status.
// Transcript holds every diagnostic line it printed.
type ExitError struct {
	Code       int
	Transcript string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ffmpeg exited with status %d", e.Code)
}

// Tail returns the last n non-empty transcript lines.
func (e *ExitError) Tail(n int) []string {
	return tailLines(e.Transcript, n)
}

// SignalError means the engine was terminated by a signal and has no exit
// status. Cause is the context error when the kill came from cancellation.
type SignalError struct {
	Signal     string
	Transcript string
	Cause      error
}

func (e *SignalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ffmpeg terminated by signal %s: %v", e.Signal, e.Cause)
	}
	return "ffmpeg terminated by signal " + e.Signal
}

func (e *SignalError) Unwrap() error { return e.Cause }

// Tail returns the last n non-empty transcript lines.
func (e *SignalError) Tail(n int) []string {
	return tailLines(e.Transcript, n)
}

// Pre-compiled regexes for the failures users hit most. Checked in order by
// Diagnose; the first match wins.
var (
	reUnknownEncoder = regexp.MustCompile(`Unknown encoder '([^']+)'`)
	reNoSuchFilter   = regexp.MustCompile(`No such filter: '([^']+)'`)
	reMissingInput   = regexp.MustCompile(`(?m)^(.*): No such file or directory$`)
	reLUTLoad        = regexp.MustCompile(`(?i)lut3d.*(Error|Invalid|Failed)`)
	reOutputExists   = regexp.MustCompile(`File '([^']+)' already exists`)
	rePermission     = regexp.MustCompile(`(?m)^(.*): Permission denied$`)
)

// Diagnose returns a one-line hint for a failed run's transcript, or "" when
// nothing recognizable was printed.
func Diagnose(transcript string) string {
	if m := reUnknownEncoder.FindStringSubmatch(transcript); m != nil {
		return fmt.Sprintf("encoder %q is not built into this ffmpeg; try a different --codec", m[1])
	}
	if m := reNoSuchFilter.FindStringSubmatch(transcript); m != nil {
		return fmt.Sprintf("filter %q is not built into this ffmpeg; run 'speedy check'", m[1])
	}
	if reLUTLoad.MatchString(transcript) {
		return "the LUT file could not be loaded; check it is a valid .cube file"
	}
	if m := reOutputExists.FindStringSubmatch(transcript); m != nil {
		return fmt.Sprintf("%s already exists; pass --overwrite to replace it", m[1])
	}
	if m := reMissingInput.FindStringSubmatch(transcript); m != nil {
		return fmt.Sprintf("%s does not exist", strings.TrimSpace(m[1]))
	}
	if m := rePermission.FindStringSubmatch(transcript); m != nil {
		return fmt.Sprintf("permission denied for %s", strings.TrimSpace(m[1]))
	}
	return ""
}

func tailLines(s string, n int) []string {
	if n <= 0 {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
