package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result describes a successful run.
type Result struct {
	Elapsed time.Duration
	Stdout  string
}

// Execute runs binary with args, streaming its stderr through Monitor. The
// process is killed when ctx is done.
//
// Failures are typed: *StartError when the process never started,
// *ExitError for a non-zero exit, *SignalError when it was killed. A
// successful exit carries no transcript.
func Execute(ctx context.Context, binary string, args []string, onProgress ProgressFunc) (*Result, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &StartError{Binary: binary, Err: err}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &StartError{Binary: binary, Err: err}
	}

	// The pipe must be drained before Wait closes it.
	transcript, readErr := Monitor(stderr, onProgress)
	waitErr := cmd.Wait()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("wait for %s: %w", binary, waitErr)
		}
		if code := exitErr.ExitCode(); code >= 0 {
			return nil, &ExitError{Code: code, Transcript: transcript}
		}
		return nil, &SignalError{
			Signal:     signalName(exitErr),
			Transcript: transcript,
			Cause:      ctx.Err(),
		}
	}
	if readErr != nil {
		return nil, readErr
	}
	return &Result{Elapsed: time.Since(start), Stdout: stdout.String()}, nil
}

func signalName(err *exec.ExitError) string {
	if err.ProcessState == nil {
		return "unknown"
	}
	s := err.ProcessState.String()
	if name, ok := strings.CutPrefix(s, "signal: "); ok {
		return name
	}
	return s
}
