package ffmpeg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	maxLineSize  = 1 << 20
	sampleBuffer = 64
)

var (
	reDuration = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
	reTime     = regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
)

// Sample is one progress observation derived from a diagnostic line.
type Sample struct {
	Percent float64 // 0-100.
	Line    string
}

// ProgressFunc receives samples in stream order. It runs on the monitor's
// consumer goroutine and should return quickly: once the sample buffer is
// full the reader stops draining stderr and ffmpeg blocks on its writes.
type ProgressFunc func(Sample)

// Tracker turns diagnostic lines into progress samples. The zero value is
// ready to use.
type Tracker struct {
	total float64
	known bool
}

// Feed consumes one line. It returns a sample when the line carries an
// elapsed timestamp and the total duration is known, including a duration
// read from the same line.
func (t *Tracker) Feed(line string) (Sample, bool) {
	if !t.known {
		if d, ok := parseClock(reDuration, line); ok {
			t.total, t.known = d, true
		}
	}
	if !t.known || t.total <= 0 {
		return Sample{}, false
	}
	elapsed, ok := parseClock(reTime, line)
	if !ok {
		return Sample{}, false
	}
	return Sample{Percent: math.Min(100, elapsed/t.total*100), Line: line}, true
}

// Total returns the input duration in seconds once it has been seen.
func (t *Tracker) Total() (float64, bool) {
	return t.total, t.known
}

// parseClock extracts HH:MM:SS.cc as seconds.
func parseClock(re *regexp.Regexp, line string) (float64, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	cs, _ := strconv.Atoi(m[4])
	return float64(h*3600+mi*60+s) + float64(cs)/100, true
}

// Monitor reads r to EOF, reporting progress to fn and returning every line
// read. A reader goroutine owns the transcript and feeds samples to a
// consumer goroutine over a buffered channel; the transcript is handed back
// only after both have finished. fn may be nil.
func Monitor(r io.Reader, fn ProgressFunc) (string, error) {
	samples := make(chan Sample, sampleBuffer)
	var transcript strings.Builder
	var g errgroup.Group

	g.Go(func() error {
		defer close(samples)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		sc.Split(scanLines)

		var tr Tracker
		for sc.Scan() {
			line := sc.Text()
			transcript.WriteString(line)
			transcript.WriteByte('\n')
			if s, ok := tr.Feed(line); ok {
				samples <- s
			}
		}
		if err := sc.Err(); err != nil {
			// Keep the writer from blocking on a full pipe.
			_, _ = io.Copy(io.Discard, r)
			return fmt.Errorf("read ffmpeg output: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for s := range samples {
			if fn != nil && s.Percent > 0 {
				fn(s)
			}
		}
		return nil
	})

	err := g.Wait()
	return transcript.String(), err
}

// scanLines is bufio.ScanLines that also breaks on a bare '\r', which ffmpeg
// uses to redraw its stats line. "\r\n" counts as one break.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
