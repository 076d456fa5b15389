package probe

import (
	"context"
	"strconv"
)

// MediaInfo is the probed summary of one input file.
type MediaInfo struct {
	Duration  float64 // Seconds. Format duration, falling back to the video stream.
	Width     int
	Height    int
	FrameRate float64 // From r_frame_rate; 0 when unknown.
	Rotation  int     // Signed display rotation in degrees.

	// VideoStream is set when a non-cover-art video stream exists, even if
	// its dimensions could not be read.
	VideoStream bool
	HasAudio    bool

	// Descriptive fields for inspection output.
	VideoCodec string
	AudioCodec string
	FormatName string
	Size       int64
	BitRate    int64
}

// Prober extracts MediaInfo from a file.
type Prober interface {
	Probe(ctx context.Context, path string) (*MediaInfo, error)
}

// HasVideo reports whether a primary video stream was found.
func (m *MediaInfo) HasVideo() bool {
	return m.VideoStream
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (m *MediaInfo) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(m.Width) + "x" + strconv.Itoa(m.Height)
}
