package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobe runs the ffprobe binary. The zero value uses "ffprobe" from PATH.
type FFprobe struct {
	Binary string
}

// Probe runs a single ffprobe JSON call against path.
func (p FFprobe) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffprobe %q: %w: %s", path, err, msg)
		}
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a MediaInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*MediaInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildInfo(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string  `json:"format_name"`
	Duration   flexNum `json:"duration"`
	Size       flexNum `json:"size"`
	BitRate    flexNum `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Width       flexNum           `json:"width"`
	Height      flexNum           `json:"height"`
	RFrameRate  string            `json:"r_frame_rate"`
	Duration    flexNum           `json:"duration"`
	Disposition map[string]int    `json:"disposition"`
	Tags        map[string]string `json:"tags"`
	SideData    []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     flexNum `json:"rotation"`
}

// flexNum accepts a JSON number or a numeric string. Anything else decodes
// to zero instead of failing the whole document.
type flexNum float64

func (f *flexNum) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexNum(v)
	return nil
}

// --- Conversion from wire types to domain types ---

func buildInfo(raw *ffprobeOutput) *MediaInfo {
	info := &MediaInfo{
		Duration:   float64(raw.Format.Duration),
		FormatName: raw.Format.FormatName,
		Size:       int64(raw.Format.Size),
		BitRate:    int64(raw.Format.BitRate),
	}

	var video *ffprobeStream
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil && s.Disposition["attached_pic"] != 1 {
				video = s
			}
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = s.CodecName
			}
		}
	}

	if video != nil {
		info.VideoStream = true
		info.Width = int(video.Width)
		info.Height = int(video.Height)
		info.VideoCodec = video.CodecName
		info.FrameRate = parseRate(video.RFrameRate)
		info.Rotation = streamRotation(video)
		if info.Duration <= 0 {
			info.Duration = float64(video.Duration)
		}
	}
	return info
}

// streamRotation prefers the display matrix side data and falls back to the
// legacy "rotate" tag.
func streamRotation(s *ffprobeStream) int {
	for _, sd := range s.SideData {
		if sd.Rotation != 0 {
			return int(sd.Rotation)
		}
	}
	if r, ok := s.Tags["rotate"]; ok {
		return parseInt(r)
	}
	return 0
}

// parseRate turns "30000/1001" into 29.97. A zero denominator reads as 0.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return parseFloat(num)
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return parseFloat(num) / d
}

// --- Numeric parsing helpers ---

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
