package planner

import "strings"

// FilterSpec holds the ordered filter stages for the video and audio tracks.
// The order is fixed by BuildFilters.
type FilterSpec struct {
	Video []string
	Audio []string
}

// Empty reports whether neither track has filters.
func (f FilterSpec) Empty() bool {
	return len(f.Video) == 0 && len(f.Audio) == 0
}

// Graph renders the -filter_complex expression. Each track with stages is
// wrapped as [0:v]...[v] or [0:a]...[a]; tracks are joined with ";".
func (f FilterSpec) Graph() string {
	var parts []string
	if len(f.Video) > 0 {
		parts = append(parts, "[0:v]"+strings.Join(f.Video, ",")+"[v]")
	}
	if len(f.Audio) > 0 {
		parts = append(parts, "[0:a]"+strings.Join(f.Audio, ",")+"[a]")
	}
	return strings.Join(parts, ";")
}

// CommandSpec is everything needed to assemble one ffmpeg invocation. It is
// built once per job by BuildPlan and consumed by ffmpeg.Build.
type CommandSpec struct {
	Overwrite bool
	HWAccel   string // -hwaccel method, empty for none.

	Input  string
	Output string

	Filters FilterSpec

	VideoCodec    string
	AudioCodec    string // Empty leaves ffmpeg's default for the container.
	Quality       int    // CRF 0-51; negative omits -crf.
	Bitrate       int    // Target video bitrate in Mbps; 0 omits -b:v.
	EncoderPreset string
	Threads       int // 0 omits -threads.

	PreserveMetadata bool
	ExtraArgs        []string
}

// ColorBalance is a parsed shadows/midtones/highlights adjustment, each an
// (r, g, b) triple in [-1, 1].
type ColorBalance struct {
	Shadows    [3]float64
	Midtones   [3]float64
	Highlights [3]float64
}

// Values returns the nine components in rs, gs, bs, rm ... bh order.
func (c ColorBalance) Values() [9]float64 {
	var v [9]float64
	copy(v[0:3], c.Shadows[:])
	copy(v[3:6], c.Midtones[:])
	copy(v[6:9], c.Highlights[:])
	return v
}

// Scale is a parsed output size. Height -1 keeps the aspect ratio.
type Scale struct {
	Width  int
	Height int
}
