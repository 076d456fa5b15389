package planner

import (
	"fmt"

	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/probe"
)

// LUTResolver returns the LUT file for a camera profile and whether one is
// available.
type LUTResolver interface {
	ProfileLUT(p config.ColorProfile) (string, bool)
}

// videoStage renders one step of the video chain, or "" when it does not
// apply.
type videoStage func(o *Options, info *probe.MediaInfo, luts LUTResolver) string

// videoStages is the application order. ffmpeg applies filters in sequence,
// so this order is part of the output contract.
var videoStages = []videoStage{
	lutStage,
	eqStage,
	stabilizeStage,
	rotateStage,
	denoiseStage,
	sharpenStage,
	vibranceStage,
	curvesStage,
	hueStage,
	colorBalanceStage,
	selectiveColorStage,
	scaleStage,
}

// BuildFilters composes the video and audio filter lists for a job. The
// speed remap always comes first; audio tempo stages are added only when
// the input has audio.
func BuildFilters(o Options, info *probe.MediaInfo, luts LUTResolver) FilterSpec {
	if info == nil {
		info = &probe.MediaInfo{}
	}
	var spec FilterSpec

	if o.Speed != 1.0 {
		spec.Video = append(spec.Video, fmt.Sprintf("setpts=%.4f*PTS", 1.0/o.Speed))
		if info.HasAudio {
			spec.Audio = append(spec.Audio, tempoFilters(o.Speed)...)
		}
	}

	for _, stage := range videoStages {
		if f := stage(&o, info, luts); f != "" {
			spec.Video = append(spec.Video, f)
		}
	}
	return spec
}

// --- Video stages ---

func lutStage(o *Options, _ *probe.MediaInfo, luts LUTResolver) string {
	if o.LUTPath != "" {
		return "lut3d=" + o.LUTPath
	}
	if luts == nil {
		return ""
	}
	if path, ok := luts.ProfileLUT(o.Profile); ok {
		return "lut3d=" + path
	}
	return ""
}

func eqStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.Contrast == 1.0 && o.Saturation == 1.0 {
		return ""
	}
	return fmt.Sprintf("eq=contrast=%.2f:saturation=%.2f", o.Contrast, o.Saturation)
}

func stabilizeStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if !o.Stabilize {
		return ""
	}
	return "deshake"
}

// rotateStage compensates display rotation when ffmpeg's autorotate is off.
// Only quarter turns are handled.
func rotateStage(o *Options, info *probe.MediaInfo, _ LUTResolver) string {
	if o.AutoRotate || info.Rotation == 0 {
		return ""
	}
	switch info.Rotation {
	case 90:
		return "transpose=1"
	case -90, 270:
		return "transpose=0"
	case 180, -180:
		return "transpose=2,transpose=2"
	}
	return ""
}

func denoiseStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.Denoise <= 0 {
		return ""
	}
	return fmt.Sprintf("nlmeans=s=%d", o.Denoise)
}

func sharpenStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.Sharpen == nil {
		return ""
	}
	s := *o.Sharpen
	return fmt.Sprintf("unsharp=5:5:%.2f:5:5:%.2f", s, s*0.5)
}

func vibranceStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.Vibrance == nil {
		return ""
	}
	return fmt.Sprintf("vibrance=intensity=%.2f", *o.Vibrance)
}

func curvesStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.Curves == "" {
		return ""
	}
	return "curves=" + o.Curves
}

func hueStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.HueShift == nil {
		return ""
	}
	return fmt.Sprintf("hue=h=%.1f", *o.HueShift)
}

func colorBalanceStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.ColorBalance == nil {
		return ""
	}
	v := o.ColorBalance.Values()
	return fmt.Sprintf("colorbalance=rs=%.2f:gs=%.2f:bs=%.2f:rm=%.2f:gm=%.2f:bm=%.2f:rh=%.2f:gh=%.2f:bh=%.2f",
		v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], v[8])
}

func selectiveColorStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.SelectiveColor == "" {
		return ""
	}
	return "selectivecolor=" + o.SelectiveColor
}

func scaleStage(o *Options, _ *probe.MediaInfo, _ LUTResolver) string {
	if o.Scale == nil {
		return ""
	}
	return fmt.Sprintf("scale=%d:%d", o.Scale.Width, o.Scale.Height)
}
