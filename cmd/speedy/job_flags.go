package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/planner"
)

// jobFlags holds the processing flags of the root command.
type jobFlags struct {
	input  string
	output string
	preset string

	speed      float64
	lut        string
	profile    string
	contrast   float64
	saturation float64

	codec         string
	audioCodec    string
	bitrate       int
	quality       int
	encoderPreset string
	hwAccel       bool
	threads       int

	stabilize    bool
	noAutoRotate bool
	noOverwrite  bool
	noMetadata   bool

	denoise        int
	sharpen        float64
	vibrance       float64
	curves         string
	hueShift       float64
	colorBalance   string
	selectiveColor string
	scale          string

	listPresets bool
}

func (f *jobFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.input, "input", "i", "", "Input video file or directory")
	fs.StringVarP(&f.output, "output", "o", "", "Output file, or output directory for a directory input")
	fs.StringVar(&f.preset, "preset", "", "Start from a named preset (see 'speedy presets')")

	fs.Float64VarP(&f.speed, "speed", "s", 1.0, "Speed multiplier (2.0 plays twice as fast)")
	fs.StringVarP(&f.lut, "lut", "l", "", "LUT file for color grading (.cube)")
	fs.StringVarP(&f.profile, "profile", "p", string(config.ProfileStandard), "Source color profile: standard | dlog | slog | clog | vlog | flog")
	fs.Float64VarP(&f.contrast, "contrast", "c", 1.0, "Contrast (0.0 to 2.0)")
	fs.Float64VarP(&f.saturation, "saturation", "S", 1.0, "Saturation (0.0 to 2.0)")

	fs.StringVar(&f.codec, "codec", "h264", "Video codec or ffmpeg encoder name")
	fs.StringVar(&f.audioCodec, "audio-codec", "", "Audio codec (default: ffmpeg picks)")
	fs.IntVarP(&f.bitrate, "bitrate", "b", 0, "Video bitrate in Mbps")
	fs.IntVarP(&f.quality, "quality", "q", 23, "CRF quality (0-51, lower is better)")
	fs.StringVar(&f.encoderPreset, "encoder-preset", "", "Encoder speed preset (e.g. medium, slow)")
	fs.BoolVar(&f.hwAccel, "hw-accel", false, "Enable hardware decode acceleration if available")
	fs.IntVarP(&f.threads, "threads", "t", 0, "Encoder threads (0 lets ffmpeg decide)")

	fs.BoolVar(&f.stabilize, "stabilize", false, "Enable video stabilization")
	fs.BoolVar(&f.noAutoRotate, "no-auto-rotate", false, "Correct rotation with filters instead of ffmpeg's autorotate")
	fs.BoolVar(&f.noOverwrite, "no-overwrite", false, "Skip outputs that already exist")
	fs.BoolVar(&f.noMetadata, "no-metadata", false, "Do not copy source metadata")

	fs.IntVar(&f.denoise, "denoise", 0, "Denoise strength (1-10)")
	fs.Float64Var(&f.sharpen, "sharpen", 0, "Sharpen amount (0.1-2.0)")
	fs.Float64Var(&f.vibrance, "vibrance", 0, "Vibrance (-2.0 to 2.0, protects skin tones)")
	fs.StringVar(&f.curves, "curves", "", `Color curves (e.g. "preset=lighter")`)
	fs.Float64Var(&f.hueShift, "hue-shift", 0, "Hue shift in degrees (-180 to 180)")
	fs.StringVar(&f.colorBalance, "color-balance", "", `Color balance as shadows,midtones,highlights r:g:b (e.g. "0.1:-0.1:0,0:0:0,-0.1:0:0.1")`)
	fs.StringVar(&f.selectiveColor, "selective-color", "", `Selective color (e.g. "reds=0.1:0:-0.1:0")`)
	fs.StringVar(&f.scale, "scale", "", `Output size (e.g. "1920x1080" or "1920:-1")`)

	fs.BoolVar(&f.listPresets, "list-presets", false, "List available presets and exit")
	_ = fs.MarkHidden("list-presets")
}

// options layers the preset, if any, under the flags the user actually set
// and builds validated planner options.
func (f *jobFlags) options(fs *pflag.FlagSet, cfg *config.Config) (planner.Options, error) {
	b := planner.NewOptions(cfg)
	if f.preset != "" {
		p, ok := planner.LookupPreset(f.preset)
		if !ok {
			return planner.Options{}, fmt.Errorf("unknown preset %q (see 'speedy presets')", f.preset)
		}
		p.Apply(b)
	}

	changed := fs.Changed
	if changed("speed") {
		b.Speed(f.speed)
	}
	if changed("lut") {
		b.LUT(f.lut)
	}
	if changed("profile") {
		p, err := config.ParseColorProfile(f.profile)
		if err != nil {
			return planner.Options{}, err
		}
		b.Profile(p)
	}
	if changed("contrast") {
		b.Contrast(f.contrast)
	}
	if changed("saturation") {
		b.Saturation(f.saturation)
	}

	if changed("codec") {
		b.Codec(f.codec)
	}
	if changed("audio-codec") {
		b.AudioCodec(f.audioCodec)
	}
	if changed("bitrate") {
		b.Bitrate(f.bitrate)
	}
	if changed("quality") {
		b.Quality(f.quality)
	}
	if changed("encoder-preset") {
		b.EncoderPreset(f.encoderPreset)
	}
	if changed("hw-accel") {
		b.HWAccel(f.hwAccel)
	}
	if changed("threads") {
		b.Threads(f.threads)
	}

	if changed("stabilize") {
		b.Stabilize(f.stabilize)
	}
	if changed("no-auto-rotate") {
		b.AutoRotate(!f.noAutoRotate)
	}
	if changed("no-overwrite") {
		b.Overwrite(!f.noOverwrite)
	}
	if changed("no-metadata") {
		b.PreserveMetadata(!f.noMetadata)
	}

	if changed("denoise") {
		b.Denoise(f.denoise)
	}
	if changed("sharpen") {
		b.Sharpen(f.sharpen)
	}
	if changed("vibrance") {
		b.Vibrance(f.vibrance)
	}
	if changed("curves") {
		b.Curves(f.curves)
	}
	if changed("hue-shift") {
		b.HueShift(f.hueShift)
	}
	if changed("color-balance") {
		b.ColorBalance(f.colorBalance)
	}
	if changed("selective-color") {
		b.SelectiveColor(f.selectiveColor)
	}
	if changed("scale") {
		b.Scale(f.scale)
	}
	return b.Build()
}
