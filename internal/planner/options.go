package planner

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/backmassage/speedy/internal/config"
)

// ErrInvalidOptions is wrapped by every OptionsBuilder.Build failure.
var ErrInvalidOptions = errors.New("invalid options")

// Options is the validated, immutable set of processing intents for a job.
// Build one with NewOptions(...).Build().
type Options struct {
	Speed float64 // Playback speed multiplier; 1.0 leaves timing alone.

	LUTPath string              // Explicit .cube file; wins over Profile.
	Profile config.ColorProfile // Camera log profile used for LUT lookup.

	Contrast   float64 // eq contrast, 1.0 = unchanged.
	Saturation float64 // eq saturation, 1.0 = unchanged.
	Stabilize  bool
	AutoRotate bool // Leave rotation to ffmpeg's autorotate.

	Denoise        int      // nlmeans strength, 0 = off.
	Sharpen        *float64 // unsharp luma amount.
	Vibrance       *float64
	Curves         string
	HueShift       *float64 // Degrees.
	ColorBalance   *ColorBalance
	SelectiveColor string
	Scale          *Scale

	Codec            string // ffmpeg encoder name, aliases resolved.
	AudioCodec       string
	Quality          int // CRF 0-51.
	Bitrate          int // Mbps, 0 = unset.
	EncoderPreset    string
	Threads          int
	HWAccel          bool
	Overwrite        bool
	PreserveMetadata bool
	ExtraArgs        []string

	// Dropped lists options that were discarded because they could not be
	// parsed. They never fail Build.
	Dropped []string
}

// OptionsBuilder collects options in any order. Setters may be called
// repeatedly; the last call wins.
type OptionsBuilder struct {
	o            Options
	colorBalance string
	scale        string
}

// NewOptions seeds a builder with the encoding defaults from cfg.
func NewOptions(cfg *config.Config) *OptionsBuilder {
	return &OptionsBuilder{o: Options{
		Speed:            1.0,
		Profile:          config.ProfileStandard,
		Contrast:         1.0,
		Saturation:       1.0,
		AutoRotate:       cfg.AutoRotate,
		Codec:            cfg.Codec,
		Quality:          cfg.Quality,
		EncoderPreset:    cfg.EncoderPreset,
		Threads:          cfg.Threads,
		HWAccel:          cfg.HWAccel,
		Overwrite:        cfg.Overwrite,
		PreserveMetadata: cfg.PreserveMetadata,
	}}
}

func (b *OptionsBuilder) Speed(m float64) *OptionsBuilder {
	b.o.Speed = m
	return b
}

func (b *OptionsBuilder) LUT(path string) *OptionsBuilder {
	b.o.LUTPath = path
	return b
}

func (b *OptionsBuilder) Profile(p config.ColorProfile) *OptionsBuilder {
	b.o.Profile = p
	return b
}

func (b *OptionsBuilder) Contrast(v float64) *OptionsBuilder {
	b.o.Contrast = v
	return b
}

func (b *OptionsBuilder) Saturation(v float64) *OptionsBuilder {
	b.o.Saturation = v
	return b
}

func (b *OptionsBuilder) Stabilize(on bool) *OptionsBuilder {
	b.o.Stabilize = on
	return b
}

func (b *OptionsBuilder) AutoRotate(on bool) *OptionsBuilder {
	b.o.AutoRotate = on
	return b
}

func (b *OptionsBuilder) Denoise(strength int) *OptionsBuilder {
	b.o.Denoise = strength
	return b
}

func (b *OptionsBuilder) Sharpen(v float64) *OptionsBuilder {
	b.o.Sharpen = &v
	return b
}

func (b *OptionsBuilder) Vibrance(v float64) *OptionsBuilder {
	b.o.Vibrance = &v
	return b
}

func (b *OptionsBuilder) Curves(c string) *OptionsBuilder {
	b.o.Curves = c
	return b
}

func (b *OptionsBuilder) HueShift(deg float64) *OptionsBuilder {
	b.o.HueShift = &deg
	return b
}

// ColorBalance takes the raw "sr:sg:sb,mr:mg:mb,hr:hg:hb" string; it is
// parsed by Build.
func (b *OptionsBuilder) ColorBalance(s string) *OptionsBuilder {
	b.colorBalance = s
	return b
}

func (b *OptionsBuilder) SelectiveColor(s string) *OptionsBuilder {
	b.o.SelectiveColor = s
	return b
}

// Scale takes the raw "WxH" or "W:H" string; it is parsed by Build.
func (b *OptionsBuilder) Scale(s string) *OptionsBuilder {
	b.scale = s
	return b
}

// Codec accepts a short alias (h264, h265, vp9, av1, prores) or an ffmpeg
// encoder name.
func (b *OptionsBuilder) Codec(c string) *OptionsBuilder {
	b.o.Codec = c
	return b
}

func (b *OptionsBuilder) AudioCodec(c string) *OptionsBuilder {
	b.o.AudioCodec = c
	return b
}

func (b *OptionsBuilder) Quality(crf int) *OptionsBuilder {
	b.o.Quality = crf
	return b
}

func (b *OptionsBuilder) Bitrate(mbps int) *OptionsBuilder {
	b.o.Bitrate = mbps
	return b
}

func (b *OptionsBuilder) EncoderPreset(p string) *OptionsBuilder {
	b.o.EncoderPreset = p
	return b
}

func (b *OptionsBuilder) Threads(n int) *OptionsBuilder {
	b.o.Threads = n
	return b
}

func (b *OptionsBuilder) HWAccel(on bool) *OptionsBuilder {
	b.o.HWAccel = on
	return b
}

func (b *OptionsBuilder) Overwrite(on bool) *OptionsBuilder {
	b.o.Overwrite = on
	return b
}

func (b *OptionsBuilder) PreserveMetadata(on bool) *OptionsBuilder {
	b.o.PreserveMetadata = on
	return b
}

func (b *OptionsBuilder) ExtraArgs(args ...string) *OptionsBuilder {
	b.o.ExtraArgs = append([]string(nil), args...)
	return b
}

// Build validates the collected options and returns an immutable copy.
// Malformed color balance and scale strings are dropped and recorded in
// Options.Dropped instead of failing.
func (b *OptionsBuilder) Build() (Options, error) {
	o := b.o
	o.ExtraArgs = append([]string(nil), b.o.ExtraArgs...)
	o.Dropped = nil
	o.ColorBalance = nil
	o.Scale = nil

	if math.IsNaN(o.Speed) || math.IsInf(o.Speed, 0) || o.Speed <= 0 {
		return Options{}, fmt.Errorf("%w: speed must be a positive number (got %v)", ErrInvalidOptions, o.Speed)
	}
	if o.Quality < 0 || o.Quality > 51 {
		return Options{}, fmt.Errorf("%w: quality must be between 0 and 51 (got %d)", ErrInvalidOptions, o.Quality)
	}
	if o.Bitrate < 0 {
		return Options{}, fmt.Errorf("%w: bitrate must not be negative (got %d)", ErrInvalidOptions, o.Bitrate)
	}
	if o.Threads < 0 {
		return Options{}, fmt.Errorf("%w: threads must not be negative (got %d)", ErrInvalidOptions, o.Threads)
	}
	if o.Denoise < 0 {
		return Options{}, fmt.Errorf("%w: denoise strength must not be negative (got %d)", ErrInvalidOptions, o.Denoise)
	}
	if o.Contrast < 0 || o.Saturation < 0 {
		return Options{}, fmt.Errorf("%w: contrast and saturation must not be negative", ErrInvalidOptions)
	}

	o.Codec = ResolveCodec(o.Codec)
	if o.Codec == "" {
		return Options{}, fmt.Errorf("%w: codec must not be empty", ErrInvalidOptions)
	}
	o.Curves = strings.TrimSpace(o.Curves)
	o.SelectiveColor = strings.TrimSpace(o.SelectiveColor)

	if s := strings.TrimSpace(b.colorBalance); s != "" {
		if cb, ok := ParseColorBalance(s); ok {
			o.ColorBalance = &cb
		} else {
			o.Dropped = append(o.Dropped, fmt.Sprintf("color balance %q (want sr:sg:sb,mr:mg:mb,hr:hg:hb)", s))
		}
	}
	if s := strings.TrimSpace(b.scale); s != "" {
		if sc, ok := ParseScale(s); ok {
			o.Scale = &sc
		} else {
			o.Dropped = append(o.Dropped, fmt.Sprintf("scale %q (want WxH or W:H)", s))
		}
	}

	// Pointer fields must not alias the builder.
	o.Sharpen = copyFloat(o.Sharpen)
	o.Vibrance = copyFloat(o.Vibrance)
	o.HueShift = copyFloat(o.HueShift)
	return o, nil
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
