package planner

import (
	"strings"

	"github.com/backmassage/speedy/internal/config"
)

// Preset is a named bundle of options for a common camera or delivery
// target.
type Preset struct {
	Name        string
	Aliases     []string
	Description string
	apply       func(b *OptionsBuilder)
}

// Apply sets the preset's options on b. Options the preset does not mention
// are left alone, so callers can layer explicit settings on top.
func (p Preset) Apply(b *OptionsBuilder) *OptionsBuilder {
	p.apply(b)
	return b
}

// Presets is the catalog in display order.
var Presets = []Preset{
	{
		Name:        "dji-dlog",
		Aliases:     []string{"dji_dlog"},
		Description: "DJI drone footage with D-Log color profile",
		apply: func(b *OptionsBuilder) {
			b.Profile(config.ProfileDLog).Contrast(1.15).Vibrance(0.3).
				AutoRotate(true).Stabilize(true).Codec("h265").Quality(20)
		},
	},
	{
		Name:        "dji",
		Aliases:     []string{"dji-standard"},
		Description: "DJI drone footage with standard color profile",
		apply: func(b *OptionsBuilder) {
			b.Contrast(1.05).Saturation(1.05).AutoRotate(true).Stabilize(true).
				Codec("h265").Quality(22)
		},
	},
	{
		Name:        "gopro",
		Description: "GoPro action camera footage",
		apply: func(b *OptionsBuilder) {
			b.Contrast(1.1).Saturation(1.15).Stabilize(true).Sharpen(0.5).
				Codec("h264").Quality(22)
		},
	},
	{
		Name:        "sony-slog",
		Aliases:     []string{"slog"},
		Description: "Sony camera footage with S-Log profile",
		apply: func(b *OptionsBuilder) {
			b.Profile(config.ProfileSLog).Contrast(1.2).Saturation(1.15).Codec("h265").Quality(20)
		},
	},
	{
		Name:        "canon-clog",
		Aliases:     []string{"clog"},
		Description: "Canon camera footage with C-Log profile",
		apply: func(b *OptionsBuilder) {
			b.Profile(config.ProfileCLog).Contrast(1.18).Saturation(1.12).Codec("h265").Quality(20)
		},
	},
	{
		Name:        "instagram",
		Aliases:     []string{"ig"},
		Description: "Optimized for Instagram",
		apply: func(b *OptionsBuilder) {
			b.Codec("h264").Quality(20).Bitrate(5).Contrast(1.1).Saturation(1.2)
		},
	},
	{
		Name:        "youtube",
		Aliases:     []string{"yt"},
		Description: "Optimized for YouTube (high quality, good compression)",
		apply: func(b *OptionsBuilder) {
			b.Codec("h264").Quality(18).Bitrate(16).Contrast(1.05).Saturation(1.05)
		},
	},
	{
		Name:        "tiktok",
		Aliases:     []string{"tt"},
		Description: "Optimized for TikTok (vertical video)",
		apply: func(b *OptionsBuilder) {
			b.Codec("h264").Quality(23).Bitrate(4).Contrast(1.15).Saturation(1.25)
		},
	},
	{
		Name:        "cinema4k",
		Aliases:     []string{"cinema", "4k"},
		Description: "Cinema 4K export (ProRes, maximum quality)",
		apply: func(b *OptionsBuilder) {
			b.Codec("prores").Quality(0).Contrast(1.0).Saturation(1.0)
		},
	},
	{
		Name:        "preview",
		Aliases:     []string{"fast"},
		Description: "Fast preview (lower quality, faster processing)",
		apply: func(b *OptionsBuilder) {
			b.Codec("h264").Quality(28).Threads(1)
		},
	},
	{
		Name:        "archive",
		Aliases:     []string{"archival"},
		Description: "High quality archival (H.265, low CRF)",
		apply: func(b *OptionsBuilder) {
			b.Codec("h265").Quality(16).Contrast(1.0).Saturation(1.0)
		},
	},
	{
		Name:        "natural",
		Aliases:     []string{"natural-enhance"},
		Description: "Natural color enhancement using vibrance",
		apply: func(b *OptionsBuilder) {
			b.Vibrance(0.5).Contrast(1.05).Curves("preset=lighter").Codec("h264").Quality(20)
		},
	},
	{
		Name:        "cinematic",
		Aliases:     []string{"teal-orange"},
		Description: "Cinematic teal and orange color grading",
		apply: func(b *OptionsBuilder) {
			b.Curves("blue='0/0 0.5/0.58 1/1':red='0/0 0.5/0.42 1/1'").
				Vibrance(0.3).Contrast(1.1).
				ColorBalance("-0.05:0.05:0.1,0:0:-0.05,0.05:-0.05:-0.1").
				Codec("h265").Quality(19)
		},
	},
	{
		Name:        "portrait",
		Description: "Portrait mode with skin tone protection",
		apply: func(b *OptionsBuilder) {
			b.Vibrance(0.4).Curves("preset=lighter").SelectiveColor("reds=0:-0.05:0.05:0").
				Contrast(1.02).Codec("h264").Quality(20)
		},
	},
}

// LookupPreset finds a preset by name or alias, case-insensitively.
func LookupPreset(name string) (Preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
		for _, a := range p.Aliases {
			if a == name {
				return p, true
			}
		}
	}
	return Preset{}, false
}
