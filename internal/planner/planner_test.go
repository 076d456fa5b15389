package planner

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/probe"
)

// --- Helper builders ---

func defaultCfg() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func withAudio() *probe.MediaInfo {
	return &probe.MediaInfo{Duration: 60, Width: 1920, Height: 1080, FrameRate: 30, VideoStream: true, HasAudio: true}
}

func silent() *probe.MediaInfo {
	return &probe.MediaInfo{Duration: 60, Width: 1920, Height: 1080, FrameRate: 30, VideoStream: true}
}

func mustBuild(t *testing.T, b *OptionsBuilder) Options {
	t.Helper()
	o, err := b.Build()
	require.NoError(t, err)
	return o
}

// stubLUTs resolves every profile that has a LUT name to /luts/<name>.
type stubLUTs struct{}

func (stubLUTs) ProfileLUT(p config.ColorProfile) (string, bool) {
	if name := ProfileLUTName(p); name != "" {
		return "/luts/" + name, true
	}
	return "", false
}

func product(fs []float64) float64 {
	p := 1.0
	for _, f := range fs {
		p *= f
	}
	return p
}

// --- Tempo chaining ---

func TestTempoChain_ProductAndRange(t *testing.T) {
	for _, m := range []float64{0.01, 0.1, 0.25, 0.3, 0.49, 0.5, 0.75, 1.5, 2.0, 2.5, 3.0, 4.0, 7.3, 10, 64} {
		chain := TempoChain(m)
		require.NotEmpty(t, chain, "m=%v", m)
		assert.InEpsilon(t, m, product(chain), 1e-9, "m=%v chain=%v", m, chain)
		for _, f := range chain {
			assert.GreaterOrEqual(t, f, 0.5, "m=%v chain=%v", m, chain)
			assert.LessOrEqual(t, f, 2.0, "m=%v chain=%v", m, chain)
		}
	}
}

func TestTempoChain_InRangeIsSingleStage(t *testing.T) {
	for _, m := range []float64{0.5, 0.8, 1.25, 2.0} {
		assert.Equal(t, []float64{m}, TempoChain(m))
	}
}

func TestTempoChain_KnownCases(t *testing.T) {
	assert.Equal(t, []float64{2.0, 2.0}, TempoChain(4.0))

	chain := TempoChain(3.0)
	require.Len(t, chain, 2)
	assert.Equal(t, 2.0, chain[0])
	assert.InDelta(t, 1.5, chain[1], 1e-12)
}

func TestTempoChain_SlowStageCount(t *testing.T) {
	for _, m := range []float64{0.3, 0.2, 0.1, 0.05, 0.01} {
		chain := TempoChain(m)
		halves := 0
		for _, f := range chain {
			if f == 0.5 {
				halves++
			}
		}
		want := int(math.Ceil(math.Log2(0.5 / m)))
		residual := len(chain) - want
		assert.GreaterOrEqual(t, halves, want, "m=%v chain=%v", m, chain)
		assert.LessOrEqual(t, residual, 1, "m=%v chain=%v", m, chain)
	}
}

func TestTempoFilters_Formatting(t *testing.T) {
	assert.Equal(t, []string{"atempo=1.5000"}, tempoFilters(1.5))
	assert.Equal(t, []string{"atempo=2.0", "atempo=1.5000"}, tempoFilters(3.0))
	assert.Equal(t, []string{"atempo=0.5", "atempo=0.5"}, tempoFilters(0.25))
	assert.Equal(t, []string{"atempo=2.0000"}, tempoFilters(2.0))
}

// --- Parsing ---

func TestParseColorBalance(t *testing.T) {
	cb, ok := ParseColorBalance("0.1:-0.1:0,0:0:0,-0.1:0:0.1")
	require.True(t, ok)
	assert.Equal(t, [9]float64{0.1, -0.1, 0, 0, 0, 0, -0.1, 0, 0.1}, cb.Values())

	bad := []string{
		"0.1:-0.1,0:0:0,0:0:0",
		"0:0:0,0:0:0",
		"0:0:0,0:0:0,0:0:0,0:0:0",
		"0:0:x,0:0:0,0:0:0",
		"0:0:0:0,0:0:0,0:0:0",
		"",
	}
	for _, s := range bad {
		_, ok := ParseColorBalance(s)
		assert.False(t, ok, "%q", s)
	}
}

func TestParseScale(t *testing.T) {
	tests := []struct {
		in     string
		want   Scale
		wantOK bool
	}{
		{"1920x1080", Scale{1920, 1080}, true},
		{"1920:-1", Scale{1920, -1}, true},
		{"1280:720", Scale{1280, 720}, true},
		{"1280x", Scale{1280, -1}, true},
		{"1280xauto", Scale{1280, -1}, true},
		{"widex1080", Scale{}, false},
		{"1920", Scale{}, false},
		{"", Scale{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseScale(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- Options ---

func TestOptionsBuilder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*OptionsBuilder)
	}{
		{"zero speed", func(b *OptionsBuilder) { b.Speed(0) }},
		{"negative speed", func(b *OptionsBuilder) { b.Speed(-2) }},
		{"NaN speed", func(b *OptionsBuilder) { b.Speed(math.NaN()) }},
		{"quality high", func(b *OptionsBuilder) { b.Quality(52) }},
		{"negative bitrate", func(b *OptionsBuilder) { b.Bitrate(-1) }},
		{"negative threads", func(b *OptionsBuilder) { b.Threads(-1) }},
		{"negative denoise", func(b *OptionsBuilder) { b.Denoise(-3) }},
		{"negative contrast", func(b *OptionsBuilder) { b.Contrast(-1) }},
		{"empty codec", func(b *OptionsBuilder) { b.Codec(" ") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewOptions(defaultCfg())
			tt.apply(b)
			_, err := b.Build()
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestOptionsBuilder_DropsMalformedStrings(t *testing.T) {
	o := mustBuild(t, NewOptions(defaultCfg()).ColorBalance("1:2,3").Scale("big"))
	assert.Nil(t, o.ColorBalance)
	assert.Nil(t, o.Scale)
	require.Len(t, o.Dropped, 2)
	assert.Contains(t, o.Dropped[0], "color balance")
	assert.Contains(t, o.Dropped[1], "scale")
}

func TestOptionsBuilder_BuildIsIsolated(t *testing.T) {
	b := NewOptions(defaultCfg()).Sharpen(1.0).ExtraArgs("-an")
	o := mustBuild(t, b)
	b.Sharpen(2.0).ExtraArgs("-sn")

	assert.Equal(t, 1.0, *o.Sharpen)
	assert.Equal(t, []string{"-an"}, o.ExtraArgs)
}

func TestResolveCodec(t *testing.T) {
	assert.Equal(t, "libx264", ResolveCodec("h264"))
	assert.Equal(t, "libx265", ResolveCodec("H265"))
	assert.Equal(t, "libx265", ResolveCodec("hevc"))
	assert.Equal(t, "libvpx-vp9", ResolveCodec("vp9"))
	assert.Equal(t, "libaom-av1", ResolveCodec("av1"))
	assert.Equal(t, "prores_ks", ResolveCodec("prores"))
	assert.Equal(t, "h264_nvenc", ResolveCodec("h264_nvenc"))
}

func TestHWAccelMethod(t *testing.T) {
	assert.Equal(t, "vaapi", HWAccelMethod("linux"))
	assert.Equal(t, "videotoolbox", HWAccelMethod("darwin"))
	assert.Equal(t, "dxva2", HWAccelMethod("windows"))
	assert.Empty(t, HWAccelMethod("plan9"))
}

// --- Filters ---

func TestBuildFilters_NoOptionsNoFilters(t *testing.T) {
	spec := BuildFilters(mustBuild(t, NewOptions(defaultCfg())), withAudio(), stubLUTs{})
	assert.True(t, spec.Empty())
	assert.Empty(t, spec.Graph())
}

func TestBuildFilters_SpeedWithAudio(t *testing.T) {
	spec := BuildFilters(mustBuild(t, NewOptions(defaultCfg()).Speed(4.0)), withAudio(), nil)
	assert.Equal(t, []string{"setpts=0.2500*PTS"}, spec.Video)
	assert.Equal(t, []string{"atempo=2.0", "atempo=2.0"}, spec.Audio)
	assert.Equal(t, "[0:v]setpts=0.2500*PTS[v];[0:a]atempo=2.0,atempo=2.0[a]", spec.Graph())
}

func TestBuildFilters_SpeedWithoutAudio(t *testing.T) {
	for _, m := range []float64{0.25, 0.5, 1.5, 2.0, 8.0} {
		spec := BuildFilters(mustBuild(t, NewOptions(defaultCfg()).Speed(m)), silent(), nil)
		assert.Empty(t, spec.Audio, "m=%v", m)
		assert.Len(t, spec.Video, 1)
	}
}

func TestBuildFilters_NilInfo(t *testing.T) {
	spec := BuildFilters(mustBuild(t, NewOptions(defaultCfg()).Speed(2)), nil, nil)
	assert.Equal(t, []string{"setpts=0.5000*PTS"}, spec.Video)
	assert.Empty(t, spec.Audio)
}

func TestBuildFilters_FullOrder(t *testing.T) {
	info := silent()
	info.Rotation = 90

	o := mustBuild(t, NewOptions(defaultCfg()).
		Speed(2).
		LUT("/grade.cube").
		Contrast(1.1).Saturation(1.2).
		Stabilize(true).
		AutoRotate(false).
		Denoise(4).
		Sharpen(1.0).
		Vibrance(0.3).
		Curves("preset=lighter").
		HueShift(12.5).
		ColorBalance("0.1:-0.1:0,0:0:0,-0.1:0:0.1").
		SelectiveColor("reds=0:-0.05:0.05:0").
		Scale("1280x720"))

	want := []string{
		"setpts=0.5000*PTS",
		"lut3d=/grade.cube",
		"eq=contrast=1.10:saturation=1.20",
		"deshake",
		"transpose=1",
		"nlmeans=s=4",
		"unsharp=5:5:1.00:5:5:0.50",
		"vibrance=intensity=0.30",
		"curves=preset=lighter",
		"hue=h=12.5",
		"colorbalance=rs=0.10:gs=-0.10:bs=0.00:rm=0.00:gm=0.00:bm=0.00:rh=-0.10:gh=0.00:bh=0.10",
		"selectivecolor=reds=0:-0.05:0.05:0",
		"scale=1280:720",
	}
	assert.Equal(t, want, BuildFilters(o, info, nil).Video)
}

func TestBuildFilters_OrderIndependentOfSupplyOrder(t *testing.T) {
	forward := mustBuild(t, NewOptions(defaultCfg()).
		Scale("640:-1").HueShift(5).Denoise(2).Contrast(1.3).Speed(0.5).Stabilize(true))
	reverse := mustBuild(t, NewOptions(defaultCfg()).
		Stabilize(true).Speed(0.5).Contrast(1.3).Denoise(2).HueShift(5).Scale("640:-1"))

	a := BuildFilters(forward, withAudio(), nil)
	b := BuildFilters(reverse, withAudio(), nil)
	assert.Equal(t, a, b)
	assert.Equal(t, []string{
		"setpts=2.0000*PTS",
		"eq=contrast=1.30:saturation=1.00",
		"deshake",
		"nlmeans=s=2",
		"hue=h=5.0",
		"scale=640:-1",
	}, a.Video)
}

func TestBuildFilters_Rotation(t *testing.T) {
	tests := []struct {
		rotation   int
		autoRotate bool
		want       string
	}{
		{90, false, "transpose=1"},
		{-90, false, "transpose=0"},
		{270, false, "transpose=0"},
		{180, false, "transpose=2,transpose=2"},
		{-180, false, "transpose=2,transpose=2"},
		{45, false, ""},
		{90, true, ""},
		{0, false, ""},
	}
	for _, tt := range tests {
		info := silent()
		info.Rotation = tt.rotation
		o := mustBuild(t, NewOptions(defaultCfg()).AutoRotate(tt.autoRotate))
		spec := BuildFilters(o, info, nil)
		if tt.want == "" {
			assert.Empty(t, spec.Video, "rotation=%d auto=%v", tt.rotation, tt.autoRotate)
		} else {
			assert.Equal(t, []string{tt.want}, spec.Video, "rotation=%d", tt.rotation)
		}
	}
}

func TestBuildFilters_ProfileLUT(t *testing.T) {
	o := mustBuild(t, NewOptions(defaultCfg()).Profile(config.ProfileDLog))
	assert.Equal(t, []string{"lut3d=/luts/dji_dlog_to_rec709.cube"}, BuildFilters(o, silent(), stubLUTs{}).Video)

	// Explicit LUT wins over the profile.
	o = mustBuild(t, NewOptions(defaultCfg()).Profile(config.ProfileDLog).LUT("/mine.cube"))
	assert.Equal(t, []string{"lut3d=/mine.cube"}, BuildFilters(o, silent(), stubLUTs{}).Video)

	// Profiles without a LUT add nothing.
	o = mustBuild(t, NewOptions(defaultCfg()).Profile(config.ProfileVLog))
	assert.Empty(t, BuildFilters(o, silent(), stubLUTs{}).Video)
}

func TestDirLUTs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sony_slog_to_rec709.cube"), []byte("LUT_3D_SIZE 2\n"), 0o644))
	luts := DirLUTs{Dir: dir}

	path, ok := luts.ProfileLUT(config.ProfileSLog)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "sony_slog_to_rec709.cube"), path)

	_, ok = luts.ProfileLUT(config.ProfileCLog)
	assert.False(t, ok, "missing file")
	_, ok = luts.ProfileLUT(config.ProfileStandard)
	assert.False(t, ok, "no LUT for standard")
}

func TestFilterSpec_GraphSingleTrack(t *testing.T) {
	assert.Equal(t, "[0:v]deshake[v]", FilterSpec{Video: []string{"deshake"}}.Graph())
	assert.Equal(t, "[0:a]atempo=1.5000[a]", FilterSpec{Audio: []string{"atempo=1.5000"}}.Graph())
}

// --- Presets ---

func TestLookupPreset(t *testing.T) {
	for _, name := range []string{"dji-dlog", "DJI_DLOG", "yt", "4k", "teal-orange", "portrait"} {
		_, ok := LookupPreset(name)
		assert.True(t, ok, name)
	}
	_, ok := LookupPreset("vhs")
	assert.False(t, ok)
}

func TestPresets_AllBuild(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Presets {
		assert.False(t, seen[p.Name], "duplicate preset %s", p.Name)
		seen[p.Name] = true
		assert.NotEmpty(t, p.Description)

		o, err := p.Apply(NewOptions(defaultCfg())).Build()
		require.NoError(t, err, p.Name)
		assert.Empty(t, o.Dropped, p.Name)
	}
	assert.Len(t, Presets, 14)
}

func TestPreset_CinematicValues(t *testing.T) {
	p, _ := LookupPreset("cinematic")
	o := mustBuild(t, p.Apply(NewOptions(defaultCfg())))
	assert.Equal(t, "libx265", o.Codec)
	assert.Equal(t, 19, o.Quality)
	require.NotNil(t, o.ColorBalance)
	assert.Equal(t, [3]float64{-0.05, 0.05, 0.1}, o.ColorBalance.Shadows)

	spec := BuildFilters(o, silent(), nil)
	assert.True(t, strings.HasPrefix(spec.Video[0], "eq=contrast=1.10"))
}

func TestPreset_LaterSettingsOverride(t *testing.T) {
	p, _ := LookupPreset("youtube")
	o := mustBuild(t, p.Apply(NewOptions(defaultCfg())).Quality(30))
	assert.Equal(t, 30, o.Quality)
	assert.Equal(t, 16, o.Bitrate)
}

// --- Plan ---

func TestBuildPlan(t *testing.T) {
	cfg := defaultCfg()
	o := mustBuild(t, NewOptions(cfg).Speed(2).Codec("h265").Bitrate(8).Threads(4).ExtraArgs("-movflags", "+faststart"))

	plan := BuildPlan(o, withAudio(), "in.mp4", "out.mp4", nil)
	cmd := plan.Command
	assert.True(t, cmd.Overwrite)
	assert.Equal(t, "in.mp4", cmd.Input)
	assert.Equal(t, "out.mp4", cmd.Output)
	assert.Equal(t, "libx265", cmd.VideoCodec)
	assert.Equal(t, 23, cmd.Quality)
	assert.Equal(t, 8, cmd.Bitrate)
	assert.Equal(t, 4, cmd.Threads)
	assert.True(t, cmd.PreserveMetadata)
	assert.Empty(t, cmd.HWAccel)
	assert.Equal(t, plan.Filters, cmd.Filters)
	assert.Equal(t, []string{"-movflags", "+faststart"}, cmd.ExtraArgs)
	assert.Empty(t, plan.Notes)
}

func TestBuildPlan_Notes(t *testing.T) {
	info := silent()
	info.Rotation = 45
	o := mustBuild(t, NewOptions(defaultCfg()).
		Profile(config.ProfileCLog).AutoRotate(false).ColorBalance("nope"))

	plan := BuildPlan(o, info, "a", "b", DirLUTs{Dir: t.TempDir()})
	require.Len(t, plan.Notes, 3)
	assert.Contains(t, plan.Notes[0], "color balance")
	assert.Contains(t, plan.Notes[1], "canon_clog_to_rec709.cube")
	assert.Contains(t, plan.Notes[2], "45")
}
