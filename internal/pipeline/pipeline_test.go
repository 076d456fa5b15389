package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/ffmpeg"
	"github.com/backmassage/speedy/internal/logging"
	"github.com/backmassage/speedy/internal/planner"
	"github.com/backmassage/speedy/internal/probe"
)

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "beach.mp4")
	touch(t, dir, "drone.MOV")
	touch(t, dir, "music.mp3")
	touch(t, dir, "readme.txt")
	touch(t, dir, "action.insv")
	touch(t, dir, "camcorder.mts")

	files, err := Discover(dir, "_speedy")
	require.NoError(t, err)
	assert.Equal(t, []string{"action.insv", "beach.mp4", "camcorder.mts", "drone.MOV"}, basenames(files))
}

func TestDiscover_SkipsPreviousOutputsAndHidden(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	touch(t, dir, "clip_speedy.mp4")
	touch(t, dir, ".hidden.mp4")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".thumbnails"), 0o755))
	touch(t, filepath.Join(dir, ".thumbnails"), "thumb.mp4")

	files, err := Discover(dir, "_speedy")
	require.NoError(t, err)
	assert.Equal(t, []string{"clip.mp4"}, basenames(files))

	files, err = Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"clip.mp4", "clip_speedy.mp4"}, basenames(files))
}

func TestDiscover_RecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "day2"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "day1"), 0o755))
	touch(t, filepath.Join(dir, "day2"), "a.mp4")
	touch(t, filepath.Join(dir, "day1"), "b.mp4")
	touch(t, filepath.Join(dir, "day1"), "a.mp4")

	files, err := Discover(dir, "")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.IsIncreasing(t, files)
}

func TestDiscover_EmptyDir(t *testing.T) {
	files, err := Discover(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, err)
}

// --- RunStats tests ---

func TestRunStats_SizeDelta(t *testing.T) {
	s := RunStats{TotalInputBytes: 1000, TotalOutputBytes: 600}
	assert.Equal(t, int64(-400), s.SizeDelta())

	s2 := RunStats{TotalInputBytes: 100, TotalOutputBytes: 150}
	assert.Equal(t, int64(50), s2.SizeDelta())
}

// --- Runner fakes ---

type fakeProber struct {
	infos map[string]*probe.MediaInfo
	errs  map[string]error
	calls []string
}

func (f *fakeProber) Probe(_ context.Context, path string) (*probe.MediaInfo, error) {
	f.calls = append(f.calls, path)
	name := filepath.Base(path)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if info, ok := f.infos[name]; ok {
		return info, nil
	}
	return &probe.MediaInfo{
		Duration:    10,
		Width:       1920,
		Height:      1080,
		FrameRate:   30,
		VideoStream: true,
		HasAudio:    true,
		VideoCodec:  "h264",
		AudioCodec:  "aac",
	}, nil
}

// fakeEngine writes the output file named by the last argument, reports
// progress, then returns err.
type fakeEngine struct {
	calls    [][]string
	err      error
	startErr error // Returned before any output is written.
	block    bool
}

func (f *fakeEngine) execute(ctx context.Context, _ string, args []string, fn ffmpeg.ProgressFunc) (*ffmpeg.Result, error) {
	f.calls = append(f.calls, args)
	if f.startErr != nil {
		return nil, f.startErr
	}
	if err := os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644); err != nil {
		return nil, &ffmpeg.StartError{Binary: "fake", Err: err}
	}
	if f.block {
		<-ctx.Done()
		return nil, &ffmpeg.SignalError{Signal: "killed", Cause: ctx.Err()}
	}
	fn(ffmpeg.Sample{Percent: 50})
	fn(ffmpeg.Sample{Percent: 100})
	if f.err != nil {
		return nil, f.err
	}
	return &ffmpeg.Result{Elapsed: 2 * time.Second}, nil
}

type recordingProgress struct {
	updates  []float64
	finished bool
	aborted  bool
}

func (p *recordingProgress) Update(pct float64) { p.updates = append(p.updates, pct) }
func (p *recordingProgress) Finish()            { p.finished = true }
func (p *recordingProgress) Abort()             { p.aborted = true }

type harness struct {
	runner   *Runner
	prober   *fakeProber
	engine   *fakeEngine
	progress []*recordingProgress
	logs     *bytes.Buffer
	stdout   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.LUTDir = t.TempDir()

	h := &harness{
		prober: &fakeProber{},
		engine: &fakeEngine{},
		logs:   &bytes.Buffer{},
		stdout: &bytes.Buffer{},
	}
	log, err := logging.New(logging.Options{Level: "debug", Stdout: h.logs, Stderr: h.logs})
	require.NoError(t, err)

	h.runner = &Runner{
		Config:  &cfg,
		Log:     log,
		Prober:  h.prober,
		LUTs:    planner.DirLUTs{Dir: cfg.LUTDir},
		Execute: h.engine.execute,
		Progress: func(string) ProgressSink {
			p := &recordingProgress{}
			h.progress = append(h.progress, p)
			return p
		},
		Stdout: h.stdout,
	}
	return h
}

func (h *harness) options(t *testing.T, fn func(*planner.OptionsBuilder)) planner.Options {
	t.Helper()
	b := planner.NewOptions(h.runner.Config).Speed(2)
	if fn != nil {
		fn(b)
	}
	opts, err := b.Build()
	require.NoError(t, err)
	return opts
}

// --- Runner tests ---

func TestRun_SingleFileDefaultOutput(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	input := touchSized(t, dir, "clip.mp4", 2048)

	stats, err := h.runner.Run(context.Background(), input, "", h.options(t, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, int64(2048), stats.TotalInputBytes)
	assert.Equal(t, int64(len("encoded")), stats.TotalOutputBytes)

	require.Len(t, h.engine.calls, 1)
	args := h.engine.calls[0]
	assert.Equal(t, filepath.Join(dir, "clip_speedy.mp4"), args[len(args)-1])
	assert.Contains(t, args, "[0:v]setpts=0.5000*PTS[v];[0:a]atempo=2.0000[a]")

	require.Len(t, h.progress, 1)
	assert.Equal(t, []float64{50, 100}, h.progress[0].updates)
	assert.True(t, h.progress[0].finished)

	assert.Contains(t, h.logs.String(), "job=")
	assert.Contains(t, h.logs.String(), "[SUCCESS] Done in 2s")
}

func TestRun_ExplicitOutputCreatesDirectory(t *testing.T) {
	h := newHarness(t)
	input := touchSized(t, t.TempDir(), "clip.mov", 100)
	output := filepath.Join(t.TempDir(), "nested", "deeper", "fast.mp4")

	_, err := h.runner.Run(context.Background(), input, output, h.options(t, nil))
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestRun_DryRunPrintsCommand(t *testing.T) {
	h := newHarness(t)
	h.runner.Config.DryRun = true
	input := touchSized(t, t.TempDir(), "clip.mp4", 100)

	stats, err := h.runner.Run(context.Background(), input, "", h.options(t, nil))
	require.NoError(t, err)

	assert.Empty(t, h.engine.calls)
	assert.Equal(t, 1, stats.Processed)
	line := h.stdout.String()
	assert.True(t, strings.HasPrefix(line, "ffmpeg -hide_banner -nostdin -y -i "), line)
	assert.Contains(t, line, "clip_speedy.mp4")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(input), "clip_speedy.mp4"))
}

func TestRun_Batch(t *testing.T) {
	h := newHarness(t)
	in := t.TempDir()
	out := t.TempDir()
	touchSized(t, in, "a.mp4", 10)
	touchSized(t, in, "a_speedy.mp4", 10)
	touchSized(t, in, "notes.txt", 10)
	require.NoError(t, os.MkdirAll(filepath.Join(in, "day2"), 0o755))
	touchSized(t, filepath.Join(in, "day2"), "b.mov", 10)

	stats, err := h.runner.Run(context.Background(), in, out, h.options(t, nil))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Processed)
	assert.FileExists(t, filepath.Join(out, "a_speedy.mp4"))
	assert.FileExists(t, filepath.Join(out, "day2", "b_speedy.mov"))
	assert.Contains(t, h.logs.String(), "[1/2] a.mp4")
	assert.Contains(t, h.logs.String(), "Done: 2 processed, 0 skipped, 0 failed")
}

func TestRun_NoMediaFiles(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	touch(t, dir, "readme.txt")

	_, err := h.runner.Run(context.Background(), dir, "", h.options(t, nil))
	assert.ErrorIs(t, err, ErrNoMediaFiles)
}

func TestRun_MissingInput(t *testing.T) {
	h := newHarness(t)
	_, err := h.runner.Run(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), "", h.options(t, nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_OutputSameAsInput(t *testing.T) {
	h := newHarness(t)
	input := touchSized(t, t.TempDir(), "clip.mp4", 10)

	stats, err := h.runner.Run(context.Background(), input, input, h.options(t, nil))
	assert.ErrorIs(t, err, ErrJobsFailed)
	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, h.engine.calls)
}

func TestRun_EngineFailure(t *testing.T) {
	h := newHarness(t)
	h.engine.err = &ffmpeg.ExitError{Code: 1, Transcript: "Input #0\n[vost#0:0] Unknown encoder 'libnope'\n"}
	dir := t.TempDir()
	input := touchSized(t, dir, "clip.mp4", 10)

	stats, err := h.runner.Run(context.Background(), input, "", h.options(t, nil))
	assert.ErrorIs(t, err, ErrJobsFailed)
	assert.Equal(t, 1, stats.Failed)

	logs := h.logs.String()
	assert.Contains(t, logs, "ffmpeg failed with status 1")
	assert.Contains(t, logs, "Unknown encoder 'libnope'")
	assert.Contains(t, logs, "Hint:")
	assert.NoFileExists(t, filepath.Join(dir, "clip_speedy.mp4"), "partial output is removed")
	require.Len(t, h.progress, 1)
	assert.True(t, h.progress[0].aborted)
}

func TestRun_FailureKeepsUntouchedOutput(t *testing.T) {
	h := newHarness(t)
	h.engine.startErr = &ffmpeg.StartError{Binary: "ffmpeg", Err: exec.ErrNotFound}
	dir := t.TempDir()
	input := touchSized(t, dir, "clip.mp4", 10)
	previous := filepath.Join(dir, "clip_speedy.mp4")
	require.NoError(t, os.WriteFile(previous, []byte("earlier run"), 0o644))

	stats, err := h.runner.Run(context.Background(), input, "", h.options(t, nil))
	assert.ErrorIs(t, err, ErrJobsFailed)
	assert.Equal(t, 1, stats.Failed)
	assert.Contains(t, h.logs.String(), "Cannot start ffmpeg")

	data, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "earlier run", string(data))
}

func TestRun_Timeout(t *testing.T) {
	h := newHarness(t)
	h.engine.block = true
	h.runner.Config.TimeoutSeconds = 1
	input := touchSized(t, t.TempDir(), "clip.mp4", 10)

	stats, err := h.runner.Run(context.Background(), input, "", h.options(t, nil))
	assert.ErrorIs(t, err, ErrJobsFailed)
	assert.Equal(t, 1, stats.Failed)
	assert.Contains(t, h.logs.String(), "Timed out after 1s")
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	h := newHarness(t)
	input := touchSized(t, t.TempDir(), "clip.mp4", 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := h.runner.Run(ctx, input, "", h.options(t, nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Processed)
	assert.Empty(t, h.engine.calls)
}

func TestRun_ProbeFailureAndNoVideo(t *testing.T) {
	h := newHarness(t)
	in := t.TempDir()
	touchSized(t, in, "broken.mp4", 10)
	touchSized(t, in, "audio.mp4", 10)
	touchSized(t, in, "good.mp4", 10)
	h.prober.errs = map[string]error{"broken.mp4": errors.New("invalid data")}
	h.prober.infos = map[string]*probe.MediaInfo{"audio.mp4": {Duration: 3, HasAudio: true}}

	stats, err := h.runner.Run(context.Background(), in, "", h.options(t, nil))
	assert.ErrorIs(t, err, ErrJobsFailed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Processed)
	assert.Len(t, h.engine.calls, 1)
}

func TestRun_UnknownDimensionsStillEncode(t *testing.T) {
	h := newHarness(t)
	h.prober.infos = map[string]*probe.MediaInfo{"odd.mp4": {
		Duration: 10, FrameRate: 30, VideoStream: true, HasAudio: true, VideoCodec: "h264",
	}}
	dir := t.TempDir()
	input := touchSized(t, dir, "odd.mp4", 10)

	stats, err := h.runner.Run(context.Background(), input, "", h.options(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Zero(t, stats.Skipped)
	assert.Len(t, h.engine.calls, 1)
	assert.FileExists(t, filepath.Join(dir, "odd_speedy.mp4"))
}

func TestRun_SkipExistingWithoutOverwrite(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	input := touchSized(t, dir, "clip.mp4", 10)
	touchSized(t, dir, "clip_speedy.mp4", 10)

	opts := h.options(t, func(b *planner.OptionsBuilder) { b.Overwrite(false) })
	stats, err := h.runner.Run(context.Background(), input, "", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, h.engine.calls)
}

func TestRun_NotesAreWarnings(t *testing.T) {
	h := newHarness(t)
	input := touchSized(t, t.TempDir(), "clip.mp4", 10)

	opts := h.options(t, func(b *planner.OptionsBuilder) {
		b.ColorBalance("1,2").Profile(config.ProfileDLog)
	})
	_, err := h.runner.Run(context.Background(), input, "", opts)
	require.NoError(t, err)

	logs := h.logs.String()
	assert.Contains(t, logs, "[WARN]   ignored malformed color balance")
	assert.Contains(t, logs, "dji_dlog_to_rec709.cube not found")
}

func TestRun_NoAudioSkipsTempo(t *testing.T) {
	h := newHarness(t)
	h.prober.infos = map[string]*probe.MediaInfo{"silent.mp4": {Duration: 5, Width: 640, Height: 480, VideoStream: true}}
	input := touchSized(t, t.TempDir(), "silent.mp4", 10)

	_, err := h.runner.Run(context.Background(), input, "", h.options(t, nil))
	require.NoError(t, err)
	require.Len(t, h.engine.calls, 1)
	joined := strings.Join(h.engine.calls[0], " ")
	assert.NotContains(t, joined, "atempo")
	assert.Contains(t, joined, "-map [v] -map 0:a?")
}

// --- Inspect tests ---

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4")
	touch(t, dir, "b.mov")
	single := touch(t, t.TempDir(), "c.mp4")

	fp := &fakeProber{errs: map[string]error{"b.mov": errors.New("moov atom not found")}}
	results, err := Inspect(context.Background(), fp, []string{dir, single})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)

	table := InspectTable(results)
	assert.Contains(t, table, "a.mp4")
	assert.Contains(t, table, "1920x1080")
	assert.Contains(t, table, "error: moov atom not found")
	assert.Contains(t, table, "c.mp4")
}

func TestInspect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Inspect(ctx, &fakeProber{}, []string{"x.mp4"})
	assert.ErrorIs(t, err, context.Canceled)
}

// --- End-to-end with a real engine ---

func TestRun_RealEngine(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}

	dir := t.TempDir()
	input := filepath.Join(dir, "test.mp4")
	gen := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=24",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=2:sample_rate=48000",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-c:a", "aac", "-shortest",
		"-y", input,
	)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot generate test clip: %v\n%s", err, out)
	}

	cfg := config.DefaultConfig()
	cfg.LUTDir = ""
	log, err := logging.New(logging.Options{Level: "error", Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	r := NewRunner(&cfg, log)
	r.Progress = func(string) ProgressSink { return &recordingProgress{} }

	opts, err := planner.NewOptions(&cfg).Speed(2).EncoderPreset("ultrafast").Contrast(1.1).Build()
	require.NoError(t, err)

	stats, err := r.Run(context.Background(), input, "", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)

	info, err := probe.FFprobe{}.Probe(context.Background(), filepath.Join(dir, "test_speedy.mp4"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, info.Duration, 0.25)
	assert.True(t, info.HasAudio)
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	return touchSized(t, dir, name, 0)
}

func touchSized(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
