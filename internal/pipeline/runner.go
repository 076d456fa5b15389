package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/display"
	"github.com/backmassage/speedy/internal/ffmpeg"
	"github.com/backmassage/speedy/internal/logging"
	"github.com/backmassage/speedy/internal/naming"
	"github.com/backmassage/speedy/internal/planner"
	"github.com/backmassage/speedy/internal/probe"
	"github.com/backmassage/speedy/internal/term"
)

// transcriptTail is how many ffmpeg lines are logged after a failure.
const transcriptTail = 20

var (
	// ErrNoMediaFiles is returned when a batch input directory holds no media.
	ErrNoMediaFiles = errors.New("no media files found")
	// ErrJobsFailed is returned by Run when at least one job failed.
	ErrJobsFailed = errors.New("one or more jobs failed")
)

// ExecuteFunc runs the engine; ffmpeg.Execute in production.
type ExecuteFunc func(ctx context.Context, binary string, args []string, fn ffmpeg.ProgressFunc) (*ffmpeg.Result, error)

// ProgressSink displays one job's progress.
type ProgressSink interface {
	Update(percent float64)
	Finish()
	Abort()
}

// Runner processes one file or a directory of files sequentially with the
// same options. Zero-valued hooks fall back to the real engine and
// terminal output.
type Runner struct {
	Config *config.Config
	Log    *logging.Logger
	Prober probe.Prober
	LUTs   planner.LUTResolver

	Execute  ExecuteFunc
	Progress func(description string) ProgressSink
	Stdout   io.Writer // Dry-run commands are printed here.
}

// NewRunner wires a Runner to ffprobe, the configured LUT directory, and
// the real engine.
func NewRunner(cfg *config.Config, log *logging.Logger) *Runner {
	return &Runner{
		Config: cfg,
		Log:    log,
		Prober: probe.FFprobe{Binary: cfg.FFprobeBinary},
		LUTs:   planner.DirLUTs{Dir: cfg.LUTDir},
	}
}

// Run processes input with opts. A directory input is walked and every media
// file is written under output (or beside itself when output is empty). A
// file input defaults to <stem><suffix><ext> beside itself.
//
// Per-job failures are logged and counted; Run returns ErrJobsFailed if any
// occurred. Cancellation of ctx stops the batch after the current job.
func (r *Runner) Run(ctx context.Context, input, output string, opts planner.Options) (RunStats, error) {
	var stats RunStats

	fi, err := os.Stat(input)
	if err != nil {
		return stats, fmt.Errorf("input: %w", err)
	}

	jobs, err := r.jobs(input, output, fi.IsDir())
	if err != nil {
		return stats, err
	}
	stats.Total = len(jobs)
	if fi.IsDir() {
		r.Log.Info("Found %d files in %s", stats.Total, input)
	}
	r.logHeader(opts)

	for i, j := range jobs {
		stats.Current = i + 1
		if ctx.Err() != nil {
			r.Log.Warn("Interrupted")
			break
		}
		r.processJob(ctx, j, opts, &stats)
	}

	if stats.Total > 1 {
		r.logSummary(&stats)
	}
	if ctx.Err() != nil {
		return stats, ctx.Err()
	}
	if stats.Failed > 0 {
		return stats, ErrJobsFailed
	}
	return stats, nil
}

// job is one input/output pair.
type job struct {
	input  string
	output string
}

func (r *Runner) jobs(input, output string, isDir bool) ([]job, error) {
	suffix := r.Config.OutputSuffix
	if !isDir {
		if output == "" {
			output = naming.OutputPath(input, suffix)
		}
		return []job{{input: input, output: output}}, nil
	}

	files, err := Discover(input, suffix)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", input, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoMediaFiles, input)
	}

	resolver := naming.NewCollisionResolver()
	resolver.Reserve(files...)
	jobs := make([]job, 0, len(files))
	for _, f := range files {
		out := naming.BatchOutputPath(f, input, output, suffix)
		jobs = append(jobs, job{input: f, output: resolver.Resolve(f, out)})
	}
	return jobs, nil
}

// processJob handles one file: validate → probe → plan → execute.
func (r *Runner) processJob(ctx context.Context, j job, opts planner.Options, stats *RunStats) {
	cfg := r.Config
	log := r.Log.With("job", uuid.NewString()[:8])
	basename := filepath.Base(j.input)
	if stats.Total > 1 {
		log.Info("[%d/%d] %s", stats.Current, stats.Total, basename)
	} else {
		log.Info("Processing %s", basename)
	}

	// --- Validate ---
	fi, err := os.Stat(j.input)
	if err != nil {
		log.Error("File not found: %s", j.input)
		stats.Failed++
		return
	}
	if err := naming.CheckDistinct(j.input, j.output); err != nil {
		log.Error("%v", err)
		stats.Failed++
		return
	}

	// --- Probe ---
	info, err := r.Prober.Probe(ctx, j.input)
	if err != nil {
		log.Error("Cannot probe file: %v", err)
		stats.Failed++
		return
	}
	if !info.HasVideo() {
		log.Warn("No video stream found, skipping")
		stats.Skipped++
		return
	}
	audio := "no audio"
	if info.HasAudio {
		audio = "audio " + info.AudioCodec
	}
	log.Info("  Source: %s | %s | %s | %s", info.Resolution(), display.FormatClock(info.Duration),
		display.FormatFrameRate(info.FrameRate), audio)

	// --- Plan ---
	plan := planner.BuildPlan(opts, info, j.input, j.output, r.LUTs)
	for _, note := range plan.Notes {
		log.Warn("  %s", note)
	}
	args := ffmpeg.Build(plan.Command)
	cmdLine := ffmpeg.CommandLine(cfg.FFmpegBinary, args)
	log.Debug("  Command: %s", cmdLine)

	// --- Skip-existing check ---
	if !opts.Overwrite {
		if _, err := os.Stat(j.output); err == nil {
			log.Warn("Skip (exists): %s", j.output)
			stats.Skipped++
			return
		}
	}

	log.Info("  -> %s", j.output)

	// --- Dry-run ---
	if cfg.DryRun {
		fmt.Fprintln(r.stdout(), cmdLine)
		log.Success("[DRY] Would process %s", basename)
		stats.Processed++
		return
	}

	// --- Create output directory ---
	if err := os.MkdirAll(filepath.Dir(j.output), 0o755); err != nil {
		log.Error("Cannot create output directory: %v", err)
		stats.Failed++
		return
	}

	// --- Execute ---
	jobCtx := ctx
	if d := cfg.Timeout(); d > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	before := statFile(j.output)
	prog := r.progress(basename)
	res, err := r.execute()(jobCtx, cfg.FFmpegBinary, args, func(s ffmpeg.Sample) {
		prog.Update(s.Percent)
	})
	if err != nil {
		prog.Abort()
		r.logFailure(ctx, jobCtx, log, err)
		if statFile(j.output).differs(before) {
			if rmErr := os.Remove(j.output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warn("Could not remove partial output: %v", rmErr)
			}
		}
		stats.Failed++
		return
	}
	prog.Finish()

	// --- Update stats ---
	inSize := fi.Size()
	var outSize int64
	if outInfo, err := os.Stat(j.output); err == nil {
		outSize = outInfo.Size()
	}
	stats.TotalInputBytes += inSize
	stats.TotalOutputBytes += outSize
	stats.Processed++

	log.Success("Done in %s (%s -> %s)", display.FormatElapsed(res.Elapsed),
		display.FormatBytes(inSize), display.FormatBytes(outSize))
}

// logFailure reports why a run failed, with the tail of ffmpeg's output and
// a hint when the failure is recognizable.
func (r *Runner) logFailure(ctx, jobCtx context.Context, log *logging.Logger, err error) {
	var (
		startErr  *ffmpeg.StartError
		exitErr   *ffmpeg.ExitError
		signalErr *ffmpeg.SignalError
	)
	switch {
	case errors.As(err, &startErr):
		log.Error("Cannot start ffmpeg: %v", startErr.Err)
	case errors.As(err, &signalErr):
		switch {
		case ctx.Err() != nil:
			log.Warn("Interrupted")
		case errors.Is(jobCtx.Err(), context.DeadlineExceeded):
			log.Error("Timed out after %s", r.Config.Timeout())
		default:
			log.Error("ffmpeg was killed (%s)", signalErr.Signal)
			logTranscript(log, signalErr.Tail(transcriptTail))
		}
	case errors.As(err, &exitErr):
		log.Error("ffmpeg failed with status %d", exitErr.Code)
		logTranscript(log, exitErr.Tail(transcriptTail))
		if hint := ffmpeg.Diagnose(exitErr.Transcript); hint != "" {
			log.Info("Hint: %s", hint)
		}
	default:
		log.Error("ffmpeg failed: %v", err)
	}
}

// fileStamp is what a failed run compares to decide whether it wrote the
// output. A file it never touched is left in place.
type fileStamp struct {
	exists  bool
	size    int64
	modTime time.Time
}

func statFile(path string) fileStamp {
	fi, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, size: fi.Size(), modTime: fi.ModTime()}
}

func (s fileStamp) differs(prev fileStamp) bool {
	if !s.exists {
		return false
	}
	return !prev.exists || s.size != prev.size || !s.modTime.Equal(prev.modTime)
}

func logTranscript(log *logging.Logger, lines []string) {
	if len(lines) == 0 {
		return
	}
	log.Error("Last ffmpeg output:")
	for _, l := range lines {
		log.Error("  %s", l)
	}
}

func (r *Runner) execute() ExecuteFunc {
	if r.Execute != nil {
		return r.Execute
	}
	return ffmpeg.Execute
}

func (r *Runner) progress(description string) ProgressSink {
	if r.Progress != nil {
		return r.Progress(description)
	}
	return display.NewProgress(os.Stderr, description, term.IsTerminal(os.Stderr), term.Enabled())
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

// --- Logging helpers ---

func (r *Runner) logHeader(opts planner.Options) {
	log := r.Log
	log.Info("Speed: %gx | Codec: %s | CRF: %d", opts.Speed, opts.Codec, opts.Quality)
	if opts.Bitrate > 0 {
		log.Info("Bitrate: %d Mbps", opts.Bitrate)
	}
	switch {
	case opts.LUTPath != "":
		log.Info("LUT: %s", opts.LUTPath)
	case opts.Profile != config.ProfileStandard:
		log.Info("Profile: %s", opts.Profile)
	}
	if opts.HWAccel {
		log.Info("Hardware acceleration: on")
	}
	if r.Config.DryRun {
		log.Info("Dry run: commands are printed, nothing is encoded")
	}
}

func (r *Runner) logSummary(stats *RunStats) {
	log := r.Log
	log.Info("==============================")
	log.Info("Done: %d processed, %d skipped, %d failed", stats.Processed, stats.Skipped, stats.Failed)
	log.Info("  Total files: %d", stats.Current)

	if r.Config.DryRun || stats.TotalInputBytes == 0 {
		return
	}
	log.Info("  Size: %s -> %s (%s)",
		display.FormatBytes(stats.TotalInputBytes),
		display.FormatBytes(stats.TotalOutputBytes),
		display.FormatBytesWithSign(stats.SizeDelta()))
}
