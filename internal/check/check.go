// Package check provides system diagnostics (speedy check) and pre-job
// dependency validation (CheckDeps) for ffmpeg, ffprobe, encoders, filters,
// and LUT files.
package check

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/planner"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound    = errors.New("ffmpeg not found")
	ErrFfprobeNotFound   = errors.New("ffprobe not found")
	ErrEncoderTestFailed = errors.New("test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(string, ...any)
}

var reVersion = regexp.MustCompile(`ffmpeg version (\S+)`)

// goos is swapped in tests.
var goos = runtime.GOOS

// Filters every job needs, then filters only specific options need.
var (
	coreFilters     = []string{"setpts", "atempo"}
	optionalFilters = []string{
		"lut3d", "eq", "deshake", "transpose", "nlmeans", "unsharp",
		"vibrance", "curves", "hue", "colorbalance", "selectivecolor", "scale",
	}
)

// Encoders reported when present, in display order.
var knownEncoders = []string{"libx264", "libx265", "libvpx-vp9", "libaom-av1", "prores_ks", "aac"}

// RunCheck runs the interactive check flow and reports whether every
// required piece is usable. Missing optional filters only warn.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")
	ok := true

	ffmpegPath, err := exec.LookPath(cfg.FFmpegBinary)
	if err != nil {
		log.Error("ffmpeg not found (%s)", cfg.FFmpegBinary)
		return false
	}
	log.Success("ffmpeg %s: %s", FFmpegVersion(ctx, cfg.FFmpegBinary), ffmpegPath)

	if p, err := exec.LookPath(cfg.FFprobeBinary); err != nil {
		log.Error("ffprobe not found (%s)", cfg.FFprobeBinary)
		ok = false
	} else {
		log.Success("ffprobe: %s", p)
	}

	if !checkEncoders(ctx, cfg, log) {
		ok = false
	}
	if !checkFilters(ctx, cfg, log) {
		ok = false
	}
	checkHWAccel(ctx, cfg, log)
	checkLUTs(cfg, log)
	return ok
}

// FFmpegVersion returns the version token from `ffmpeg -version`, or
// "unknown" when it cannot be determined.
func FFmpegVersion(ctx context.Context, binary string) string {
	out, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return "unknown"
	}
	return parseVersion(string(out))
}

func parseVersion(out string) string {
	if m := reVersion.FindStringSubmatch(out); m != nil {
		return m[1]
	}
	return "unknown"
}

// checkEncoders lists known encoders and test-encodes with the configured one.
func checkEncoders(ctx context.Context, cfg *config.Config, log Logger) bool {
	out, err := exec.CommandContext(ctx, cfg.FFmpegBinary, "-hide_banner", "-encoders").Output()
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return true
	}
	available := parseEncoders(string(out))
	var found []string
	for _, name := range knownEncoders {
		if available[name] {
			found = append(found, name)
		}
	}
	log.Info("Encoders: %s", strings.Join(found, ", "))

	codec := planner.ResolveCodec(cfg.Codec)
	if !available[codec] {
		log.Error("Default encoder %s is not available", codec)
		return false
	}
	log.Info("Testing %s...", codec)
	if runSilent(ctx, cfg.FFmpegBinary, encodeTestArgs(codec)...) {
		log.Success("%s works", codec)
		return true
	}
	log.Error("%s test encode failed", codec)
	return false
}

// checkFilters reports missing filters: core ones are errors, the rest
// disable individual options.
func checkFilters(ctx context.Context, cfg *config.Config, log Logger) bool {
	out, err := exec.CommandContext(ctx, cfg.FFmpegBinary, "-hide_banner", "-filters").Output()
	if err != nil {
		log.Warn("Could not list filters: %v", err)
		return true
	}
	available := parseFilters(string(out))

	ok := true
	for _, f := range coreFilters {
		if !available[f] {
			log.Error("Required filter missing: %s", f)
			ok = false
		}
	}
	var missing []string
	for _, f := range optionalFilters {
		if !available[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		log.Warn("Filters unavailable (related options will fail): %s", strings.Join(missing, ", "))
	} else if ok {
		log.Success("All filters available")
	}
	return ok
}

// checkHWAccel reports whether this platform's acceleration method is built in.
func checkHWAccel(ctx context.Context, cfg *config.Config, log Logger) {
	method := planner.HWAccelMethod(goos)
	if method == "" {
		log.Info("Hardware acceleration: not supported on %s", goos)
		return
	}
	out, err := exec.CommandContext(ctx, cfg.FFmpegBinary, "-hide_banner", "-hwaccels").Output()
	if err != nil {
		log.Warn("Could not list hardware accelerators: %v", err)
		return
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == method {
			log.Success("Hardware acceleration: %s", method)
			return
		}
	}
	log.Warn("Hardware acceleration method %s not built into ffmpeg", method)
}

// checkLUTs reports which camera profile LUTs are installed.
func checkLUTs(cfg *config.Config, log Logger) {
	if cfg.LUTDir == "" {
		log.Info("LUT directory: not configured")
		return
	}
	if st, err := os.Stat(cfg.LUTDir); err != nil || !st.IsDir() {
		log.Warn("LUT directory missing: %s", cfg.LUTDir)
		return
	}
	luts := planner.DirLUTs{Dir: cfg.LUTDir}
	for _, p := range config.ColorProfiles() {
		name := planner.ProfileLUTName(p)
		if name == "" {
			continue
		}
		if _, ok := luts.ProfileLUT(p); ok {
			log.Success("LUT %s: %s", p, name)
		} else {
			log.Warn("LUT %s: %s not found in %s", p, name, cfg.LUTDir)
		}
	}
}

// CheckDeps is the pre-job validation: it verifies that ffmpeg and ffprobe
// resolve and, when encoder is non-empty, that a short test encode with it
// succeeds. Returns a sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config, encoder string) error {
	if _, err := exec.LookPath(cfg.FFmpegBinary); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.FFmpegBinary)
	}
	if _, err := exec.LookPath(cfg.FFprobeBinary); err != nil {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, cfg.FFprobeBinary)
	}
	if encoder == "" {
		return nil
	}
	if !runSilent(ctx, cfg.FFmpegBinary, encodeTestArgs(encoder)...) {
		return fmt.Errorf("%w: %s", ErrEncoderTestFailed, encoder)
	}
	return nil
}

// --- internal helpers ---

// parseEncoders reads `ffmpeg -encoders`: names follow the " ------" rule.
func parseEncoders(out string) map[string]bool {
	names := make(map[string]bool)
	started := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if !started {
			started = strings.HasPrefix(fields[0], "---")
			continue
		}
		if len(fields) >= 2 {
			names[fields[1]] = true
		}
	}
	return names
}

// parseFilters reads `ffmpeg -filters`: "<flags> <name> <in>-><out> <desc>".
func parseFilters(out string) map[string]bool {
	names := make(map[string]bool)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 3 && strings.Contains(fields[2], "->") {
			names[fields[1]] = true
		}
	}
	return names
}

// encodeTestArgs returns the ffmpeg arguments for a minimal test encode.
func encodeTestArgs(encoder string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", encoder,
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(ctx context.Context, name string, args ...string) bool {
	return exec.CommandContext(ctx, name, args...).Run() == nil
}
