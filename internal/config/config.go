// Package config holds runtime configuration: defaults, the optional TOML
// config file, CLI flag overrides, and validation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ColorProfile is the camera log profile the footage was recorded in.
type ColorProfile string

const (
	ProfileStandard ColorProfile = "standard" // Rec.709, no conversion (default).
	ProfileDLog     ColorProfile = "dlog"     // DJI D-Log.
	ProfileSLog     ColorProfile = "slog"     // Sony S-Log.
	ProfileCLog     ColorProfile = "clog"     // Canon C-Log.
	ProfileVLog     ColorProfile = "vlog"     // Panasonic V-Log.
	ProfileFLog     ColorProfile = "flog"     // Fujifilm F-Log.
)

// ColorProfiles lists every profile in display order.
func ColorProfiles() []ColorProfile {
	return []ColorProfile{ProfileStandard, ProfileDLog, ProfileSLog, ProfileCLog, ProfileVLog, ProfileFLog}
}

// ParseColorProfile maps user input to a ColorProfile. Matching is
// case-insensitive and accepts the hyphenated spellings ("d-log").
func ParseColorProfile(s string) (ColorProfile, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "", "standard", "rec709":
		return ProfileStandard, nil
	case "dlog":
		return ProfileDLog, nil
	case "slog":
		return ProfileSLog, nil
	case "clog":
		return ProfileCLog, nil
	case "vlog":
		return ProfileVLog, nil
	case "flog":
		return ProfileFLog, nil
	}
	return "", fmt.Errorf("invalid color profile %q (use standard, dlog, slog, clog, vlog or flog)", s)
}

// Logging groups log sink settings.
type Logging struct {
	Level  string    `toml:"level"`  // Default: "info". One of debug, info, warn, error.
	Format string    `toml:"format"` // File sink format: "console" (default) or "json".
	File   string    `toml:"file"`   // Optional log file path; appended to.
	Color  ColorMode `toml:"color"`  // Default: "auto".
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by the TOML file in [Load], and then by explicitly set CLI flags
// (see [FlagValues.Apply]).
type Config struct {
	// External tools.
	FFmpegBinary  string `toml:"ffmpeg_binary"`  // Default: "ffmpeg".
	FFprobeBinary string `toml:"ffprobe_binary"` // Default: "ffprobe".
	LUTDir        string `toml:"lut_dir"`        // Profile LUT directory. Default: "luts".

	// Encoding defaults; presets and job flags override these.
	Codec            string `toml:"codec"`             // Default: "h264".
	Quality          int    `toml:"quality"`           // CRF, default 23.
	EncoderPreset    string `toml:"encoder_preset"`    // Encoder speed preset, empty for encoder default.
	Threads          int    `toml:"threads"`           // 0 lets ffmpeg decide.
	HWAccel          bool   `toml:"hw_accel"`          // Request platform decode acceleration.
	AutoRotate       bool   `toml:"auto_rotate"`       // Default: true. Leave rotation to ffmpeg.
	PreserveMetadata bool   `toml:"preserve_metadata"` // Default: true.
	Overwrite        bool   `toml:"overwrite"`         // Default: true.

	// Output naming.
	OutputSuffix string `toml:"output_suffix"` // Default: "_speedy".

	// TimeoutSeconds kills a job that runs longer than this. 0 disables it.
	TimeoutSeconds int `toml:"timeout_seconds"`

	Logging Logging `toml:"logging"`

	// Runtime only.
	DryRun  bool `toml:"-"`
	Verbose bool `toml:"-"`
}

// DefaultConfig returns a Config with built-in defaults. Used as the base
// before the config file and CLI overrides are applied.
func DefaultConfig() Config {
	return Config{
		FFmpegBinary:     "ffmpeg",
		FFprobeBinary:    "ffprobe",
		LUTDir:           "luts",
		Codec:            "h264",
		Quality:          23,
		AutoRotate:       true,
		PreserveMetadata: true,
		Overwrite:        true,
		OutputSuffix:     "_speedy",
		Logging: Logging{
			Level:  "info",
			Format: "console",
			Color:  ColorAuto,
		},
	}
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/speedy/config.toml")
}

// Load reads the config file at path (or the default locations when path is
// empty), overlays it on the defaults, normalizes, and validates. A missing
// file is not an error; exists reports whether one was read.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	c := DefaultConfig()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&c); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := c.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := c.Validate(); err != nil {
		return nil, "", false, err
	}
	return &c, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("speedy.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// normalize trims and lowercases enum-like fields and expands paths.
func (c *Config) normalize() error {
	c.Codec = strings.ToLower(strings.TrimSpace(c.Codec))
	c.EncoderPreset = strings.TrimSpace(c.EncoderPreset)

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Color = ColorMode(strings.ToLower(strings.TrimSpace(string(c.Logging.Color))))
	if c.Logging.Color == "" {
		c.Logging.Color = ColorAuto
	}

	if c.Logging.File != "" {
		p, err := expandPath(c.Logging.File)
		if err != nil {
			return err
		}
		c.Logging.File = p
	}
	if c.LUTDir != "" && strings.HasPrefix(c.LUTDir, "~") {
		p, err := expandPath(c.LUTDir)
		if err != nil {
			return err
		}
		c.LUTDir = p
	}
	return nil
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.FFmpegBinary) == "" {
		return errors.New("ffmpeg_binary must not be empty")
	}
	if strings.TrimSpace(c.FFprobeBinary) == "" {
		return errors.New("ffprobe_binary must not be empty")
	}
	if c.Codec == "" {
		return errors.New("codec must not be empty")
	}
	if c.Quality < 0 || c.Quality > 51 {
		return fmt.Errorf("quality must be between 0 and 51 (got %d)", c.Quality)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative (got %d)", c.Threads)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative (got %d)", c.TimeoutSeconds)
	}

	switch c.Logging.Color {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level %q (use debug, info, warn or error)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "console", "json":
		// valid
	default:
		return fmt.Errorf("invalid log format %q (use 'console' or 'json')", c.Logging.Format)
	}
	return nil
}

// Timeout returns the per-job watchdog duration, 0 when disabled.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
