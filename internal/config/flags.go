package config

// This file binds the global CLI flags. Values only override the loaded
// config when the user actually passed the flag, so file settings hold
// unless set on the command line.

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagValues captures the global flags before they are applied to a Config.
type FlagValues struct {
	ConfigPath string
	FFmpeg     string
	FFprobe    string
	LUTDir     string
	LogLevel   string
	LogFormat  string
	LogFile    string
	Color      ColorMode
	Timeout    time.Duration
	Verbose    bool
	DryRun     bool

	fs *pflag.FlagSet
}

// BindFlags registers the global flags on fs and returns their holder.
func BindFlags(fs *pflag.FlagSet) *FlagValues {
	v := &FlagValues{Color: ColorAuto, fs: fs}
	fs.StringVar(&v.ConfigPath, "config", "", "Config file (default ~/.config/speedy/config.toml or ./speedy.toml)")
	fs.StringVar(&v.FFmpeg, "ffmpeg", "", "ffmpeg binary")
	fs.StringVar(&v.FFprobe, "ffprobe", "", "ffprobe binary")
	fs.StringVar(&v.LUTDir, "lut-dir", "", "Directory holding camera profile LUTs")
	fs.StringVar(&v.LogLevel, "log-level", "", "Log level: debug | info | warn | error")
	fs.StringVar(&v.LogFormat, "log-format", "", "Log file format: console | json")
	fs.StringVar(&v.LogFile, "log", "", "Append logs to file")
	fs.Var(&colorModeValue{&v.Color}, "color", "Colored output: auto | always | never")
	fs.DurationVar(&v.Timeout, "timeout", 0, "Kill a job that runs longer than this (0 disables)")
	fs.BoolVarP(&v.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVar(&v.DryRun, "dry-run", false, "Print the ffmpeg command without running it")
	return v
}

// Apply copies every flag the user set onto cfg and re-validates it.
func (v *FlagValues) Apply(cfg *Config) error {
	changed := func(name string) bool {
		return v.fs != nil && v.fs.Changed(name)
	}

	if changed("ffmpeg") {
		cfg.FFmpegBinary = v.FFmpeg
	}
	if changed("ffprobe") {
		cfg.FFprobeBinary = v.FFprobe
	}
	if changed("lut-dir") {
		cfg.LUTDir = v.LUTDir
	}
	if changed("log-level") {
		cfg.Logging.Level = v.LogLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = v.LogFormat
	}
	if changed("log") {
		cfg.Logging.File = v.LogFile
	}
	if changed("color") {
		cfg.Logging.Color = v.Color
	}
	if changed("timeout") {
		cfg.TimeoutSeconds = int(v.Timeout / time.Second)
	}
	cfg.Verbose = v.Verbose
	cfg.DryRun = v.DryRun
	if cfg.Verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.normalize(); err != nil {
		return err
	}
	return cfg.Validate()
}

// pflag.Value adapter so ColorMode can be used with fs.Var.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}
