package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/backmassage/speedy/internal/planner"
)

// Build constructs the ffmpeg argument slice for spec, without the binary
// name. It is pure: identical specs always produce identical slices.
func Build(spec planner.CommandSpec) []string {
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin")
	if spec.Overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	if spec.HWAccel != "" {
		args = append(args, "-hwaccel", spec.HWAccel)
	}

	// --- Input ---
	args = append(args, "-i", spec.Input)

	// --- Filter graph and stream maps ---
	if !spec.Filters.Empty() {
		args = append(args, "-filter_complex", spec.Filters.Graph())
		if len(spec.Filters.Video) > 0 {
			args = append(args, "-map", "[v]")
		} else {
			args = append(args, "-map", "0:v?")
		}
		if len(spec.Filters.Audio) > 0 {
			args = append(args, "-map", "[a]")
		} else {
			args = append(args, "-map", "0:a?")
		}
	}

	// --- Codecs and rate control ---
	args = append(args, "-c:v", spec.VideoCodec)
	if spec.AudioCodec != "" {
		args = append(args, "-c:a", spec.AudioCodec)
	}
	if spec.Quality >= 0 {
		args = append(args, "-crf", strconv.Itoa(spec.Quality))
	}
	if spec.Bitrate > 0 {
		args = append(args, "-b:v", strconv.Itoa(spec.Bitrate)+"M")
	}
	if spec.EncoderPreset != "" {
		args = append(args, "-preset", spec.EncoderPreset)
	}
	if spec.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(spec.Threads))
	}

	// --- Metadata ---
	if spec.PreserveMetadata {
		args = append(args, "-map_metadata", "0", "-movflags", "use_metadata_tags")
	}

	// --- Passthrough and output ---
	args = append(args, spec.ExtraArgs...)
	args = append(args, spec.Output)
	return args
}

// CommandLine renders binary and args as a single shell-pasteable line for
// dry runs and debug logging.
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(binary))
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()[]*?!#~{}") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
