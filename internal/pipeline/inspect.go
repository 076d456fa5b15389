package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/backmassage/speedy/internal/display"
	"github.com/backmassage/speedy/internal/probe"
)

// InspectResult is one probed file; Err is set when probing failed.
type InspectResult struct {
	Path string
	Info *probe.MediaInfo
	Err  error
}

// Inspect probes every path, expanding directories into the media files
// they contain. Probe failures are reported per file; only context
// cancellation and unreadable directories abort.
func Inspect(ctx context.Context, p probe.Prober, paths []string) ([]InspectResult, error) {
	var files []string
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			files = append(files, path)
			continue
		}
		if !fi.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := Discover(path, "")
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", path, err)
		}
		files = append(files, found...)
	}

	results := make([]InspectResult, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		info, err := p.Probe(ctx, f)
		results = append(results, InspectResult{Path: f, Info: info, Err: err})
	}
	return results, nil
}

// InspectTable renders results as a media info table.
func InspectTable(results []InspectResult) string {
	headers := []string{"File", "Duration", "Resolution", "FPS", "Rotation", "Video", "Audio", "Bitrate", "Size"}
	aligns := []display.Align{
		display.AlignLeft, display.AlignRight, display.AlignRight, display.AlignRight,
		display.AlignRight, display.AlignLeft, display.AlignLeft, display.AlignRight, display.AlignRight,
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		name := filepath.Base(r.Path)
		if r.Err != nil || r.Info == nil {
			msg := "probe failed"
			if r.Err != nil {
				msg = "error: " + r.Err.Error()
			}
			rows = append(rows, []string{name, "", "", "", "", msg})
			continue
		}
		info := r.Info
		audio := "none"
		if info.HasAudio {
			audio = info.AudioCodec
		}
		video := info.VideoCodec
		if !info.HasVideo() {
			video = "none"
		}
		rows = append(rows, []string{
			name,
			display.FormatClock(info.Duration),
			info.Resolution(),
			display.FormatFrameRate(info.FrameRate),
			strconv.Itoa(info.Rotation) + "°",
			video,
			audio,
			display.FormatBitrate(info.BitRate),
			display.FormatBytes(info.Size),
		})
	}
	return display.RenderTable(headers, rows, aligns)
}
