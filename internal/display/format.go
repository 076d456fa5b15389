package display

import (
	"fmt"
	"math"
	"time"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GiB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}

// FormatBitrate returns a short label for a bitrate in bits per second.
func FormatBitrate(bps int64) string {
	switch {
	case bps <= 0:
		return "unknown"
	case bps < 1_000_000:
		return fmt.Sprintf("%d kbps", bps/1000)
	default:
		return fmt.Sprintf("%.1f Mbps", float64(bps)/1_000_000)
	}
}

// FormatClock renders seconds as H:MM:SS, or M:SS under an hour.
func FormatClock(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "0:00"
	}
	total := int64(math.Round(seconds))
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatElapsed rounds d to whole seconds ("1m5s").
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

// FormatFrameRate renders fps with up to two decimals ("29.97 fps").
func FormatFrameRate(fps float64) string {
	if fps <= 0 {
		return "unknown"
	}
	if fps == math.Trunc(fps) {
		return fmt.Sprintf("%d fps", int(fps))
	}
	return fmt.Sprintf("%.2f fps", fps)
}
