package planner

import "strings"

// codecAliases maps short codec names to ffmpeg encoders.
var codecAliases = map[string]string{
	"h264":   "libx264",
	"h265":   "libx265",
	"hevc":   "libx265",
	"vp9":    "libvpx-vp9",
	"av1":    "libaom-av1",
	"prores": "prores_ks",
}

// ResolveCodec maps a short alias to its ffmpeg encoder. Unknown names are
// passed through unchanged so any encoder ffmpeg knows can be used.
func ResolveCodec(name string) string {
	name = strings.TrimSpace(name)
	if enc, ok := codecAliases[strings.ToLower(name)]; ok {
		return enc
	}
	return name
}

// HWAccelMethod returns the -hwaccel method for an operating system
// (runtime.GOOS values), or "" when none is known.
func HWAccelMethod(goos string) string {
	switch goos {
	case "linux":
		return "vaapi"
	case "darwin":
		return "videotoolbox"
	case "windows":
		return "dxva2"
	}
	return ""
}
