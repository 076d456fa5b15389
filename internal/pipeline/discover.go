package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/speedy/internal/naming"
)

// Supported video file extensions (lowercase, with leading dot).
var mediaExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".mkv":  true,
	".avi":  true,
	".mts":  true,
	".m2ts": true,
	".ts":   true,
	".webm": true,
	".wmv":  true,
	".flv":  true,
	".mpg":  true,
	".mpeg": true,
	".3gp":  true,
	".insv": true,
	".lrv":  true,
}

// IsMedia reports whether path has a supported video extension.
func IsMedia(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover walks inputDir, collects files with media extensions, prunes
// hidden directories, skips files that already carry outputSuffix (earlier
// runs' outputs), and returns the paths sorted lexicographically for
// deterministic processing order.
func Discover(inputDir, outputSuffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if IsMedia(path) && !naming.HasSuffix(path, outputSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
