package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSuffix is appended to the input stem when no output is given.
const DefaultSuffix = "_speedy"

// ErrSameAsInput is returned when an output path would overwrite its input.
var ErrSameAsInput = errors.New("output path is the input file")

// OutputPath returns <dir>/<stem><suffix><ext> next to input. An empty
// suffix falls back to DefaultSuffix so the input is never targeted.
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+suffix+ext)
}

// BatchOutputPath maps a file found under inputRoot into outputDir,
// mirroring its relative directory:
//
//	<outputDir>/<rel dir>/<stem><suffix><ext>
//
// An empty outputDir places the result next to the input.
func BatchOutputPath(input, inputRoot, outputDir, suffix string) string {
	if outputDir == "" {
		return OutputPath(input, suffix)
	}
	name := filepath.Base(OutputPath(input, suffix))
	rel, err := filepath.Rel(inputRoot, filepath.Dir(input))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(outputDir, rel, name)
}

// HasSuffix reports whether path's stem already ends in suffix, i.e. it
// looks like a previous run's output.
func HasSuffix(path, suffix string) bool {
	if suffix == "" {
		return false
	}
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), suffix)
}

// CheckDistinct fails with ErrSameAsInput when output names the same file
// as input, either lexically or through a link.
func CheckDistinct(input, output string) error {
	inAbs, err1 := filepath.Abs(input)
	outAbs, err2 := filepath.Abs(output)
	if err1 == nil && err2 == nil && inAbs == outAbs {
		return fmt.Errorf("%w: %s", ErrSameAsInput, output)
	}
	inInfo, err := os.Stat(input)
	if err != nil {
		return nil
	}
	outInfo, err := os.Stat(output)
	if err != nil {
		return nil
	}
	if os.SameFile(inInfo, outInfo) {
		return fmt.Errorf("%w: %s", ErrSameAsInput, output)
	}
	return nil
}
