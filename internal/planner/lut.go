package planner

import (
	"os"
	"path/filepath"

	"github.com/backmassage/speedy/internal/config"
)

// profileLUTs maps camera log profiles to their Rec.709 conversion LUT file
// names. Profiles without an entry get no LUT.
var profileLUTs = map[config.ColorProfile]string{
	config.ProfileDLog: "dji_dlog_to_rec709.cube",
	config.ProfileSLog: "sony_slog_to_rec709.cube",
	config.ProfileCLog: "canon_clog_to_rec709.cube",
}

// ProfileLUTName returns the LUT file name for p, or "" when the profile has
// no conversion LUT.
func ProfileLUTName(p config.ColorProfile) string {
	return profileLUTs[p]
}

// DirLUTs resolves profile LUTs from a directory on disk.
type DirLUTs struct {
	Dir string
}

// ProfileLUT returns the LUT path for p if the file exists.
func (d DirLUTs) ProfileLUT(p config.ColorProfile) (string, bool) {
	name := ProfileLUTName(p)
	if name == "" {
		return "", false
	}
	path := filepath.Join(d.Dir, name)
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return "", false
	}
	return path, true
}
