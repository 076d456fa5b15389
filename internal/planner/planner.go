package planner

import (
	"fmt"
	"runtime"

	"github.com/backmassage/speedy/internal/probe"
)

// Plan is the fully resolved job: the filters, the command to run, and any
// notes worth surfacing to the user.
type Plan struct {
	Filters FilterSpec
	Command CommandSpec
	Notes   []string
}

// BuildPlan combines options, probe data, and the input/output paths into a
// Plan. It never fails: options were validated by OptionsBuilder.Build and
// unknown probe fields read as zero.
//
// Flow:
//  1. Compose filters (speed, LUT, grading, geometry)
//  2. Resolve codec, quality, bitrate, threads, hardware acceleration
//  3. Record notes for dropped options and unavailable profile LUTs
func BuildPlan(o Options, info *probe.MediaInfo, input, output string, luts LUTResolver) Plan {
	plan := Plan{
		Filters: BuildFilters(o, info, luts),
	}

	// --- Command ---
	plan.Command = CommandSpec{
		Overwrite:        o.Overwrite,
		Input:            input,
		Output:           output,
		Filters:          plan.Filters,
		VideoCodec:       o.Codec,
		AudioCodec:       o.AudioCodec,
		Quality:          o.Quality,
		Bitrate:          o.Bitrate,
		EncoderPreset:    o.EncoderPreset,
		Threads:          o.Threads,
		PreserveMetadata: o.PreserveMetadata,
		ExtraArgs:        append([]string(nil), o.ExtraArgs...),
	}
	if o.HWAccel {
		plan.Command.HWAccel = HWAccelMethod(runtime.GOOS)
	}

	// --- Notes ---
	for _, d := range o.Dropped {
		plan.Notes = append(plan.Notes, "ignored malformed "+d)
	}
	if o.LUTPath == "" {
		if name := ProfileLUTName(o.Profile); name != "" {
			if luts == nil {
				plan.Notes = append(plan.Notes, fmt.Sprintf("no LUT directory configured for %s profile", o.Profile))
			} else if _, ok := luts.ProfileLUT(o.Profile); !ok {
				plan.Notes = append(plan.Notes, fmt.Sprintf("%s profile LUT %s not found; colors left ungraded", o.Profile, name))
			}
		}
	}
	if info != nil && !o.AutoRotate && info.Rotation != 0 && rotateStage(&o, info, nil) == "" {
		plan.Notes = append(plan.Notes, fmt.Sprintf("rotation %d° is not a quarter turn; left as is", info.Rotation))
	}
	return plan
}
