// Package planner turns processing intents into an ffmpeg job description.
//
// Options are collected through an [OptionsBuilder] and validated once.
// [BuildFilters] composes the per-track filter lists in a fixed order that
// does not depend on how the options were supplied, and [BuildPlan] wraps
// them with codec, quality, and container settings into a [CommandSpec]
// for the ffmpeg package.
//
// Files:
//   - options.go: Options, OptionsBuilder
//   - filter.go: FilterSpec and the ordered stage table
//   - tempo.go: audio tempo chaining
//   - parse.go: color balance and scale strings
//   - lut.go: camera profile LUT lookup
//   - codec.go: codec aliases and hardware acceleration
//   - presets.go: the preset catalog
//   - planner.go: CommandSpec, Plan, BuildPlan
package planner
