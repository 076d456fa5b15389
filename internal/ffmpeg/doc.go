// Package ffmpeg assembles ffmpeg argument lists, runs the engine, and turns
// its diagnostic stream into progress updates.
//
// Build is pure and deterministic. Execute spawns the process, hands stderr
// to Monitor, and classifies the outcome as *StartError, *ExitError, or
// *SignalError. Monitor splits on both '\n' and '\r' because ffmpeg redraws
// its stats line in place.
package ffmpeg
