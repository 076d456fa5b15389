// Package probe inspects media files with ffprobe and reduces the JSON
// report to the handful of properties the filter planner needs: duration,
// dimensions, frame rate, display rotation, and whether audio is present.
//
// Missing or unparsable fields never fail a probe; they read as zero so the
// planner can treat them as "unknown".
package probe
