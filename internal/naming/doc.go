// Package naming derives output paths for processed videos and keeps them
// distinct within a run.
//
// Single-file jobs default to <stem>_speedy<ext> beside the input. Batch
// jobs mirror the input tree under the output directory. CollisionResolver
// numbers duplicates and never hands out a reserved input path.
package naming
