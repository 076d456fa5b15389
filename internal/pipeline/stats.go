package pipeline

// RunStats tracks aggregate counters and byte totals across a run.
type RunStats struct {
	Total            int
	Current          int
	Processed        int
	Skipped          int
	Failed           int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// SizeDelta returns output bytes minus input bytes. Speed-ups usually
// shrink files, so it is typically negative.
func (s *RunStats) SizeDelta() int64 {
	return s.TotalOutputBytes - s.TotalInputBytes
}
