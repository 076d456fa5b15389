package planner

import "fmt"

// ffmpeg's atempo filter only accepts factors in this range.
const (
	minTempo = 0.5
	maxTempo = 2.0
)

// TempoChain splits a speed multiplier into atempo factors that each stay
// within [0.5, 2.0] and whose product is m. m must be positive.
func TempoChain(m float64) []float64 {
	if m >= minTempo && m <= maxTempo {
		return []float64{m}
	}

	var stages []float64
	current := m
	for current > maxTempo {
		stages = append(stages, maxTempo)
		current /= maxTempo
	}
	if current > 1.0 {
		stages = append(stages, current)
	}
	for current < minTempo {
		stages = append(stages, minTempo)
		current *= 2.0
	}
	if current < 1.0 {
		stages = append(stages, current)
	}
	return stages
}

// tempoFilters renders TempoChain(m) as atempo stages. Whole halving or
// doubling stages of a chain are written as atempo=2.0 / atempo=0.5.
func tempoFilters(m float64) []string {
	chain := TempoChain(m)
	out := make([]string, 0, len(chain))
	for _, f := range chain {
		switch {
		case len(chain) > 1 && f == maxTempo:
			out = append(out, "atempo=2.0")
		case len(chain) > 1 && f == minTempo:
			out = append(out, "atempo=0.5")
		default:
			out = append(out, fmt.Sprintf("atempo=%.4f", f))
		}
	}
	return out
}
