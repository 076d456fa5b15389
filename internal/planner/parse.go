package planner

import (
	"strconv"
	"strings"
)

// ParseColorBalance parses "sr:sg:sb,mr:mg:mb,hr:hg:hb". Anything other than
// exactly three triples of three numbers reports ok=false.
func ParseColorBalance(s string) (ColorBalance, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return ColorBalance{}, false
	}

	var triples [3][3]float64
	for i, part := range parts {
		comps := strings.Split(part, ":")
		if len(comps) != 3 {
			return ColorBalance{}, false
		}
		for j, c := range comps {
			v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
			if err != nil {
				return ColorBalance{}, false
			}
			triples[i][j] = v
		}
	}
	return ColorBalance{Shadows: triples[0], Midtones: triples[1], Highlights: triples[2]}, true
}

// ParseScale parses "WxH" or "W:H". The width must be an integer; an
// unparsable height becomes -1 (keep aspect ratio).
func ParseScale(s string) (Scale, bool) {
	s = strings.TrimSpace(s)
	w, h, found := strings.Cut(s, "x")
	if !found {
		w, h, found = strings.Cut(s, ":")
	}
	if !found {
		return Scale{}, false
	}

	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return Scale{}, false
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		height = -1
	}
	return Scale{Width: width, Height: height}, true
}
