package finder

import "github.com/lintang-b-s/Stoplocator/pkg/geo"

// pathLocations returns the candidate location of every path node, nil for missing nodes.
func pathLocations(path []*Node) []*geo.Coordinate {
	locs := make([]*geo.Coordinate, len(path))
	for i, n := range path {
		if n.IsMissing() {
			continue
		}
		loc := n.cand.Loc
		locs[i] = &loc
	}
	return locs
}

// Interpolate fills every run of k nil locations bounded by resolved A and B
// with A + j/(k+1)*(B-A), j = 1..k. Runs at the start or the end stay nil.
// locs is not modified; the second result flags the interpolated indices.
func Interpolate(locs []*geo.Coordinate) ([]*geo.Coordinate, []bool) {
	out := make([]*geo.Coordinate, len(locs))
	copy(out, locs)
	interpolated := make([]bool, len(locs))

	prev := -1
	for i, loc := range locs {
		if loc == nil {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			a, b := *locs[prev], *loc
			k := i - prev - 1
			for j := 1; j <= k; j++ {
				c := a.Lerp(b, float64(j)/float64(k+1))
				out[prev+j] = &c
				interpolated[prev+j] = true
			}
		}
		prev = i
	}
	return out, interpolated
}
