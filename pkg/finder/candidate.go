package finder

import (
	"fmt"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/osmparser"
)

// StationKind orders candidates by specificity, lower is preferred.
type StationKind int

const (
	Station StationKind = iota
	Platform
	StopPosition
	Dummy
)

func (k StationKind) String() string {
	switch k {
	case Station:
		return "Station"
	case Platform:
		return "Platform"
	case StopPosition:
		return "StopPosition"
	default:
		return "Dummy"
	}
}

func kindFromRow(kind string) (StationKind, bool) {
	switch kind {
	case osmparser.KindStation:
		return Station, true
	case osmparser.KindPlatform:
		return Platform, true
	case osmparser.KindStopPosition:
		return StopPosition, true
	}
	return Dummy, false
}

// Candidate is one real world point that may be the location of a stop.
// Dataset candidates are shared and never bound; bind returns a bound copy.
type Candidate struct {
	ID    int64
	Kind  StationKind
	Names []string
	Loc   geo.Coordinate
	Tags  map[string]string

	normNames []string

	bound         bool
	matchedStop   string
	isPermutation bool
	nameDist      int
	nodeCost      float64
	fixed         bool
}

func (c *Candidate) Name() string {
	if len(c.Names) == 0 {
		return ""
	}
	return c.Names[0]
}

func (c *Candidate) MatchedStop() string {
	return c.matchedStop
}

func (c *Candidate) IsExactPermutation() bool {
	return c.isPermutation
}

// NameDistance is the distance between the best alternative name and the bound
// stop name, -1 for an unbound candidate.
func (c *Candidate) NameDistance() int {
	if !c.bound {
		return -1
	}
	return c.nameDist
}

func (c *Candidate) NodeCost() float64 {
	return c.nodeCost
}

// IsFixed reports whether the candidate is an already known stop location.
func (c *Candidate) IsFixed() bool {
	return c.fixed
}

func (c *Candidate) String() string {
	if !c.bound {
		return fmt.Sprintf("%s('%s', %s)", c.Kind, c.Name(), c.Loc)
	}
	return fmt.Sprintf("%s('%s', '%s', %s)", c.Kind, c.matchedStop, c.Name(), c.Loc)
}

// bind returns a copy of c attached to stopName. normStop is the normalized stop name.
func (c *Candidate) bind(stopName, normStop string, nodeCost float64) *Candidate {
	b := *c
	b.bound = true
	b.matchedStop = stopName
	b.nameDist = -1
	for _, name := range c.normNames {
		d, perm := normalizedDistance(name, normStop)
		if b.nameDist < 0 || d < b.nameDist {
			b.nameDist = d
			b.isPermutation = perm
		}
	}
	if b.nameDist < 0 {
		b.nameDist = EditDistance("", normStop)
	}
	b.nodeCost = nodeCost
	return &b
}

// newFixedCandidate wraps a known stop location as a zero cost station. Its id
// is -(index+1), so it never collides with an osm id or another fixed stop.
func newFixedCandidate(index int, stop StopInput, loc geo.Coordinate) *Candidate {
	return &Candidate{
		ID:            -int64(index + 1),
		Kind:          Station,
		Names:         []string{stop.Name},
		Loc:           loc,
		bound:         true,
		matchedStop:   stop.Name,
		isPermutation: true,
		nameDist:      0,
		nodeCost:      0,
		fixed:         true,
	}
}

// less orders candidates by (kind, name distance, node cost, id).
func (c *Candidate) less(o *Candidate) bool {
	if c.Kind != o.Kind {
		return c.Kind < o.Kind
	}
	if c.nameDist != o.nameDist {
		return c.nameDist < o.nameDist
	}
	if c.nodeCost != o.nodeCost {
		return c.nodeCost < o.nodeCost
	}
	return c.ID < o.ID
}
