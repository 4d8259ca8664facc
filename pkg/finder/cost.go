package finder

import (
	"fmt"
	"math"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/util"
)

const (
	maxTravelCost = 100
	// starting log base of the travel penalty
	travelLogBase = 8
)

var inf = math.Inf(1)

// Cost is the (parent, node, name, travel[, stop]) tuple of a search node.
// A negative or NaN term is unknown and counts as +Inf.
type Cost struct {
	parent  float64
	node    float64
	name    float64
	travel  float64
	stop    float64
	hasStop bool
}

func costTerm(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return inf
	}
	return v
}

func travelTerm(v float64) float64 {
	v = costTerm(v)
	if math.IsInf(v, 1) {
		return v
	}
	return util.Clamp(math.Round(v), 0, maxTravelCost)
}

func NewCost(parent, node, name, travel float64) Cost {
	return Cost{
		parent: costTerm(parent),
		node:   costTerm(node),
		name:   costTerm(name),
		travel: travelTerm(travel),
	}
}

func NewCostWithStop(parent, node, name, travel, stop float64) Cost {
	c := NewCost(parent, node, name, travel)
	c.stop = costTerm(stop)
	c.hasStop = true
	return c
}

// InfCost has every term unknown.
func InfCost() Cost {
	return NewCostWithStop(-1, -1, -1, -1, -1)
}

func (c Cost) Parent() float64 { return c.parent }
func (c Cost) Node() float64   { return c.node }
func (c Cost) Name() float64   { return c.name }
func (c Cost) Travel() float64 { return c.travel }

// Stop returns the stop term and whether it was supplied.
func (c Cost) Stop() (float64, bool) {
	return c.stop, c.hasStop
}

func (c Cost) terms() []float64 {
	if c.hasStop {
		return []float64{c.parent, c.node, c.name, c.travel, c.stop}
	}
	return []float64{c.parent, c.node, c.name, c.travel}
}

func (c Cost) Total() float64 {
	total := 0.0
	for _, t := range c.terms() {
		total += t
	}
	return total
}

func (c Cost) IsInf() bool {
	return math.IsInf(c.Total(), 1)
}

func (c Cost) infCount() int {
	n := 0
	for _, t := range c.terms() {
		if math.IsInf(t, 1) {
			n++
		}
	}
	return n
}

// tieBreak is the stop term, 0 if it was not supplied.
func (c Cost) tieBreak() float64 {
	if !c.hasStop {
		return 0
	}
	return c.stop
}

// Compare returns -1, 0 or 1. Finite totals compare by value then stop term,
// a finite total beats an infinite one, and two infinite totals compare by the
// number of infinite terms.
func (c Cost) Compare(o Cost) int {
	ci, oi := c.IsInf(), o.IsInf()
	switch {
	case !ci && !oi:
		ct, ot := c.Total(), o.Total()
		if ct != ot {
			return cmpFloat(ct, ot)
		}
		return cmpFloat(c.tieBreak(), o.tieBreak())
	case !ci:
		return -1
	case !oi:
		return 1
	}
	if c.infCount() != o.infCount() {
		if c.infCount() < o.infCount() {
			return -1
		}
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (c Cost) Less(o Cost) bool {
	return c.Compare(o) < 0
}

func (c Cost) Equal(o Cost) bool {
	return c.Compare(o) == 0
}

func (c Cost) String() string {
	if c.hasStop {
		return fmt.Sprintf("Cost(total: %.2f, parent: %.2f, node: %.2f, name: %.2f, travel: %.0f, stop: %.0f)",
			c.Total(), c.parent, c.node, c.name, c.travel, c.stop)
	}
	return fmt.Sprintf("Cost(total: %.2f, parent: %.2f, node: %.2f, name: %.2f, travel: %.0f)",
		c.Total(), c.parent, c.node, c.name, c.travel)
}

// TravelCost scores the distance between two consecutive candidates against
// the band of the first stop. Inside [lower, upper] it is 0. Outside it grows
// with log(|actual - likely|); the log base shrinks with the factor by which
// actual misses the band, so far misses are punished harder. The result is
// within [1, 100] outside the band.
func TravelCost(actual geo.Distance, band DistanceBand) float64 {
	if actual >= band.Lower && actual <= band.Upper {
		return 0
	}

	a := math.Max(actual.M(), 1)
	distToMid := math.Max(1, actual.Sub(band.Likely).M())
	logBase := float64(travelLogBase)
	if actual < band.Lower {
		logBase /= math.Max(1, math.Floor(band.Lower.M()/a))
	}
	if actual > band.Upper {
		logBase /= math.Max(1, math.Floor(a/math.Max(band.Upper.M(), 1)))
	}
	logBase = math.Max(1.001, logBase)

	l := math.Log(distToMid) / math.Log(logBase)
	cost := math.Floor(math.Log2(math.Max(1, math.Floor(math.Pow(l, 4)))))
	return util.Clamp(math.Max(1, cost), 1, maxTravelCost)
}

// simpleTravelCost is log_8 of the distance, ignoring the band.
func simpleTravelCost(actual geo.Distance) float64 {
	return util.Clamp(math.Floor(math.Log(math.Max(1, actual.M()))/math.Log(travelLogBase)), 0, maxTravelCost)
}
