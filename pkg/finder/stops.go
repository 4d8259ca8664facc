package finder

import (
	"errors"
	"time"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
)

type StopInput struct {
	StopID string `json:"stop_id" validate:"required"`
	Name   string `json:"stop_name" validate:"required"`
}

// Schedule provides the scheduled travel time between two consecutive stops.
type Schedule interface {
	AvgTimeBetween(from, to string) (time.Duration, error)
}

// DistanceBand is the plausible distance from a stop to its successor.
type DistanceBand struct {
	Lower  geo.Distance
	Likely geo.Distance
	Upper  geo.Distance
}

func (b DistanceBand) IsZero() bool {
	return b.Lower == 0 && b.Likely == 0 && b.Upper == 0
}

type Stop struct {
	Index  int
	StopID string
	Name   string
}

// StopChain owns the ordered stops of one request. Next/Prev are index
// arithmetic; travel times and bands are computed once on first access.
type StopChain struct {
	stops     []Stop
	schedule  Schedule
	speed     float64
	tolerance time.Duration

	avgTimes []*time.Duration
	bands    []*DistanceBand
	warnings []error
}

// NewStopChain builds the chain. speed is in km/h, tolerance widens the
// scheduled time in both directions before it is turned into a distance.
func NewStopChain(inputs []StopInput, schedule Schedule, speed float64, tolerance time.Duration) (*StopChain, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyChain
	}
	sc := &StopChain{
		stops:     make([]Stop, len(inputs)),
		schedule:  schedule,
		speed:     speed,
		tolerance: tolerance,
		avgTimes:  make([]*time.Duration, len(inputs)),
		bands:     make([]*DistanceBand, len(inputs)),
	}
	for i, in := range inputs {
		sc.stops[i] = Stop{Index: i, StopID: in.StopID, Name: in.Name}
	}
	return sc, nil
}

func (sc *StopChain) Len() int {
	return len(sc.stops)
}

func (sc *StopChain) Stop(i int) Stop {
	return sc.stops[i]
}

func (sc *StopChain) Stops() []Stop {
	return sc.stops
}

func (sc *StopChain) Next(i int) (int, bool) {
	if i+1 >= len(sc.stops) {
		return 0, false
	}
	return i + 1, true
}

func (sc *StopChain) Prev(i int) (int, bool) {
	if i <= 0 {
		return 0, false
	}
	return i - 1, true
}

func (sc *StopChain) IsLast(i int) bool {
	return i == len(sc.stops)-1
}

// Warnings returns the InvalidScheduleDataWarnings of every band computed so far.
func (sc *StopChain) Warnings() []error {
	return sc.warnings
}

// AvgTimeToNext returns the scheduled time to the next stop. ok is false for
// the last stop and for unknown or non-positive times.
func (sc *StopChain) AvgTimeToNext(i int) (time.Duration, bool) {
	if sc.avgTimes[i] != nil {
		return *sc.avgTimes[i], *sc.avgTimes[i] > 0
	}

	var d time.Duration
	next, ok := sc.Next(i)
	if ok {
		d = sc.fetchTime(sc.stops[i], sc.stops[next])
	}
	sc.avgTimes[i] = &d
	return d, d > 0
}

func (sc *StopChain) fetchTime(from, to Stop) time.Duration {
	if sc.schedule == nil {
		sc.warnings = append(sc.warnings, &InvalidScheduleDataWarning{From: from.StopID, To: to.StopID,
			Err: errors.New("no schedule")})
		return 0
	}
	d, err := sc.schedule.AvgTimeBetween(from.StopID, to.StopID)
	if err != nil {
		sc.warnings = append(sc.warnings, &InvalidScheduleDataWarning{From: from.StopID, To: to.StopID, Err: err})
		return 0
	}
	if d <= 0 {
		sc.warnings = append(sc.warnings, &InvalidScheduleDataWarning{From: from.StopID, To: to.StopID, Time: d})
		return 0
	}
	return d
}

// Bounds returns the distance band to the next stop: likely is time x speed,
// lower and upper apply the tolerance to the time first. The last stop and
// stops without usable schedule data have a zero width band.
func (sc *StopChain) Bounds(i int) DistanceBand {
	if sc.bands[i] != nil {
		return *sc.bands[i]
	}

	var band DistanceBand
	if d, ok := sc.AvgTimeToNext(i); ok {
		lower := d - sc.tolerance
		if lower < 0 {
			lower = 0
		}
		band = DistanceBand{
			Lower:  sc.distanceFor(lower),
			Likely: sc.distanceFor(d),
			Upper:  sc.distanceFor(d + sc.tolerance),
		}
	}
	sc.bands[i] = &band
	return band
}

func (sc *StopChain) distanceFor(d time.Duration) geo.Distance {
	metersPerSecond := sc.speed / 3.6
	return geo.Meters(d.Seconds() * metersPerSecond)
}
