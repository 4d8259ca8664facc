package schedule

import (
	"fmt"
	"time"
)

// Fixed is a schedule given as an explicit list of consecutive travel times.
type Fixed struct {
	avg map[pairKey]time.Duration
}

// NewFixed pairs stopIDs[i] -> stopIDs[i+1] with times[i].
func NewFixed(stopIDs []string, times []time.Duration) (*Fixed, error) {
	if len(stopIDs) > 0 && len(times) != len(stopIDs)-1 {
		return nil, fmt.Errorf("expected %d travel times for %d stops, got %d",
			len(stopIDs)-1, len(stopIDs), len(times))
	}
	f := &Fixed{avg: make(map[pairKey]time.Duration, len(times))}
	for i, d := range times {
		f.avg[pairKey{from: stopIDs[i], to: stopIDs[i+1]}] = d
	}
	return f, nil
}

func (f *Fixed) AvgTimeBetween(from, to string) (time.Duration, error) {
	d, ok := f.avg[pairKey{from: from, to: to}]
	if !ok {
		return 0, fmt.Errorf("%w: %s -> %s", ErrUnknownStopPair, from, to)
	}
	return d, nil
}
