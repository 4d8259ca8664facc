package finder

import (
	"math"
	"testing"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/stretchr/testify/assert"
)

func TestCostInfinityPropagation(t *testing.T) {
	testCases := []struct {
		name string
		cost Cost
	}{
		{name: "unknown parent", cost: NewCost(-1, 0, 0, 0)},
		{name: "unknown node", cost: NewCost(0, -1, 0, 0)},
		{name: "unknown name", cost: NewCost(0, 0, -5, 0)},
		{name: "unknown travel", cost: NewCost(0, 0, 0, -1)},
		{name: "nan", cost: NewCost(0, math.NaN(), 0, 0)},
		{name: "unknown stop", cost: NewCostWithStop(1, 2, 3, 4, -1)},
		{name: "inf term", cost: NewCost(math.Inf(1), 0, 0, 0)},
		{name: "all unknown", cost: InfCost()},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, math.IsInf(tt.cost.Total(), 1))
			assert.True(t, tt.cost.IsInf())
		})
	}
}

func TestCostTravelTerm(t *testing.T) {
	testCases := []struct {
		name   string
		travel float64
		want   float64
	}{
		{name: "rounded down", travel: 2.4, want: 2},
		{name: "rounded up", travel: 2.5, want: 3},
		{name: "clamped", travel: 150.2, want: 100},
		{name: "zero", travel: 0, want: 0},
		{name: "negative is unknown", travel: -0.1, want: math.Inf(1)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewCost(0, 0, 0, tt.travel).Travel())
		})
	}
}

func TestCostCompare(t *testing.T) {
	testCases := []struct {
		name string
		a    Cost
		b    Cost
		want int
	}{
		{name: "lower total wins", a: NewCost(1, 1, 0, 0), b: NewCost(1, 1, 1, 0), want: -1},
		{name: "equal totals", a: NewCost(2, 0, 0, 0), b: NewCost(0, 1, 1, 0), want: 0},
		{name: "stop term breaks tie", a: NewCostWithStop(1, 0, 0, 0, 1), b: NewCost(2, 0, 0, 0), want: 1},
		{name: "absent stop term counts as zero", a: NewCostWithStop(1, 0, 0, 0, 0), b: NewCost(0, 1, 0, 0), want: 0},
		{name: "finite beats infinite", a: NewCost(1000, 0, 0, 100), b: NewCost(-1, 0, 0, 0), want: -1},
		{name: "infinite loses to finite", a: NewCost(-1, 0, 0, 0), b: NewCost(0, 0, 0, 0), want: 1},
		{name: "fewer infinite terms wins", a: NewCost(-1, 0, 0, 0), b: NewCost(-1, -1, 0, 0), want: -1},
		{name: "same infinite terms", a: NewCost(-1, 5, 0, 0), b: NewCost(0, -1, 0, 0), want: 0},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
			assert.Equal(t, -tt.want, tt.b.Compare(tt.a))
			assert.Equal(t, tt.want < 0, tt.a.Less(tt.b))
			assert.Equal(t, tt.want == 0, tt.a.Equal(tt.b))
		})
	}
}

func TestCostOrderingIsTotal(t *testing.T) {
	values := []float64{-1, 0, 0.5, 1, 2, 100}
	costs := make([]Cost, 0)
	for _, p := range values {
		for _, n := range values {
			for _, tr := range values {
				costs = append(costs, NewCost(p, n, 0, tr))
				costs = append(costs, NewCostWithStop(p, n, 0, tr, 1))
			}
		}
	}

	for _, a := range costs {
		for _, b := range costs {
			lt, eq, gt := a.Less(b), a.Equal(b), b.Less(a)
			holds := 0
			for _, h := range []bool{lt, eq, gt} {
				if h {
					holds++
				}
			}
			if !assert.Equal(t, 1, holds, "%s vs %s", a, b) {
				return
			}
		}
	}
}

func TestCostString(t *testing.T) {
	testCases := []struct {
		name string
		cost Cost
		want string
	}{
		{
			name: "without stop term",
			cost: NewCost(1, 2, 0, 3),
			want: "Cost(total: 6.00, parent: 1.00, node: 2.00, name: 0.00, travel: 3)",
		},
		{
			name: "with stop term",
			cost: NewCostWithStop(1, 2, 0, 3, 4),
			want: "Cost(total: 10.00, parent: 1.00, node: 2.00, name: 0.00, travel: 3, stop: 4)",
		},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cost.String())
		})
	}
}

func TestTravelCost(t *testing.T) {
	band := DistanceBand{Lower: geo.Meters(500), Likely: geo.Meters(1000), Upper: geo.Meters(1500)}

	testCases := []struct {
		name   string
		actual geo.Distance
		band   DistanceBand
		want   float64
	}{
		{name: "lower bound", actual: geo.Meters(500), band: band, want: 0},
		{name: "one meter below the lower bound", actual: geo.Meters(499), band: band, want: 6},
		{name: "likely", actual: geo.Meters(1000), band: band, want: 0},
		{name: "upper bound", actual: geo.Meters(1500), band: band, want: 0},
		{name: "twice the upper bound", actual: geo.Meters(3000), band: band, want: 9},
		{name: "a fifth of the lower bound", actual: geo.Meters(100), band: band, want: 15},
		{name: "zero width band at zero", actual: 0, band: DistanceBand{}, want: 0},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TravelCost(tt.actual, tt.band))
		})
	}
}

func TestTravelCostClamp(t *testing.T) {
	bands := []DistanceBand{
		{},
		{Lower: geo.Meters(500), Likely: geo.Meters(1000), Upper: geo.Meters(1500)},
		{Lower: 0, Likely: geo.Meters(10), Upper: geo.Meters(20)},
	}
	for _, band := range bands {
		for m := 0.0; m < 2e6; m = m*1.7 + 1 {
			got := TravelCost(geo.Meters(m), band)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
			if geo.Meters(m) < band.Lower || geo.Meters(m) > band.Upper {
				assert.GreaterOrEqual(t, got, 1.0)
			}
			assert.LessOrEqual(t, NewCost(0, 0, 0, got*10).Travel(), 100.0)
		}
	}
}

func TestSimpleTravelCost(t *testing.T) {
	assert.Equal(t, 0.0, simpleTravelCost(0))
	assert.Equal(t, 0.0, simpleTravelCost(geo.Meters(7)))
	assert.Equal(t, 1.0, simpleTravelCost(geo.Meters(8)))
	assert.Equal(t, 3.0, simpleTravelCost(geo.Meters(600)))
}

func TestNameCost(t *testing.T) {
	assert.Equal(t, 0.0, NameCost(0))
	assert.Equal(t, 0.0, NameCost(1))
	assert.InDelta(t, 1.7095, NameCost(2), 1e-4)
	assert.InDelta(t, 2*NameCost(2), NameCost(4), 1e-9)
	assert.Less(t, NameCost(2), NameCost(3))
}
