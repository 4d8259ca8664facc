package finder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lintang-b-s/Stoplocator/pkg/datastructure"
	"github.com/lintang-b-s/Stoplocator/pkg/osmparser"
	"github.com/lintang-b-s/Stoplocator/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var goodBusTags = map[string]string{"highway": "bus_stop", "ref:IFOPT": "de:09162:1", "wheelchair": "yes"}

// stops ~500m apart along lon 11.0; "Friedhof" lies 10km off the line
var testRows = []osmparser.Row{
	{ID: 1, Kind: osmparser.KindStation, Lat: 48.0, Lon: 11.0, Names: "Marktplatz", Tags: goodBusTags},
	{ID: 2, Kind: osmparser.KindStation, Lat: 48.0045, Lon: 11.0, Names: "Rathaus", Tags: goodBusTags},
	{ID: 3, Kind: osmparser.KindStation, Lat: 48.009, Lon: 11.0, Names: "Schillerschule", Tags: goodBusTags},
	{ID: 4, Kind: osmparser.KindStation, Lat: 48.0945, Lon: 11.0, Names: "Friedhof", Tags: goodBusTags},
}

func testDataset(t *testing.T, cfg Config) *Dataset {
	t.Helper()
	ds, warnings := NewDataset(testRows, cfg, zaptest.NewLogger(t))
	require.Empty(t, warnings)
	return ds
}

// oneMinuteSchedule gives one minute between consecutive ids, which is a
// 500m likely distance at 30 km/h.
func oneMinuteSchedule(t *testing.T, ids ...string) *schedule.Fixed {
	t.Helper()
	return hopSchedule(t, time.Minute, ids...)
}

func hopSchedule(t *testing.T, hop time.Duration, ids ...string) *schedule.Fixed {
	t.Helper()
	times := make([]time.Duration, len(ids)-1)
	for i := range times {
		times[i] = hop
	}
	s, err := schedule.NewFixed(ids, times)
	require.NoError(t, err)
	return s
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AverageSpeed = 30
	return cfg
}

func namedStops(names ...string) []StopInput {
	out := make([]StopInput, len(names))
	for i, n := range names {
		out[i] = StopInput{StopID: n, Name: n}
	}
	return out
}

func newTestRouteFinder(t *testing.T, cfg Config, names ...string) *RouteFinder {
	t.Helper()
	return newHopRouteFinder(t, cfg, time.Minute, names...)
}

func newHopRouteFinder(t *testing.T, cfg Config, hop time.Duration, names ...string) *RouteFinder {
	t.Helper()
	ds := testDataset(t, cfg)
	chain, err := NewStopChain(namedStops(names...), hopSchedule(t, hop, names...), cfg.Speed(), cfg.timeTolerance())
	require.NoError(t, err)

	candidates := make([][]*Candidate, chain.Len())
	for i, s := range chain.Stops() {
		candidates[i] = ds.CandidatesFor(s.Name, cfg.RouteType)
	}
	clusters := NewCandidateClusters(chain, candidates, cfg)
	return NewRouteFinder(chain, clusters, cfg, zaptest.NewLogger(t))
}

func pathIDs(path []*Node) []int64 {
	ids := make([]int64, len(path))
	for i, n := range path {
		if n.IsMissing() {
			ids[i] = 0
			continue
		}
		ids[i] = n.Candidate().ID
	}
	return ids
}

func assertValidPath(t *testing.T, path []*Node) {
	t.Helper()
	for i, n := range path {
		assert.Equal(t, i, n.Stop())
		if i == 0 {
			assert.Nil(t, n.Parent())
			continue
		}
		assert.Same(t, path[i-1], n.Parent())
		assert.Equal(t, path[i-1].Cost().Total(), n.Cost().Parent())
		stop, ok := n.Cost().Stop()
		assert.True(t, ok)
		assert.Equal(t, 0.0, stop)
	}
}

func TestFindRoute(t *testing.T) {
	testCases := []struct {
		name        string
		stops       []string
		wantIDs     []int64
		wantMissing int
		wantCost    float64
	}{
		{
			name:     "every stop in its band",
			stops:    []string{"Marktplatz", "Rathaus", "Schillerschule"},
			wantIDs:  []int64{1, 2, 3},
			wantCost: 0,
		},
		{
			name:        "implausible candidate becomes a missing node",
			stops:       []string{"Marktplatz", "Rathaus", "Friedhof", "Schillerschule"},
			wantIDs:     []int64{1, 2, 0, 3},
			wantMissing: 1,
			wantCost:    0,
		},
		{
			name:        "no candidate for stop 0",
			stops:       []string{"Waldesruh", "Rathaus", "Schillerschule"},
			wantIDs:     []int64{0, 2, 3},
			wantMissing: 1,
			wantCost:    0,
		},
		{
			name:    "single stop",
			stops:   []string{"Rathaus"},
			wantIDs: []int64{2},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rf := newTestRouteFinder(t, testConfig(), tt.stops...)
			path, err := rf.FindRoute(context.Background())
			require.NoError(t, err)
			require.Len(t, path, len(tt.stops))

			assert.Equal(t, tt.wantIDs, pathIDs(path))
			assert.Equal(t, tt.wantCost, path[len(path)-1].Cost().Total())
			assertValidPath(t, path)

			missing := 0
			for _, n := range rf.Graph().Nodes() {
				if n.IsMissing() {
					missing++
				}
			}
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}

func TestFindRouteTravelCost(t *testing.T) {
	testCases := []struct {
		name       string
		hop        time.Duration
		tolerance  float64
		wantTravel float64
	}{
		{name: "actual equals likely", hop: time.Minute, tolerance: 1, wantTravel: 0},
		// 2 min at 30 km/h: band [500, 1000, 1500], the 500m hops sit on the lower edge
		{name: "actual on the lower band edge", hop: 2 * time.Minute, tolerance: 1, wantTravel: 0},
		{name: "actual below a zero width band", hop: 2 * time.Minute, tolerance: 0, wantTravel: 8},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.TimeTolerance = tt.tolerance
			rf := newHopRouteFinder(t, cfg, tt.hop, "Marktplatz", "Rathaus", "Schillerschule")
			path, err := rf.FindRoute(context.Background())
			require.NoError(t, err)

			assert.Equal(t, []int64{1, 2, 3}, pathIDs(path))
			assertValidPath(t, path)
			for _, n := range path[1:] {
				assert.Equal(t, tt.wantTravel, n.Cost().Travel())
				assert.Equal(t, 0.0, n.Cost().Node())
				assert.Equal(t, 0.0, n.Cost().Name())
			}
		})
	}
}

func TestFindRouteMissingNodeReach(t *testing.T) {
	rf := newTestRouteFinder(t, testConfig(), "Marktplatz", "Rathaus", "Friedhof", "Schillerschule")
	path, err := rf.FindRoute(context.Background())
	require.NoError(t, err)

	m := path[2]
	require.True(t, m.IsMissing())
	assert.Equal(t, 500, int(m.Reach()))
	assert.Equal(t, 0.0, path[3].Cost().Travel())
}

func TestNeighborsMissingFallback(t *testing.T) {
	testCases := []struct {
		name        string
		stops       []string
		wantMissing bool
		wantIDs     []int64
	}{
		{name: "candidate inside the window", stops: []string{"Marktplatz", "Rathaus"}, wantIDs: []int64{2}},
		{name: "only candidate outside the window", stops: []string{"Marktplatz", "Friedhof"}, wantMissing: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rf := newTestRouteFinder(t, testConfig(), tt.stops...)
			g := rf.Graph()
			starts := g.StartNodes()
			require.Len(t, starts, 1)
			start := starts[0].To

			edges := g.Neighbors(start)
			if tt.wantMissing {
				require.Len(t, edges, 1)
				assert.True(t, edges[0].To.IsMissing())
				assert.Equal(t, 1, edges[0].To.Stop())

				again := g.Neighbors(start)
				require.Len(t, again, 1)
				assert.Same(t, edges[0].To, again[0].To)
				return
			}

			ids := make([]int64, 0, len(edges))
			for _, e := range edges {
				require.False(t, e.To.IsMissing())
				ids = append(ids, e.To.Candidate().ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFindRouteDeterministic(t *testing.T) {
	stops := []string{"Marktplatz", "Rathaus", "Friedhof", "Schillerschule"}
	first, err := newTestRouteFinder(t, testConfig(), stops...).FindRoute(context.Background())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		path, err := newTestRouteFinder(t, testConfig(), stops...).FindRoute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, pathIDs(first), pathIDs(path))
		assert.Equal(t, first[len(first)-1].Cost().Total(), path[len(path)-1].Cost().Total())
	}
}

func TestFindRouteErrors(t *testing.T) {
	t.Run("iteration bound", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxIterations = 1
		rf := newTestRouteFinder(t, cfg, "Marktplatz", "Rathaus", "Schillerschule")
		_, err := rf.FindRoute(context.Background())
		assert.ErrorIs(t, err, ErrSearchExhausted)
		assert.Equal(t, 1, rf.Iterations())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rf := newTestRouteFinder(t, testConfig(), "Marktplatz", "Rathaus", "Schillerschule")
		_, err := rf.FindRoute(ctx)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestNodeLess(t *testing.T) {
	g := NewSearchGraph(nil, nil, DefaultConfig())
	a := g.newNode(1, nil)
	b := g.newNode(2, nil)
	c := g.newNode(2, nil)

	cheap := NewCostWithStop(0, 1, 0, 0, 0)
	dear := NewCostWithStop(0, 2, 0, 0, 0)

	pa := datastructure.NewPriorityQueueNode(cheap, a)
	pb := datastructure.NewPriorityQueueNode(dear, b)
	assert.True(t, nodeLess(pa, pb))
	assert.False(t, nodeLess(pb, pa))

	// equal cost: deeper stop first, then creation order
	pa = datastructure.NewPriorityQueueNode(cheap, a)
	pb = datastructure.NewPriorityQueueNode(cheap, b)
	pc := datastructure.NewPriorityQueueNode(cheap, c)
	assert.True(t, nodeLess(pb, pa))
	assert.True(t, nodeLess(pb, pc))
	assert.False(t, nodeLess(pc, pb))
}
