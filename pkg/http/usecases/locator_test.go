package usecases

import (
	"context"
	"testing"

	"github.com/lintang-b-s/Stoplocator/pkg/finder"
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/osmparser"
	"github.com/lintang-b-s/Stoplocator/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T, maxHits int) *LocatorService {
	t.Helper()
	log := zaptest.NewLogger(t)
	cfg := finder.DefaultConfig()
	rows := []osmparser.Row{
		{ID: 1, Kind: osmparser.KindStation, Lat: 48.0, Lon: 11.0, Names: "Rathaus"},
		{ID: 2, Kind: osmparser.KindPlatform, Lat: 48.0001, Lon: 11.0, Names: "Rathaus"},
		{ID: 3, Kind: osmparser.KindStation, Lat: 48.0002, Lon: 11.0, Names: "Rathaus Nord", Tags: map[string]string{"bus": "no"}},
	}
	ds, _ := finder.NewDataset(rows, cfg, log)
	return NewLocatorService(log, finder.NewLocator(cfg, ds, log), ds, maxHits)
}

func TestCandidatesByName(t *testing.T) {
	testCases := []struct {
		name      string
		routeType string
		maxHits   int
		wantIDs   []int64
	}{
		{name: "bus drops bus=no", routeType: "Bus", wantIDs: []int64{1, 2}},
		{name: "unknown route type falls back to config", routeType: "Zeppelin", wantIDs: []int64{1, 2}},
		{name: "tram keeps it", routeType: "Tram", wantIDs: []int64{1, 2, 3}},
		{name: "truncated", routeType: "Tram", maxHits: 1, wantIDs: []int64{1}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.maxHits)
			cands, err := svc.CandidatesByName("Rathaus", tt.routeType)
			require.NoError(t, err)
			ids := make([]int64, len(cands))
			for i, c := range cands {
				ids[i] = c.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCandidatesErrors(t *testing.T) {
	svc := newTestService(t, 0)
	_, err := svc.CandidatesByName("Waldesruh", "Bus")
	assert.ErrorIs(t, err, finder.ErrNoCandidates)
	assert.Equal(t, util.ErrNotFound, util.ErrorCode(err))

	_, err = svc.CandidatesNear(0, 0, 100)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
	assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))

	near, err := svc.CandidatesNear(48.0, 11.0, 15)
	require.NoError(t, err)
	assert.Len(t, near, 2)

	empty := NewLocatorService(zaptest.NewLogger(t), svc.engine, nil, 0)
	_, err = empty.CandidatesByName("Rathaus", "Bus")
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestLocate(t *testing.T) {
	svc := newTestService(t, 0)
	res, err := svc.Locate(context.Background(), finder.Request{ID: "r",
		Stops: []finder.StopInput{{StopID: "a", Name: "Rathaus"}}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Unresolved)
}
