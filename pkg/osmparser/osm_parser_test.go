package osmparser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
 <node id="1" lat="48.0" lon="11.0" version="1">
  <tag k="public_transport" v="station"/>
  <tag k="railway" v="station"/>
  <tag k="name" v="Hauptbahnhof"/>
  <tag k="alt_name" v="Hbf;Hauptbahnhof"/>
  <tag k="wheelchair" v="yes"/>
  <tag k="operator" v="DB"/>
 </node>
 <node id="2" lat="48.001" lon="11.0" version="1">
  <tag k="highway" v="bus_stop"/>
  <tag k="name" v="Markt"/>
 </node>
 <node id="3" lat="48.002" lon="11.0" version="1">
  <tag k="public_transport" v="platform"/>
 </node>
 <node id="4" lat="48.003" lon="11.0" version="1">
  <tag k="amenity" v="cafe"/>
  <tag k="name" v="Cafe"/>
 </node>
 <node id="5" lat="49.5" lon="11.0" version="1">
  <tag k="railway" v="tram_stop"/>
  <tag k="name" v="Far Away"/>
 </node>
</osm>`

func TestParseReaderXML(t *testing.T) {
	testCases := []struct {
		name    string
		region  *geo.Region
		wantIDs []int64
	}{
		{name: "no region", wantIDs: []int64{1, 2, 5}},
		{
			name: "region filter",
			region: func() *geo.Region {
				r := geo.NewRegion([]geo.Coordinate{geo.NewCoordinate(48.0, 11.0)}, geo.Kilometers(1))
				return &r
			}(),
			wantIDs: []int64{1, 2},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			p := NewOSMParser(zaptest.NewLogger(t))
			if tt.region != nil {
				p.WithRegion(*tt.region)
			}
			rows, err := p.ParseReader(context.Background(), strings.NewReader(testOSM), FormatXML)
			require.NoError(t, err)

			ids := make([]int64, 0, len(rows))
			for _, r := range rows {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestRowFromNode(t *testing.T) {
	p := NewOSMParser(zaptest.NewLogger(t))
	rows, err := p.ParseReader(context.Background(), strings.NewReader(testOSM), FormatXML)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	station := rows[0]
	assert.Equal(t, KindStation, station.Kind)
	assert.Equal(t, "Hauptbahnhof|Hbf", station.Names)
	assert.Equal(t, []string{"Hauptbahnhof", "Hbf"}, station.NameList())
	assert.Equal(t, map[string]string{"railway": "station", "wheelchair": "yes"}, station.Tags)

	assert.Equal(t, KindPlatform, rows[1].Kind)
	assert.Equal(t, KindStopPosition, rows[2].Kind)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatPBF, FormatFromPath("bavaria.osm.pbf"))
	assert.Equal(t, FormatXML, FormatFromPath("small.osm"))
	assert.Equal(t, FormatXML, FormatFromPath("small.XML"))
}

func TestDatasetCache(t *testing.T) {
	rows := []Row{
		{ID: 1, Kind: KindStation, Lat: 48.0, Lon: 11.0, Names: "Hauptbahnhof|Hbf",
			Tags: map[string]string{"railway": "station", "ref:IFOPT": "de:09162:6"}},
		{ID: 2, Kind: KindPlatform, Lat: 48.00123, Lon: 11.5, Names: "Markt", Tags: map[string]string{}},
	}
	queried := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	path := filepath.Join(t.TempDir(), "osm_cache.tsv.bz2")
	require.NoError(t, WriteRows(path, rows, queried))

	got, gotQueried, err := ReadRows(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
	assert.True(t, queried.Equal(gotQueried))
}

func TestIsStale(t *testing.T) {
	queried := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	testCases := []struct {
		name   string
		now    time.Time
		maxAge time.Duration
		want   bool
	}{
		{name: "fresh", now: queried.Add(24 * time.Hour), maxAge: 7 * 24 * time.Hour, want: false},
		{name: "stale", now: queried.Add(8 * 24 * time.Hour), maxAge: 7 * 24 * time.Hour, want: true},
		{name: "never expires", now: queried.Add(1000 * 24 * time.Hour), maxAge: 0, want: false},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStale(queried, tt.now, tt.maxAge))
		})
	}
}

func TestParseQueriedHeader(t *testing.T) {
	_, err := parseQueriedHeader("queried yesterday")
	assert.ErrorIs(t, err, ErrInvalidCacheHeader)

	_, err = parseQueriedHeader("# Queried: 2024-03-01")
	assert.ErrorIs(t, err, ErrInvalidCacheHeader)

	got, err := parseQueriedHeader("# Queried: 20240301")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
}

func TestLoadOrExtract(t *testing.T) {
	dir := t.TempDir()
	mapFile := filepath.Join(dir, "small.osm")
	require.NoError(t, os.WriteFile(mapFile, []byte(testOSM), 0o644))

	t.Run("missing cache is extracted and written", func(t *testing.T) {
		cache := filepath.Join(dir, "fresh.tsv.bz2")
		p := NewOSMParser(zaptest.NewLogger(t))
		rows, err := p.LoadOrExtract(context.Background(), cache, mapFile, 0)
		require.NoError(t, err)
		assert.Len(t, rows, 3)

		cached, _, err := ReadRows(cache)
		require.NoError(t, err)
		assert.Equal(t, rows, cached)
	})

	t.Run("fresh cache is used", func(t *testing.T) {
		cache := filepath.Join(dir, "cached.tsv.bz2")
		want := []Row{{ID: 9, Kind: KindStation, Lat: 1, Lon: 2, Names: "Cached", Tags: map[string]string{}}}
		require.NoError(t, WriteRows(cache, want, time.Now()))

		p := NewOSMParser(zaptest.NewLogger(t))
		rows, err := p.LoadOrExtract(context.Background(), cache, mapFile, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, want, rows)
	})

	t.Run("stale cache is extracted again", func(t *testing.T) {
		cache := filepath.Join(dir, "stale.tsv.bz2")
		old := []Row{{ID: 9, Kind: KindStation, Lat: 1, Lon: 2, Names: "Cached", Tags: map[string]string{}}}
		require.NoError(t, WriteRows(cache, old, time.Now().AddDate(0, -2, 0)))

		p := NewOSMParser(zaptest.NewLogger(t))
		rows, err := p.LoadOrExtract(context.Background(), cache, mapFile, 30*24*time.Hour)
		require.NoError(t, err)
		assert.Len(t, rows, 3)

		rows, err = p.LoadOrExtract(context.Background(), filepath.Join(dir, "stale2.tsv.bz2"), "", 0)
		assert.Error(t, err)
		assert.Nil(t, rows)
	})

	t.Run("stale cache without map file", func(t *testing.T) {
		cache := filepath.Join(dir, "stale3.tsv.bz2")
		old := []Row{{ID: 9, Kind: KindStation, Lat: 1, Lon: 2, Names: "Cached", Tags: map[string]string{}}}
		require.NoError(t, WriteRows(cache, old, time.Now().AddDate(0, -2, 0)))

		p := NewOSMParser(zaptest.NewLogger(t))
		rows, err := p.LoadOrExtract(context.Background(), cache, "", 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, old, rows)
	})
}
