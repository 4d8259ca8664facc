package spatialindex

import (
	"sort"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/tidwall/rtree"
)

// Rtree indexes points (candidate locations) by an integer id.
type Rtree struct {
	tr   *rtree.RTreeG[PointEntry]
	size int
}

type PointEntry struct {
	id  int
	loc geo.Coordinate
}

func (pe PointEntry) GetID() int {
	return pe.id
}

func NewPointEntry(id int, loc geo.Coordinate) PointEntry {
	return PointEntry{id: id, loc: loc}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[PointEntry]
	return &Rtree{
		tr: &tr,
	}
}

// Build. insert every entry as a degenerate (point) bounding box.
func (rt *Rtree) Build(entries []PointEntry) {
	for _, e := range entries {
		rt.Insert(e)
	}
}

func (rt *Rtree) Insert(e PointEntry) {
	p := [2]float64{e.loc.Lon, e.loc.Lat}
	rt.tr.Insert(p, p, e)
	rt.size++
}

func (rt *Rtree) Len() int {
	return rt.size
}

// SearchWithinRadius returns all entries whose great-circle distance to q is at
// most radius, ordered by (distance, id).
func (rt *Rtree) SearchWithinRadius(q geo.Coordinate, radius geo.Distance) []PointEntry {
	lowerLat, lowerLon := geo.GetDestinationPoint(q.Lat, q.Lon, 225, radius.Km()*1.5)
	upperLat, upperLon := geo.GetDestinationPoint(q.Lat, q.Lon, 45, radius.Km()*1.5)

	type hit struct {
		e PointEntry
		d geo.Distance
	}
	hits := make([]hit, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data PointEntry) bool {
			d := geo.DistanceBetween(q, data.loc)
			if d <= radius {
				hits = append(hits, hit{e: data, d: d})
			}
			return true
		})

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].d != hits[j].d {
			return hits[i].d < hits[j].d
		}
		return hits[i].e.id < hits[j].e.id
	})

	results := make([]PointEntry, len(hits))
	for i, h := range hits {
		results[i] = h.e
	}
	return results
}
