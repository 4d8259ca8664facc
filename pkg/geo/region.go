package geo

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Region is a lat/lon rectangle around a set of points, widened by a margin.
// Used to cut a reference dataset down to the area around a route.
type Region struct {
	rect s2.Rect
}

// NewRegion returns the bounding rectangle of the valid coords expanded by margin.
// Without any valid coordinate the region is empty and contains nothing.
func NewRegion(coords []Coordinate, margin Distance) Region {
	angle := s1.Angle(margin.M() / earthRadiusM)
	rect := s2.EmptyRect()
	for _, c := range coords {
		if !c.IsValid() {
			continue
		}
		ll := s2.LatLngFromDegrees(c.Lat, c.Lon)
		rect = rect.Union(s2.CapFromCenterAngle(s2.PointFromLatLng(ll), angle).RectBound())
	}
	return Region{rect: rect}
}

// NewBoundingBoxRegion builds a region from explicit corners.
func NewBoundingBoxRegion(minLat, minLon, maxLat, maxLon float64) Region {
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(minLat, minLon)).
		AddPoint(s2.LatLngFromDegrees(maxLat, maxLon))
	return Region{rect: rect}
}

func (r Region) IsEmpty() bool {
	return r.rect.IsEmpty()
}

func (r Region) Contains(c Coordinate) bool {
	return r.rect.ContainsLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// Bounds returns the south-west and north-east corners.
func (r Region) Bounds() (Coordinate, Coordinate) {
	lo, hi := r.rect.Lo(), r.rect.Hi()
	return NewCoordinate(lo.Lat.Degrees(), lo.Lng.Degrees()),
		NewCoordinate(hi.Lat.Degrees(), hi.Lng.Degrees())
}
