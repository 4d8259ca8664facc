package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/Stoplocator/pkg/util"
)

// CoordinatePrecision is the number of decimal places kept for lat/lon (~1.1m).
const CoordinatePrecision = 5

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is an immutable lat/lon pair rounded to CoordinatePrecision.
// (0, 0) is reserved as the "unknown location" sentinel.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: util.RoundFloat(lat, CoordinatePrecision),
		Lon: util.RoundFloat(lon, CoordinatePrecision),
	}
}

// NewValidCoordinate is NewCoordinate plus the range check of IsValid.
func NewValidCoordinate(lat, lon float64) (Coordinate, error) {
	c := NewCoordinate(lat, lon)
	if !c.IsValid() {
		return Coordinate{}, util.WrapErrorf(ErrInvalidCoordinate, util.ErrBadParamInput,
			"coordinate (%v, %v) is not a usable location", lat, lon)
	}
	return c, nil
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

// IsValid reports whether lat is within [-90, 90], lon within [-180, 180] and
// the coordinate is not the (0, 0) sentinel.
func (c Coordinate) IsValid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return false
	}
	return !(c.Lat == 0 && c.Lon == 0)
}

func (c Coordinate) Add(o Coordinate) Coordinate {
	return NewCoordinate(c.Lat+o.Lat, c.Lon+o.Lon)
}

func (c Coordinate) Sub(o Coordinate) Coordinate {
	return NewCoordinate(c.Lat-o.Lat, c.Lon-o.Lon)
}

func (c Coordinate) Scale(f float64) Coordinate {
	return NewCoordinate(c.Lat*f, c.Lon*f)
}

// Lerp returns c + t*(o-c), rounded once at the end.
func (c Coordinate) Lerp(o Coordinate, t float64) Coordinate {
	return NewCoordinate(c.Lat+t*(o.Lat-c.Lat), c.Lon+t*(o.Lon-c.Lon))
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%9.5f, %9.5f)", c.Lat, c.Lon)
}

// Centroid returns the mean lat/lon of coords. Zero coords give the sentinel.
func Centroid(coords []Coordinate) Coordinate {
	if len(coords) == 0 {
		return Coordinate{}
	}
	var lat, lon float64
	for _, c := range coords {
		lat += c.Lat
		lon += c.Lon
	}
	n := float64(len(coords))
	return NewCoordinate(lat/n, lon/n)
}
