package geo

import (
	"fmt"
	"math"

	"github.com/lintang-b-s/Stoplocator/pkg/util"
)

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = earthRadiusKM * 1000
)

// Distance is a non-negative distance in whole meters.
type Distance int64

const MaxDistance Distance = math.MaxInt64

// Meters rounds |m| to the nearest meter.
func Meters(m float64) Distance {
	if math.IsNaN(m) {
		return 0
	}
	m = math.Abs(m)
	if m >= float64(MaxDistance) {
		return MaxDistance
	}
	return Distance(math.Round(m))
}

func Kilometers(km float64) Distance {
	return Meters(km * 1000)
}

func (d Distance) M() float64 {
	return float64(d)
}

func (d Distance) Km() float64 {
	return float64(d) / 1000
}

func (d Distance) Add(o Distance) Distance {
	if d > MaxDistance-o {
		return MaxDistance
	}
	return d + o
}

// Sub returns |d - o|.
func (d Distance) Sub(o Distance) Distance {
	if d < o {
		return o - d
	}
	return d - o
}

func (d Distance) Mul(f float64) Distance {
	return Meters(float64(d) * f)
}

func (d Distance) Div(f float64) Distance {
	if f == 0 {
		return MaxDistance
	}
	return Meters(float64(d) / f)
}

func (d Distance) String() string {
	return fmt.Sprintf("%dm", int64(d))
}

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// CalculateHaversineDistance. calculate haversine distance in km
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	longOne = util.DegreeToRadians(longOne)
	latTwo = util.DegreeToRadians(latTwo)
	longTwo = util.DegreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// DistanceBetween is the great-circle distance between a and b.
func DistanceBetween(a, b Coordinate) Distance {
	return Kilometers(CalculateHaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon))
}

func radToDeg(r float64) float64 {
	return 180.0 * r / math.Pi
}

// GetDestinationPoint returns the destination point given the starting point, bearing and distance
// dist in km
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {

	dr := dist / earthRadiusKM

	bearing = util.DegreeToRadians(bearing)

	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2Part1 := math.Sin(lat1) * math.Cos(dr)
	lat2Part2 := math.Cos(lat1) * math.Sin(dr) * math.Cos(bearing)

	lat2 := math.Asin(lat2Part1 + lat2Part2)

	lon2Part1 := math.Sin(bearing) * math.Sin(dr) * math.Cos(lat1)
	lon2Part2 := math.Cos(dr) - (math.Sin(lat1) * math.Sin(lat2))

	lon2 := lon1 + math.Atan2(lon2Part1, lon2Part2)

	return radToDeg(lat2), normalizeLongitude(radToDeg(lon2))
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}
