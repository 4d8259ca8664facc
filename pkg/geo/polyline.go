package geo

import (
	polyline "github.com/twpayne/go-polyline"
)

// PolylineFromCoords encodes the valid coords as a google polyline string.
func PolylineFromCoords(coords []Coordinate) string {
	points := make([][]float64, 0, len(coords))
	for _, c := range coords {
		if !c.IsValid() {
			continue
		}
		points = append(points, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(points))
}

func CoordsFromPolyline(s string) ([]Coordinate, error) {
	points, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, 0, len(points))
	for _, p := range points {
		coords = append(coords, NewCoordinate(p[0], p[1]))
	}
	return coords, nil
}
