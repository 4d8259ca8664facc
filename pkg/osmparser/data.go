package osmparser

import (
	"strings"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
)

const (
	KindStation      = "station"
	KindPlatform     = "platform"
	KindStopPosition = "stop_position"
)

// NameKeys are the osm keys whose values are alternative names of a stop.
var NameKeys = []string{"name", "alt_name", "ref_name",
	"short_name", "official_name", "loc_name"}

// TagKeys are kept on a Row for scoring; every other tag is dropped.
var TagKeys = []string{"railway", "bus", "tram", "train", "subway", "monorail",
	"light_rail", "highway", "amenity", "ferry", "trolleybus", "station",
	"funicular", "aerialway", "ref:IFOPT", "wheelchair"}

var tagKeySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(TagKeys))
	for _, k := range TagKeys {
		m[k] = struct{}{}
	}
	return m
}()

func IsTagKey(k string) bool {
	_, ok := tagKeySet[k]
	return ok
}

// Row is one public transport node of the reference dataset.
// Names holds the "|"-joined alternative names.
type Row struct {
	ID    int64
	Kind  string
	Lat   float64
	Lon   float64
	Names string
	Tags  map[string]string
}

func (r Row) Location() geo.Coordinate {
	return geo.NewCoordinate(r.Lat, r.Lon)
}

func (r Row) NameList() []string {
	return strings.Split(r.Names, "|")
}
