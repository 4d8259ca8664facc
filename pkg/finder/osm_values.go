package finder

// osmValues lists the tag values that make a node a good (with score, lower is
// better) or bad match for a route type. Keys and values are osm keys.
type osmValues struct {
	good map[string]map[string]int
	bad  map[string][]string
}

// noGoodTagScore is the tag score of a node without any good value.
const noGoodTagScore = 3

var (
	tramValues = osmValues{
		good: map[string]map[string]int{
			"tram":       {"yes": 0},
			"light_rail": {"yes": 1},
			"station":    {"light_rail": 1},
			"railway":    {"tram_stop": 0, "halt": 2, "station": 2, "platform": 2},
			"train":      {"yes": 2},
		},
		bad: map[string][]string{"tram": {"no"}},
	}
	lightRailValues = osmValues{
		good: map[string]map[string]int{
			"light_rail": {"yes": 0},
			"station":    {"light_rail": 0},
			"tram":       {"yes": 0},
			"railway":    {"tram_stop": 0, "halt": 1, "station": 1, "platform": 1},
			"train":      {"yes": 1},
		},
		bad: map[string][]string{"light_rail": {"no"}},
	}
	subwayValues = osmValues{
		good: map[string]map[string]int{
			"subway":  {"yes": 0},
			"train":   {"yes": 1},
			"station": {"subway": 0, "train": 1},
			"railway": {"halt": 0, "station": 1, "platform": 1},
		},
		bad: map[string][]string{"subway": {"no"}},
	}
	railValues = osmValues{
		good: map[string]map[string]int{
			"train":   {"yes": 0},
			"station": {"train": 0},
			"railway": {"halt": 0, "station": 1, "platform": 1},
		},
		bad: map[string][]string{"train": {"no"}},
	}
	busValues = osmValues{
		good: map[string]map[string]int{
			"bus":        {"yes": 0},
			"amenity":    {"bus_station": 0},
			"highway":    {"bus_stop": 0, "platform": 1},
			"trolleybus": {"yes": 2},
		},
		bad: map[string][]string{"bus": {"no"}},
	}
	ferryValues = osmValues{
		good: map[string]map[string]int{
			"ferry":   {"yes": 0},
			"amenity": {"ferry_terminal": 0},
		},
		bad: map[string][]string{"ferry": {"no"}},
	}
	cableTramValues = osmValues{
		good: map[string]map[string]int{
			"tram":       {"yes": 1},
			"light_rail": {"yes": 1},
			"train":      {"yes": 2},
			"railway":    {"halt": 2, "tram_stop": 1, "station": 2, "platform": 2},
			"station":    {"light_rail": 3},
		},
	}
	aerialLiftValues = osmValues{
		good: map[string]map[string]int{
			"aerialway": {"station": 0},
		},
	}
	funicularValues = osmValues{
		good: map[string]map[string]int{
			"railway":    {"funicular": 0, "light_rail": 1},
			"station":    {"funicular": 0},
			"light_rail": {"yes": 2},
		},
	}
	trolleybusValues = osmValues{
		good: map[string]map[string]int{
			"trolleybus": {"yes": 0},
			"bus":        {"yes": 1},
			"amenity":    {"bus_station": 1},
			"highway":    {"bus_stop": 1, "platform": 1},
		},
		bad: map[string][]string{"trolleybus": {"no"}},
	}
	monorailValues = osmValues{
		good: map[string]map[string]int{
			"monorail":   {"yes": 0},
			"station":    {"monorail": 1},
			"railway":    {"halt": 1, "platform": 1, "station": 2},
			"light_rail": {"yes": 2},
		},
		bad: map[string][]string{"monorail": {"no"}},
	}
)

var routeTypeValues = map[string]osmValues{
	"Tram":              tramValues,
	"StreetCar":         tramValues,
	"LightRail":         lightRailValues,
	"Subway":            subwayValues,
	"Metro":             subwayValues,
	"Rail":              railValues,
	"Bus":               busValues,
	"Ferry":             ferryValues,
	"CableTram":         cableTramValues,
	"AerialLift":        aerialLiftValues,
	"SuspendedCableCar": aerialLiftValues,
	"Funicular":         funicularValues,
	"Trolleybus":        trolleybusValues,
	"Monorail":          monorailValues,
}

// tagScore returns the best good value score of tags for the route type, or
// ok=false if any tag holds a bad value.
func tagScore(routeType string, tags map[string]string) (int, bool) {
	values := routeTypeValues[routeType]
	for key, bad := range values.bad {
		v, ok := tags[key]
		if !ok {
			continue
		}
		for _, b := range bad {
			if v == b {
				return 0, false
			}
		}
	}

	score := noGoodTagScore
	for key, good := range values.good {
		if s, ok := good[tags[key]]; ok && s < score {
			score = s
		}
	}
	return score, true
}

// qualityScore adds one point for every missing quality attribute.
func qualityScore(tags map[string]string) int {
	score := 0
	if _, ok := tags["ref:IFOPT"]; !ok {
		score++
	}
	if _, ok := tags["wheelchair"]; !ok {
		score++
	}
	return score
}

// candidateNodeCost is kind + route type tags + dataset quality, ok=false drops the candidate.
func candidateNodeCost(c *Candidate, routeType string) (float64, bool) {
	ts, ok := tagScore(routeType, c.Tags)
	if !ok {
		return 0, false
	}
	return float64(int(c.Kind) + ts + qualityScore(c.Tags)), true
}
