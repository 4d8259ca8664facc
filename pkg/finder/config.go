package finder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/spf13/viper"
)

// Route types as named in the GTFS reference, mapped to their numeric route_type.
var routeTypes = map[string]int{
	"Tram":              0,
	"StreetCar":         0,
	"LightRail":         0,
	"Subway":            1,
	"Metro":             1,
	"Rail":              2,
	"Bus":               3,
	"Ferry":             4,
	"CableTram":         5,
	"AerialLift":        6,
	"SuspendedCableCar": 6,
	"Funicular":         7,
	"Trolleybus":        11,
	"Monorail":          12,
}

// average speed in km/h per numeric route type, used when average_speed is 0.
var defaultSpeeds = map[int]float64{0: 25, 1: 35, 2: 50, 3: 15, 4: 20,
	5: 10, 6: 10, 7: 10, 11: 15, 12: 35}

// RouteTypeFromGTFS returns the canonical name for a numeric GTFS route_type.
func RouteTypeFromGTFS(rt int) (string, bool) {
	canonical := map[int]string{0: "Tram", 1: "Subway", 2: "Rail", 3: "Bus", 4: "Ferry",
		5: "CableTram", 6: "AerialLift", 7: "Funicular", 11: "Trolleybus", 12: "Monorail"}
	name, ok := canonical[rt]
	return name, ok
}

func IsRouteType(name string) bool {
	_, ok := routeTypes[name]
	return ok
}

type Config struct {
	// km/h, 0 picks the default of the route type
	AverageSpeed float64 `mapstructure:"average_speed" json:"average_speed" validate:"gte=0,lte=200"`
	RouteType    string  `mapstructure:"route_type" json:"route_type" validate:"routetype"`
	// meters
	ClusterRadius     float64 `mapstructure:"cluster_radius" json:"cluster_radius" validate:"gt=0"`
	MaxStopDistance   float64 `mapstructure:"max_stop_distance" json:"max_stop_distance" validate:"gt=0"`
	MinTravelDistance float64 `mapstructure:"min_travel_distance" json:"min_travel_distance" validate:"gte=0"`
	// minutes
	TimeTolerance float64 `mapstructure:"time_tolerance" json:"time_tolerance" validate:"gte=0"`

	WindowFactor       float64 `mapstructure:"window_factor" json:"window_factor" validate:"gte=1"`
	MissingNodeCost    float64 `mapstructure:"missing_node_cost" json:"missing_node_cost" validate:"gte=0"`
	MaxClustersPerStop int     `mapstructure:"max_clusters_per_stop" json:"max_clusters_per_stop" validate:"gte=1"`
	MaxIterations      int     `mapstructure:"max_iterations" json:"max_iterations" validate:"gte=1"`
	MaxNameDistance    int     `mapstructure:"max_name_distance" json:"max_name_distance" validate:"gte=0"`
	SimpleTravelCost   bool    `mapstructure:"simple_travel_cost" json:"simple_travel_cost"`

	InterpolateMissingLocations bool `mapstructure:"interpolate_missing_locations" json:"interpolate_missing_locations"`
	DisableLocationDetection    bool `mapstructure:"disable_location_detection" json:"disable_location_detection"`
	DisplayRoute                int  `mapstructure:"display_route" json:"display_route" validate:"gte=0,lte=7"`

	NameAbbreviations map[string]string `mapstructure:"name_abbreviations" json:"name_abbreviations"`

	Workers int `mapstructure:"workers" json:"workers" validate:"gte=0"`
}

const (
	DisplayClusterPolylines = 1 << iota
	DisplayRoutePolyline
	DisplayExpandedNodes
)

func DefaultConfig() Config {
	return Config{
		AverageSpeed:                0,
		RouteType:                   "Bus",
		ClusterRadius:               250,
		MaxStopDistance:             20000,
		MinTravelDistance:           0,
		TimeTolerance:               1,
		WindowFactor:                3,
		MissingNodeCost:             0,
		MaxClustersPerStop:          8,
		MaxIterations:               200000,
		MaxNameDistance:             3,
		InterpolateMissingLocations: true,
		NameAbbreviations: map[string]string{
			"hbf": "hauptbahnhof",
			"bf":  "bahnhof",
			"str": "strasse",
			"pl":  "platz",
			"st":  "sankt",
		},
	}
}

// SetViperDefaults registers DefaultConfig under prefix (e.g. "locator") so env
// variables and config files override single keys.
func SetViperDefaults(v *viper.Viper, prefix string) {
	d := DefaultConfig()
	key := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	v.SetDefault(key("average_speed"), d.AverageSpeed)
	v.SetDefault(key("route_type"), d.RouteType)
	v.SetDefault(key("cluster_radius"), d.ClusterRadius)
	v.SetDefault(key("max_stop_distance"), d.MaxStopDistance)
	v.SetDefault(key("min_travel_distance"), d.MinTravelDistance)
	v.SetDefault(key("time_tolerance"), d.TimeTolerance)
	v.SetDefault(key("window_factor"), d.WindowFactor)
	v.SetDefault(key("missing_node_cost"), d.MissingNodeCost)
	v.SetDefault(key("max_clusters_per_stop"), d.MaxClustersPerStop)
	v.SetDefault(key("max_iterations"), d.MaxIterations)
	v.SetDefault(key("max_name_distance"), d.MaxNameDistance)
	v.SetDefault(key("simple_travel_cost"), d.SimpleTravelCost)
	v.SetDefault(key("interpolate_missing_locations"), d.InterpolateMissingLocations)
	v.SetDefault(key("disable_location_detection"), d.DisableLocationDetection)
	v.SetDefault(key("display_route"), d.DisplayRoute)
	v.SetDefault(key("workers"), d.Workers)
}

// ConfigFromViper unmarshals the keys below prefix onto DefaultConfig and validates the result.
func ConfigFromViper(v *viper.Viper, prefix string) (Config, error) {
	cfg := DefaultConfig()
	sub := v
	if prefix != "" {
		sub = v.Sub(prefix)
	}
	if sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal locator config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var configValidator = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("routetype", func(fl validator.FieldLevel) bool {
		return IsRouteType(fl.Field().String())
	})
	return v
}()

func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid locator config: %w", err)
	}
	return nil
}

// WithRouteType returns a copy of c using routeType if it names a known route type.
func (c Config) WithRouteType(routeType string) Config {
	if IsRouteType(routeType) {
		c.RouteType = routeType
	}
	return c
}

// Speed returns the average speed in km/h, falling back to the route type default.
func (c Config) Speed() float64 {
	if c.AverageSpeed > 0 {
		return c.AverageSpeed
	}
	if s, ok := defaultSpeeds[routeTypes[c.RouteType]]; ok {
		return s
	}
	return defaultSpeeds[3]
}

func (c Config) clusterRadius() geo.Distance {
	return geo.Meters(c.ClusterRadius)
}

func (c Config) maxStopDistance() geo.Distance {
	return geo.Meters(c.MaxStopDistance)
}

func (c Config) minTravelDistance() geo.Distance {
	return geo.Meters(c.MinTravelDistance)
}

func (c Config) timeTolerance() time.Duration {
	return time.Duration(c.TimeTolerance * float64(time.Minute))
}

// abbreviations returns the lower-cased abbreviation pairs, longest key first, so
// "hbf" is tried before "bf". Keys carry no dot, viper splits keys on ".".
func (c Config) abbreviations() [][2]string {
	out := make([][2]string, 0, len(c.NameAbbreviations))
	for k, v := range c.NameAbbreviations {
		k = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(k)), ".")
		if k == "" {
			continue
		}
		out = append(out, [2]string{k, strings.ToLower(strings.TrimSpace(v))})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i][0]) != len(out[j][0]) {
			return len(out[i][0]) > len(out[j][0])
		}
		return out[i][0] < out[j][0]
	})
	return out
}
