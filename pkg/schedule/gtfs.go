package schedule

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownStopPair = errors.New("no scheduled travel time between stops")

type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
	rest []string
}

// Pattern is one distinct stop sequence served by at least one trip.
type Pattern struct {
	ID        string
	RouteID   string
	RouteType int
	StopIDs   []string
	Trips     int
}

type stopTime struct {
	tripID    string
	stopID    string
	sequence  int
	arrival   time.Duration
	departure time.Duration
}

type pairKey struct {
	from string
	to   string
}

type travelSum struct {
	total time.Duration
	count int
}

// Feed is a read-only view of a static GTFS feed directory: stops, the average
// travel time between consecutive stops over all trips and the trip patterns.
type Feed struct {
	stops       map[string]Stop
	stopOrder   []string
	stopsHeader []string
	avg         map[pairKey]time.Duration
	patterns    []Pattern
}

// LoadFeed reads stops.txt and stop_times.txt (required) plus trips.txt and
// routes.txt (optional) from dir.
func LoadFeed(dir string, logger *zap.Logger) (*Feed, error) {
	var (
		stops       []Stop
		stopsHeader []string
		stopTimes   []stopTime
		tripRoute   map[string]string
		routeType   map[string]int
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		stops, stopsHeader, err = parseStopsFile(filepath.Join(dir, "stops.txt"), logger)
		if err != nil {
			return fmt.Errorf("failed to parse stops (required): %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stopTimes, err = parseStopTimesFile(filepath.Join(dir, "stop_times.txt"), logger)
		if err != nil {
			return fmt.Errorf("failed to parse stop_times (required): %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tripRoute, err = parseTripsFile(filepath.Join(dir, "trips.txt"))
		if err != nil {
			logger.Warn("failed to parse trips", zap.Error(err))
			tripRoute = map[string]string{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		routeType, err = parseRoutesFile(filepath.Join(dir, "routes.txt"))
		if err != nil {
			logger.Warn("failed to parse routes", zap.Error(err))
			routeType = map[string]int{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feed := newFeed(stops, stopsHeader, stopTimes, tripRoute, routeType)
	logger.Info("loaded gtfs feed",
		zap.String("dir", dir),
		zap.Int("stops", len(feed.stops)),
		zap.Int("stop_times", len(stopTimes)),
		zap.Int("patterns", len(feed.patterns)))
	return feed, nil
}

func newFeed(stops []Stop, stopsHeader []string, stopTimes []stopTime,
	tripRoute map[string]string, routeType map[string]int) *Feed {
	feed := &Feed{
		stops:       make(map[string]Stop, len(stops)),
		stopOrder:   make([]string, 0, len(stops)),
		stopsHeader: stopsHeader,
		avg:         make(map[pairKey]time.Duration),
	}
	for _, s := range stops {
		if _, ok := feed.stops[s.ID]; !ok {
			feed.stopOrder = append(feed.stopOrder, s.ID)
		}
		feed.stops[s.ID] = s
	}

	trips := make(map[string][]stopTime)
	tripOrder := make([]string, 0)
	for _, st := range stopTimes {
		if _, ok := trips[st.tripID]; !ok {
			tripOrder = append(tripOrder, st.tripID)
		}
		trips[st.tripID] = append(trips[st.tripID], st)
	}

	sums := make(map[pairKey]*travelSum)
	patternIdx := make(map[string]int)
	for _, tripID := range tripOrder {
		sts := trips[tripID]
		sort.SliceStable(sts, func(i, j int) bool { return sts[i].sequence < sts[j].sequence })

		stopIDs := make([]string, len(sts))
		for i, st := range sts {
			stopIDs[i] = st.stopID
			if i == 0 {
				continue
			}
			prev := sts[i-1]
			key := pairKey{from: prev.stopID, to: st.stopID}
			s, ok := sums[key]
			if !ok {
				s = &travelSum{}
				sums[key] = s
			}
			s.total += st.arrival - prev.departure
			s.count++
		}

		patternKey := strings.Join(stopIDs, "\x00")
		if idx, ok := patternIdx[patternKey]; ok {
			feed.patterns[idx].Trips++
			continue
		}
		routeID := tripRoute[tripID]
		rt, ok := routeType[routeID]
		if !ok {
			rt = -1
		}
		patternIdx[patternKey] = len(feed.patterns)
		feed.patterns = append(feed.patterns, Pattern{
			ID:        fmt.Sprintf("pattern-%d", len(feed.patterns)),
			RouteID:   routeID,
			RouteType: rt,
			StopIDs:   stopIDs,
			Trips:     1,
		})
	}

	for key, s := range sums {
		feed.avg[key] = s.total / time.Duration(s.count)
	}
	return feed
}

// AvgTimeBetween returns the mean scheduled time from stop from to stop to over
// every trip that serves them consecutively.
func (f *Feed) AvgTimeBetween(from, to string) (time.Duration, error) {
	d, ok := f.avg[pairKey{from: from, to: to}]
	if !ok {
		return 0, fmt.Errorf("%w: %s -> %s", ErrUnknownStopPair, from, to)
	}
	return d, nil
}

func (f *Feed) Patterns() []Pattern {
	return f.patterns
}

func (f *Feed) Stop(id string) (Stop, bool) {
	s, ok := f.stops[id]
	return s, ok
}

// KnownLocation returns the coordinate stops.txt already carries for id, if usable.
func (f *Feed) KnownLocation(id string) (geo.Coordinate, bool) {
	s, ok := f.stops[id]
	if !ok {
		return geo.Coordinate{}, false
	}
	c := geo.NewCoordinate(s.Lat, s.Lon)
	return c, c.IsValid()
}

// WriteStops writes stops.txt with the coordinates of located replaced.
// Stops without a location keep what the feed had.
func (f *Feed) WriteStops(w io.Writer, located map[string]*geo.Coordinate) error {
	cw := csv.NewWriter(w)
	header := f.stopsHeader
	if len(header) == 0 {
		header = []string{"stop_id", "stop_name", "stop_lat", "stop_lon"}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	colMap := makeColumnMap(header)
	for _, id := range f.stopOrder {
		s := f.stops[id]
		lat, lon := s.Lat, s.Lon
		if loc, ok := located[id]; ok && loc != nil {
			lat, lon = loc.Lat, loc.Lon
		}

		record := make([]string, len(header))
		copy(record, s.rest)
		setField(record, colMap, "stop_id", s.ID)
		setField(record, colMap, "stop_name", s.Name)
		setField(record, colMap, "stop_lat", strconv.FormatFloat(lat, 'f', geo.CoordinatePrecision, 64))
		setField(record, colMap, "stop_lon", strconv.FormatFloat(lon, 'f', geo.CoordinatePrecision, 64))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func openCSV(filePath string) (*os.File, *csv.Reader, map[string]int, []string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	csvReader := csv.NewReader(file)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		file.Close()
		return nil, nil, nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return file, csvReader, makeColumnMap(header), header, nil
}

func parseStopsFile(filePath string, logger *zap.Logger) ([]Stop, []string, error) {
	file, csvReader, colMap, header, err := openCSV(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var stops []Stop
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed stop row", zap.Error(err))
			continue
		}

		stopID := getField(record, colMap, "stop_id")
		if stopID == "" {
			logger.Warn("skipping stop without stop_id")
			continue
		}
		// lat/lon may be empty for stops that still need a location
		lat, _ := strconv.ParseFloat(getField(record, colMap, "stop_lat"), 64)
		lon, _ := strconv.ParseFloat(getField(record, colMap, "stop_lon"), 64)

		stops = append(stops, Stop{
			ID:   stopID,
			Name: getField(record, colMap, "stop_name"),
			Lat:  lat,
			Lon:  lon,
			rest: record,
		})
	}
	return stops, header, nil
}

func parseStopTimesFile(filePath string, logger *zap.Logger) ([]stopTime, error) {
	file, csvReader, colMap, _, err := openCSV(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var stopTimes []stopTime
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed stop_time row", zap.Error(err))
			continue
		}

		seq, err := strconv.Atoi(getField(record, colMap, "stop_sequence"))
		if err != nil {
			logger.Warn("skipping stop_time with invalid stop_sequence", zap.Error(err))
			continue
		}
		arrival, errA := ParseGTFSTime(getField(record, colMap, "arrival_time"))
		departure, errD := ParseGTFSTime(getField(record, colMap, "departure_time"))
		switch {
		case errA != nil && errD != nil:
			logger.Warn("skipping stop_time without times",
				zap.String("trip_id", getField(record, colMap, "trip_id")))
			continue
		case errA != nil:
			arrival = departure
		case errD != nil:
			departure = arrival
		}

		stopTimes = append(stopTimes, stopTime{
			tripID:    getField(record, colMap, "trip_id"),
			stopID:    getField(record, colMap, "stop_id"),
			sequence:  seq,
			arrival:   arrival,
			departure: departure,
		})
	}
	return stopTimes, nil
}

func parseTripsFile(filePath string) (map[string]string, error) {
	file, csvReader, colMap, _, err := openCSV(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tripRoute := make(map[string]string)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		tripRoute[getField(record, colMap, "trip_id")] = getField(record, colMap, "route_id")
	}
	return tripRoute, nil
}

func parseRoutesFile(filePath string) (map[string]int, error) {
	file, csvReader, colMap, _, err := openCSV(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	routeType := make(map[string]int)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rt, err := strconv.Atoi(getField(record, colMap, "route_type"))
		if err != nil {
			continue
		}
		routeType[getField(record, colMap, "route_id")] = rt
	}
	return routeType, nil
}

// ParseGTFSTime parses HH:MM:SS, where HH may exceed 23 for trips past midnight.
func ParseGTFSTime(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid gtfs time %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid gtfs time %q", s)
		}
		v[i] = n
	}
	if v[1] > 59 || v[2] > 59 {
		return 0, fmt.Errorf("invalid gtfs time %q", s)
	}
	return time.Duration(v[0])*time.Hour + time.Duration(v[1])*time.Minute +
		time.Duration(v[2])*time.Second, nil
}

func makeColumnMap(header []string) map[string]int {
	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}
	return colMap
}

func getField(record []string, colMap map[string]int, field string) string {
	if idx, ok := colMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func setField(record []string, colMap map[string]int, field, value string) {
	if idx, ok := colMap[field]; ok && idx < len(record) {
		record[idx] = value
	}
}
