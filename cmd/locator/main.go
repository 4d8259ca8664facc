package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lintang-b-s/Stoplocator/pkg/finder"
	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/logger"
	"github.com/lintang-b-s/Stoplocator/pkg/osmparser"
	"github.com/lintang-b-s/Stoplocator/pkg/schedule"
	"github.com/lintang-b-s/Stoplocator/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "", "config file, default ./data/config.yaml")
	gtfsDir    = flag.String("gtfs", "./data/gtfs", "directory holding stops.txt and stop_times.txt")
	mapFile    = flag.String("f", "", "openstreetmap file used when the dataset cache is missing or stale")
	cacheFile  = flag.String("cache", "./data/osm_stops.tsv.bz2", "dataset cache")
	maxAge     = flag.Duration("cache_max_age", 30*24*time.Hour, "re-extract caches older than this, 0 never")
	margin     = flag.Float64("margin", 5000, "keep dataset nodes within this many meters of the feed stops")
	out        = flag.String("out", "", "stops.txt to write, default <gtfs>/stops_located.txt")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := util.ReadConfig(*configFile); err != nil {
		logger.Fatal("read config", zap.Error(err))
	}
	finder.SetViperDefaults(viper.GetViper(), "locator")
	cfg, err := finder.ConfigFromViper(viper.GetViper(), "locator")
	if err != nil {
		logger.Fatal("locator config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed, err := schedule.LoadFeed(*gtfsDir, logger)
	if err != nil {
		logger.Fatal("load gtfs feed", zap.String("dir", *gtfsDir), zap.Error(err))
	}

	parser := osmparser.NewOSMParser(logger)
	if region := feedRegion(feed, geo.Meters(*margin)); !region.IsEmpty() {
		sw, ne := region.Bounds()
		logger.Info("restricting extract to feed area",
			zap.Stringer("south_west", sw), zap.Stringer("north_east", ne))
		parser = parser.WithRegion(region)
	}
	rows, err := parser.LoadOrExtract(ctx, *cacheFile, *mapFile, *maxAge)
	if err != nil {
		logger.Fatal("load dataset", zap.Error(err))
	}
	dataset, _ := finder.NewDataset(rows, cfg, logger)

	locator := finder.NewLocator(cfg, dataset, logger)
	outcomes := locator.LocateAll(ctx, requestsFromFeed(feed))

	located := make(map[string]*geo.Coordinate)
	unresolved := 0
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		for id, loc := range o.Result.Locations {
			if loc != nil && located[id] == nil {
				located[id] = loc
			}
		}
	}
	for _, s := range feedStopIDs(feed) {
		if located[s] == nil {
			unresolved++
		}
	}

	outFile := *out
	if outFile == "" {
		outFile = filepath.Join(*gtfsDir, "stops_located.txt")
	}
	f, err := os.Create(outFile)
	if err != nil {
		logger.Fatal("create output", zap.String("file", outFile), zap.Error(err))
	}
	defer f.Close()
	if err := feed.WriteStops(f, located); err != nil {
		logger.Fatal("write stops", zap.String("file", outFile), zap.Error(err))
	}

	logger.Info("stop locations written",
		zap.String("file", outFile),
		zap.Int("patterns", len(outcomes)),
		zap.Int("located", len(located)),
		zap.Int("unresolved", unresolved))
}

// requestsFromFeed turns every trip pattern into one request. Stops.txt
// coordinates become known locations.
func requestsFromFeed(feed *schedule.Feed) []finder.Request {
	patterns := feed.Patterns()
	reqs := make([]finder.Request, 0, len(patterns))
	for _, p := range patterns {
		req := finder.Request{
			ID:       p.ID,
			Stops:    make([]finder.StopInput, 0, len(p.StopIDs)),
			Schedule: feed,
			Known:    make(map[string]geo.Coordinate),
		}
		if rt, ok := finder.RouteTypeFromGTFS(p.RouteType); ok {
			req.RouteType = rt
		}
		for _, id := range p.StopIDs {
			name := id
			if s, ok := feed.Stop(id); ok && s.Name != "" {
				name = s.Name
			}
			req.Stops = append(req.Stops, finder.StopInput{StopID: id, Name: name})
			if loc, ok := feed.KnownLocation(id); ok {
				req.Known[id] = loc
			}
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func feedStopIDs(feed *schedule.Feed) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, p := range feed.Patterns() {
		for _, id := range p.StopIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// feedRegion is the area around the stops of the feed that already have a location.
func feedRegion(feed *schedule.Feed, margin geo.Distance) geo.Region {
	coords := make([]geo.Coordinate, 0)
	for _, id := range feedStopIDs(feed) {
		if loc, ok := feed.KnownLocation(id); ok {
			coords = append(coords, loc)
		}
	}
	return geo.NewRegion(coords, margin)
}
