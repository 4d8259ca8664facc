package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/lintang-b-s/Stoplocator/pkg/logger"
	"github.com/lintang-b-s/Stoplocator/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	mapFile   = flag.String("f", "./data/region.osm.pbf", "openstreetmap file (.osm.pbf or .osm)")
	cacheFile = flag.String("out", "./data/osm_stops.tsv.bz2", "dataset cache to write")
	bbox      = flag.String("bbox", "", "only keep nodes inside minLat,minLon,maxLat,maxLon")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	parser := osmparser.NewOSMParser(logger)
	if *bbox != "" {
		region, err := parseBBox(*bbox)
		if err != nil {
			logger.Fatal("invalid bbox", zap.Error(err))
		}
		parser = parser.WithRegion(region)
	}

	rows, err := parser.Parse(ctx, *mapFile)
	if err != nil {
		logger.Fatal("parse openstreetmap file", zap.String("file", *mapFile), zap.Error(err))
	}

	if err := osmparser.WriteRows(*cacheFile, rows, time.Now()); err != nil {
		logger.Fatal("write dataset cache", zap.String("file", *cacheFile), zap.Error(err))
	}
	logger.Info("dataset cache written", zap.String("file", *cacheFile), zap.Int("rows", len(rows)))
}

func parseBBox(s string) (geo.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.Region{}, fmt.Errorf("expected 4 comma separated values, got %d", len(parts))
	}
	v := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.Region{}, err
		}
		v[i] = f
	}
	return geo.NewBoundingBoxRegion(v[0], v[1], v[2], v[3]), nil
}
