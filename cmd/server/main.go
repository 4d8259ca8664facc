package main

import (
	"context"
	"errors"
	"flag"

	"github.com/lintang-b-s/Stoplocator/pkg/finder"
	"github.com/lintang-b-s/Stoplocator/pkg/http"
	"github.com/lintang-b-s/Stoplocator/pkg/http/usecases"
	"github.com/lintang-b-s/Stoplocator/pkg/logger"
	"github.com/lintang-b-s/Stoplocator/pkg/osmparser"
	"github.com/lintang-b-s/Stoplocator/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configFile   = flag.String("config", "", "config file, default ./data/config.yaml")
	mapFile      = flag.String("f", "", "openstreetmap file used when the dataset cache is missing or stale")
	cacheFile    = flag.String("cache", "./data/osm_stops.tsv.bz2", "dataset cache")
	maxAge       = flag.Duration("cache_max_age", 0, "re-extract caches older than this, 0 never")
	useRateLimit = flag.Bool("ratelimit", false, "enable the global rate limiter")
	maxHits      = flag.Int("max_candidates", 100, "maximum candidates returned by /api/candidates")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rows, err := osmparser.NewOSMParser(logger).LoadOrExtract(ctx, *cacheFile, *mapFile, *maxAge)
	if err != nil {
		logger.Fatal("load dataset", zap.Error(err))
	}
	dataset, _ := finder.NewDataset(rows, cfg, logger)
	locator := finder.NewLocator(cfg, dataset, logger)

	api := http.NewServer(logger)
	locatorService := usecases.NewLocatorService(logger, locator, dataset, *maxHits)
	if _, err := api.Use(ctx, logger, *useRateLimit, locatorService); err != nil {
		logger.Fatal("start api", zap.Error(err))
	}

	go func() {
		signal := http.GracefulShutdown()
		logger.Info("Stoplocator server stopping", zap.String("signal", signal.String()))
		cancel()
	}()

	if err := api.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("api stopped", zap.Error(err))
	}
	logger.Info("Stoplocator server stopped")
}
