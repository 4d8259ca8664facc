package http

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	http_router "github.com/lintang-b-s/Stoplocator/pkg/http/router"
	"github.com/lintang-b-s/Stoplocator/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Stoplocator/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the API in the background; Wait returns its error.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	locatorService controllers.LocatorService,
) (*Server, error) {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("API_RATE_LIMIT", 20)
	viper.SetDefault("API_RATE_BURST", 40)

	config := http_server.Config{
		Port:      viper.GetInt("API_PORT"),
		Timeout:   viper.GetDuration("API_TIMEOUT"),
		RateLimit: viper.GetFloat64("API_RATE_LIMIT"),
		RateBurst: viper.GetInt("API_RATE_BURST"),
	}

	server := http_router.NewAPI(log)

	g := &errgroup.Group{}
	g.Go(func() error {
		return server.Run(ctx, config, useRateLimit, locatorService)
	})
	s.g = g

	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}

// GracefulShutdown blocks until SIGINT or SIGTERM and returns the signal.
func GracefulShutdown() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}
