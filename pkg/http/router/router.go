package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	_ "github.com/lintang-b-s/Stoplocator/pkg/http/docs"
	"github.com/lintang-b-s/Stoplocator/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/Stoplocator/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/Stoplocator/pkg/http/server"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "net/http/pprof"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			Stoplocator API
//	@version		1.0
//	@description	Resolves transit stop names to coordinates using openstreetmap data.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api

// Handler builds the router with every middleware of the API.
func (api *API) Handler(config http_server.Config, useRateLimit bool,
	locatorService controllers.LocatorService) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)

	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	group := router_helper.NewRouteGroup(router, "/api")

	locatorRoutes := controllers.New(locatorService, config.Timeout, api.log)
	locatorRoutes.Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Labels, Heartbeat("healthz"), Logger(api.log)}
	if useRateLimit {
		mwChain = append(mwChain, Limit(config.RateLimit, config.RateBurst))
	}
	return alice.New(mwChain...).Then(router)
}

// Run serves the API until ctx is done or the server fails.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	useRateLimit bool,
	locatorService controllers.LocatorService,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(config, useRateLimit, locatorService), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		api.log.Info("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
