package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/urfave/negroni"

	"github.com/ethpandaops/brubeckscan/handlers"
	"github.com/ethpandaops/brubeckscan/handlers/api"
	_ "github.com/ethpandaops/brubeckscan/handlers/api/docs"
	"github.com/ethpandaops/brubeckscan/handlers/middleware"
	"github.com/ethpandaops/brubeckscan/metrics"
	"github.com/ethpandaops/brubeckscan/services"
	"github.com/ethpandaops/brubeckscan/static"
	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/utils"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file, if empty string defaults will be used")
	flag.Parse()

	cfg := &types.Config{}
	err := utils.ReadConfig(cfg, *configPath)
	if err != nil {
		utils.LogFatal(err, "error reading config file", 0)
	}
	utils.Config = cfg
	logWriter, logger := utils.InitLogger()
	defer logWriter.Dispose()

	logger.WithFields(logrus.Fields{
		"config":  *configPath,
		"version": utils.BuildVersion,
		"release": utils.BuildRelease,
	}).Printf("starting")

	err = services.StartNodeService(logger.WithField("module", "nodeservice"))
	if err != nil {
		logger.Fatalf("error starting node service: %v", err)
	}

	err = services.StartFrontendCache(logger.WithField("module", "frontendcache"))
	if err != nil {
		logger.Fatalf("error starting frontend cache service: %v", err)
	}

	if cfg.RateLimit.Enabled {
		err = services.StartCallRateLimiter(cfg.RateLimit.ProxyCount, cfg.RateLimit.Rate, cfg.RateLimit.Burst)
		if err != nil {
			logger.Fatalf("error starting call rate limiter: %v", err)
		}
	}

	if cfg.Metrics.Enabled && !cfg.Metrics.Public {
		err = metrics.StartMetricsServer(logger.WithField("module", "metrics"), cfg.Metrics.Host, cfg.Metrics.Port)
		if err != nil {
			logger.Fatalf("error starting metrics server: %v", err)
		}
	}

	var webserver *http.Server
	var apiRateLimiter *middleware.RateLimitMiddleware
	if cfg.Frontend.Enabled {
		router := mux.NewRouter()
		apiRateLimiter = registerRoutes(router, logger)

		webserver, err = startWebserver(router, logger)
		if err != nil {
			logger.Fatalf("error starting webserver: %v", err)
		}
	}

	utils.WaitForCtrlC()
	logger.Println("exiting...")

	if apiRateLimiter != nil {
		apiRateLimiter.Stop()
	}
	if webserver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := webserver.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("error shutting down webserver")
		}
	}
}

func registerRoutes(router *mux.Router, logger logrus.FieldLogger) *middleware.RateLimitMiddleware {
	router.HandleFunc("/", handlers.Index).Methods("GET")
	router.HandleFunc("/index", handlers.Index).Methods("GET")
	router.HandleFunc("/node", handlers.NodeRedirect).Methods("GET")
	router.HandleFunc("/node/{address}", handlers.Node).Methods("GET")
	router.HandleFunc("/identicon", handlers.Identicon).Methods("GET")

	var apiRateLimiter *middleware.RateLimitMiddleware
	if utils.Config.Api.Enabled {
		apiLogger := logger.WithField("module", "api")

		router.PathPrefix("/api/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/api/docs/doc.json")))

		// a node lookup issues up to four upstream requests
		middleware.SetEndpointCost("/api/v1/node/", 4)
		middleware.SetEndpointCost("/api/v1/timezones", 1)

		tokenAuth := middleware.NewTokenAuthMiddleware(middleware.TokenAuthConfig{
			Secret:      utils.Config.Api.AuthSecret,
			RequireAuth: utils.Config.Api.RequireAuth,
			ProxyCount:  utils.Config.RateLimit.ProxyCount,
		}, apiLogger)
		apiRateLimiter = middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
			DefaultRateLimit:      utils.Config.Api.DefaultRateLimit,
			DefaultRateLimitBurst: utils.Config.Api.DefaultRateLimitBurst,
			Disabled:              utils.Config.Api.DisableDefaultRateLimit,
			WhitelistedIPs:        utils.Config.Api.WhitelistedIPs,
			ProxyCount:            utils.Config.RateLimit.ProxyCount,
		}, apiLogger)

		apiRouter := router.PathPrefix("/api").Subrouter()
		apiRouter.Use(middleware.NewCorsMiddleware(utils.Config.Api.CorsOrigins))
		apiRouter.Use(tokenAuth.Middleware)
		apiRouter.Use(middleware.CallCostMiddleware)
		apiRouter.Use(apiRateLimiter.Middleware)

		apiRouter.HandleFunc("/v1/node/{address}", api.APINodeV1).Methods("GET", "OPTIONS")
		apiRouter.HandleFunc("/v1/node/{address}/metrics", api.APINodeMetricsV1).Methods("GET", "OPTIONS")
		apiRouter.HandleFunc("/v1/timezones", api.APITimezonesV1).Methods("GET", "OPTIONS")
	}

	if utils.Config.Frontend.Pprof {
		router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
		router.Handle("/debug/metrics", metrics.GetMetricsHandler())
	}

	if utils.Config.Metrics.Enabled && utils.Config.Metrics.Public {
		router.Handle("/metrics", metrics.GetMetricsHandler())
	}

	if utils.Config.Frontend.Debug {
		// serve files from local directory when debugging, instead of from go embed file
		cssHandler := http.FileServer(http.Dir("static/css"))
		router.PathPrefix("/css").Handler(http.StripPrefix("/css/", cssHandler))
	}

	fileSys := http.FS(static.Files)
	router.PathPrefix("/").Handler(handlers.CustomFileServer(http.FileServer(fileSys), fileSys, handlers.NotFound))

	return apiRateLimiter
}

func startWebserver(router *mux.Router, logger logrus.FieldLogger) (*http.Server, error) {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.UseHandler(router)

	if utils.Config.Frontend.HttpWriteTimeout == 0 {
		utils.Config.Frontend.HttpWriteTimeout = time.Second * 45
	}
	if utils.Config.Frontend.HttpReadTimeout == 0 {
		utils.Config.Frontend.HttpReadTimeout = time.Second * 15
	}
	if utils.Config.Frontend.HttpIdleTimeout == 0 {
		utils.Config.Frontend.HttpIdleTimeout = time.Second * 60
	}
	srv := &http.Server{
		Addr:         utils.Config.Server.Host + ":" + utils.Config.Server.Port,
		WriteTimeout: utils.Config.Frontend.HttpWriteTimeout,
		ReadTimeout:  utils.Config.Frontend.HttpReadTimeout,
		IdleTimeout:  utils.Config.Frontend.HttpIdleTimeout,
		Handler:      n,
	}

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	logger.Printf("http server listening on %v", srv.Addr)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Error serving frontend")
		}
	}()

	return srv, nil
}
