package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/semi-catalog/pkg/application"
	"github.com/iota-uz/semi-catalog/pkg/configuration"
	"github.com/iota-uz/semi-catalog/pkg/constants"
	"github.com/iota-uz/semi-catalog/pkg/httpapi"
	"github.com/iota-uz/semi-catalog/pkg/metrics"
	"github.com/iota-uz/semi-catalog/pkg/middleware"
	"github.com/iota-uz/semi-catalog/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	// Pool is nil when the catalog runs on the in-memory store.
	Pool *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	loggerOpts := middleware.DefaultLoggerOptions()
	loggerOpts.RequestIDHeader = conf.RequestIDHeader
	loggerOpts.RealIPHeader = conf.RealIPHeader

	// WithLogger opens the root span for each request.
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, loggerOpts),

		middleware.TracedMiddleware("database"),
		middleware.Provide(constants.PoolKey, options.Pool),

		middleware.TracedMiddleware("opsGuard"),
		middleware.OpsGuard(middleware.OpsGuardOptions{
			Enabled:      conf.OpsGuard.Enabled && conf.GoAppEnvironment == configuration.Production,
			Token:        conf.OpsGuard.Token,
			CIDRs:        conf.OpsGuard.CIDRs,
			RealIPHeader: conf.RealIPHeader,
			Paths:        []string{"/health", conf.Prometheus.Path},
		}),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.CorsAllowedOrigins...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		switch conf.RateLimit.Storage {
		case "redis":
			var err error
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
				RealIPHeader:      conf.RealIPHeader,
			}),
		)
	}

	app.RegisterMiddleware(middlewares...)

	var pinger metrics.Pinger
	if options.Pool != nil {
		pinger = options.Pool
	}
	app.RegisterControllers(metrics.NewHealthController(pinger))
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	serverInstance := server.NewHTTPServer(
		app,
		httpapi.NotFound(),
		httpapi.MethodNotAllowed(),
	)
	return serverInstance, nil
}
