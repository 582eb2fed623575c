// internal/app/app.go
package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"reddit-client/internal/client"
	"reddit-client/internal/config"
	handler "reddit-client/internal/handler/http"
	"reddit-client/internal/metrics"
	"reddit-client/internal/obs"
	"reddit-client/internal/parser"
	"reddit-client/internal/router"
	"reddit-client/internal/scraper"
	"reddit-client/pkg/reddit"
)

type App struct {
	Config   *config.Config
	Echo     *echo.Echo
	Service  scraper.ScraperService
	Client   *client.RedditClient
	Parser   parser.ParserInterface
	Logger   zerolog.Logger
	Registry *prometheus.Registry
}

// Initialize loads the configuration from the environment and builds the
// server around it.
func Initialize(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return New(ctx, cfg, obs.SetupLogger(cfg.LogLevel))
}

// New authenticates when cfg carries script credentials, so it may block on
// the token endpoint.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	rd, err := reddit.NewFromConfig(ctx, cfg, reddit.Options{Logger: &logger, Metrics: m})
	if err != nil {
		return nil, fmt.Errorf("failed to create Reddit client: %w", err)
	}

	redditParser := parser.NewRedditParser()
	scraperService := scraper.NewScraperService(rd.Client(), redditParser, scraper.Settings{
		DefaultPostLimit:    cfg.DefaultPostLimit,
		DefaultCommentLimit: cfg.DefaultCommentLimit,
		FeedPollInterval:    cfg.FeedPollInterval,
		FeedMaxRetries:      cfg.FeedMaxRetries,
		Logger:              logger,
		Metrics:             m,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	router.NewRouter(e, scraperService, logger)

	logger.Info().
		Bool("authenticated", rd.Authenticated()).
		Str("base_url", rd.Client().BaseURL()).
		Msg("application initialised")

	return &App{
		Config:   cfg,
		Echo:     e,
		Service:  scraperService,
		Client:   rd.Client(),
		Parser:   redditParser,
		Logger:   logger,
		Registry: reg,
	}, nil
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := logger.Info()
			if v.Error != nil {
				ev = logger.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func (a *App) Start() error {
	port := a.Config.ServerPort
	if port == "" {
		port = "8080"
	}
	a.Logger.Info().Str("port", port).Msg("server listening")
	return a.Echo.Start(":" + port)
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}
