package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/travel-research-service/internal/client"
	"github.com/kjstillabower/travel-research-service/internal/config"
	httphandler "github.com/kjstillabower/travel-research-service/internal/http"
	"github.com/kjstillabower/travel-research-service/internal/lifecycle"
	"github.com/kjstillabower/travel-research-service/internal/observability"
	"github.com/kjstillabower/travel-research-service/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if missing := cfg.MissingKeys(); len(missing) > 0 {
		logger.Warn("API keys not configured; affected endpoints will report failures", zap.Strings("missing", missing))
	}

	app := newApp(cfg, logger)
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	lifecycle.MarkStarted(time.Now())
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	app.close(logger)

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// app holds the wired adapters and router.
type app struct {
	weather  *client.WeatherClient
	news     *client.NewsClient
	exchange *client.ExchangeClient
	router   *mux.Router
}

// newApp builds the adapters once from cfg and mounts every route.
func newApp(cfg *config.Config, logger *zap.Logger) *app {
	a := &app{
		weather:  client.NewWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.UpstreamTimeout),
		news:     client.NewNewsClient(cfg.NewsAPIKey, cfg.NewsAPIURL, cfg.UpstreamTimeout),
		exchange: client.NewExchangeClient(cfg.ExchangeAPIKey, cfg.ExchangeAPIURL, cfg.UpstreamTimeout),
	}
	a.weather.SetLogger(logger)
	a.news.SetLogger(logger)
	a.exchange.SetLogger(logger)

	research := service.NewResearchService(a.weather, a.news, a.exchange)
	healthConfig := &httphandler.HealthConfig{
		Window:   cfg.HealthWindow,
		ErrorPct: cfg.HealthErrorPct,
		ConfiguredAPIs: map[string]bool{
			client.ServiceWeather:  a.weather.Configured(),
			client.ServiceNews:     a.news.Configured(),
			client.ServiceExchange: a.exchange.Configured(),
		},
	}
	sources := httphandler.Sources{Weather: a.weather, News: a.news, Exchange: a.exchange}
	handler := httphandler.NewHandler(sources, research, healthConfig, logger, cfg.CityMaxLength, cfg.CityMinLength)

	a.router = mux.NewRouter()
	a.router.Use(httphandler.CorrelationIDMiddleware(logger))
	a.router.Use(httphandler.MetricsMiddleware)
	a.router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)
	handler.Routes(a.router, cfg.RequestTimeout)
	return a
}

func (a *app) close(logger *zap.Logger) {
	for name, c := range map[string]interface{ Close() error }{
		client.ServiceWeather:  a.weather,
		client.ServiceNews:     a.news,
		client.ServiceExchange: a.exchange,
	} {
		if err := c.Close(); err != nil {
			logger.Error("client close", zap.String("service", name), zap.Error(err))
		}
	}
}
