package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/handlers"
	"home-gallery/internal/indexer"
	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
	"home-gallery/internal/middleware"
	"home-gallery/internal/notify"
	"home-gallery/internal/probe"
	"home-gallery/internal/scheduler"
	"home-gallery/internal/slideshow"
	"home-gallery/internal/startup"
	"home-gallery/internal/thumbs"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, runtime.Version())

	// Open the catalogue database
	catStart := time.Now()
	cat, err := catalogue.New(config.DatabaseDir)
	if err != nil {
		startup.LogFatal("Failed to open catalogue: %v", err)
	}
	defer cat.Close()

	records, err := cat.Count(context.Background())
	if err != nil {
		logging.Warn("Initial catalogue count failed: %v", err)
	}
	startup.LogCatalogueInit(time.Since(catStart), int64(records))

	// Thumbnail renderer and metadata prober
	startup.LogThumbnailerInit(config.ThumbnailsEnabled)
	renderer := thumbs.New(config.MediaDir, config.HiddenThumbDir, config.ThumbEdgePx, config.ThumbQuality)
	prober := probe.New()

	// Indexer
	ix := indexer.New(cat, prober, renderer, config.MediaDir, 0)

	// Memories notifier
	notifier := notify.New(cat)

	// Slideshow sessions
	store := slideshow.NewStore(config.SessionTTL)
	store.StartSweeper(10 * time.Minute)
	engine := slideshow.NewEngine(config.MediaDir, store)

	// Daily jobs
	startup.LogSchedulerInit(config.AutoIndexEnabled, config.AutoIndexAt, config.NotificationAt)
	sched := scheduler.New()
	if config.AutoIndexEnabled {
		sched.Add("daily-index", config.AutoIndexAt, func(ctx context.Context) {
			runIndex(ctx, ix, "scheduled")
		})
	}
	sched.Add("memories-notification", config.NotificationAt, func(ctx context.Context) {
		if err := notifier.CheckAndQueue(ctx); err != nil {
			logging.Error("Memories notification check failed: %v", err)
		}
	})
	sched.Start(context.Background())

	// Startup index pass in the background (non-blocking)
	if config.IndexOnStart {
		go runIndex(context.Background(), ix, "startup")
		startup.LogIndexerStarted()
	}

	// Initialize handlers and router
	h := handlers.New(config, cat, engine, ix, notifier, renderer)
	router := mux.NewRouter()
	router.Use(middleware.Metrics())
	h.Register(router)

	startup.LogHTTPRoutes(router, config.LogMediaRequests, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogMediaRequests = config.LogMediaRequests
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	// Separate metrics listener so scrapes never contend with media bytes
	if config.MetricsEnabled {
		go serveMetrics(config.MetricsPort)
	}

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming responses may outlive any fixed deadline
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, sched, store)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func runIndex(ctx context.Context, ix *indexer.Indexer, trigger string) {
	summary, err := ix.Run(ctx)
	switch {
	case errors.Is(err, indexer.ErrAlreadyRunning):
		metrics.IndexRunsTotal.WithLabelValues(trigger, "skipped").Inc()
		logging.Warn("%s index skipped: another run is in progress", trigger)
	case err != nil:
		metrics.IndexRunsTotal.WithLabelValues(trigger, "error").Inc()
		logging.Error("%s index failed: %v", trigger, err)
	default:
		metrics.IndexRunsTotal.WithLabelValues(trigger, "success").Inc()
		logging.Info("%s index complete: %d indexed, %d skipped, %d errors in %dms",
			trigger, summary.Indexed, summary.Skipped, summary.Errors, summary.DurationMs)
	}
}

func serveMetrics(port string) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, sched *scheduler.Scheduler, store *slideshow.Store) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping scheduler")
	sched.Stop()
	startup.LogShutdownStepComplete("Scheduler stopped")

	startup.LogShutdownStep("Stopping session sweeper")
	store.Stop()
	startup.LogShutdownStepComplete("Session sweeper stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
