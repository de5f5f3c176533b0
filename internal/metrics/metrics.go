package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// --- HTTP ---

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gallery_http_requests_in_flight",
		Help: "Number of HTTP requests currently being served",
	})
)

// --- Catalogue database ---

var (
	DBQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_db_queries_total",
		Help: "Total catalogue queries by operation and result",
	}, []string{"operation", "result"})

	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_db_query_duration_seconds",
		Help:    "Catalogue query latency by operation",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"operation"})

	CatalogueRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gallery_catalogue_records",
		Help: "Number of media records in the catalogue",
	})
)

// --- Indexer ---

var (
	IndexRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_index_runs_total",
		Help: "Total index runs by trigger and result",
	}, []string{"trigger", "result"})

	IndexRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gallery_index_running",
		Help: "1 while an index run is in progress",
	})

	IndexLastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gallery_index_last_run_timestamp_seconds",
		Help: "Unix time of the last completed index run",
	})

	IndexLastRunDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gallery_index_last_run_duration_seconds",
		Help: "Duration of the last completed index run",
	})

	IndexFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_index_files_total",
		Help: "Files seen by the indexer by outcome (indexed, skipped, error)",
	}, []string{"outcome"})
)

// --- Probing and thumbnails ---

var (
	ProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_probes_total",
		Help: "Metadata probes by media kind and result",
	}, []string{"kind", "result"})

	ProbeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_probe_duration_seconds",
		Help:    "Metadata probe latency by media kind",
		Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
	}, []string{"kind"})

	ThumbnailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_thumbnails_total",
		Help: "Thumbnail generations by media kind and result",
	}, []string{"kind", "result"})

	ThumbnailDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_thumbnail_duration_seconds",
		Help:    "Thumbnail generation latency by media kind",
		Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
	}, []string{"kind"})
)

// --- Slideshow ---

var (
	SlideshowSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gallery_slideshow_sessions_active",
		Help: "Number of live slideshow sessions",
	})

	SlideshowImagesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_slideshow_images_served_total",
		Help: "Images handed out by the slideshow next operation",
	})

	SlideshowCyclesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_slideshow_cycles_completed_total",
		Help: "Completed slideshow cycles across all sessions",
	})

	SlideshowDuplicateEmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_slideshow_duplicate_emissions_total",
		Help: "Images observed twice within a single cycle; should stay at zero",
	})
)

// --- Streaming ---

var (
	StreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_stream_requests_total",
		Help: "Streaming requests by media kind and status code",
	}, []string{"kind", "status"})

	StreamBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_stream_bytes_total",
		Help: "Bytes written to streaming clients by media kind",
	}, []string{"kind"})
)

// --- Build info ---

var appInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "gallery_build_info",
	Help: "Build information; value is always 1",
}, []string{"version", "goversion"})

// SetAppInfo records the build version labels. Call once at startup.
func SetAppInfo(version, goversion string) {
	appInfo.WithLabelValues(version, goversion).Set(1)
}
