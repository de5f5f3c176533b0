package metrics

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, kind := range []string{"image", "video"} {
		for _, result := range []string{"success", "error"} {
			ProbesTotal.WithLabelValues(kind, result)
			ThumbnailsTotal.WithLabelValues(kind, result)
		}
		ProbeDuration.WithLabelValues(kind)
		ThumbnailDuration.WithLabelValues(kind)
		StreamBytesTotal.WithLabelValues(kind)
	}
	ThumbnailsTotal.WithLabelValues("video", "placeholder")
	StreamBytesTotal.WithLabelValues("audio")

	for _, trigger := range []string{"startup", "scheduled", "manual"} {
		for _, result := range []string{"success", "error", "skipped"} {
			IndexRunsTotal.WithLabelValues(trigger, result)
		}
	}

	for _, outcome := range []string{"indexed", "skipped", "error"} {
		IndexFilesTotal.WithLabelValues(outcome)
	}
}
