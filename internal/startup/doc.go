// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is loaded from environment variables via [LoadConfig]. A
// .env file in the working directory is read first if present. The
// following environment variables are supported:
//
//   - MEDIA_ROOT: Path to the photo/video library root (default: /media)
//   - MUSIC_ROOT: Path to the music library; music endpoints are disabled when unset
//   - DATABASE_DIR: Path to the catalogue database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - THUMB_EDGE_PX: Longest thumbnail edge in pixels (default: 400)
//   - THUMB_QUALITY: Thumbnail JPEG quality 1-100 (default: 85)
//   - HIDDEN_THUMB_DIR: Thumbnail directory name under MEDIA_ROOT (default: .thumbnails)
//   - AUTO_INDEX_ENABLED: Run the daily indexing job (default: true)
//   - AUTO_INDEX_TIME: Daily indexing time as HH:MM (default: 02:00)
//   - NOTIFICATION_TIME: Daily memories-notification time as HH:MM (default: 09:00)
//   - SESSION_TTL: Idle slideshow session lifetime as Go duration (default: 1h)
//   - INDEX_ON_START: Run an index pass at startup (default: true)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_MEDIA_REQUESTS: Log image/music byte requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The database directory is required and must be writable. The media root
// is checked but never created (it should be mounted). The hidden
// thumbnail directory is optional; thumbnails are disabled if it cannot
// be created or written.
package startup
