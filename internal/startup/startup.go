package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"home-gallery/internal/logging"
	"home-gallery/internal/scheduler"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	MediaDir    string
	MusicDir    string
	DatabaseDir string
	Port        string
	MetricsPort string

	ThumbEdgePx    int
	ThumbQuality   int
	HiddenThumbDir string

	AutoIndexEnabled bool
	AutoIndexAt      scheduler.TimeOfDay
	NotificationAt   scheduler.TimeOfDay
	SessionTTL       time.Duration
	IndexOnStart     bool

	LogMediaRequests bool
	LogHealthChecks  bool
	MetricsEnabled   bool

	// Derived paths
	ThumbnailDir string

	// Feature flags based on directory availability
	ThumbnailsEnabled bool
	MusicEnabled      bool
}

// LoadConfig loads and validates configuration from environment variables.
// A .env file in the working directory is applied first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded configuration overrides from .env")
	}

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	mediaDir := getEnv("MEDIA_ROOT", "/media")
	musicDir := os.Getenv("MUSIC_ROOT")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	thumbEdgePx := getEnvInt("THUMB_EDGE_PX", 400)
	thumbQuality := getEnvInt("THUMB_QUALITY", 85)
	hiddenThumbDir := getEnv("HIDDEN_THUMB_DIR", ".thumbnails")
	autoIndexEnabled := getEnvBool("AUTO_INDEX_ENABLED", true)
	autoIndexTimeStr := getEnv("AUTO_INDEX_TIME", "02:00")
	notificationTimeStr := getEnv("NOTIFICATION_TIME", "09:00")
	sessionTTLStr := getEnv("SESSION_TTL", "1h")
	indexOnStart := getEnvBool("INDEX_ON_START", true)
	logMediaRequests := getEnvBool("LOG_MEDIA_REQUESTS", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  MEDIA_ROOT:          %s", mediaDir)
	if musicDir != "" {
		logging.Info("  MUSIC_ROOT:          %s", musicDir)
	} else {
		logging.Info("  MUSIC_ROOT:          (unset, music disabled)")
	}
	logging.Info("  DATABASE_DIR:        %s", databaseDir)
	logging.Info("  PORT:                %s", port)
	logging.Info("  METRICS_PORT:        %s", metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  THUMB_EDGE_PX:       %d", thumbEdgePx)
	logging.Info("  THUMB_QUALITY:       %d", thumbQuality)
	logging.Info("  HIDDEN_THUMB_DIR:    %s", hiddenThumbDir)
	logging.Info("  AUTO_INDEX_ENABLED:  %v", autoIndexEnabled)
	logging.Info("  AUTO_INDEX_TIME:     %s", autoIndexTimeStr)
	logging.Info("  NOTIFICATION_TIME:   %s", notificationTimeStr)
	logging.Info("  SESSION_TTL:         %s", sessionTTLStr)
	logging.Info("  INDEX_ON_START:      %v", indexOnStart)
	logging.Info("  LOG_MEDIA_REQUESTS:  %v", logMediaRequests)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if thumbEdgePx < 16 {
		logging.Warn("  THUMB_EDGE_PX too small, using default: 400")
		thumbEdgePx = 400
	}
	if thumbQuality < 1 || thumbQuality > 100 {
		logging.Warn("  THUMB_QUALITY out of range, using default: 85")
		thumbQuality = 85
	}

	autoIndexAt, err := scheduler.ParseTimeOfDay(autoIndexTimeStr)
	if err != nil {
		logging.Warn("  Invalid AUTO_INDEX_TIME, using default: 02:00")
		autoIndexAt = scheduler.TimeOfDay{Hour: 2}
	}

	notificationAt, err := scheduler.ParseTimeOfDay(notificationTimeStr)
	if err != nil {
		logging.Warn("  Invalid NOTIFICATION_TIME, using default: 09:00")
		notificationAt = scheduler.TimeOfDay{Hour: 9}
	}

	sessionTTL, err := time.ParseDuration(sessionTTLStr)
	if err != nil || sessionTTL <= 0 {
		logging.Warn("  Invalid SESSION_TTL, using default: 1h")
		sessionTTL = time.Hour
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	mediaDir, err = filepath.Abs(mediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media root path: %w", err)
	}
	logging.Info("  Media root (absolute): %s", mediaDir)

	if musicDir != "" {
		musicDir, err = filepath.Abs(musicDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve music root path: %w", err)
		}
		logging.Info("  Music root (absolute): %s", musicDir)
	}

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	// The media root should be mounted, never created here.
	if err := checkDirectory(mediaDir, "media"); err != nil {
		logging.Warn("  Media root issue: %v", err)
	}

	musicEnabled := musicDir != ""
	if musicEnabled {
		if err := checkDirectory(musicDir, "music"); err != nil {
			logging.Warn("  Music root issue: %v", err)
			logging.Warn("  Music endpoints will be disabled")
			musicEnabled = false
		}
	}

	config := &Config{
		MediaDir:         mediaDir,
		MusicDir:         musicDir,
		DatabaseDir:      databaseDir,
		Port:             port,
		MetricsPort:      metricsPort,
		ThumbEdgePx:      thumbEdgePx,
		ThumbQuality:     thumbQuality,
		HiddenThumbDir:   hiddenThumbDir,
		AutoIndexEnabled: autoIndexEnabled,
		AutoIndexAt:      autoIndexAt,
		NotificationAt:   notificationAt,
		SessionTTL:       sessionTTL,
		IndexOnStart:     indexOnStart,
		LogMediaRequests: logMediaRequests,
		LogHealthChecks:  logHealthChecks,
		MetricsEnabled:   metricsEnabled,
		MusicEnabled:     musicEnabled,
		ThumbnailDir:     filepath.Join(mediaDir, hiddenThumbDir),
	}

	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for catalogue): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	config.ThumbnailsEnabled = setupOptionalDir(config.ThumbnailDir, "thumbnails")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Catalogue:     ENABLED (required)")
	logging.Info("    Thumbnails:    %s", enabledString(config.ThumbnailsEnabled))
	logging.Info("    Music:         %s", enabledString(config.MusicEnabled))
	logging.Info("    Auto-index:    %s", enabledString(config.AutoIndexEnabled))
	logging.Info("    Metrics:       %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	testFile := filepath.Join(path, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("    failed to remove test file %s: %v", testFile, err)
		// Still return true since write succeeded
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogCatalogueInit logs catalogue database initialization
func LogCatalogueInit(duration time.Duration, records int64) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CATALOGUE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Catalogue opened in %v (%d records)", duration, records)
}

// LogThumbnailerInit logs thumbnail renderer setup and checks for ffmpeg.
// Video thumbnails fall back to generated placeholders without it.
func LogThumbnailerInit(enabled bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("THUMBNAILER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if !enabled {
		logging.Warn("  Thumbnails disabled (thumbnail directory not writable)")
		logging.Warn("  Clients will receive full-size images instead")
		return
	}

	if err := checkFFmpeg(); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Video thumbnails will use generated placeholders")
	} else {
		logging.Info("  [OK] FFmpeg is available")
	}
}

// LogSchedulerInit logs the daily job schedule
func LogSchedulerInit(autoIndexEnabled bool, indexAt, notifyAt scheduler.TimeOfDay) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SCHEDULER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if autoIndexEnabled {
		logging.Info("  Daily index:        %s", indexAt)
	} else {
		logging.Info("  Daily index:        DISABLED")
	}
	logging.Info("  Daily notification: %s", notifyAt)
}

// LogIndexerStarted logs successful startup index kick-off
func LogIndexerStarted() {
	logging.Info("  [OK] Startup index running in background")
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logMediaRequests, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		// Group routes by prefix for cleaner output
		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			groupRoutes := groups[group]
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groupRoutes {
				methodPadded := fmt.Sprintf("%-6s", route.Method)
				logging.Debug("    %s %s", methodPadded, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logMediaRequests {
		logging.Info("    Media request logging: ON")
	} else {
		logging.Info("    Media request logging: OFF (set LOG_MEDIA_REQUESTS=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	// Special handling for API routes
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    Application:   http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   __  __                     ______       ____
  / / / /___  ____ ___  ___  / ____/___ _/ / /__  _______  __
 / /_/ / __ \/ __ '__ \/ _ \/ / __/ __ '/ / / _ \/ ___/ / / /
/ __  / /_/ / / / / / /  __/ /_/ / /_/ / / /  __/ /  / /_/ /
/_/ /_/\____/_/ /_/ /_/\___/\____/\__,_/_/_/\___/_/   \__, /
                                                     /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// checkDirectory verifies a directory exists without creating it.
func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist (should be mounted): %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if name == "media" && logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount := 0
			dirCount := 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}

	return nil
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func checkFFmpeg() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH")
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", "-version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
