package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/indexer"
	"home-gallery/internal/notify"
	"home-gallery/internal/slideshow"
	"home-gallery/internal/startup"
	"home-gallery/internal/thumbs"
)

// sessionCookie identifies a browser's slideshow session. The value is
// an opaque token with no user meaning.
const sessionCookie = "gallery_session"

// Handlers holds the dependencies for all HTTP handlers
type Handlers struct {
	config    *startup.Config
	cat       *catalogue.Catalogue
	engine    *slideshow.Engine
	indexer   *indexer.Indexer
	notifier  *notify.Notifier
	renderer  *thumbs.Renderer
	startTime time.Time
}

// New creates a new Handlers instance with the given dependencies
func New(config *startup.Config, cat *catalogue.Catalogue, engine *slideshow.Engine,
	ix *indexer.Indexer, notifier *notify.Notifier, renderer *thumbs.Renderer) *Handlers {
	return &Handlers{
		config:    config,
		cat:       cat,
		engine:    engine,
		indexer:   ix,
		notifier:  notifier,
		renderer:  renderer,
		startTime: time.Now(),
	}
}

// Register wires all routes onto the router. Specific paths are
// registered before the catch-all {relPath} streaming routes so that
// list and stats endpoints are not swallowed by them.
func (h *Handlers) Register(router *mux.Router) {
	// Health and version
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	router.HandleFunc("/version", h.VersionInfo).Methods(http.MethodGet)

	// Slideshow
	router.HandleFunc("/api/folders/list", h.FoldersList).Methods(http.MethodGet)
	router.HandleFunc("/api/images/list", h.ImagesList).Methods(http.MethodPost)
	router.HandleFunc("/api/images/next", h.ImagesNext).Methods(http.MethodPost)
	router.HandleFunc("/api/images/reset", h.ImagesReset).Methods(http.MethodPost)

	// Memories
	router.HandleFunc("/api/memories/today", h.MemoriesToday).Methods(http.MethodGet)
	router.HandleFunc("/api/memories/today/count", h.MemoriesTodayCount).Methods(http.MethodGet)
	router.HandleFunc("/api/memories/date/{month}/{day}", h.MemoriesByDate).Methods(http.MethodGet)
	router.HandleFunc("/api/memories/calendar/{year}/{month}", h.MemoriesCalendar).Methods(http.MethodGet)
	router.HandleFunc("/api/memories/index", h.TriggerIndex).Methods(http.MethodPost)
	router.HandleFunc("/api/memories/notification/pending", h.NotificationPending).Methods(http.MethodGet)
	router.HandleFunc("/api/memories/notification/shown", h.NotificationShown).Methods(http.MethodPost)

	// Videos: list and stats must precede the streaming catch-all
	router.HandleFunc("/api/videos/list", h.VideosList).Methods(http.MethodGet)
	router.HandleFunc("/api/videos/stats", h.VideoStats).Methods(http.MethodGet)
	router.HandleFunc("/api/videos/{relPath:.+}", h.ServeVideo).Methods(http.MethodGet, http.MethodHead)

	// Thumbnails
	router.HandleFunc("/api/thumbnail/{relPath:.+}", h.Thumbnail).Methods(http.MethodGet, http.MethodHead)

	// Raw media bytes
	router.HandleFunc("/images/{relPath:.+}", h.ServeImage).Methods(http.MethodGet, http.MethodHead)
	if h.config.MusicEnabled {
		router.HandleFunc("/api/music/list", h.MusicList).Methods(http.MethodGet)
		router.HandleFunc("/music/{relPath:.+}", h.ServeMusic).Methods(http.MethodGet, http.MethodHead)
	}
}

// sessionKey returns the slideshow session token for this browser,
// minting a cookie on first contact.
func (h *Handlers) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}
