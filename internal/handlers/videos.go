package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/logging"
	"home-gallery/internal/mediatypes"
	"home-gallery/internal/paths"
	"home-gallery/internal/streaming"
)

var videoSortOrders = map[string]bool{
	catalogue.SortDateDesc:     true,
	catalogue.SortDateAsc:      true,
	catalogue.SortDurationDesc: true,
	catalogue.SortDurationAsc:  true,
}

// VideosList returns the catalogued videos, optionally filtered to a
// folder and ordered by capture date or duration.
func (h *Handlers) VideosList(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sortBy")
	if sortBy != "" && !videoSortOrders[sortBy] {
		writeJSONError(w, "invalid sortBy", http.StatusBadRequest)
		return
	}

	videos, err := h.cat.ListVideos(r.Context(), catalogue.VideoListOptions{
		SortBy: sortBy,
		Folder: r.URL.Query().Get("folder"),
	})
	if err != nil {
		logging.Error("video list failed: %v", err)
		writeJSONError(w, "failed to list videos", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"videos": videos,
		"count":  len(videos),
	})
}

// VideoStats returns aggregate statistics over the catalogued videos.
func (h *Handlers) VideoStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cat.GetVideoStats(r.Context())
	if err != nil {
		logging.Error("video stats failed: %v", err)
		writeJSONError(w, "failed to compute video stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, stats)
}

// ServeVideo streams a video file with range support.
func (h *Handlers) ServeVideo(w http.ResponseWriter, r *http.Request) {
	abs, err := paths.Resolve(h.config.MediaDir, mux.Vars(r)["relPath"])
	if err != nil {
		writePathError(w, err)
		return
	}
	if !mediatypes.IsVideo(abs) {
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}
	streaming.ServeFile(w, r, abs, "video")
}
