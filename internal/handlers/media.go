package handlers

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"home-gallery/internal/library"
	"home-gallery/internal/logging"
	"home-gallery/internal/mediatypes"
	"home-gallery/internal/paths"
	"home-gallery/internal/streaming"
)

// ServeImage streams an original image (or any library file) from the
// media root with range support.
func (h *Handlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	abs, err := paths.Resolve(h.config.MediaDir, mux.Vars(r)["relPath"])
	if err != nil {
		writePathError(w, err)
		return
	}
	streaming.ServeFile(w, r, abs, "image")
}

// ServeMusic streams an audio file from the music root.
func (h *Handlers) ServeMusic(w http.ResponseWriter, r *http.Request) {
	abs, err := paths.Resolve(h.config.MusicDir, mux.Vars(r)["relPath"])
	if err != nil {
		writePathError(w, err)
		return
	}
	if !mediatypes.IsAudio(abs) {
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}
	streaming.ServeFile(w, r, abs, "audio")
}

// MusicList returns all audio tracks as sorted relative paths.
func (h *Handlers) MusicList(w http.ResponseWriter, _ *http.Request) {
	tracks, err := library.Audio(h.config.MusicDir)
	if err != nil {
		logging.Error("music scan failed: %v", err)
		writeJSONError(w, "failed to scan music", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, tracks)
}

// Thumbnail serves the cached thumbnail for a media file, rendering it
// on demand when missing or stale. When thumbnails are disabled,
// images fall back to the original file.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	abs, err := paths.Resolve(h.config.MediaDir, mux.Vars(r)["relPath"])
	if err != nil {
		writePathError(w, err)
		return
	}

	rel, err := paths.ToRel(h.config.MediaDir, abs)
	if err != nil {
		writePathError(w, err)
		return
	}

	if !h.config.ThumbnailsEnabled {
		if mediatypes.IsImage(abs) {
			streaming.ServeFile(w, r, abs, "image")
			return
		}
		writeJSONError(w, "thumbnails disabled", http.StatusNotFound)
		return
	}

	switch {
	case mediatypes.IsImage(abs):
		_, err = h.renderer.Image(abs, rel)
	case mediatypes.IsVideo(abs):
		durationSec := 0
		if rec, ferr := h.cat.FindByPath(r.Context(), rel); ferr == nil && rec != nil && rec.VideoDurationSec != nil {
			durationSec = *rec.VideoDurationSec
		}
		_, err = h.renderer.Video(r.Context(), abs, rel, durationSec)
	default:
		writeJSONError(w, "unsupported media type", http.StatusNotFound)
		return
	}

	if err != nil {
		logging.Error("thumbnail render failed for %s: %v", rel, err)
		if mediatypes.IsImage(abs) {
			streaming.ServeFile(w, r, abs, "image")
			return
		}
		writeJSONError(w, "thumbnail unavailable", http.StatusInternalServerError)
		return
	}

	thumbAbs := h.renderer.AbsPath(rel)
	if _, err := os.Stat(thumbAbs); err != nil {
		writeJSONError(w, "thumbnail unavailable", http.StatusNotFound)
		return
	}

	streaming.ServeFile(w, r, thumbAbs, "image")
}
