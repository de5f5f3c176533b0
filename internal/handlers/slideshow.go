package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"home-gallery/internal/library"
	"home-gallery/internal/logging"
	"home-gallery/internal/slideshow"
)

// FoldersList returns the folders that directly contain at least one
// image, as sorted relative paths.
func (h *Handlers) FoldersList(w http.ResponseWriter, _ *http.Request) {
	folders, err := library.FoldersWithDirectImages(h.config.MediaDir)
	if err != nil {
		logging.Error("folder scan failed: %v", err)
		writeJSONError(w, "failed to scan folders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, folders)
}

// decodeListRequest reads the slideshow parameters from the request
// body. An empty body means default parameters.
func decodeListRequest(r *http.Request) (slideshow.ListRequest, error) {
	var req slideshow.ListRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return slideshow.ListRequest{}, err
	}
	return req, nil
}

// ImagesList seeds (or re-seeds on parameter change) the session's
// slideshow and returns the full remaining order.
func (h *Handlers) ImagesList(w http.ResponseWriter, r *http.Request) {
	req, err := decodeListRequest(r)
	if err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	key := h.sessionKey(w, r)
	images, err := h.engine.List(key, req)
	if err != nil {
		logging.Error("slideshow list failed: %v", err)
		writeJSONError(w, "failed to build image list", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, images)
}

// ImagesNext pulls the next image from the session's queue.
func (h *Handlers) ImagesNext(w http.ResponseWriter, r *http.Request) {
	req, err := decodeListRequest(r)
	if err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	key := h.sessionKey(w, r)
	result, err := h.engine.Next(key, req)
	if err != nil {
		logging.Error("slideshow next failed: %v", err)
		writeJSONError(w, "failed to advance slideshow", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, result)
}

// ImagesReset discards the session's slideshow state.
func (h *Handlers) ImagesReset(w http.ResponseWriter, r *http.Request) {
	key := h.sessionKey(w, r)
	h.engine.Reset(key)

	writeJSONStatus(w, "reset")
}
