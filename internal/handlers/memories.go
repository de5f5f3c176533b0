package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/indexer"
	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

// memoryItem decorates a catalogue record with how many years back the
// capture date lies.
type memoryItem struct {
	*catalogue.MediaRecord
	YearsAgo int `json:"yearsAgo"`
}

func memoryItems(records []*catalogue.MediaRecord, now time.Time) []memoryItem {
	items := make([]memoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, memoryItem{MediaRecord: rec, YearsAgo: rec.YearsAgo(now)})
	}
	return items
}

// MemoriesToday returns all media captured on today's month and day in
// any previous year.
func (h *Handlers) MemoriesToday(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	records, err := h.cat.ListByMonthDay(r.Context(), int(now.Month()), now.Day())
	if err != nil {
		logging.Error("memories lookup failed: %v", err)
		writeJSONError(w, "failed to look up memories", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"count":    len(records),
		"memories": memoryItems(records, now),
	})
}

// MemoriesTodayCount returns only the number of memories for today.
func (h *Handlers) MemoriesTodayCount(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	count, err := h.cat.CountByMonthDay(r.Context(), int(now.Month()), now.Day())
	if err != nil {
		logging.Error("memories count failed: %v", err)
		writeJSONError(w, "failed to count memories", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]int{"count": count})
}

// MemoriesByDate returns all media captured on an arbitrary month/day.
func (h *Handlers) MemoriesByDate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		writeJSONError(w, "month must be 1-12", http.StatusBadRequest)
		return
	}

	day, err := strconv.Atoi(vars["day"])
	if err != nil || day < 1 || day > 31 {
		writeJSONError(w, "day must be 1-31", http.StatusBadRequest)
		return
	}

	records, err := h.cat.ListByMonthDay(r.Context(), month, day)
	if err != nil {
		logging.Error("memories lookup failed: %v", err)
		writeJSONError(w, "failed to look up memories", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"count":    len(records),
		"memories": memoryItems(records, time.Now()),
		"month":    month,
		"day":      day,
	})
}

// MemoriesCalendar returns, for each day of the given month, how many
// catalogued files were captured on that day across all years. The year
// is echoed back for the client's calendar view.
func (h *Handlers) MemoriesCalendar(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1 {
		writeJSONError(w, "invalid year", http.StatusBadRequest)
		return
	}

	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		writeJSONError(w, "month must be 1-12", http.StatusBadRequest)
		return
	}

	counts, err := h.cat.CalendarCounts(r.Context(), month)
	if err != nil {
		logging.Error("calendar counts failed: %v", err)
		writeJSONError(w, "failed to compute calendar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"year":   year,
		"month":  month,
		"counts": counts,
	})
}

// TriggerIndex runs a full index pass synchronously and reports the
// outcome. Returns 409 when a run is already in flight.
func (h *Handlers) TriggerIndex(w http.ResponseWriter, r *http.Request) {
	summary, err := h.indexer.Run(r.Context())
	if err != nil {
		if errors.Is(err, indexer.ErrAlreadyRunning) {
			metrics.IndexRunsTotal.WithLabelValues("manual", "skipped").Inc()
			writeJSONError(w, "index already running", http.StatusConflict)
			return
		}
		metrics.IndexRunsTotal.WithLabelValues("manual", "error").Inc()
		logging.Error("manual index run failed: %v", err)
		writeJSONError(w, "index run failed", http.StatusInternalServerError)
		return
	}
	metrics.IndexRunsTotal.WithLabelValues("manual", "success").Inc()

	total, err := h.cat.Count(r.Context())
	if err != nil {
		logging.Warn("catalogue count after index failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"indexed":     summary.Indexed,
		"skipped":     summary.Skipped,
		"errors":      summary.Errors,
		"duration_ms": summary.DurationMs,
		"total_in_db": total,
	})
}

// NotificationPending reports whether a memories notification is
// waiting to be shown.
func (h *Handlers) NotificationPending(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pending := h.notifier.Pending()
	if pending == nil {
		writeJSON(w, map[string]interface{}{"hasPending": false})
		return
	}

	writeJSON(w, map[string]interface{}{
		"hasPending": true,
		"count":      pending.Count,
		"message":    pending.Message,
	})
}

// NotificationShown acknowledges the pending notification.
func (h *Handlers) NotificationShown(w http.ResponseWriter, _ *http.Request) {
	h.notifier.MarkShown()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{"success": true})
}
