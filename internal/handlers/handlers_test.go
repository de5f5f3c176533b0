package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/indexer"
	"home-gallery/internal/notify"
	"home-gallery/internal/probe"
	"home-gallery/internal/slideshow"
	"home-gallery/internal/startup"
	"home-gallery/internal/thumbs"
)

type testApp struct {
	h      *Handlers
	router *mux.Router
	cat    *catalogue.Catalogue
	n      *notify.Notifier
	root   string
}

func newTestApp(t *testing.T, files ...string) *testApp {
	t.Helper()

	root := t.TempDir()
	for _, f := range files {
		abs := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte("media bytes for "+f), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cat, err := catalogue.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cat.Close() })

	config := &startup.Config{
		MediaDir:          root,
		DatabaseDir:       t.TempDir(),
		Port:              "8080",
		ThumbEdgePx:       400,
		ThumbQuality:      85,
		HiddenThumbDir:    ".thumbnails",
		SessionTTL:        time.Hour,
		ThumbnailsEnabled: true,
	}

	renderer := thumbs.New(root, ".thumbnails", 400, 85)
	store := slideshow.NewStore(time.Hour)
	t.Cleanup(store.Stop)
	engine := slideshow.NewEngine(root, store)
	ix := indexer.New(cat, probe.New(), renderer, root, 2)
	notifier := notify.New(cat)

	h := New(config, cat, engine, ix, notifier, renderer)
	router := mux.NewRouter()
	h.Register(router)

	return &testApp{h: h, router: router, cat: cat, n: notifier, root: root}
}

func (a *testApp) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, r)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestFoldersList(t *testing.T) {
	app := newTestApp(t, "trips/rome/a.jpg", "trips/rome/b.jpg", "misc/c.jpg", "empty/readme.txt")

	rec := app.do(t, http.MethodGet, "/api/folders/list", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var folders []string
	if err := json.Unmarshal(rec.Body.Bytes(), &folders); err != nil {
		t.Fatal(err)
	}
	if len(folders) != 2 || folders[0] != "misc" || folders[1] != "trips/rome" {
		t.Errorf("folders = %v", folders)
	}
}

func TestImagesListSeedsSession(t *testing.T) {
	app := newTestApp(t, "a.jpg", "b.jpg")

	rec := app.do(t, http.MethodPost, "/api/images/list", `{"randomize":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var images []string
	if err := json.Unmarshal(rec.Body.Bytes(), &images); err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 {
		t.Errorf("images = %v, expected 2 entries", images)
	}

	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie set on first contact")
	}
}

func TestImagesNextCycle(t *testing.T) {
	app := newTestApp(t, "a.jpg", "b.jpg")

	// First pull mints the session cookie.
	rec := app.do(t, http.MethodPost, "/api/images/next", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}
	cookie := cookies[0]

	seen := map[string]bool{}
	body := decodeBody(t, rec)
	seen[body["image"].(string)] = true

	rec = app.do(t, http.MethodPost, "/api/images/next", `{}`, cookie)
	body = decodeBody(t, rec)
	seen[body["image"].(string)] = true

	if len(seen) != 2 {
		t.Errorf("first cycle repeated an image: %v", seen)
	}

	// Third pull rolls the cycle over: complete flag plus a fresh image.
	rec = app.do(t, http.MethodPost, "/api/images/next", `{}`, cookie)
	body = decodeBody(t, rec)
	if body["cycleComplete"] != true {
		t.Errorf("cycleComplete = %v, expected true on rollover", body["cycleComplete"])
	}
	if body["image"] == "" || body["image"] == nil {
		t.Error("rollover pull returned no image")
	}
}

func TestImagesReset(t *testing.T) {
	app := newTestApp(t, "a.jpg")

	rec := app.do(t, http.MethodPost, "/api/images/next", `{}`)
	cookie := rec.Result().Cookies()[0]

	rec = app.do(t, http.MethodPost, "/api/images/reset", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "reset" {
		t.Errorf("body = %v", body)
	}
}

func TestServeImage(t *testing.T) {
	app := newTestApp(t, "trips/a.jpg")

	rec := app.do(t, http.MethodGet, "/images/trips/a.jpg", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "media bytes for trips/a.jpg" {
		t.Errorf("body = %q", got)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
	if rec.Header().Get("Accept-Ranges") != "bytes" {
		t.Error("missing Accept-Ranges")
	}
}

func TestServeImageRange(t *testing.T) {
	app := newTestApp(t, "a.jpg")

	r := httptest.NewRequest(http.MethodGet, "/images/a.jpg", nil)
	r.Header.Set("Range", "bytes=0-4")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, r)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, expected 206", rec.Code)
	}
	if got := rec.Body.String(); got != "media" {
		t.Errorf("body = %q", got)
	}
}

func TestServeImageRejectsTraversal(t *testing.T) {
	app := newTestApp(t, "a.jpg")

	r := httptest.NewRequest(http.MethodGet, "/images/placeholder", nil)
	r = mux.SetURLVars(r, map[string]string{"relPath": "../secret.txt"})
	rec := httptest.NewRecorder()
	app.h.ServeImage(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestServeImageMissing(t *testing.T) {
	app := newTestApp(t, "a.jpg")

	rec := app.do(t, http.MethodGet, "/images/nope.jpg", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
}

func seedMemory(t *testing.T, app *testApp, relPath string, year, month, day int) {
	t.Helper()
	rec := &catalogue.MediaRecord{
		RelPath:     relPath,
		MediaKind:   "image",
		CaptureDate: time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC),
		DateSource:  catalogue.SourceExif,
		Year:        year,
		Month:       month,
		Day:         day,
	}
	if err := app.cat.Upsert(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
}

func TestMemoriesByDate(t *testing.T) {
	app := newTestApp(t)
	seedMemory(t, app, "old/a.jpg", 2018, 7, 14)
	seedMemory(t, app, "old/b.jpg", 2021, 7, 14)
	seedMemory(t, app, "old/c.jpg", 2021, 12, 25)

	rec := app.do(t, http.MethodGet, "/api/memories/date/7/14", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"].(float64) != 2 {
		t.Errorf("count = %v, expected 2", body["count"])
	}

	memories := body["memories"].([]interface{})
	first := memories[0].(map[string]interface{})
	// Newest year first.
	if first["filePath"] != "old/b.jpg" {
		t.Errorf("first memory = %v", first["filePath"])
	}
	if _, ok := first["yearsAgo"]; !ok {
		t.Error("memory missing yearsAgo")
	}
}

func TestMemoriesByDateValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []string{
		"/api/memories/date/13/1",
		"/api/memories/date/0/1",
		"/api/memories/date/7/32",
		"/api/memories/date/7/0",
	}
	for _, target := range tests {
		if rec := app.do(t, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, expected 400", target, rec.Code)
		}
	}
}

func TestMemoriesCalendar(t *testing.T) {
	app := newTestApp(t)
	seedMemory(t, app, "a.jpg", 2018, 7, 14)
	seedMemory(t, app, "b.jpg", 2021, 7, 14)
	seedMemory(t, app, "c.jpg", 2021, 7, 20)

	rec := app.do(t, http.MethodGet, "/api/memories/calendar/2024/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["year"].(float64) != 2024 {
		t.Errorf("year = %v", body["year"])
	}
	counts := body["counts"].(map[string]interface{})
	if counts["14"].(float64) != 2 {
		t.Errorf("day 14 count = %v, expected 2", counts["14"])
	}
	if counts["20"].(float64) != 1 {
		t.Errorf("day 20 count = %v, expected 1", counts["20"])
	}

	if rec := app.do(t, http.MethodGet, "/api/memories/calendar/2024/13", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid month: status = %d, expected 400", rec.Code)
	}
}

func TestTriggerIndex(t *testing.T) {
	app := newTestApp(t, "a.jpg", "b.jpg")

	rec := app.do(t, http.MethodPost, "/api/memories/index", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["indexed"].(float64) != 2 {
		t.Errorf("indexed = %v, expected 2", body["indexed"])
	}
	if body["total_in_db"].(float64) != 2 {
		t.Errorf("total_in_db = %v, expected 2", body["total_in_db"])
	}
}

func TestNotificationEndpoints(t *testing.T) {
	app := newTestApp(t)
	now := time.Now()
	seedMemory(t, app, "a.jpg", now.Year()-3, int(now.Month()), now.Day())

	if err := app.n.CheckAndQueue(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec := app.do(t, http.MethodGet, "/api/memories/notification/pending", "")
	body := decodeBody(t, rec)
	if body["hasPending"] != true {
		t.Fatalf("hasPending = %v", body["hasPending"])
	}
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v", body["count"])
	}

	rec = app.do(t, http.MethodPost, "/api/memories/notification/shown", "")
	if body := decodeBody(t, rec); body["success"] != true {
		t.Errorf("shown body = %v", body)
	}

	rec = app.do(t, http.MethodGet, "/api/memories/notification/pending", "")
	if body := decodeBody(t, rec); body["hasPending"] != false {
		t.Errorf("hasPending after shown = %v", body["hasPending"])
	}
}

func TestVideosListInvalidSort(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/videos/list?sortBy=alphabetical", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestVideosListAndStats(t *testing.T) {
	app := newTestApp(t)

	duration := 90
	rec := &catalogue.MediaRecord{
		RelPath:          "clips/a.mp4",
		MediaKind:        "video",
		CaptureDate:      time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		DateSource:       catalogue.SourceFileCreation,
		VideoDurationSec: &duration,
		FileSize:         1024,
		Year:             2023, Month: 5, Day: 1,
	}
	if err := app.cat.Upsert(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	res := app.do(t, http.MethodGet, "/api/videos/list", "")
	if res.Code != http.StatusOK {
		t.Fatalf("list status = %d", res.Code)
	}
	if body := decodeBody(t, res); body["count"].(float64) != 1 {
		t.Errorf("count = %v", body["count"])
	}

	res = app.do(t, http.MethodGet, "/api/videos/stats", "")
	if res.Code != http.StatusOK {
		t.Fatalf("stats status = %d", res.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}

	rec = app.do(t, http.MethodGet, "/livez", "")
	if rec.Code != http.StatusOK {
		t.Errorf("livez status = %d", rec.Code)
	}

	rec = app.do(t, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}

	rec = app.do(t, http.MethodGet, "/version", "")
	body = decodeBody(t, rec)
	if body["version"] == "" {
		t.Error("empty version")
	}
}
