package thumbs

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := imaging.New(w, h, color.NRGBA{R: 90, G: 120, B: 180, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("writing test image: %v", err)
	}
}

func TestImageThumbnail(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "trip", "big.jpg")
	writeTestImage(t, src, 1600, 1200)

	r := New(root, ".thumbnails", 400, 85)

	rel, err := r.Image(src, "trip/big.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if rel != ".thumbnails/trip/big.jpg.jpg" {
		t.Errorf("thumbnail rel path = %q", rel)
	}

	thumb, err := imaging.Open(r.AbsPath("trip/big.jpg"))
	if err != nil {
		t.Fatalf("opening thumbnail: %v", err)
	}
	b := thumb.Bounds()
	if b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("thumbnail size = %dx%d, expected 400x300", b.Dx(), b.Dy())
	}
}

func TestImageThumbnailIdempotent(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.jpg")
	writeTestImage(t, src, 800, 600)

	r := New(root, ".thumbnails", 400, 85)

	if _, err := r.Image(src, "a.jpg"); err != nil {
		t.Fatal(err)
	}
	first, err := os.Stat(r.AbsPath("a.jpg"))
	if err != nil {
		t.Fatal(err)
	}

	// Second render with an unchanged source must not rewrite the file.
	if _, err := r.Image(src, "a.jpg"); err != nil {
		t.Fatal(err)
	}
	second, err := os.Stat(r.AbsPath("a.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if !second.ModTime().Equal(first.ModTime()) {
		t.Error("thumbnail rewritten although source was unchanged")
	}

	// A newer source invalidates the thumbnail.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatal(err)
	}
	if r.fresh(src, r.AbsPath("a.jpg")) {
		t.Error("stale thumbnail reported fresh after source changed")
	}

	// Re-rendering brings the thumbnail mtime up to the source's, even
	// with the source timestamp ahead of the clock.
	if _, err := r.Image(src, "a.jpg"); err != nil {
		t.Fatal(err)
	}
	refreshed, err := os.Stat(r.AbsPath("a.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.ModTime().Before(srcInfo.ModTime()) {
		t.Errorf("refreshed thumbnail mtime %v behind source mtime %v",
			refreshed.ModTime(), srcInfo.ModTime())
	}
}

func TestVideoPlaceholder(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "clip.mp4")
	if err := os.WriteFile(src, []byte("not a real video"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(root, ".thumbnails", 400, 85)
	r.ffmpegPath = "" // force the placeholder path

	rel, err := r.Video(context.Background(), src, "clip.mp4", 0)
	if err != nil {
		t.Fatal(err)
	}
	if rel != ".thumbnails/clip.mp4.jpg" {
		t.Errorf("thumbnail rel path = %q", rel)
	}

	thumb, err := imaging.Open(r.AbsPath("clip.mp4"))
	if err != nil {
		t.Fatalf("opening placeholder thumbnail: %v", err)
	}
	b := thumb.Bounds()
	if b.Dx() != videoThumbWidth || b.Dy() != videoThumbWidth*9/16 {
		t.Errorf("placeholder size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestPlaceholderLabelTruncation(t *testing.T) {
	long := "a-very-long-video-file-name-that-cannot-possibly-fit-in-a-thumbnail-width.mp4"
	got := truncateLabel(long, 320)
	if len(got) > (320-8)/7 {
		t.Errorf("label %q longer than fits", got)
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("truncated label %q lacks ellipsis", got)
	}

	if got := truncateLabel("short.mp4", 640); got != "short.mp4" {
		t.Errorf("short label mangled: %q", got)
	}
}

func TestStampPlayBadgeChangesCenter(t *testing.T) {
	img := placeholder("x.mp4", 320)
	cx, cy := img.Bounds().Dx()/2, img.Bounds().Dy()/2
	before := img.NRGBAAt(cx-img.Bounds().Dy()/8, cy)

	stampPlayBadge(img)

	after := img.NRGBAAt(cx-img.Bounds().Dy()/8, cy)
	if before == after {
		t.Error("play badge left the thumbnail center untouched")
	}
}

func TestRelPath(t *testing.T) {
	r := New(t.TempDir(), ".thumbnails", 400, 85)

	tests := []struct {
		rel      string
		expected string
	}{
		{"a.jpg", ".thumbnails/a.jpg.jpg"},
		{"trip/b.mp4", ".thumbnails/trip/b.mp4.jpg"},
	}
	for _, tt := range tests {
		if got := r.RelPath(tt.rel); got != tt.expected {
			t.Errorf("RelPath(%q) = %q, expected %q", tt.rel, got, tt.expected)
		}
	}
}
