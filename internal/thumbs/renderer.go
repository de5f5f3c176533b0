package thumbs

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	// Register webp decoding for imaging.Open.
	_ "golang.org/x/image/webp"

	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

// videoThumbWidth is the pixel width of extracted video frames.
const videoThumbWidth = 640

// Renderer writes thumbnails under <root>/<hiddenDir>/, mirroring the
// relative path of the source with a ".jpg" suffix appended.
type Renderer struct {
	root       string
	hiddenDir  string
	edge       int
	quality    int
	ffmpegPath string
	timeout    time.Duration
}

// New returns a Renderer for the given media root. edge is the maximum
// thumbnail dimension for images, quality the JPEG quality for all
// thumbnails. ffmpeg is located on PATH at construction.
func New(root, hiddenDir string, edge, quality int) *Renderer {
	r := &Renderer{
		root:      root,
		hiddenDir: hiddenDir,
		edge:      edge,
		quality:   quality,
		timeout:   30 * time.Second,
	}
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		r.ffmpegPath = p
	} else {
		logging.Warn("ffmpeg not found; video thumbnails will use placeholders")
	}
	return r
}

// RelPath returns the slash-separated thumbnail path for a source rel
// path, e.g. "trip/a.mp4" -> ".thumbnails/trip/a.mp4.jpg".
func (r *Renderer) RelPath(relPath string) string {
	return path.Join(r.hiddenDir, relPath) + ".jpg"
}

// AbsPath returns the absolute filesystem path of the thumbnail for a
// source rel path.
func (r *Renderer) AbsPath(relPath string) string {
	return filepath.Join(r.root, filepath.FromSlash(r.RelPath(relPath)))
}

// fresh reports whether an up-to-date thumbnail already exists.
func (r *Renderer) fresh(srcAbs, thumbAbs string) bool {
	thumbInfo, err := os.Stat(thumbAbs)
	if err != nil {
		return false
	}
	srcInfo, err := os.Stat(srcAbs)
	if err != nil {
		return false
	}
	return !thumbInfo.ModTime().Before(srcInfo.ModTime())
}

// Image renders (or reuses) the thumbnail for an image file and returns
// its thumbnail rel path.
func (r *Renderer) Image(srcAbs, relPath string) (string, error) {
	thumbAbs := r.AbsPath(relPath)
	if r.fresh(srcAbs, thumbAbs) {
		return r.RelPath(relPath), nil
	}

	start := time.Now()
	img, err := imaging.Open(srcAbs, imaging.AutoOrientation(true))
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("image", "error").Inc()
		return "", fmt.Errorf("decoding %q: %w", relPath, err)
	}

	thumb := imaging.Fit(img, r.edge, r.edge, imaging.CatmullRom)

	if err := r.save(thumb, srcAbs, thumbAbs); err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("image", "error").Inc()
		return "", err
	}

	metrics.ThumbnailsTotal.WithLabelValues("image", "success").Inc()
	metrics.ThumbnailDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	return r.RelPath(relPath), nil
}

// Video renders (or reuses) the thumbnail for a video file: an extracted
// frame with a play badge, or a placeholder when extraction fails.
// durationSec clamps the seek point for very short clips; pass 0 when
// unknown.
func (r *Renderer) Video(ctx context.Context, srcAbs, relPath string, durationSec int) (string, error) {
	thumbAbs := r.AbsPath(relPath)
	if r.fresh(srcAbs, thumbAbs) {
		return r.RelPath(relPath), nil
	}

	start := time.Now()
	result := "success"

	frame, err := r.extractFrame(ctx, srcAbs, durationSec)
	if err != nil {
		logging.Warn("frame extraction for %s failed, using placeholder: %v", relPath, err)
		frame = placeholder(path.Base(relPath), videoThumbWidth)
		result = "placeholder"
	}

	stamped := stampPlayBadge(frame)

	if err := r.save(stamped, srcAbs, thumbAbs); err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("video", "error").Inc()
		return "", err
	}

	metrics.ThumbnailsTotal.WithLabelValues("video", result).Inc()
	metrics.ThumbnailDuration.WithLabelValues("video").Observe(time.Since(start).Seconds())
	return r.RelPath(relPath), nil
}

// extractFrame runs ffmpeg to pull a single scaled frame. The seek point
// is 5 seconds in, or the midpoint of clips shorter than 10 seconds.
func (r *Renderer) extractFrame(ctx context.Context, srcAbs string, durationSec int) (*image.NRGBA, error) {
	if r.ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpeg not installed")
	}

	seek := 5
	if durationSec > 0 && durationSec < 10 {
		seek = durationSec / 2
	}

	tmp, err := os.CreateTemp("", "gallery-frame-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("creating temp frame: %w", err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.ffmpegPath,
		"-ss", fmt.Sprintf("%d", seek),
		"-i", srcAbs,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", videoThumbWidth),
		"-y", tmp.Name(),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %v - %s", err, truncate(string(out), 200))
	}

	img, err := imaging.Open(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("decoding extracted frame: %w", err)
	}
	return imaging.Clone(img), nil
}

func (r *Renderer) save(img *image.NRGBA, srcAbs, thumbAbs string) error {
	if err := os.MkdirAll(filepath.Dir(thumbAbs), 0o755); err != nil {
		return fmt.Errorf("creating thumbnail directory: %w", err)
	}
	if err := imaging.Save(img, thumbAbs, imaging.JPEGQuality(r.quality)); err != nil {
		return fmt.Errorf("saving thumbnail: %w", err)
	}
	// Stamp the thumbnail with the source mtime so the freshness check
	// holds even when the source carries a clock-skewed timestamp.
	if srcInfo, err := os.Stat(srcAbs); err == nil {
		if err := os.Chtimes(thumbAbs, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
			logging.Warn("stamping thumbnail mtime for %s: %v", thumbAbs, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
