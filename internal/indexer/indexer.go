package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/library"
	"home-gallery/internal/logging"
	"home-gallery/internal/mediatypes"
	"home-gallery/internal/metrics"
	"home-gallery/internal/probe"
	"home-gallery/internal/thumbs"
	"home-gallery/internal/workers"
)

// ErrAlreadyRunning is returned when a run is triggered while another
// run is still in flight.
var ErrAlreadyRunning = errors.New("index run already in progress")

// Summary reports the outcome of one index run.
type Summary struct {
	Indexed    int   `json:"indexed"`
	Skipped    int   `json:"skipped"`
	Errors     int   `json:"errors"`
	DurationMs int64 `json:"duration_ms"`
}

// Indexer scans the media root into the catalogue.
type Indexer struct {
	cat     *catalogue.Catalogue
	prober  *probe.Prober
	thumbs  *thumbs.Renderer
	root    string
	workers int

	mu          sync.Mutex
	running     bool
	lastRun     time.Time
	lastSummary Summary
}

// New returns an Indexer over root. workerCount <= 0 picks a size from
// the available CPUs.
func New(cat *catalogue.Catalogue, prober *probe.Prober, renderer *thumbs.Renderer, root string, workerCount int) *Indexer {
	if workerCount <= 0 {
		workerCount = workers.ForMixed(16)
	}
	return &Indexer{
		cat:     cat,
		prober:  prober,
		thumbs:  renderer,
		root:    root,
		workers: workerCount,
	}
}

// IsRunning reports whether a run is in flight.
func (ix *Indexer) IsRunning() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.running
}

// LastRun returns the completion time and summary of the most recent
// run. The zero time means no run has completed yet.
func (ix *Indexer) LastRun() (time.Time, Summary) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.lastRun, ix.lastSummary
}

func (ix *Indexer) tryStart() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.running {
		return ErrAlreadyRunning
	}
	ix.running = true
	metrics.IndexRunning.Set(1)
	return nil
}

func (ix *Indexer) finish(summary Summary) {
	ix.mu.Lock()
	ix.running = false
	ix.lastRun = time.Now()
	ix.lastSummary = summary
	ix.mu.Unlock()

	metrics.IndexRunning.Set(0)
	metrics.IndexLastRunTimestamp.SetToCurrentTime()
	metrics.IndexLastRunDuration.Set(float64(summary.DurationMs) / 1000)
}

// Run walks the media root and indexes every new media file. Returns
// ErrAlreadyRunning if a run is already in flight.
func (ix *Indexer) Run(ctx context.Context) (Summary, error) {
	if err := ix.tryStart(); err != nil {
		return Summary{}, err
	}

	start := time.Now()
	logging.Info("index run starting (root=%s workers=%d)", ix.root, ix.workers)

	files, err := library.Media(ix.root)
	if err != nil {
		summary := Summary{Errors: 1, DurationMs: time.Since(start).Milliseconds()}
		ix.finish(summary)
		return summary, fmt.Errorf("walking media root: %w", err)
	}

	var indexed, skipped, errCount atomic.Int64

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < ix.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for relPath := range jobs {
				switch err := ix.indexOne(ctx, relPath, false); {
				case errors.Is(err, errUnchanged):
					skipped.Add(1)
					metrics.IndexFilesTotal.WithLabelValues("skipped").Inc()
				case err != nil:
					errCount.Add(1)
					metrics.IndexFilesTotal.WithLabelValues("error").Inc()
					logging.Warn("indexing %s: %v", relPath, err)
				default:
					indexed.Add(1)
					metrics.IndexFilesTotal.WithLabelValues("indexed").Inc()
				}
			}
		}()
	}

feed:
	for _, relPath := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- relPath:
		}
	}
	close(jobs)
	wg.Wait()

	summary := Summary{
		Indexed:    int(indexed.Load()),
		Skipped:    int(skipped.Load()),
		Errors:     int(errCount.Load()),
		DurationMs: time.Since(start).Milliseconds(),
	}
	ix.finish(summary)

	logging.Info("index run complete: %d indexed, %d skipped, %d errors in %dms",
		summary.Indexed, summary.Skipped, summary.Errors, summary.DurationMs)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// errUnchanged is the internal signal that a file was already catalogued.
var errUnchanged = errors.New("already catalogued")

// IndexPath indexes a single file. With force, an existing record is
// re-probed and refreshed; without, an existing record is left alone.
func (ix *Indexer) IndexPath(ctx context.Context, relPath string, force bool) (*catalogue.MediaRecord, error) {
	err := ix.indexOne(ctx, relPath, force)
	if err != nil && !errors.Is(err, errUnchanged) {
		return nil, err
	}
	return ix.cat.FindByPath(ctx, relPath)
}

func (ix *Indexer) indexOne(ctx context.Context, relPath string, force bool) error {
	if !force {
		exists, err := ix.cat.ExistsByPath(ctx, relPath)
		if err != nil {
			return err
		}
		if exists {
			// The record stays untouched, but a modified source still
			// gets its thumbnail re-rendered. The renderer is a no-op
			// while the thumbnail is fresh.
			ix.refreshThumbnail(ctx, relPath)
			return errUnchanged
		}
	}

	abs := filepath.Join(ix.root, filepath.FromSlash(relPath))
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	rec := &catalogue.MediaRecord{
		RelPath:   relPath,
		MediaKind: mediatypes.KindFor(relPath),
		FileSize:  info.Size(),
	}

	switch rec.MediaKind {
	case mediatypes.KindImage:
		res := ix.prober.Image(abs)
		rec.CaptureDate = res.CaptureDate
		rec.DateSource = res.DateSource
		rec.CameraModel = res.CameraModel

		// Thumbnail failures degrade the record, never fail the file.
		if thumbRel, err := ix.thumbs.Image(abs, relPath); err == nil {
			rec.ThumbnailRelPath = thumbRel
		} else {
			logging.Warn("thumbnail for %s: %v", relPath, err)
		}

	case mediatypes.KindVideo:
		res := ix.prober.Video(ctx, abs)
		rec.CaptureDate = res.CaptureDate
		rec.DateSource = res.DateSource
		rec.VideoDurationSec = res.DurationSec
		rec.VideoResolution = res.Resolution

		duration := 0
		if res.DurationSec != nil {
			duration = *res.DurationSec
		}
		if thumbRel, err := ix.thumbs.Video(ctx, abs, relPath, duration); err == nil {
			rec.ThumbnailRelPath = thumbRel
		} else {
			logging.Warn("thumbnail for %s: %v", relPath, err)
		}

	default:
		return fmt.Errorf("not indexable media: %s", relPath)
	}

	rec.Year = rec.CaptureDate.Year()
	rec.Month = int(rec.CaptureDate.Month())
	rec.Day = rec.CaptureDate.Day()

	return ix.cat.Upsert(ctx, rec)
}

// refreshThumbnail re-renders the thumbnail of an already-catalogued
// file whose source may have changed since the last run. Failures are
// logged and swallowed, matching the degrade-only thumbnail policy.
func (ix *Indexer) refreshThumbnail(ctx context.Context, relPath string) {
	abs := filepath.Join(ix.root, filepath.FromSlash(relPath))

	var err error
	switch mediatypes.KindFor(relPath) {
	case mediatypes.KindImage:
		_, err = ix.thumbs.Image(abs, relPath)
	case mediatypes.KindVideo:
		_, err = ix.thumbs.Video(ctx, abs, relPath, 0)
	}
	if err != nil {
		logging.Warn("thumbnail refresh for %s: %v", relPath, err)
	}
}
