package catalogue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"home-gallery/internal/mediatypes"
)

const dateLayout = "2006-01-02"

const recordColumns = `id, rel_path, media_kind, capture_date, date_source,
	year, month, day, camera_model, file_size, video_duration_sec,
	video_resolution, thumbnail_rel_path, last_scanned, created_at, updated_at`

// Upsert inserts or replaces the record keyed by RelPath. On conflict all
// probed fields are refreshed and updated_at is bumped; created_at and id
// are preserved.
func (c *Catalogue) Upsert(ctx context.Context, rec *MediaRecord) error {
	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().Unix()
	var dur sql.NullInt64
	if rec.VideoDurationSec != nil {
		dur = sql.NullInt64{Int64: int64(*rec.VideoDurationSec), Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO media_records (
			rel_path, media_kind, capture_date, date_source,
			year, month, day, camera_model, file_size,
			video_duration_sec, video_resolution, thumbnail_rel_path,
			last_scanned, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rel_path) DO UPDATE SET
			media_kind = excluded.media_kind,
			capture_date = excluded.capture_date,
			date_source = excluded.date_source,
			year = excluded.year,
			month = excluded.month,
			day = excluded.day,
			camera_model = excluded.camera_model,
			file_size = excluded.file_size,
			video_duration_sec = excluded.video_duration_sec,
			video_resolution = excluded.video_resolution,
			thumbnail_rel_path = excluded.thumbnail_rel_path,
			last_scanned = excluded.last_scanned,
			updated_at = excluded.updated_at`,
		rec.RelPath, string(rec.MediaKind), rec.CaptureDate.Format(dateLayout), rec.DateSource,
		rec.Year, rec.Month, rec.Day, rec.CameraModel, rec.FileSize,
		dur, rec.VideoResolution, rec.ThumbnailRelPath,
		now, now, now,
	)
	recordQuery("upsert", start, err)
	if err != nil {
		return fmt.Errorf("upserting %q: %w", rec.RelPath, err)
	}
	return nil
}

// ExistsByPath reports whether a record for relPath is already catalogued.
// This is the incremental indexer's skip check.
func (c *Catalogue) ExistsByPath(ctx context.Context, relPath string) (bool, error) {
	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM media_records WHERE rel_path = ?`, relPath).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		recordQuery("exists", start, nil)
		return false, nil
	}
	recordQuery("exists", start, err)
	if err != nil {
		return false, fmt.Errorf("checking %q: %w", relPath, err)
	}
	return true, nil
}

// FindByPath returns the record for relPath, or nil when absent.
func (c *Catalogue) FindByPath(ctx context.Context, relPath string) (*MediaRecord, error) {
	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM media_records WHERE rel_path = ?`, relPath)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		recordQuery("find_by_path", start, nil)
		return nil, nil
	}
	recordQuery("find_by_path", start, err)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", relPath, err)
	}
	return rec, nil
}

// DeleteByPath removes the record for relPath if present.
func (c *Catalogue) DeleteByPath(ctx context.Context, relPath string) error {
	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`DELETE FROM media_records WHERE rel_path = ?`, relPath)
	recordQuery("delete", start, err)
	if err != nil {
		return fmt.Errorf("deleting %q: %w", relPath, err)
	}
	return nil
}

// ListByMonthDay returns every record captured on the given month and day
// in any year, newest year first, then by path for a stable order.
func (c *Catalogue) ListByMonthDay(ctx context.Context, month, day int) ([]*MediaRecord, error) {
	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM media_records
		 WHERE month = ? AND day = ?
		 ORDER BY year DESC, rel_path ASC`, month, day)
	recordQuery("list_by_month_day", start, err)
	if err != nil {
		return nil, fmt.Errorf("listing %02d-%02d: %w", month, day, err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// CountByMonthDay counts records captured on the given month and day in
// any year. This backs the notification check and uses the month/day
// index rather than loading rows.
func (c *Catalogue) CountByMonthDay(ctx context.Context, month, day int) (int, error) {
	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_records WHERE month = ? AND day = ?`,
		month, day).Scan(&n)
	recordQuery("count_by_month_day", start, err)
	if err != nil {
		return 0, fmt.Errorf("counting %02d-%02d: %w", month, day, err)
	}
	return n, nil
}

// CalendarCounts returns a day -> record count map for the given month,
// aggregated across all years. Days with zero records are absent.
func (c *Catalogue) CalendarCounts(ctx context.Context, month int) (map[int]int, error) {
	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx,
		`SELECT day, COUNT(*) FROM media_records
		 WHERE month = ? GROUP BY day`, month)
	recordQuery("calendar_counts", start, err)
	if err != nil {
		return nil, fmt.Errorf("calendar counts for month %d: %w", month, err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var day, n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("scanning calendar row: %w", err)
		}
		counts[day] = n
	}
	return counts, rows.Err()
}

// VideoSort orders for ListVideos.
const (
	SortDateDesc     = "date-desc"
	SortDateAsc      = "date-asc"
	SortDurationDesc = "duration-desc"
	SortDurationAsc  = "duration-asc"
)

// VideoListOptions narrows and orders kind-scoped listings.
type VideoListOptions struct {
	SortBy string // one of the Sort* constants; default SortDateDesc
	Folder string // when set, only records whose rel path is under this folder
}

// ListByMediaKind returns all records of one media kind, optionally
// filtered to a folder and ordered per opts.
func (c *Catalogue) ListByMediaKind(ctx context.Context, kind mediatypes.MediaKind, opts VideoListOptions) ([]*MediaRecord, error) {
	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	order := "capture_date DESC, rel_path ASC"
	switch opts.SortBy {
	case SortDateAsc:
		order = "capture_date ASC, rel_path ASC"
	case SortDurationDesc:
		order = "video_duration_sec DESC, rel_path ASC"
	case SortDurationAsc:
		order = "video_duration_sec ASC, rel_path ASC"
	}

	query := `SELECT ` + recordColumns + ` FROM media_records WHERE media_kind = ?`
	args := []interface{}{string(kind)}
	if opts.Folder != "" {
		folder := strings.TrimSuffix(opts.Folder, "/")
		query += ` AND (rel_path LIKE ? ESCAPE '\')`
		args = append(args, likePrefix(folder)+"/%")
	}
	query += ` ORDER BY ` + order

	rows, err := c.db.QueryContext(ctx, query, args...)
	recordQuery("list_by_kind", start, err)
	if err != nil {
		return nil, fmt.Errorf("listing %s records: %w", kind, err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListVideos returns all video records, optionally filtered to a folder
// and ordered per opts.
func (c *Catalogue) ListVideos(ctx context.Context, opts VideoListOptions) ([]*MediaRecord, error) {
	return c.ListByMediaKind(ctx, mediatypes.KindVideo, opts)
}

// GetVideoStats aggregates count, total duration and total size over all
// video records.
func (c *Catalogue) GetVideoStats(ctx context.Context) (*VideoStats, error) {
	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &VideoStats{}
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(video_duration_sec), 0),
		       COALESCE(SUM(file_size), 0)
		FROM media_records WHERE media_kind = ?`,
		string(mediatypes.KindVideo)).
		Scan(&stats.Count, &stats.TotalDurationSec, &stats.TotalSizeBytes)
	recordQuery("video_stats", start, err)
	if err != nil {
		return nil, fmt.Errorf("video stats: %w", err)
	}
	return stats, nil
}

// likePrefix escapes LIKE wildcards in a literal path prefix.
func likePrefix(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*MediaRecord, error) {
	var (
		rec         MediaRecord
		kind        string
		captureDate string
		dur         sql.NullInt64
		lastScanned int64
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(&rec.ID, &rec.RelPath, &kind, &captureDate, &rec.DateSource,
		&rec.Year, &rec.Month, &rec.Day, &rec.CameraModel, &rec.FileSize,
		&dur, &rec.VideoResolution, &rec.ThumbnailRelPath,
		&lastScanned, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.MediaKind = mediatypes.MediaKind(kind)
	if rec.CaptureDate, err = time.Parse(dateLayout, captureDate); err != nil {
		return nil, fmt.Errorf("parsing capture date %q: %w", captureDate, err)
	}
	if dur.Valid {
		d := int(dur.Int64)
		rec.VideoDurationSec = &d
	}
	rec.LastScanned = time.Unix(lastScanned, 0)
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]*MediaRecord, error) {
	var records []*MediaRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
