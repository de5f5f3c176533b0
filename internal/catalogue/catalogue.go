package catalogue

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

// Catalogue wraps the SQLite store of indexed media records.
type Catalogue struct {
	db *sql.DB
	mu sync.RWMutex
}

const schema = `
CREATE TABLE IF NOT EXISTS media_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	rel_path TEXT NOT NULL UNIQUE,
	media_kind TEXT NOT NULL,
	capture_date TEXT NOT NULL,
	date_source TEXT NOT NULL,
	year INTEGER NOT NULL,
	month INTEGER NOT NULL,
	day INTEGER NOT NULL,
	camera_model TEXT NOT NULL DEFAULT '',
	file_size INTEGER NOT NULL DEFAULT 0,
	video_duration_sec INTEGER,
	video_resolution TEXT NOT NULL DEFAULT '',
	thumbnail_rel_path TEXT NOT NULL DEFAULT '',
	last_scanned INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_media_month_day ON media_records(month, day);
CREATE INDEX IF NOT EXISTS idx_media_kind ON media_records(media_kind);
`

// New opens (creating if necessary) the catalogue database in dir.
func New(dir string) (*Catalogue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dbPath := filepath.Join(dir, "gallery.db")
	connStr := dbPath + "?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000"

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under the indexer's worker pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logging.Debug("catalogue opened at %s", dbPath)
	return &Catalogue{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalogue) Close() error {
	return c.db.Close()
}

// recordQuery records metrics for a catalogue operation.
func recordQuery(operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.DBQueriesTotal.WithLabelValues(operation, result).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Count returns the total number of media records.
func (c *Catalogue) Count(ctx context.Context) (int, error) {
	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_records`).Scan(&n)
	recordQuery("count", start, err)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	metrics.CatalogueRecords.Set(float64(n))
	return n, nil
}
