// Package indexer walks the media root and keeps the catalogue in sync.
// Runs are incremental: files already catalogued are skipped, new files
// are probed for metadata, thumbnailed, and upserted. A run tolerates
// per-file failures and reports them in its summary. At most one run is
// in flight at a time; concurrent triggers are refused.
package indexer
