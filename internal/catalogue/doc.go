// Package catalogue persists indexed media records in SQLite and
// answers the month/day "on this day" queries, the video listing
// queries, and existence checks used by the incremental indexer.
package catalogue
