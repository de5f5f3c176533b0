// Package scheduler runs named jobs once a day at a configured local
// wall-clock time. Each job gets its own goroutine and timer; a tick
// that arrives while the previous run of the same job is still active
// is skipped rather than queued.
package scheduler
