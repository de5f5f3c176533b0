// Package workers computes worker pool sizes from the available CPU
// count, respecting container CPU limits via GOMAXPROCS.
package workers
