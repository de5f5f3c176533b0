// Package streaming serves media files over HTTP with single-range
// support: 206 partial responses for satisfiable byte ranges, 416 for
// unsatisfiable ones, and a full 200 response otherwise. Bodies are
// copied straight from the file, never buffered whole in memory.
package streaming
