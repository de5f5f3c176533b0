// Package handlers implements the HTTP API: slideshow session endpoints,
// media and thumbnail streaming, video listings, on-this-day memories,
// music, and health checks.
package handlers
