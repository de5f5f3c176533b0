// Package middleware provides the HTTP middleware chain: W3C-style
// access logging and Prometheus request metrics.
package middleware
