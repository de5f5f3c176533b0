// Package metrics defines the Prometheus metrics exported by the
// gallery server. All metrics are registered via promauto at package
// init and share the "gallery_" prefix.
package metrics
