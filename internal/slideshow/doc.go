// Package slideshow implements the per-session image rotation engine.
// Each session holds a frozen image order, a pending queue, and the set
// of images already shown this cycle. The next operation hands out each
// image exactly once per cycle; when a cycle ends, the shown set resets
// and the response that starts the new cycle carries cycleComplete.
// Changing the request parameters mid-session reseeds from scratch.
package slideshow
