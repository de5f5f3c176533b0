// Package paths resolves request-supplied relative paths to absolute
// paths confined to a media root. Every file-serving endpoint goes
// through Resolve before touching the filesystem.
package paths
