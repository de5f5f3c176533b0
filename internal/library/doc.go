// Package library walks the media roots and answers listing questions:
// which images exist, which folders directly contain images, and which
// audio files are available. Hidden directories (dot-prefixed, which
// covers the thumbnail tree) and "._" artifacts are never reported.
package library
