// Package probe extracts capture metadata from media files: EXIF dates
// and camera models from images, duration and resolution from videos
// via ffprobe. Probing is best-effort; every failure has a documented
// fallback so indexing never stalls on a corrupt file.
package probe
