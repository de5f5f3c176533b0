package mediatypes

import (
	"path/filepath"
	"strings"
)

// MediaKind is the coarse classification of a file in the library.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
	KindOther MediaKind = "other"
)

// ImageExtensions are the image formats the indexer and slideshow accept.
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// VideoExtensions are the video formats the indexer and streamer accept.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
	".wmv":  true,
}

// AudioExtensions are the audio formats served from the music root.
var AudioExtensions = map[string]bool{
	".mp3": true,
}

// contentTypes maps extensions to the Content-Type used when serving bytes.
var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".m4v":  "video/mp4",
	".wmv":  "video/x-ms-wmv",
	".mp3":  "audio/mpeg",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Ext returns the lowercased extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// KindFor classifies a path by its extension.
func KindFor(path string) MediaKind {
	ext := Ext(path)
	switch {
	case ImageExtensions[ext]:
		return KindImage
	case VideoExtensions[ext]:
		return KindVideo
	case AudioExtensions[ext]:
		return KindAudio
	}
	return KindOther
}

// ContentTypeFor returns the Content-Type for a path. Unknown extensions
// fall back to video/mp4, matching the streaming default.
func ContentTypeFor(path string) string {
	if ct, ok := contentTypes[Ext(path)]; ok {
		return ct
	}
	return "video/mp4"
}

// IsImage reports whether the path has a recognized image extension.
func IsImage(path string) bool {
	return ImageExtensions[Ext(path)]
}

// IsVideo reports whether the path has a recognized video extension.
func IsVideo(path string) bool {
	return VideoExtensions[Ext(path)]
}

// IsAudio reports whether the path has a recognized audio extension.
func IsAudio(path string) bool {
	return AudioExtensions[Ext(path)]
}

// IsMedia reports whether the path is indexable media (image or video).
func IsMedia(path string) bool {
	return IsImage(path) || IsVideo(path)
}

// IsHiddenArtifact reports whether the base name is a filesystem artifact
// that should never be indexed or served, such as macOS "._" resource forks.
func IsHiddenArtifact(name string) bool {
	return strings.HasPrefix(name, "._")
}
