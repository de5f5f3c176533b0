package catalogue

import (
	"time"

	"home-gallery/internal/mediatypes"
)

// Date source values recorded against each media record.
const (
	SourceExif         = "exif"
	SourceFileCreation = "file-creation"
	SourceFileModified = "file-modified"
)

// MediaRecord is one indexed media file.
type MediaRecord struct {
	ID               int64               `json:"id"`
	RelPath          string              `json:"filePath"`
	MediaKind        mediatypes.MediaKind `json:"mediaType"`
	CaptureDate      time.Time           `json:"captureDate"`
	DateSource       string              `json:"dateSource"`
	Year             int                 `json:"year"`
	Month            int                 `json:"month"`
	Day              int                 `json:"day"`
	CameraModel      string              `json:"cameraModel,omitempty"`
	FileSize         int64               `json:"fileSize"`
	VideoDurationSec *int                `json:"videoDuration,omitempty"`
	VideoResolution  string              `json:"videoResolution,omitempty"`
	ThumbnailRelPath string              `json:"thumbnailPath,omitempty"`
	LastScanned      time.Time           `json:"lastScanned"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// IsVideo reports whether the record is a video.
func (r *MediaRecord) IsVideo() bool {
	return r.MediaKind == mediatypes.KindVideo
}

// YearsAgo returns how many years before now the record's capture
// year falls. Zero for records captured this year.
func (r *MediaRecord) YearsAgo(now time.Time) int {
	return now.Year() - r.Year
}

// VideoStats summarizes the video portion of the catalogue.
type VideoStats struct {
	Count            int   `json:"count"`
	TotalDurationSec int64 `json:"totalDurationSec"`
	TotalSizeBytes   int64 `json:"totalSizeBytes"`
}
