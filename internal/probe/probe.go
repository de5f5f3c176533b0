package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

// ErrProbeFailed indicates ffprobe could not produce usable metadata.
var ErrProbeFailed = errors.New("probe failed")

// estimateBytesPerSec is the assumed bitrate when ffprobe is unavailable
// and video duration has to be estimated from file size.
const estimateBytesPerSec = 640 * 1024

// Result holds the metadata extracted from one media file.
type Result struct {
	CaptureDate time.Time
	DateSource  string
	CameraModel string
	DurationSec *int   // videos only; nil for images
	Resolution  string // videos only; "WxH" or "Unknown"
}

// Prober extracts metadata from images and videos.
type Prober struct {
	ffprobePath string
	timeout     time.Duration
}

// New returns a Prober. ffprobe is located on PATH at construction; when
// absent, video probes fall back to size-based duration estimates.
func New() *Prober {
	p := &Prober{timeout: 30 * time.Second}
	if path, err := exec.LookPath("ffprobe"); err == nil {
		p.ffprobePath = path
		logging.Debug("ffprobe found at %s", path)
	} else {
		logging.Warn("ffprobe not found; video durations will be estimated from file size")
	}
	return p
}

// Image probes an image file. EXIF DateTimeOriginal wins; files without
// usable EXIF fall back to filesystem creation time, then modification
// time. Image probes never fail outright.
func (p *Prober) Image(path string) Result {
	start := time.Now()
	res := Result{}

	if f, err := os.Open(path); err == nil {
		if x, err := exif.Decode(f); err == nil {
			if dt, err := x.DateTime(); err == nil {
				res.CaptureDate = dt
				res.DateSource = catalogue.SourceExif
			}
			res.CameraModel = cameraModel(x)
		}
		f.Close()
	}

	result := "success"
	if res.DateSource == "" {
		res.CaptureDate, res.DateSource = fileDate(path)
		result = "error"
	}
	metrics.ProbesTotal.WithLabelValues("image", result).Inc()
	metrics.ProbeDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	return res
}

// Video probes a video file with ffprobe. Duration is rounded to whole
// seconds and resolution taken from the first video stream. When ffprobe
// is missing, fails, or times out, duration is estimated from file size
// at 640 KB/s and resolution reported as "Unknown". The capture date is
// always the filesystem date; video containers rarely carry a reliable
// one.
func (p *Prober) Video(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Resolution: "Unknown"}
	res.CaptureDate, res.DateSource = fileDate(path)

	dur, resolution, err := p.ffprobe(ctx, path)
	if err != nil {
		logging.Warn("probe of %s failed, estimating: %v", path, err)
		metrics.ProbesTotal.WithLabelValues("video", "error").Inc()
		est := estimateDuration(path)
		res.DurationSec = &est
	} else {
		metrics.ProbesTotal.WithLabelValues("video", "success").Inc()
		res.DurationSec = &dur
		if resolution != "" {
			res.Resolution = resolution
		}
	}

	metrics.ProbeDuration.WithLabelValues("video").Observe(time.Since(start).Seconds())
	return res
}

// ffprobeOutput mirrors the parts of ffprobe's JSON output we read.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func (p *Prober) ffprobe(ctx context.Context, path string) (durationSec int, resolution string, err error) {
	if p.ffprobePath == "" {
		return 0, "", fmt.Errorf("%w: ffprobe not installed", ErrProbeFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, "", fmt.Errorf("%w: %v - %s", ErrProbeFailed, err, stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, "", fmt.Errorf("%w: parsing output: %v", ErrProbeFailed, err)
	}

	seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: no duration in output", ErrProbeFailed)
	}
	durationSec = int(math.Round(seconds))

	for _, s := range out.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			resolution = fmt.Sprintf("%dx%d", s.Width, s.Height)
			break
		}
	}

	return durationSec, resolution, nil
}

// estimateDuration guesses a video's duration from its size at an
// assumed 640 KB/s bitrate.
func estimateDuration(path string) int {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return int(info.Size() / estimateBytesPerSec)
}

// fileDate picks the best filesystem date for a file: creation time
// where the platform exposes one, else modification time.
func fileDate(path string) (time.Time, string) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now(), catalogue.SourceFileModified
	}
	if created, ok := creationTime(path, info); ok {
		return created, catalogue.SourceFileCreation
	}
	return info.ModTime(), catalogue.SourceFileModified
}

// cameraModel joins the EXIF Make and Model tags, dropping the make when
// the model already repeats it.
func cameraModel(x *exif.Exif) string {
	var make, model string
	if tag, err := x.Get(exif.Make); err == nil {
		make, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.Model); err == nil {
		model, _ = tag.StringVal()
	}
	make = strings.TrimSpace(make)
	model = strings.TrimSpace(model)

	switch {
	case model == "":
		return make
	case make == "" || strings.HasPrefix(strings.ToLower(model), strings.ToLower(make)):
		return model
	default:
		return make + " " + model
	}
}
