package streaming

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"home-gallery/internal/logging"
	"home-gallery/internal/mediatypes"
	"home-gallery/internal/metrics"
)

// ErrRangeNotSatisfiable indicates a Range header naming bytes the file
// does not have, or one this server refuses (multiple ranges).
var ErrRangeNotSatisfiable = errors.New("range not satisfiable")

// cacheControl is sent on every streamed response. Media bytes are
// immutable in practice; a day of client caching keeps seek traffic off
// the disk.
const cacheControl = "public, max-age=86400"

// ByteRange is an inclusive byte interval within a file.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange interprets a Range header against a file of the given size.
// It returns (nil, nil) when the header is absent or uses a unit other
// than bytes, a clamped single range when satisfiable, and
// ErrRangeNotSatisfiable for unsatisfiable, malformed, or multi-range
// headers.
func ParseRange(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		// Unknown units are ignored per RFC 7233, yielding a full response.
		return nil, nil
	}
	if strings.Contains(spec, ",") {
		return nil, fmt.Errorf("%w: multiple ranges not supported", ErrRangeNotSatisfiable)
	}

	startStr, endStr, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, fmt.Errorf("%w: malformed range %q", ErrRangeNotSatisfiable, header)
	}

	if startStr == "" {
		// Suffix form: last N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: malformed suffix range %q", ErrRangeNotSatisfiable, header)
		}
		if n > size {
			n = size
		}
		if size == 0 {
			return nil, fmt.Errorf("%w: empty file", ErrRangeNotSatisfiable)
		}
		return &ByteRange{Start: size - n, End: size - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, fmt.Errorf("%w: malformed range %q", ErrRangeNotSatisfiable, header)
	}
	if start >= size {
		return nil, fmt.Errorf("%w: start %d beyond size %d", ErrRangeNotSatisfiable, start, size)
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed range %q", ErrRangeNotSatisfiable, header)
		}
		if end < start {
			return nil, fmt.Errorf("%w: inverted range %q", ErrRangeNotSatisfiable, header)
		}
		if end > size-1 {
			end = size - 1
		}
	}

	return &ByteRange{Start: start, End: end}, nil
}

// ETag derives the weak validator sent with streamed files: file name
// plus size, quoted.
func ETag(absPath string, size int64) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%s-%d", filepath.Base(absPath), size))
}

// ServeFile streams absPath to the client, honoring a single-range
// Range header. kind labels the stream metrics ("video", "audio",
// "image"). The caller is expected to have resolved and validated
// absPath already.
func ServeFile(w http.ResponseWriter, r *http.Request, absPath, kind string) {
	info, err := os.Stat(absPath)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(kind, "404").Inc()
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	size := info.Size()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", mediatypes.ContentTypeFor(absPath))
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("ETag", ETag(absPath, size))

	rng, err := ParseRange(r.Header.Get("Range"), size)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(kind, "416").Inc()
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	f, err := os.Open(absPath)
	if err != nil {
		metrics.StreamRequestsTotal.WithLabelValues(kind, "500").Inc()
		http.Error(w, "failed to open file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	var reader io.Reader = f
	length := size

	if rng != nil {
		if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
			metrics.StreamRequestsTotal.WithLabelValues(kind, "500").Inc()
			http.Error(w, "failed to seek", http.StatusInternalServerError)
			return
		}
		length = rng.Length()
		reader = io.LimitReader(f, length)

		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
		w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		w.WriteHeader(http.StatusPartialContent)
		metrics.StreamRequestsTotal.WithLabelValues(kind, "206").Inc()
	} else {
		w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		metrics.StreamRequestsTotal.WithLabelValues(kind, "200").Inc()
	}

	if r.Method == http.MethodHead {
		return
	}

	written, err := io.Copy(w, reader)
	metrics.StreamBytesTotal.WithLabelValues(kind).Add(float64(written))
	if err != nil {
		// Usually the client seeking away or closing the player.
		logging.Debug("stream of %s ended early after %d bytes: %v", absPath, written, err)
	}
}
