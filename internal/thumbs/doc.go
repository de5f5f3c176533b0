// Package thumbs renders JPEG thumbnails for images and videos into a
// hidden directory that mirrors the media tree. Image thumbnails are
// aspect-preserving downscales; video thumbnails are a frame extracted
// with ffmpeg and stamped with a play badge, or a generated placeholder
// when ffmpeg is unavailable. Generation is idempotent: a thumbnail at
// least as new as its source is left alone.
package thumbs
