package paths

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrBadPath indicates a path that is malformed or escapes the root.
	ErrBadPath = errors.New("bad path")
	// ErrNotFound indicates a path that resolves inside the root but does
	// not name an existing regular file.
	ErrNotFound = errors.New("file not found")
)

// Resolve maps a request-supplied relative path to an absolute path under
// root. The input is percent-decoded, slash-normalized, and joined to the
// root; any result outside the root (via "..", absolute segments, or
// symlink-free lexical tricks) fails with ErrBadPath. The resolved path
// must name an existing regular file or Resolve fails with ErrNotFound.
func Resolve(root, rel string) (string, error) {
	decoded, err := url.PathUnescape(rel)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadPath, rel)
	}
	if decoded == "" || strings.ContainsRune(decoded, 0) {
		return "", fmt.Errorf("%w: %q", ErrBadPath, rel)
	}

	// Windows-style separators are treated as separators so that a
	// backslash cannot smuggle ".." past the containment check.
	decoded = strings.ReplaceAll(decoded, "\\", "/")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", root, err)
	}

	full := filepath.Join(absRoot, filepath.FromSlash(decoded))
	if !Within(absRoot, full) {
		return "", fmt.Errorf("%w: %q", ErrBadPath, rel)
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, rel)
		}
		return "", fmt.Errorf("stat %q: %w", rel, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q is not a regular file", ErrNotFound, rel)
	}

	return full, nil
}

// Within reports whether path is root itself or lexically contained in it.
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ToRel converts an absolute path under root to a slash-separated
// relative path, the canonical key format for catalogue records.
func ToRel(root, abs string) (string, error) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("relativizing %q: %w", abs, err)
	}
	return filepath.ToSlash(rel), nil
}
