package library

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"home-gallery/internal/mediatypes"
)

// Images returns the sorted slash-relative paths of every image under
// root.
func Images(root string) ([]string, error) {
	return walk(root, mediatypes.IsImage)
}

// Videos returns the sorted slash-relative paths of every video under
// root.
func Videos(root string) ([]string, error) {
	return walk(root, mediatypes.IsVideo)
}

// Media returns the sorted slash-relative paths of every indexable
// media file (images and videos) under root.
func Media(root string) ([]string, error) {
	return walk(root, mediatypes.IsMedia)
}

// Audio returns the sorted slash-relative paths of every audio file
// under root.
func Audio(root string) ([]string, error) {
	return walk(root, mediatypes.IsAudio)
}

// FoldersWithDirectImages returns the sorted slash-relative paths of
// directories that directly contain at least one image. A directory
// whose images all live in subdirectories is not included; neither is
// the root itself.
func FoldersWithDirectImages(root string) ([]string, error) {
	images, err := Images(root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, img := range images {
		parent := parentOf(img)
		if parent != "" {
			seen[parent] = true
		}
	}

	folders := make([]string, 0, len(seen))
	for folder := range seen {
		folders = append(folders, folder)
	}
	sort.Strings(folders)
	return folders, nil
}

// parentOf returns the slash path of the directory directly containing
// rel, or "" for root-level files.
func parentOf(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return ""
	}
	return dir
}

func walk(root string, match func(string) bool) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if mediatypes.IsHiddenArtifact(d.Name()) || !match(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		found = append(found, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", root, err)
	}

	sort.Strings(found)
	return found, nil
}
