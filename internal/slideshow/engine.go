package slideshow

import (
	"fmt"
	"math/rand"
	"path"
	"sort"
	"strings"

	"home-gallery/internal/library"
	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

// NextResult is the response of one pull from the slideshow queue.
type NextResult struct {
	Image         string `json:"image,omitempty"`
	HasMore       bool   `json:"hasMore"`
	Remaining     int    `json:"remaining"`
	TotalShown    int    `json:"totalShown"`
	TotalImages   int    `json:"totalImages"`
	CycleComplete bool   `json:"cycleComplete"`
}

// Engine drives slideshow sessions over the image root.
type Engine struct {
	root  string
	store *Store

	// shuffle is swappable so tests can run deterministically.
	shuffle func([]string)
}

// NewEngine returns an Engine backed by the given session store.
func NewEngine(root string, store *Store) *Engine {
	return &Engine{
		root:  root,
		store: store,
		shuffle: func(s []string) {
			rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		},
	}
}

// List returns a snapshot of the session's pending queue, seeding the
// session first if it is new or requested with different parameters.
func (e *Engine) List(sessionKey string, req ListRequest) ([]string, error) {
	s := e.store.get(sessionKey)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := e.ensureSeeded(s, req); err != nil {
		return nil, err
	}

	snapshot := make([]string, len(s.queue))
	copy(snapshot, s.queue)
	return snapshot, nil
}

// Next pulls the next image for the session. Every image in the order
// is handed out exactly once per cycle; the pull that wraps around to a
// new cycle reports CycleComplete alongside its image.
func (e *Engine) Next(sessionKey string, req ListRequest) (NextResult, error) {
	s := e.store.get(sessionKey)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := e.ensureSeeded(s, req); err != nil {
		return NextResult{}, err
	}

	cycleComplete := false
	if len(s.queue) == 0 && len(s.shown) > 0 {
		// Rebuild from whatever has not been shown this cycle,
		// preserving the original order so the cycle stays exact.
		remaining := make([]string, 0, len(s.all))
		for _, img := range s.all {
			if _, ok := s.shown[img]; !ok {
				remaining = append(remaining, img)
			}
		}

		if len(remaining) == 0 {
			logging.Info("slideshow cycle complete: %d images shown, starting new cycle", len(s.shown))
			s.shown = make(map[string]struct{}, len(s.all))
			s.queue = append([]string(nil), s.all...)
			cycleComplete = true
			metrics.SlideshowCyclesCompleted.Inc()
		} else {
			logging.Warn("slideshow queue rebuilt: %d remaining, %d already shown", len(remaining), len(s.shown))
			s.queue = remaining
		}
	}

	if len(s.queue) == 0 {
		return NextResult{HasMore: false, CycleComplete: true}, nil
	}

	next := s.queue[0]
	s.queue = s.queue[1:]

	if _, dup := s.shown[next]; dup {
		logging.Error("duplicate slideshow image within a cycle: %s (%d shown, %d queued)",
			next, len(s.shown), len(s.queue))
		metrics.SlideshowDuplicateEmissions.Inc()
	}
	s.shown[next] = struct{}{}
	metrics.SlideshowImagesServed.Inc()

	return NextResult{
		Image:         next,
		HasMore:       len(s.queue) > 0,
		Remaining:     len(s.queue),
		TotalShown:    len(s.shown),
		TotalImages:   len(s.all),
		CycleComplete: cycleComplete,
	}, nil
}

// Reset discards the session's cycle state entirely.
func (e *Engine) Reset(sessionKey string) {
	e.store.Remove(sessionKey)
}

// ensureSeeded (re)builds the session order when the session is fresh
// or the parameters changed. Callers hold s.mu.
func (e *Engine) ensureSeeded(s *session, req ListRequest) error {
	if s.seeded && s.params.Equal(req) {
		return nil
	}

	order, err := e.buildOrder(req)
	if err != nil {
		return err
	}

	s.seeded = true
	s.params = req
	s.all = order
	s.queue = append([]string(nil), order...)
	s.shown = make(map[string]struct{}, len(order))
	return nil
}

// buildOrder produces the session's frozen image order:
//
//  1. collect all images, filtered to selectedFolders when given
//  2. shuffleAll short-circuits to one flat shuffle
//  3. otherwise group by immediate parent folder; folder order is the
//     selectedFolders order when given, else shuffled; startFolder is
//     pulled to the front
//  4. within each folder, images are sorted, or shuffled when randomize
func (e *Engine) buildOrder(req ListRequest) ([]string, error) {
	images, err := library.Images(e.root)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	if len(req.SelectedFolders) > 0 {
		selected := make(map[string]bool, len(req.SelectedFolders))
		for _, f := range req.SelectedFolders {
			selected[normalizeFolder(f)] = true
		}
		filtered := images[:0]
		for _, img := range images {
			if selected[parentFolder(img)] {
				filtered = append(filtered, img)
			}
		}
		images = filtered
	}

	if req.ShuffleAll {
		e.shuffle(images)
		return images, nil
	}

	groups := make(map[string][]string)
	for _, img := range images {
		parent := parentFolder(img)
		groups[parent] = append(groups[parent], img)
	}

	var folders []string
	if len(req.SelectedFolders) > 0 {
		for _, f := range req.SelectedFolders {
			if _, ok := groups[normalizeFolder(f)]; ok {
				folders = append(folders, normalizeFolder(f))
			}
		}
	} else {
		for f := range groups {
			folders = append(folders, f)
		}
		sort.Strings(folders)
	}

	if req.StartFolder != "" {
		start := normalizeFolder(req.StartFolder)
		for i, f := range folders {
			if f == start {
				folders = append(folders[:i], folders[i+1:]...)
				break
			}
		}
		if len(req.SelectedFolders) == 0 {
			e.shuffle(folders)
		}
		if _, ok := groups[start]; ok {
			folders = append([]string{start}, folders...)
		}
	} else if len(req.SelectedFolders) == 0 {
		e.shuffle(folders)
	}

	order := make([]string, 0, len(images))
	for _, folder := range folders {
		folderImages := groups[folder]
		if req.Randomize {
			e.shuffle(folderImages)
		} else {
			sort.Strings(folderImages)
		}
		order = append(order, folderImages...)
	}
	return order, nil
}

// parentFolder returns the slash path of an image's immediate folder,
// "" for root-level images.
func parentFolder(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}

// normalizeFolder cleans a client-supplied folder path into the same
// form parentFolder produces.
func normalizeFolder(f string) string {
	f = strings.Trim(strings.ReplaceAll(f, "\\", "/"), "/")
	if f == "." {
		return ""
	}
	return f
}
