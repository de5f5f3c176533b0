package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "trip", "day one"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{
		filepath.Join(root, "top.jpg"),
		filepath.Join(root, "trip", "beach.jpg"),
		filepath.Join(root, "trip", "day one", "sunset.jpg"),
	} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestResolve(t *testing.T) {
	root := setupRoot(t)

	tests := []struct {
		name     string
		rel      string
		expected string // relative to root; "" means an error is expected
		wantErr  error
	}{
		{"top level file", "top.jpg", "top.jpg", nil},
		{"nested file", "trip/beach.jpg", filepath.Join("trip", "beach.jpg"), nil},
		{"percent-encoded space", "trip/day%20one/sunset.jpg", filepath.Join("trip", "day one", "sunset.jpg"), nil},
		{"dot segment collapses", "trip/./beach.jpg", filepath.Join("trip", "beach.jpg"), nil},
		{"parent escape", "../outside.jpg", "", ErrBadPath},
		{"deep parent escape", "trip/../../outside.jpg", "", ErrBadPath},
		{"encoded parent escape", "%2e%2e/outside.jpg", "", ErrBadPath},
		{"backslash escape", `..\outside.jpg`, "", ErrBadPath},
		{"empty path", "", "", ErrBadPath},
		{"bad percent encoding", "trip/%zz.jpg", "", ErrBadPath},
		{"missing file", "trip/nope.jpg", "", ErrNotFound},
		{"directory not a file", "trip", "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(root, tt.rel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, expected %v", tt.rel, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.rel, err)
			}
			if got != filepath.Join(root, tt.expected) {
				t.Errorf("Resolve(%q) = %q, expected %q", tt.rel, got, filepath.Join(root, tt.expected))
			}
		})
	}
}

func TestWithin(t *testing.T) {
	if !Within("/media", "/media/a/b.jpg") {
		t.Error("contained path reported outside root")
	}
	if Within("/media", "/media2/a.jpg") {
		t.Error("sibling prefix path reported inside root")
	}
	if Within("/media", "/etc/passwd") {
		t.Error("unrelated path reported inside root")
	}
}

func TestToRel(t *testing.T) {
	root := setupRoot(t)
	abs := filepath.Join(root, "trip", "beach.jpg")
	rel, err := ToRel(root, abs)
	if err != nil {
		t.Fatal(err)
	}
	if rel != "trip/beach.jpg" {
		t.Errorf("ToRel = %q, expected %q", rel, "trip/beach.jpg")
	}
}
