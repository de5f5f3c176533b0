package startup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR_SET", "value")
	if got := getEnv("TEST_STR_SET", "default"); got != "value" {
		t.Errorf("getEnv set = %q", got)
	}
	if got := getEnv("TEST_STR_UNSET", "default"); got != "default" {
		t.Errorf("getEnv unset = %q", got)
	}

	t.Setenv("TEST_BOOL_TRUE", "true")
	t.Setenv("TEST_BOOL_BAD", "banana")
	if !getEnvBool("TEST_BOOL_TRUE", false) {
		t.Error("getEnvBool true = false")
	}
	if !getEnvBool("TEST_BOOL_BAD", true) {
		t.Error("getEnvBool fell through the default on a bad value")
	}
	if getEnvBool("TEST_BOOL_UNSET", false) {
		t.Error("getEnvBool unset = true")
	}

	t.Setenv("TEST_INT_SET", "640")
	t.Setenv("TEST_INT_BAD", "wide")
	if got := getEnvInt("TEST_INT_SET", 400); got != 640 {
		t.Errorf("getEnvInt set = %d", got)
	}
	if got := getEnvInt("TEST_INT_BAD", 400); got != 400 {
		t.Errorf("getEnvInt bad = %d", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	mediaDir := t.TempDir()
	databaseDir := t.TempDir()

	t.Setenv("MEDIA_ROOT", mediaDir)
	t.Setenv("DATABASE_DIR", databaseDir)
	t.Setenv("MUSIC_ROOT", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	if config.Port != "8080" {
		t.Errorf("Port = %q, expected 8080", config.Port)
	}
	if config.ThumbEdgePx != 400 {
		t.Errorf("ThumbEdgePx = %d, expected 400", config.ThumbEdgePx)
	}
	if config.ThumbQuality != 85 {
		t.Errorf("ThumbQuality = %d, expected 85", config.ThumbQuality)
	}
	if config.HiddenThumbDir != ".thumbnails" {
		t.Errorf("HiddenThumbDir = %q", config.HiddenThumbDir)
	}
	if !config.AutoIndexEnabled {
		t.Error("AutoIndexEnabled = false, expected default true")
	}
	if config.AutoIndexAt.Hour != 2 || config.AutoIndexAt.Minute != 0 {
		t.Errorf("AutoIndexAt = %s, expected 02:00", config.AutoIndexAt)
	}
	if config.NotificationAt.Hour != 9 {
		t.Errorf("NotificationAt = %s, expected 09:00", config.NotificationAt)
	}
	if config.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, expected 1h", config.SessionTTL)
	}
	if config.MusicEnabled {
		t.Error("MusicEnabled = true with MUSIC_ROOT unset")
	}
	if !config.ThumbnailsEnabled {
		t.Error("ThumbnailsEnabled = false with a writable media root")
	}
	if config.ThumbnailDir != filepath.Join(config.MediaDir, ".thumbnails") {
		t.Errorf("ThumbnailDir = %q", config.ThumbnailDir)
	}
}

func TestLoadConfigMusicRoot(t *testing.T) {
	t.Setenv("MEDIA_ROOT", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("MUSIC_ROOT", t.TempDir())

	config, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !config.MusicEnabled {
		t.Error("MusicEnabled = false with a valid MUSIC_ROOT")
	}
}

func TestLoadConfigMissingMusicRootDisables(t *testing.T) {
	t.Setenv("MEDIA_ROOT", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("MUSIC_ROOT", filepath.Join(t.TempDir(), "does-not-exist"))

	config, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.MusicEnabled {
		t.Error("MusicEnabled = true with a missing MUSIC_ROOT")
	}
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MEDIA_ROOT", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("MUSIC_ROOT", "")
	t.Setenv("THUMB_QUALITY", "250")
	t.Setenv("AUTO_INDEX_TIME", "25:99")
	t.Setenv("SESSION_TTL", "soon")

	config, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.ThumbQuality != 85 {
		t.Errorf("ThumbQuality = %d, expected fallback 85", config.ThumbQuality)
	}
	if config.AutoIndexAt.Hour != 2 {
		t.Errorf("AutoIndexAt = %s, expected fallback 02:00", config.AutoIndexAt)
	}
	if config.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, expected fallback 1h", config.SessionTTL)
	}
}

func TestCheckDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := checkDirectory(dir, "media"); err != nil {
		t.Errorf("existing directory: %v", err)
	}

	if err := checkDirectory(filepath.Join(dir, "missing"), "media"); err == nil {
		t.Error("missing directory passed the check")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := checkDirectory(file, "media"); err == nil {
		t.Error("regular file passed the directory check")
	}
}

func TestTestWriteAccess(t *testing.T) {
	if err := testWriteAccess(t.TempDir()); err != nil {
		t.Errorf("writable dir: %v", err)
	}
	if err := testWriteAccess(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing dir reported writable")
	}
}
