package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quaver/internal/config"
)

func TestLoadWithoutFileRequiresSearchPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("QUAVER_CONFIG", "")

	_, _, exists, err := config.Load("")
	if err == nil {
		t.Fatal("expected error when no search paths are configured")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !strings.Contains(err.Error(), "library.search_paths") {
		t.Fatalf("expected actionable message naming library.search_paths, got %v", err)
	}
}

func TestLoadParsesAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
cache_dir = "~/cache"
log_dir = "~/logs"
playlist_dir = "~/playlists"

[library]
search_paths = ["~/music", " ", "~/more-music"]
scan_extensions = [".MP3", "flac", "flac", ""]

[workflow]
workers = 2

[logging]
format = "json"
level = "debug"

[[artist_name_overrides]]
artist_id = " 0383dadf-2a4e-4d10-a46a-e9e041da8eb3 "
artist_name = "Queen"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, "cache") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.Paths.PlaylistDir != filepath.Join(tempHome, "playlists") {
		t.Fatalf("unexpected playlist dir: %q", cfg.Paths.PlaylistDir)
	}
	if !cfg.PlaylistsEnabled() {
		t.Fatal("expected playlists enabled")
	}
	if len(cfg.Library.SearchPaths) != 2 {
		t.Fatalf("expected blank search path dropped, got %v", cfg.Library.SearchPaths)
	}
	if got := cfg.Library.ScanExtensions; len(got) != 2 || got[0] != "mp3" || got[1] != "flac" {
		t.Fatalf("expected normalized extensions, got %v", got)
	}
	if cfg.Workflow.Workers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.Workflow.Workers)
	}
	if cfg.MusicBrainz.BaseURL != config.Default().MusicBrainz.BaseURL {
		t.Fatalf("unexpected musicbrainz base url: %q", cfg.MusicBrainz.BaseURL)
	}
	if len(cfg.ArtistNameOverrides) != 1 {
		t.Fatalf("unexpected overrides: %v", cfg.ArtistNameOverrides)
	}
	if cfg.ArtistNameOverrides[0].ArtistID != "0383dadf-2a4e-4d10-a46a-e9e041da8eb3" {
		t.Fatalf("expected trimmed artist id, got %q", cfg.ArtistNameOverrides[0].ArtistID)
	}
	if cfg.CacheDatabasePath() != filepath.Join(cfg.Paths.CacheDir, config.CacheDBFileName) {
		t.Fatalf("unexpected cache database path: %q", cfg.CacheDatabasePath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "bad log format",
			content: `
[library]
search_paths = ["~/music"]
[logging]
format = "yaml"
`,
			want: "logging.format",
		},
		{
			name: "zero workers",
			content: `
[library]
search_paths = ["~/music"]
[workflow]
workers = -1
`,
			want: "workflow.workers",
		},
		{
			name: "override missing name",
			content: `
[library]
search_paths = ["~/music"]
[[artist_name_overrides]]
artist_id = "abc"
`,
			want: "artist_name_overrides[0].artist_name",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(configPath)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadHonorsEnvConfigPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "custom.toml")
	content := "[library]\nsearch_paths = [\"~/music\"]\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUAVER_CONFIG", configPath)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected env config path to resolve, got %q exists=%v", resolved, exists)
	}
	if len(cfg.Library.SearchPaths) != 1 {
		t.Fatalf("unexpected search paths: %v", cfg.Library.SearchPaths)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	samplePath := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(samplePath); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(samplePath)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if len(cfg.Library.SearchPaths) == 0 {
		t.Fatal("expected sample to configure a search path")
	}
	if cfg.PlaylistsEnabled() {
		t.Fatal("expected playlist writing disabled in sample")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.CacheDir); err != nil {
		t.Fatalf("expected cache dir created: %v", err)
	}
}
