package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"quaver/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.PlaylistDir = ""
	cfgVal.MusicBrainz.Enabled = false

	libraryDir := filepath.Join(base, "library")
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		t.Fatalf("mkdir library dir: %v", err)
	}
	cfgVal.Library.SearchPaths = []string{libraryDir}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPlaylists enables playlist generation into a temp directory.
func WithPlaylists() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.PlaylistDir = filepath.Join(b.baseDir, "playlists")
	}
}

// LibraryDir returns the first search path of a config built by NewConfig.
func LibraryDir(cfg *config.Config) string {
	if len(cfg.Library.SearchPaths) == 0 {
		return ""
	}
	return cfg.Library.SearchPaths[0]
}
