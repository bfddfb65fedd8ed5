package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// CacheDBFileName is the SQLite database created under the cache directory.
const CacheDBFileName = "metadata.db"

// Paths contains directory configuration.
type Paths struct {
	CacheDir    string `toml:"cache_dir"`
	LogDir      string `toml:"log_dir"`
	PlaylistDir string `toml:"playlist_dir"`
}

// Library contains configuration for locating groups on disk.
type Library struct {
	SearchPaths    []string `toml:"search_paths"`
	ScanExtensions []string `toml:"scan_extensions"`
}

// MusicBrainz contains configuration for the MusicBrainz web service.
type MusicBrainz struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Workflow contains configuration for pipeline parallelism.
type Workflow struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// ArtistNameOverride maps a MusicBrainz artist ID to a preferred display name.
type ArtistNameOverride struct {
	ArtistID   string `toml:"artist_id"`
	ArtistName string `toml:"artist_name"`
}

// Config encapsulates all configuration values for quaver.
//
// Configuration sections by subsystem:
//   - Paths: cache, log, and playlist directories
//   - Library: search paths and the scan extension set
//   - MusicBrainz: metadata lookup web service settings
//   - Workflow: group processing parallelism
//   - Logging: log format and level
//   - ArtistNameOverrides: display-name substitutions for looked-up artists
type Config struct {
	Paths               Paths                `toml:"paths"`
	Library             Library              `toml:"library"`
	MusicBrainz         MusicBrainz          `toml:"musicbrainz"`
	Workflow            Workflow             `toml:"workflow"`
	Logging             Logging              `toml:"logging"`
	ArtistNameOverrides []ArtistNameOverride `toml:"artist_name_overrides"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/quaver/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv("QUAVER_CONFIG"))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("quaver.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories quaver writes into. The playlist
// directory is only created when playlist writing is enabled.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.PlaylistDir) != "" {
		if err := os.MkdirAll(c.Paths.PlaylistDir, 0o755); err != nil {
			return fmt.Errorf("create playlist directory %q: %w", c.Paths.PlaylistDir, err)
		}
	}
	return nil
}

// CacheDatabasePath returns the metadata cache database location.
func (c *Config) CacheDatabasePath() string {
	return filepath.Join(c.Paths.CacheDir, CacheDBFileName)
}

// PlaylistsEnabled reports whether resolved playlists should be written to disk.
func (c *Config) PlaylistsEnabled() bool {
	return strings.TrimSpace(c.Paths.PlaylistDir) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
