package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeMusicBrainz()
	c.normalizeLogging()
	c.normalizeOverrides()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PlaylistDir) != "" {
		if c.Paths.PlaylistDir, err = expandPath(c.Paths.PlaylistDir); err != nil {
			return fmt.Errorf("paths.playlist_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	expanded := make([]string, 0, len(c.Library.SearchPaths))
	for _, raw := range c.Library.SearchPaths {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		path, err := expandPath(raw)
		if err != nil {
			return fmt.Errorf("library.search_paths: %w", err)
		}
		expanded = append(expanded, path)
	}
	c.Library.SearchPaths = expanded

	exts := make([]string, 0, len(c.Library.ScanExtensions))
	seen := make(map[string]struct{}, len(c.Library.ScanExtensions))
	for _, raw := range c.Library.ScanExtensions {
		ext := strings.ToLower(strings.TrimSpace(raw))
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Library.ScanExtensions = exts
	return nil
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.BaseURL = strings.TrimRight(strings.TrimSpace(c.MusicBrainz.BaseURL), "/")
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaultMusicBrainzBaseURL
	}
	c.MusicBrainz.UserAgent = strings.TrimSpace(c.MusicBrainz.UserAgent)
	if c.MusicBrainz.UserAgent == "" {
		c.MusicBrainz.UserAgent = defaultMusicBrainzUserAgent
	}
	if c.MusicBrainz.TimeoutSeconds <= 0 {
		c.MusicBrainz.TimeoutSeconds = defaultMusicBrainzTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeOverrides() {
	cleaned := c.ArtistNameOverrides[:0]
	for _, override := range c.ArtistNameOverrides {
		override.ArtistID = strings.TrimSpace(override.ArtistID)
		override.ArtistName = strings.TrimSpace(override.ArtistName)
		if override.ArtistID == "" && override.ArtistName == "" {
			continue
		}
		cleaned = append(cleaned, override)
	}
	c.ArtistNameOverrides = cleaned
}
