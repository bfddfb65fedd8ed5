package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateMusicBrainz(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateOverrides()
}

func (c *Config) validateLibrary() error {
	if len(c.Library.SearchPaths) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/quaver/config.toml"
		}
		return fmt.Errorf("library.search_paths must list at least one directory. Edit %s (create with 'quaver config init')", defaultPath)
	}
	if len(c.Library.ScanExtensions) == 0 {
		return errors.New("library.scan_extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateMusicBrainz() error {
	if !c.MusicBrainz.Enabled {
		return nil
	}
	if c.MusicBrainz.BaseURL == "" {
		return errors.New("musicbrainz.base_url must be set when musicbrainz.enabled is true")
	}
	if c.MusicBrainz.UserAgent == "" {
		return errors.New("musicbrainz.user_agent must be set when musicbrainz.enabled is true")
	}
	if c.MusicBrainz.TimeoutSeconds <= 0 {
		return errors.New("musicbrainz.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers <= 0 {
		return errors.New("workflow.workers must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be one of auto, console, json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateOverrides() error {
	for i, override := range c.ArtistNameOverrides {
		if override.ArtistID == "" {
			return fmt.Errorf("artist_name_overrides[%d].artist_id must be set", i)
		}
		if override.ArtistName == "" {
			return fmt.Errorf("artist_name_overrides[%d].artist_name must be set", i)
		}
	}
	return nil
}
