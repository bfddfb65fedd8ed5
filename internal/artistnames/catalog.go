// Package artistnames applies the configured artist display name overrides.
// Overrides are keyed on MusicBrainz artist IDs, so a rename follows the
// artist across every release they appear on.
package artistnames

import (
	"strings"

	"quaver/internal/config"
	"quaver/internal/metadata"
)

// Catalog maps MusicBrainz artist IDs to replacement display names.
type Catalog struct {
	names map[string]string
}

// NewCatalog builds a catalog from the configured overrides. Entries with a
// blank ID or name are skipped; when an ID repeats, the last entry wins.
func NewCatalog(overrides []config.ArtistNameOverride) *Catalog {
	names := make(map[string]string, len(overrides))
	for _, override := range overrides {
		id := strings.TrimSpace(override.ArtistID)
		name := strings.TrimSpace(override.ArtistName)
		if id == "" || name == "" {
			continue
		}
		names[id] = name
	}
	return &Catalog{names: names}
}

// Rename returns the display name for one artist, applying any override.
func (c *Catalog) Rename(artist metadata.CachedArtist) string {
	if c != nil {
		if name, ok := c.names[artist.ID]; ok {
			return name
		}
	}
	return artist.Name
}

// RenameAll maps a cached artist list to display names in order.
func (c *Catalog) RenameAll(artists []metadata.CachedArtist) []string {
	if len(artists) == 0 {
		return nil
	}
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, c.Rename(artist))
	}
	return names
}

// Len reports how many overrides are active.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}
