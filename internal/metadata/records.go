package metadata

import "strings"

// TagRecord holds metadata read from a song file's native tags. Zero values
// mean the tag was absent: empty strings, nil slices, and zero indices all
// read as "not present".
type TagRecord struct {
	Title        string
	Album        string
	AlbumArtists []string
	Artists      []string
	DiscCount    int
	DiscIdx      int
	TrackCount   int
	TrackIdx     int
}

// HasDiscAndTrack reports whether the native tags carry both indices needed
// to place the song on a medium without sequencing.
func (t *TagRecord) HasDiscAndTrack() bool {
	return t != nil && t.DiscIdx > 0 && t.TrackIdx > 0
}

// SongOverride is user-supplied metadata for a single song. Nil fields are
// unset and leave the prior layer untouched; a set artist list replaces the
// prior list wholesale.
type SongOverride struct {
	Title   *string  `toml:"song_title" json:"song_title,omitempty"`
	Artists []string `toml:"song_artists" json:"song_artists,omitempty"`
}

// AlbumOverride is user-supplied metadata for a whole album group.
type AlbumOverride struct {
	Title   *string  `toml:"album_title" json:"album_title,omitempty"`
	Artists []string `toml:"album_artists" json:"album_artists,omitempty"`
}

// CachedArtist is an artist as returned by a lookup, keyed by its
// MusicBrainz artist ID so display names can be overridden later.
type CachedArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SongRecord is the shape produced by a per-song lookup and stored in the
// metadata cache.
type SongRecord struct {
	Title   string         `json:"title"`
	Artists []CachedArtist `json:"artists"`
}

// AlbumRecord is a derived release: the album-level metadata plus the medium
// and track structure needed for index assignment and per-track lookups.
type AlbumRecord struct {
	ReleaseID      string         `json:"release_id"`
	ReleaseGroupID string         `json:"release_group_id,omitempty"`
	Title          string         `json:"title"`
	Artists        []CachedArtist `json:"artists"`
	Media          []Medium       `json:"media"`
}

// Medium is one disc (or equivalent) of a release.
type Medium struct {
	Position   int           `json:"position"`
	Format     string        `json:"format,omitempty"`
	TrackCount int           `json:"track_count"`
	Tracks     []TrackRecord `json:"tracks"`
}

// TrackRecord is one track of a medium.
type TrackRecord struct {
	Position    int            `json:"position"`
	RecordingID string         `json:"recording_id,omitempty"`
	Title       string         `json:"title"`
	Artists     []CachedArtist `json:"artists"`
}

// Medium returns the medium at the given 1-based position, or nil.
func (a *AlbumRecord) Medium(position int) *Medium {
	if a == nil {
		return nil
	}
	for i := range a.Media {
		if a.Media[i].Position == position {
			return &a.Media[i]
		}
	}
	return nil
}

// Track returns the track at the given 1-based position, or nil.
func (m *Medium) Track(position int) *TrackRecord {
	if m == nil {
		return nil
	}
	for i := range m.Tracks {
		if m.Tracks[i].Position == position {
			return &m.Tracks[i]
		}
	}
	return nil
}

// Source identifies where a single song's derived metadata comes from:
// either a MusicBrainz recording (with its release for context) or an opaque
// audio fingerprint. Sources are user- or pipeline-supplied, never guessed.
type Source struct {
	ReleaseID   string `json:"release_id,omitempty"`
	RecordingID string `json:"recording_id,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Empty reports whether the source identifies nothing.
func (s Source) Empty() bool {
	return s.RecordingID == "" && s.Fingerprint == ""
}

// CacheKey returns the stable key this source is cached under.
func (s Source) CacheKey() string {
	if s.RecordingID != "" {
		return "mb:" + s.ReleaseID + "/" + s.RecordingID
	}
	if s.Fingerprint != "" {
		return "fp:" + s.Fingerprint
	}
	return ""
}

// AlbumSource identifies where a whole album's derived metadata comes from.
// It mirrors the user-authored origin but carries only the identifiers the
// deriver can act on.
type AlbumSource struct {
	ReleaseGroupID string `json:"release_group_id,omitempty"`
	ReleaseID      string `json:"release_id,omitempty"`
	DiscID         string `json:"disc_id,omitempty"`
}

// Empty reports whether the source identifies nothing the deriver can use.
func (s AlbumSource) Empty() bool {
	return s.ReleaseID == "" && s.DiscID == ""
}

// CacheKey returns the stable key this source is cached under. The release
// ID wins when both identifiers are present so rips and explicit releases
// share cache entries.
func (s AlbumSource) CacheKey() string {
	if s.ReleaseID != "" {
		return "release:" + s.ReleaseID
	}
	if s.DiscID != "" {
		return "discid:" + s.DiscID
	}
	return ""
}

// ResolvedSong is the final metadata record for one song after layered
// merging. Title and a non-empty artist list are required before the song
// can be named; album fields may legitimately stay empty for compilations.
type ResolvedSong struct {
	Title        string
	Artists      []string
	Album        string
	AlbumArtists []string
}

// NamingComplete reports whether the fields required by output naming are
// present.
func (r *ResolvedSong) NamingComplete() bool {
	if r == nil {
		return false
	}
	return strings.TrimSpace(r.Title) != "" && len(r.Artists) > 0
}

// FirstArtist returns the primary artist, or the empty string.
func (r *ResolvedSong) FirstArtist() string {
	if r == nil || len(r.Artists) == 0 {
		return ""
	}
	return r.Artists[0]
}

// FirstAlbumArtist returns the primary album artist, falling back to the
// primary artist when no album artists are present.
func (r *ResolvedSong) FirstAlbumArtist() string {
	if r == nil {
		return ""
	}
	if len(r.AlbumArtists) > 0 {
		return r.AlbumArtists[0]
	}
	return r.FirstArtist()
}
