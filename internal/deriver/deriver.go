package deriver

import (
	"context"
	"log/slog"

	"quaver/internal/logging"
	"quaver/internal/metacache"
	"quaver/internal/metadata"
	"quaver/internal/musicbrainz"
	"quaver/internal/services"
)

// Deriver resolves metadata sources against the cache first and the
// MusicBrainz service second. A nil client serves cached entries only, which
// is how lookups behave when MusicBrainz is disabled in the config.
type Deriver struct {
	client musicbrainz.Lookup
	cache  *metacache.Store
	logger *slog.Logger
}

var _ metadata.Deriver = (*Deriver)(nil)

func New(client musicbrainz.Lookup, cache *metacache.Store, logger *slog.Logger) *Deriver {
	return &Deriver{
		client: client,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "deriver"),
	}
}

// DerivedAlbum returns the album for src, looking it up on a cache miss.
func (d *Deriver) DerivedAlbum(ctx context.Context, src metadata.AlbumSource) (*metadata.AlbumRecord, error) {
	if src.Empty() {
		return nil, services.Wrap(services.ErrLookup, "deriver", "derived album", "group origin provides no release or disc id", nil)
	}
	cached, err := d.CachedAlbum(ctx, src)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}
	return d.RederiveAlbum(ctx, src)
}

// RederiveAlbum looks the album up even when a cached copy exists and
// replaces the cache entry on success.
func (d *Deriver) RederiveAlbum(ctx context.Context, src metadata.AlbumSource) (*metadata.AlbumRecord, error) {
	if src.Empty() {
		return nil, services.Wrap(services.ErrLookup, "deriver", "rederive album", "group origin provides no release or disc id", nil)
	}
	if d.client == nil {
		return nil, services.Wrap(services.ErrLookup, "deriver", "rederive album", "musicbrainz lookups disabled and album not cached", nil)
	}

	var (
		album *metadata.AlbumRecord
		err   error
	)
	switch {
	case src.ReleaseID != "":
		album, err = d.client.GetRelease(ctx, src.ReleaseID)
	default:
		album, err = d.client.GetReleaseByDiscID(ctx, src.DiscID)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrLookup, "deriver", "rederive album", "", err)
	}

	if err := d.RecacheAlbum(ctx, src, album); err != nil {
		return nil, err
	}
	d.logger.Debug("album derived",
		logging.String("cache_key", src.CacheKey()),
		logging.String("release_id", album.ReleaseID),
	)
	return album, nil
}

// CachedAlbum returns the cached album for src, or nil when the source has
// never been looked up.
func (d *Deriver) CachedAlbum(ctx context.Context, src metadata.AlbumSource) (*metadata.AlbumRecord, error) {
	if src.Empty() {
		return nil, nil
	}
	album, err := d.cache.GetAlbum(ctx, src.CacheKey())
	if err != nil {
		return nil, services.Wrap(nil, "deriver", "cached album", "", err)
	}
	return album, nil
}

// RecacheAlbum stores album as the cached result for src.
func (d *Deriver) RecacheAlbum(ctx context.Context, src metadata.AlbumSource, album *metadata.AlbumRecord) error {
	if err := d.cache.PutAlbum(ctx, src.CacheKey(), album); err != nil {
		return services.Wrap(nil, "deriver", "recache album", "", err)
	}
	return nil
}

// DerivedSong returns the song record for src, looking it up on a cache
// miss. Fingerprint-only sources are served from the cache alone.
func (d *Deriver) DerivedSong(ctx context.Context, src metadata.Source) (*metadata.SongRecord, error) {
	if src.Empty() {
		return nil, services.Wrap(services.ErrLookup, "deriver", "derived song", "song provides no recording id or fingerprint", nil)
	}
	cached, err := d.CachedSong(ctx, src)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}
	return d.RederiveSong(ctx, src)
}

// RederiveSong looks the song up even when a cached copy exists and replaces
// the cache entry on success.
func (d *Deriver) RederiveSong(ctx context.Context, src metadata.Source) (*metadata.SongRecord, error) {
	if src.Empty() {
		return nil, services.Wrap(services.ErrLookup, "deriver", "rederive song", "song provides no recording id or fingerprint", nil)
	}
	if src.RecordingID == "" {
		// Fingerprint identification needs an external scanner that is not
		// wired up, so an uncached fingerprint cannot be resolved.
		return nil, services.Wrap(services.ErrLookup, "deriver", "rederive song", "fingerprint sources resolve from the cache only", nil)
	}
	if d.client == nil {
		return nil, services.Wrap(services.ErrLookup, "deriver", "rederive song", "musicbrainz lookups disabled and song not cached", nil)
	}

	song, err := d.client.GetRecording(ctx, src.RecordingID)
	if err != nil {
		return nil, services.Wrap(services.ErrLookup, "deriver", "rederive song", "", err)
	}

	if err := d.RecacheSong(ctx, src, song); err != nil {
		return nil, err
	}
	d.logger.Debug("song derived",
		logging.String("cache_key", src.CacheKey()),
		logging.String("recording_id", src.RecordingID),
	)
	return song, nil
}

// CachedSong returns the cached song for src, or nil when the source has
// never been looked up.
func (d *Deriver) CachedSong(ctx context.Context, src metadata.Source) (*metadata.SongRecord, error) {
	if src.Empty() {
		return nil, nil
	}
	song, err := d.cache.GetSong(ctx, src.CacheKey())
	if err != nil {
		return nil, services.Wrap(nil, "deriver", "cached song", "", err)
	}
	return song, nil
}

// RecacheSong stores song as the cached result for src.
func (d *Deriver) RecacheSong(ctx context.Context, src metadata.Source, song *metadata.SongRecord) error {
	if err := d.cache.PutSong(ctx, src.CacheKey(), song); err != nil {
		return services.Wrap(nil, "deriver", "recache song", "", err)
	}
	return nil
}
