package metadata

import "context"

// Deriver supplies looked-up metadata for albums and individual songs.
//
// Read methods treat "no data" and "not yet looked up" as the same state and
// return (nil, nil); an error means the lookup itself failed. Derived reads
// may consult the network while Cached reads never do. Rederive forces a
// fresh lookup that replaces any cached record.
type Deriver interface {
	// DerivedAlbum returns the cached release for the source, performing and
	// caching a lookup on a miss.
	DerivedAlbum(ctx context.Context, src AlbumSource) (*AlbumRecord, error)
	// RederiveAlbum performs a fresh lookup and replaces the cached record.
	RederiveAlbum(ctx context.Context, src AlbumSource) (*AlbumRecord, error)
	// CachedAlbum returns the cached release, or nil when absent.
	CachedAlbum(ctx context.Context, src AlbumSource) (*AlbumRecord, error)
	// RecacheAlbum stores a caller-supplied record for the source.
	RecacheAlbum(ctx context.Context, src AlbumSource, record *AlbumRecord) error

	// DerivedSong returns the cached record for the source, performing and
	// caching a lookup on a miss.
	DerivedSong(ctx context.Context, src Source) (*SongRecord, error)
	// RederiveSong performs a fresh lookup and replaces the cached record.
	RederiveSong(ctx context.Context, src Source) (*SongRecord, error)
	// CachedSong returns the cached record, or nil when absent.
	CachedSong(ctx context.Context, src Source) (*SongRecord, error)
	// RecacheSong stores a caller-supplied record for the source.
	RecacheSong(ctx context.Context, src Source, record *SongRecord) error
}

// NullDeriver is the explicit always-absent Deriver: every read reports no
// data and every write succeeds without storing anything. It stands in when
// lookups are disabled and in tests that exercise the tag and override
// layers alone.
type NullDeriver struct{}

var _ Deriver = NullDeriver{}

func (NullDeriver) DerivedAlbum(context.Context, AlbumSource) (*AlbumRecord, error) {
	return nil, nil
}

func (NullDeriver) RederiveAlbum(context.Context, AlbumSource) (*AlbumRecord, error) {
	return nil, nil
}

func (NullDeriver) CachedAlbum(context.Context, AlbumSource) (*AlbumRecord, error) {
	return nil, nil
}

func (NullDeriver) RecacheAlbum(context.Context, AlbumSource, *AlbumRecord) error {
	return nil
}

func (NullDeriver) DerivedSong(context.Context, Source) (*SongRecord, error) {
	return nil, nil
}

func (NullDeriver) RederiveSong(context.Context, Source) (*SongRecord, error) {
	return nil, nil
}

func (NullDeriver) CachedSong(context.Context, Source) (*SongRecord, error) {
	return nil, nil
}

func (NullDeriver) RecacheSong(context.Context, Source, *SongRecord) error {
	return nil
}
