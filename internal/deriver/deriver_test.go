package deriver_test

import (
	"context"
	"errors"
	"testing"

	"quaver/internal/deriver"
	"quaver/internal/logging"
	"quaver/internal/metadata"
	"quaver/internal/services"
	"quaver/internal/testsupport"
)

// fakeLookup counts calls and serves canned records.
type fakeLookup struct {
	album         *metadata.AlbumRecord
	song          *metadata.SongRecord
	err           error
	releases      int
	discLookups   int
	recordings    int
	lastRelease   string
	lastDiscID    string
	lastRecording string
}

func (f *fakeLookup) GetRelease(_ context.Context, releaseID string) (*metadata.AlbumRecord, error) {
	f.releases++
	f.lastRelease = releaseID
	return f.album, f.err
}

func (f *fakeLookup) GetReleaseByDiscID(_ context.Context, discID string) (*metadata.AlbumRecord, error) {
	f.discLookups++
	f.lastDiscID = discID
	return f.album, f.err
}

func (f *fakeLookup) GetRecording(_ context.Context, recordingID string) (*metadata.SongRecord, error) {
	f.recordings++
	f.lastRecording = recordingID
	return f.song, f.err
}

func newDeriver(t *testing.T, client *fakeLookup) *deriver.Deriver {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if client == nil {
		return deriver.New(nil, store, logging.NewNop())
	}
	return deriver.New(client, store, logging.NewNop())
}

func TestDerivedAlbumCachesLookup(t *testing.T) {
	client := &fakeLookup{album: &metadata.AlbumRecord{ReleaseID: "rel-1", Title: "OK Computer"}}
	d := newDeriver(t, client)
	ctx := context.Background()
	src := metadata.AlbumSource{ReleaseID: "rel-1"}

	album, err := d.DerivedAlbum(ctx, src)
	if err != nil {
		t.Fatalf("DerivedAlbum: %v", err)
	}
	if album.Title != "OK Computer" {
		t.Fatalf("unexpected album %+v", album)
	}
	if client.releases != 1 || client.lastRelease != "rel-1" {
		t.Fatalf("unexpected client calls %+v", client)
	}

	// Second derivation is served from the cache.
	if _, err := d.DerivedAlbum(ctx, src); err != nil {
		t.Fatalf("DerivedAlbum cached: %v", err)
	}
	if client.releases != 1 {
		t.Fatalf("expected cache hit, got %d lookups", client.releases)
	}
}

func TestDerivedAlbumUsesDiscIDWhenNoRelease(t *testing.T) {
	client := &fakeLookup{album: &metadata.AlbumRecord{ReleaseID: "rel-9", Title: "Live"}}
	d := newDeriver(t, client)

	album, err := d.DerivedAlbum(context.Background(), metadata.AlbumSource{DiscID: "disc-1"})
	if err != nil {
		t.Fatalf("DerivedAlbum: %v", err)
	}
	if album.ReleaseID != "rel-9" {
		t.Fatalf("unexpected album %+v", album)
	}
	if client.discLookups != 1 || client.lastDiscID != "disc-1" {
		t.Fatalf("unexpected client calls %+v", client)
	}
}

func TestDerivedAlbumEmptySource(t *testing.T) {
	d := newDeriver(t, &fakeLookup{})

	_, err := d.DerivedAlbum(context.Background(), metadata.AlbumSource{})
	if !errors.Is(err, services.ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestDerivedAlbumLookupFailure(t *testing.T) {
	client := &fakeLookup{err: errors.New("boom")}
	d := newDeriver(t, client)

	_, err := d.DerivedAlbum(context.Background(), metadata.AlbumSource{ReleaseID: "rel-1"})
	if !errors.Is(err, services.ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	// Lookup failures classify as plain failures, not review items.
	if services.FailureOutcome(err) != services.OutcomeFailed {
		t.Fatalf("unexpected outcome %q", services.FailureOutcome(err))
	}
}

func TestRederiveAlbumRefreshesCache(t *testing.T) {
	client := &fakeLookup{album: &metadata.AlbumRecord{ReleaseID: "rel-1", Title: "First"}}
	d := newDeriver(t, client)
	ctx := context.Background()
	src := metadata.AlbumSource{ReleaseID: "rel-1"}

	if _, err := d.DerivedAlbum(ctx, src); err != nil {
		t.Fatalf("DerivedAlbum: %v", err)
	}

	client.album = &metadata.AlbumRecord{ReleaseID: "rel-1", Title: "Second"}
	album, err := d.RederiveAlbum(ctx, src)
	if err != nil {
		t.Fatalf("RederiveAlbum: %v", err)
	}
	if album.Title != "Second" {
		t.Fatalf("expected refreshed record, got %+v", album)
	}

	cached, err := d.CachedAlbum(ctx, src)
	if err != nil {
		t.Fatalf("CachedAlbum: %v", err)
	}
	if cached == nil || cached.Title != "Second" {
		t.Fatalf("expected refreshed cache entry, got %+v", cached)
	}
}

func TestDerivedSongByRecording(t *testing.T) {
	client := &fakeLookup{song: &metadata.SongRecord{Title: "Lucky"}}
	d := newDeriver(t, client)
	ctx := context.Background()
	src := metadata.Source{RecordingID: "rec-9"}

	song, err := d.DerivedSong(ctx, src)
	if err != nil {
		t.Fatalf("DerivedSong: %v", err)
	}
	if song.Title != "Lucky" {
		t.Fatalf("unexpected song %+v", song)
	}
	if client.recordings != 1 || client.lastRecording != "rec-9" {
		t.Fatalf("unexpected client calls %+v", client)
	}

	if _, err := d.DerivedSong(ctx, src); err != nil {
		t.Fatalf("DerivedSong cached: %v", err)
	}
	if client.recordings != 1 {
		t.Fatalf("expected cache hit, got %d lookups", client.recordings)
	}
}

func TestFingerprintSourcesAreCacheOnly(t *testing.T) {
	client := &fakeLookup{song: &metadata.SongRecord{Title: "ignored"}}
	d := newDeriver(t, client)
	ctx := context.Background()
	src := metadata.Source{Fingerprint: "AQAD"}

	_, err := d.DerivedSong(ctx, src)
	if !errors.Is(err, services.ErrLookup) {
		t.Fatalf("expected lookup error for uncached fingerprint, got %v", err)
	}
	if client.recordings != 0 {
		t.Fatalf("fingerprint source must not hit the recording endpoint")
	}

	// A cached record for the fingerprint is served without a client.
	if err := d.RecacheSong(ctx, src, &metadata.SongRecord{Title: "From Cache"}); err != nil {
		t.Fatalf("RecacheSong: %v", err)
	}
	song, err := d.DerivedSong(ctx, src)
	if err != nil {
		t.Fatalf("DerivedSong: %v", err)
	}
	if song.Title != "From Cache" {
		t.Fatalf("unexpected song %+v", song)
	}
}

func TestNilClientServesCacheOnly(t *testing.T) {
	d := newDeriver(t, nil)
	ctx := context.Background()
	src := metadata.AlbumSource{ReleaseID: "rel-1"}

	if _, err := d.DerivedAlbum(ctx, src); !errors.Is(err, services.ErrLookup) {
		t.Fatalf("expected lookup error without client, got %v", err)
	}

	if err := d.RecacheAlbum(ctx, src, &metadata.AlbumRecord{ReleaseID: "rel-1", Title: "Cached"}); err != nil {
		t.Fatalf("RecacheAlbum: %v", err)
	}
	album, err := d.DerivedAlbum(ctx, src)
	if err != nil {
		t.Fatalf("DerivedAlbum: %v", err)
	}
	if album.Title != "Cached" {
		t.Fatalf("unexpected album %+v", album)
	}
}
