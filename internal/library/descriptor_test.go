package library_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quaver/internal/library"
	"quaver/internal/metadata"
)

func writeDescriptor(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, library.GroupFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return path
}

func TestLoadDescriptorCompilation(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `
type = "compilation"
title = "Night Drive"

[origin]
url = "https://example.com/mix"

[scan_filter]
ext_filters = ["mp3"]

[[songs]]
file_rel_path = "01-first.mp3"
origin_mbid = "rec-1"
override_position = 2

[[songs]]
file_rel_path = "02-second.mp3"
fingerprint = "AQAD"
[songs.override_metadata]
song_title = "Second (Remastered)"
`)

	group, err := library.LoadDescriptor(path)
	if err != nil {
		t.Fatalf("LoadDescriptor: %v", err)
	}
	if group.Kind != library.KindCompilation {
		t.Fatalf("unexpected kind %q", group.Kind)
	}
	if group.Title != "Night Drive" {
		t.Fatalf("unexpected title %q", group.Title)
	}
	if group.Origin.URL != "https://example.com/mix" {
		t.Fatalf("unexpected origin %+v", group.Origin)
	}
	if group.ScanFilter == nil || len(group.ScanFilter.ExtFilters) != 1 {
		t.Fatalf("unexpected scan filter %+v", group.ScanFilter)
	}
	if len(group.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(group.Entries))
	}
	first := group.Entries[0]
	if first.OriginMBID != "rec-1" || first.OverridePosition == nil || *first.OverridePosition != 2 {
		t.Fatalf("unexpected first entry %+v", first)
	}
	second := group.Entries[1]
	if second.Fingerprint != "AQAD" {
		t.Fatalf("unexpected fingerprint %q", second.Fingerprint)
	}
	if second.Override == nil || second.Override.Title == nil || *second.Override.Title != "Second (Remastered)" {
		t.Fatalf("unexpected override %+v", second.Override)
	}
	if second.Override.Artists != nil {
		t.Fatalf("expected artists unset, got %v", second.Override.Artists)
	}
}

func TestLoadDescriptorAlbum(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `
type = "album"
album_art_rel_path = "cover.jpg"

[origin]
mb_release_id = "rel-1"
mb_discid = "disc-1"

[override_metadata]
album_title = "OK Computer"
album_artists = ["Radiohead"]

[[songs]]
file_rel_path = "side-b/07-fitter.flac"
override_disc_idx = 1
override_track_idx = 7
`)

	group, err := library.LoadDescriptor(path)
	if err != nil {
		t.Fatalf("LoadDescriptor: %v", err)
	}
	if group.Kind != library.KindAlbum {
		t.Fatalf("unexpected kind %q", group.Kind)
	}
	if group.AlbumArtRelPath != "cover.jpg" {
		t.Fatalf("unexpected art path %q", group.AlbumArtRelPath)
	}
	if group.Origin.MBReleaseID != "rel-1" {
		t.Fatalf("unexpected origin %+v", group.Origin)
	}
	src := group.Origin.AlbumSource()
	if src.ReleaseID != "rel-1" || src.DiscID != "disc-1" {
		t.Fatalf("unexpected album source %+v", src)
	}
	if group.AlbumOverride == nil || group.AlbumOverride.Title == nil || *group.AlbumOverride.Title != "OK Computer" {
		t.Fatalf("unexpected album override %+v", group.AlbumOverride)
	}
	entry := group.Entries[0]
	if entry.OverrideDiscIdx == nil || *entry.OverrideDiscIdx != 1 {
		t.Fatalf("unexpected disc override %+v", entry)
	}
	if entry.OverrideTrackIdx == nil || *entry.OverrideTrackIdx != 7 {
		t.Fatalf("unexpected track override %+v", entry)
	}
}

func TestLoadDescriptorRejectsUnknownType(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), "type = \"mixtape\"\n")
	_, err := library.LoadDescriptor(path)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "mixtape") {
		t.Fatalf("expected offending type in error, got %v", err)
	}
}

func TestLoadDescriptorRejectsCrossVariantFields(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `
type = "compilation"
title = "Mix"

[[songs]]
file_rel_path = "a.mp3"
override_disc_idx = 2
`)
	if _, err := library.LoadDescriptor(path); err == nil {
		t.Fatal("expected error for album-only field in compilation descriptor")
	}
}

func TestLoadDescriptorRequiresCompilationTitle(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), "type = \"compilation\"\n")
	_, err := library.LoadDescriptor(path)
	if err == nil || !strings.Contains(err.Error(), "title") {
		t.Fatalf("expected title error, got %v", err)
	}
}

func TestLoadDescriptorRequiresSongPath(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `
type = "album"

[[songs]]
override_track_idx = 3
`)
	_, err := library.LoadDescriptor(path)
	if err == nil || !strings.Contains(err.Error(), "file_rel_path") {
		t.Fatalf("expected file_rel_path error, got %v", err)
	}
}

func TestGroupNameFallsBackToRoot(t *testing.T) {
	group := &library.Group{Kind: library.KindAlbum, Root: "/music/albums/ok-computer"}
	if group.Name() != "ok-computer" {
		t.Fatalf("unexpected name %q", group.Name())
	}

	title := "OK Computer"
	group.AlbumOverride = &metadata.AlbumOverride{Title: &title}
	if group.Name() != "OK Computer" {
		t.Fatalf("unexpected name %q", group.Name())
	}
}
