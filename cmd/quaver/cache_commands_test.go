package main

import (
	"context"
	"encoding/json"
	"testing"

	"quaver/internal/config"
	"quaver/internal/metacache"
	"quaver/internal/metadata"
)

func seedCache(t *testing.T, configPath string) {
	t.Helper()
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store, err := metacache.Open(cfg)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	album := &metadata.AlbumRecord{ReleaseID: "rel-1", Title: "OK Computer"}
	if err := store.PutAlbum(ctx, "release:rel-1", album); err != nil {
		t.Fatalf("put album: %v", err)
	}
	song := &metadata.SongRecord{Title: "Roads"}
	if err := store.PutSong(ctx, "recording:rec-9", song); err != nil {
		t.Fatalf("put song: %v", err)
	}
}

func TestCLICacheStats(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCache(t, env.configPath)

	out, _, err := runCLI(t, env.configPath, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Albums")
	requireContains(t, out, "Songs")
	requireContains(t, out, "Database: ")
	requireContains(t, out, "metadata.db")
}

func TestCLICacheStatsJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCache(t, env.configPath)

	out, _, err := runCLI(t, env.configPath, "cache", "stats", "--json")
	if err != nil {
		t.Fatalf("cache stats --json: %v", err)
	}

	var payload struct {
		Path   string `json:"path"`
		Bytes  int64  `json:"bytes"`
		Albums int64  `json:"albums"`
		Songs  int64  `json:"songs"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode JSON: %v\noutput:\n%s", err, out)
	}
	if payload.Albums != 1 || payload.Songs != 1 {
		t.Fatalf("unexpected counts: %+v", payload)
	}
	if payload.Path == "" || payload.Bytes <= 0 {
		t.Fatalf("expected path and size, got %+v", payload)
	}
}

func TestCLICacheClear(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCache(t, env.configPath)

	out, _, err := runCLI(t, env.configPath, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 albums and 1 songs")

	out, _, err = runCLI(t, env.configPath, "cache", "stats", "--json")
	if err != nil {
		t.Fatalf("cache stats after clear: %v", err)
	}
	var payload struct {
		Albums int64 `json:"albums"`
		Songs  int64 `json:"songs"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if payload.Albums != 0 || payload.Songs != 0 {
		t.Fatalf("expected empty cache, got %+v", payload)
	}
}
