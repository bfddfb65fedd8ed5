package testsupport

import (
	"testing"

	"quaver/internal/config"
	"quaver/internal/metacache"
)

// MustOpenStore opens a metacache.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *metacache.Store {
	t.Helper()

	store, err := metacache.Open(cfg)
	if err != nil {
		t.Fatalf("metacache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
