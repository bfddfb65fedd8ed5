package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"

	"quaver/internal/library"
	"quaver/internal/testsupport"
)

type cliTestEnv struct {
	baseDir     string
	configPath  string
	libraryDir  string
	playlistDir string
	cacheDir    string
}

// setupCLITestEnv writes a config file pointing every path at the test's
// temp directory. MusicBrainz stays disabled so runs resolve from native
// tags and descriptor overrides only.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:     base,
		configPath:  filepath.Join(base, "config.toml"),
		libraryDir:  filepath.Join(base, "library"),
		playlistDir: filepath.Join(base, "playlists"),
		cacheDir:    filepath.Join(base, "cache"),
	}
	if err := os.MkdirAll(env.libraryDir, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}

	content := fmt.Sprintf(`[paths]
cache_dir = %q
log_dir = %q
playlist_dir = %q

[library]
search_paths = [%q]

[musicbrainz]
enabled = false

[workflow]
workers = 2

[logging]
format = "json"
level = "info"
`, env.cacheDir, filepath.Join(base, "logs"), env.playlistDir, env.libraryDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeGroup(t *testing.T, dir, descriptor string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir group: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, library.GroupFileName), []byte(descriptor), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
}

func writeTaggedSong(t *testing.T, path, title, artist string) {
	t.Helper()
	testsupport.WriteID3v2(t, path, id3v2.EncodingUTF8, map[string]string{
		"TIT2": title,
		"TPE1": artist,
	})
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
