package playlist

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"quaver/internal/config"
	"quaver/internal/fileutil"
	"quaver/internal/library"
	"quaver/internal/logging"
)

// Writer emits compilation playlists into the configured playlist directory.
type Writer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewWriter constructs a playlist writer.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	return &Writer{cfg: cfg, logger: logging.NewComponentLogger(logger, "playlist")}
}

// Enabled reports whether the configuration requests playlist files.
func (w *Writer) Enabled() bool {
	return w.cfg != nil && w.cfg.PlaylistsEnabled()
}

// Write renders plan as an extended M3U file named after the playlist and
// replaces any previous file of the same name. Playlists are regenerated
// wholesale on every run, never appended to. It returns the written path.
func (w *Writer) Write(ctx context.Context, plan *library.PlaylistPlan) (string, error) {
	logger := logging.WithContext(ctx, w.logger)
	if !w.Enabled() {
		return "", fmt.Errorf("playlist directory is not configured")
	}
	if plan == nil || plan.Name == "" {
		return "", fmt.Errorf("playlist plan is empty")
	}

	if err := fileutil.EnsureDir(w.cfg.Paths.PlaylistDir); err != nil {
		return "", err
	}

	path := filepath.Join(w.cfg.Paths.PlaylistDir, plan.Name+".m3u8")
	if err := fileutil.WriteFileAtomic(path, render(plan), 0o644); err != nil {
		return "", fmt.Errorf("write playlist %s: %w", plan.Name, err)
	}
	logger.Info(
		"playlist written",
		logging.String("playlist", plan.Name),
		logging.String("path", path),
		logging.Int("entries", len(plan.Entries)),
	)
	return path, nil
}

// The planner validates playlist names with the same rules as path
// components, so Name never contains a separator or a reserved segment.
func render(plan *library.PlaylistPlan) []byte {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, entry := range plan.Entries {
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
