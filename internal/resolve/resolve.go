package resolve

import (
	"context"
	"log/slog"
	"path/filepath"

	"quaver/internal/artistnames"
	"quaver/internal/library"
	"quaver/internal/logging"
	"quaver/internal/metadata"
	"quaver/internal/nativetags"
	"quaver/internal/services"
	"quaver/internal/stage"
)

// Engine is the third pipeline stage. It gathers every song's lookup result
// up front and then merges native tags, derived records, and descriptor
// overrides field by field. The merge pass is pure: all network and cache
// traffic happens before it starts.
type Engine struct {
	deriver metadata.Deriver
	tags    *nativetags.Reader
	names   *artistnames.Catalog
	logger  *slog.Logger
}

func New(deriver metadata.Deriver, tags *nativetags.Reader, names *artistnames.Catalog, logger *slog.Logger) *Engine {
	return &Engine{
		deriver: deriver,
		tags:    tags,
		names:   names,
		logger:  logging.NewComponentLogger(logger, "resolve"),
	}
}

func (e *Engine) Prepare(ctx context.Context, run *library.GroupRun) error {
	if run.Songs == nil {
		return services.Wrap(services.ErrConfiguration, "resolving", "validate inputs", "group has not been assembled", nil)
	}
	logging.WithContext(ctx, e.logger).Debug("starting resolution",
		logging.Int("songs", len(run.Songs)),
	)
	return nil
}

func (e *Engine) Execute(ctx context.Context, run *library.GroupRun) error {
	logger := logging.WithContext(ctx, e.logger)

	for _, song := range run.Songs {
		if song.Tags == nil {
			record := e.tags.Read(filepath.Join(run.Group.Root, song.RelPath))
			song.Tags = &record
		}
		switch run.Group.Kind {
		case library.KindAlbum:
			e.resolveAlbumSong(logger, run, song)
		case library.KindCompilation:
			e.resolveCompilationSong(ctx, logger, song)
		}
	}

	for _, song := range run.Songs {
		song.Resolved = e.merge(run, song)
	}

	logger.Info("metadata resolved",
		logging.Int("songs", len(run.Songs)),
	)
	return nil
}

func (e *Engine) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("resolve")
}

// resolveAlbumSong locates the song's release track through its (media,
// track) pair. The release itself was fetched by the index assigner; a song
// without a matching track simply resolves without the derived layer.
func (e *Engine) resolveAlbumSong(logger *slog.Logger, run *library.GroupRun, song *library.Song) {
	if run.Album == nil {
		return
	}
	trackRecord := run.Album.Medium(song.Media).Track(song.Track)
	if trackRecord == nil {
		logger.Warn("song has no matching release track",
			logging.String(logging.FieldSong, song.RelPath),
			logging.Int("media", song.Media),
			logging.Int("track", song.Track),
		)
		return
	}
	song.Source = &metadata.Source{
		ReleaseID:   run.Album.ReleaseID,
		RecordingID: trackRecord.RecordingID,
	}
	song.Record = &metadata.SongRecord{
		Title:   trackRecord.Title,
		Artists: trackRecord.Artists,
	}
}

// resolveCompilationSong looks the song up through its own origin
// identifier or fingerprint. No identifier means no derived layer, and a
// failed lookup is downgraded to a warning.
func (e *Engine) resolveCompilationSong(ctx context.Context, logger *slog.Logger, song *library.Song) {
	src := metadata.Source{RecordingID: song.OriginMBID, Fingerprint: song.Fingerprint}
	if src.Empty() {
		return
	}
	song.Source = &src
	record, err := e.deriver.DerivedSong(ctx, src)
	if err != nil {
		logger.Warn("song lookup failed, resolving without the derived layer",
			logging.String(logging.FieldSong, song.RelPath),
			logging.Error(err),
		)
		return
	}
	song.Record = record
}

// merge folds the three layers into a resolved record. Every branch guards
// on field presence, so an absent layer or an empty field leaves the earlier
// value standing.
func (e *Engine) merge(run *library.GroupRun, song *library.Song) *metadata.ResolvedSong {
	resolved := &metadata.ResolvedSong{}

	if tags := song.Tags; tags != nil {
		if tags.Title != "" {
			resolved.Title = tags.Title
		}
		if len(tags.Artists) > 0 {
			resolved.Artists = tags.Artists
		}
		if tags.Album != "" {
			resolved.Album = tags.Album
		}
		if len(tags.AlbumArtists) > 0 {
			resolved.AlbumArtists = tags.AlbumArtists
		}
	}

	if run.Album != nil {
		if run.Album.Title != "" {
			resolved.Album = run.Album.Title
		}
		if artists := e.names.RenameAll(run.Album.Artists); len(artists) > 0 {
			resolved.AlbumArtists = artists
		}
	}
	if song.Record != nil {
		if song.Record.Title != "" {
			resolved.Title = song.Record.Title
		}
		if artists := e.names.RenameAll(song.Record.Artists); len(artists) > 0 {
			resolved.Artists = artists
		}
	}

	if override := run.Group.AlbumOverride; override != nil {
		if override.Title != nil {
			resolved.Album = *override.Title
		}
		if override.Artists != nil {
			resolved.AlbumArtists = override.Artists
		}
	}
	if override := song.Override; override != nil {
		if override.Title != nil {
			resolved.Title = *override.Title
		}
		if override.Artists != nil {
			resolved.Artists = override.Artists
		}
	}

	return resolved
}
