package trackindex

import (
	"context"
	"log/slog"
	"path/filepath"

	"quaver/internal/library"
	"quaver/internal/logging"
	"quaver/internal/metadata"
	"quaver/internal/nativetags"
	"quaver/internal/services"
	"quaver/internal/stage"
)

// Assigner is the second pipeline stage, albums only. It resolves the group
// origin to a derived release, reads each song's native tags, and fixes a
// (media, track) pair per song in final order. Compilation groups pass
// through untouched; their songs are never numbered.
type Assigner struct {
	deriver metadata.Deriver
	tags    *nativetags.Reader
	logger  *slog.Logger
}

func New(deriver metadata.Deriver, tags *nativetags.Reader, logger *slog.Logger) *Assigner {
	return &Assigner{
		deriver: deriver,
		tags:    tags,
		logger:  logging.NewComponentLogger(logger, "trackindex"),
	}
}

func (a *Assigner) Prepare(ctx context.Context, run *library.GroupRun) error {
	if run.Songs == nil {
		return services.Wrap(services.ErrConfiguration, "indexing", "validate inputs", "group has not been assembled", nil)
	}
	return nil
}

func (a *Assigner) Execute(ctx context.Context, run *library.GroupRun) error {
	if run.Group.Kind != library.KindAlbum {
		return nil
	}
	logger := logging.WithContext(ctx, a.logger)

	// The release lookup happens here, before resolution, so the engine
	// never blocks on the network mid-merge. A failed lookup leaves the run
	// without a release: sequencing still works, splitting is skipped.
	if src := run.Group.Origin.AlbumSource(); src.Empty() {
		logger.Debug("group origin has no release identifiers, sequencing without a release")
	} else if album, err := a.deriver.DerivedAlbum(ctx, src); err != nil {
		logger.Warn("release lookup failed, sequencing without a release",
			logging.Error(err),
		)
	} else {
		run.Album = album
	}

	// The carried register starts one track before (1, 1) so the first
	// sequenced song lands on (1, 1).
	media, track := 1, 0
	for _, song := range run.Songs {
		record := a.tags.Read(filepath.Join(run.Group.Root, song.RelPath))
		song.Tags = &record

		switch {
		case song.Tags.HasDiscAndTrack():
			media, track = song.Tags.DiscIdx, song.Tags.TrackIdx
		case song.DiscIdxOverride != nil && song.TrackIdxOverride != nil:
			media, track = *song.DiscIdxOverride, *song.TrackIdxOverride
		default:
			track++
		}
		media, track = split(run.Album, media, track)
		song.Media = media
		song.Track = track
	}

	logger.Info("track indices assigned",
		logging.Int("songs", len(run.Songs)),
		logging.Bool("release", run.Album != nil),
	)
	return nil
}

func (a *Assigner) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("trackindex")
}

// split carries a track index that runs past the end of its medium into the
// following media. The walk commits only when every comparison along the way
// is decidable; hitting a medium with no known track count abandons the
// split and keeps the raw pair rather than guessing at a placement.
func split(album *metadata.AlbumRecord, media, track int) (int, int) {
	m, t := media, track
	for {
		medium := album.Medium(m)
		if medium == nil || medium.TrackCount <= 0 {
			return media, track
		}
		if t <= medium.TrackCount {
			return m, t
		}
		t -= medium.TrackCount
		m++
	}
}
