package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"quaver/internal/library"
	"quaver/internal/logging"
	"quaver/internal/metadata"
	"quaver/internal/services"
	"quaver/internal/stage"
)

// Assembler is the first pipeline stage. It relativizes the scanner's file
// list against the group root, orders it, and applies the descriptor's
// per-song entries: repositioning, index overrides, and metadata overrides.
type Assembler struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logging.NewComponentLogger(logger, "assembler")}
}

func (a *Assembler) Prepare(ctx context.Context, run *library.GroupRun) error {
	if run.Group == nil || run.Group.Root == "" {
		return services.Wrap(services.ErrConfiguration, "assembling", "validate inputs", "group has no root directory", nil)
	}
	logging.WithContext(ctx, a.logger).Debug("starting assembly",
		logging.Int("files", len(run.Group.SongFiles)),
	)
	return nil
}

func (a *Assembler) Execute(ctx context.Context, run *library.GroupRun) error {
	logger := logging.WithContext(ctx, a.logger)

	relPaths := make([]string, 0, len(run.Group.SongFiles))
	for _, path := range run.Group.SongFiles {
		rel, err := filepath.Rel(run.Group.Root, path)
		if err != nil {
			return services.Wrap(services.ErrScan, "assembling", "relativize paths",
				fmt.Sprintf("file %s does not resolve against the group root", path), err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return services.Wrap(services.ErrScan, "assembling", "relativize paths",
				fmt.Sprintf("file %s lies outside the group root", path), nil)
		}
		relPaths = append(relPaths, rel)
	}

	// Byte-wise ascending order is the canonical base ordering; the
	// descriptor's position overrides are applied on top of it.
	sort.Strings(relPaths)

	songs := make([]*library.Song, 0, len(relPaths))
	index := make(map[string]int, len(relPaths))
	for i, rel := range relPaths {
		if _, dup := index[rel]; dup {
			return services.Wrap(services.ErrReference, "assembling", "order songs",
				fmt.Sprintf("song path %s appears twice in the group", rel), nil)
		}
		index[rel] = i
		songs = append(songs, &library.Song{RelPath: rel})
	}

	for _, entry := range run.Group.Entries {
		rel := filepath.FromSlash(entry.FileRelPath)
		current, ok := index[rel]
		if !ok {
			return services.Wrap(services.ErrReference, "assembling", "apply overrides",
				fmt.Sprintf("descriptor references unknown song path %s", entry.FileRelPath), nil)
		}

		if entry.OverridePosition != nil {
			target := *entry.OverridePosition
			if target >= len(songs) {
				return services.Wrap(services.ErrReference, "assembling", "apply overrides",
					fmt.Sprintf("position %d for %s is out of range for %d songs", target, entry.FileRelPath, len(songs)), nil)
			}
			moveSong(songs, current, target)
			lo, hi := current, target
			if lo > hi {
				lo, hi = hi, lo
			}
			for i := lo; i <= hi; i++ {
				index[songs[i].RelPath] = i
			}
			current = target
		}

		applyEntry(songs[current], entry)
	}

	run.Songs = songs
	logger.Info("songs ordered",
		logging.Int("songs", len(songs)),
		logging.Int("overrides", len(run.Group.Entries)),
	)
	return nil
}

func (a *Assembler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("assemble")
}

// moveSong repositions the song at current to target by rotating the
// sub-range between the two indices, preserving the relative order of every
// other song.
func moveSong(songs []*library.Song, current, target int) {
	switch {
	case current < target:
		moved := songs[current]
		copy(songs[current:target], songs[current+1:target+1])
		songs[target] = moved
	case current > target:
		moved := songs[current]
		copy(songs[target+1:current+1], songs[target:current])
		songs[target] = moved
	}
}

// applyEntry merges one descriptor entry into the song. Fields compose per
// entry, so two entries naming the same song each contribute the fields they
// set and the later entry wins where both set one.
func applyEntry(song *library.Song, entry library.SongEntry) {
	if entry.OriginMBID != "" {
		song.OriginMBID = entry.OriginMBID
	}
	if entry.Fingerprint != "" {
		song.Fingerprint = entry.Fingerprint
	}
	if entry.OverrideDiscIdx != nil {
		song.DiscIdxOverride = entry.OverrideDiscIdx
	}
	if entry.OverrideTrackIdx != nil {
		song.TrackIdxOverride = entry.OverrideTrackIdx
	}
	if entry.Override != nil {
		if song.Override == nil {
			song.Override = &metadata.SongOverride{}
		}
		if entry.Override.Title != nil {
			song.Override.Title = entry.Override.Title
		}
		if entry.Override.Artists != nil {
			song.Override.Artists = entry.Override.Artists
		}
	}
}
