package pathplan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"quaver/internal/library"
	"quaver/internal/logging"
	"quaver/internal/services"
	"quaver/internal/stage"
)

// forbidden lists the characters that may not appear in any output path
// component, on any platform the library may later sync to.
const forbidden = `/\:*"?<>|`

// Planner is the final pipeline stage. It templates every song's output
// path from its resolved metadata, validates and deduplicates the results,
// and assembles the group plan.
type Planner struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Planner {
	return &Planner{logger: logging.NewComponentLogger(logger, "pathplan")}
}

func (p *Planner) Prepare(ctx context.Context, run *library.GroupRun) error {
	if run.Songs == nil {
		return services.Wrap(services.ErrConfiguration, "planning", "validate inputs", "group has not been assembled", nil)
	}
	for _, song := range run.Songs {
		if song.Resolved == nil {
			return services.Wrap(services.ErrConfiguration, "planning", "validate inputs",
				fmt.Sprintf("song %s has not been resolved", song.RelPath), nil)
		}
	}
	return nil
}

func (p *Planner) Execute(ctx context.Context, run *library.GroupRun) error {
	logger := logging.WithContext(ctx, p.logger)

	candidates := make([][]string, 0, len(run.Songs))
	for _, song := range run.Songs {
		components, err := templateSong(run.Group.Kind, song)
		if err != nil {
			return err
		}
		candidates = append(candidates, components)
	}

	entries, err := dedupe(run.Songs, candidates)
	if err != nil {
		return err
	}

	plan := &library.Plan{Entries: entries}

	if run.Group.Kind == library.KindCompilation {
		name := component(run.Group.Title)
		if name == "" {
			return services.Wrap(services.ErrUnresolved, "planning", "plan playlist", "compilation title is empty", nil)
		}
		if err := validate(name, fmt.Sprintf("compilation title %q", run.Group.Title)); err != nil {
			return err
		}
		paths := make([]string, 0, len(entries))
		for _, entry := range entries {
			paths = append(paths, entry.OutputPath)
		}
		plan.Playlist = &library.PlaylistPlan{Name: name, Entries: paths}
	}

	if run.Group.Kind == library.KindAlbum && run.Group.AlbumArtRelPath != "" && len(candidates) > 0 {
		// Art sits in the first song's album directory. Songs resolving to
		// a different directory keep their own directories, without art.
		ext := strings.ToLower(filepath.Ext(run.Group.AlbumArtRelPath))
		plan.AlbumArt = candidates[0][0] + "/" + candidates[0][1] + "/cover" + ext
	}

	run.Plan = plan
	logger.Info("output paths planned",
		logging.Int("songs", len(entries)),
		logging.Bool("playlist", plan.Playlist != nil),
	)
	return nil
}

func (p *Planner) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("pathplan")
}

// component trims and NFC-normalizes one path component, so decomposed and
// composed spellings of the same name plan the same path.
func component(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// validate rejects forbidden characters and reserved segments. The subject
// names the component's owner in the error.
func validate(value, subject string) error {
	if idx := strings.IndexAny(value, forbidden); idx >= 0 {
		return services.Wrap(services.ErrPathValidation, "planning", "validate components",
			fmt.Sprintf("%s contains forbidden character %q", subject, rune(value[idx])), nil)
	}
	if value == "." || value == ".." {
		return services.Wrap(services.ErrPathValidation, "planning", "validate components",
			fmt.Sprintf("%s is a reserved path segment", subject), nil)
	}
	return nil
}

// templateSong produces the path components for one song. Album songs nest
// under the album artist and album title; compilation songs sit directly
// under the song artist.
func templateSong(kind library.Kind, song *library.Song) ([]string, error) {
	resolved := song.Resolved
	title := component(resolved.Title)
	if title == "" {
		return nil, unresolved(song, "title")
	}

	var components []string
	switch kind {
	case library.KindAlbum:
		artist := component(resolved.FirstAlbumArtist())
		if artist == "" {
			return nil, unresolved(song, "album artist")
		}
		album := component(resolved.Album)
		if album == "" {
			return nil, unresolved(song, "album title")
		}
		components = []string{artist, album, title}
	case library.KindCompilation:
		artist := component(resolved.FirstArtist())
		if artist == "" {
			return nil, unresolved(song, "artist")
		}
		components = []string{artist, title}
	default:
		return nil, services.Wrap(services.ErrConfiguration, "planning", "template paths",
			fmt.Sprintf("unknown group kind %q", kind), nil)
	}

	for _, value := range components {
		if err := validate(value, "song "+song.RelPath); err != nil {
			return nil, err
		}
	}
	return components, nil
}

func unresolved(song *library.Song, field string) error {
	return services.Wrap(services.ErrUnresolved, "planning", "template paths",
		fmt.Sprintf("song %s has no resolved %s", song.RelPath, field), nil)
}

// dedupe joins candidate components into final '/'-separated paths.
// Identical candidates keep their first occurrence bare; later occurrences
// suffix the final component with " A" through " Z" in final song order.
func dedupe(songs []*library.Song, candidates [][]string) ([]library.PlanEntry, error) {
	seen := make(map[string]int, len(candidates))
	final := make(map[string]struct{}, len(candidates))
	entries := make([]library.PlanEntry, 0, len(candidates))
	for i, components := range candidates {
		path := strings.Join(components, "/")
		n := seen[path]
		seen[path] = n + 1
		if n > 0 {
			if n > 26 {
				return nil, services.Wrap(services.ErrPathValidation, "planning", "deduplicate paths",
					fmt.Sprintf("more than 27 songs resolve to %s", path), nil)
			}
			components[len(components)-1] += " " + string(rune('A'+n-1))
			path = strings.Join(components, "/")
		}
		if _, dup := final[path]; dup {
			return nil, services.Wrap(services.ErrPathValidation, "planning", "deduplicate paths",
				fmt.Sprintf("deduplicated path %s still collides with another song", path), nil)
		}
		final[path] = struct{}{}
		entries = append(entries, library.PlanEntry{Song: songs[i], OutputPath: path})
	}
	return entries, nil
}
