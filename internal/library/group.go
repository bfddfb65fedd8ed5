package library

import (
	"fmt"
	"path/filepath"
	"strings"

	"quaver/internal/metadata"
)

// Kind discriminates the two group flavors. Code switching on Kind must
// handle both and reject anything else.
type Kind string

const (
	KindAlbum       Kind = "album"
	KindCompilation Kind = "compilation"
)

// Origin is the user-authored record of where a group came from. It is never
// derived by the tool and never discarded; the deriver acts only on the
// identifiers it can resolve.
type Origin struct {
	URL              string `toml:"url"`
	MBReleaseGroupID string `toml:"mb_release_group_id"`
	MBReleaseID      string `toml:"mb_release_id"`
	MBDiscID         string `toml:"mb_discid"`
	CDDBDiscID       string `toml:"cddb_discid"`
}

// Empty reports whether no origin information was supplied.
func (o Origin) Empty() bool {
	return o.URL == "" && o.MBReleaseGroupID == "" && o.MBReleaseID == "" &&
		o.MBDiscID == "" && o.CDDBDiscID == ""
}

// AlbumSource projects the origin onto the identifiers the deriver resolves.
func (o Origin) AlbumSource() metadata.AlbumSource {
	return metadata.AlbumSource{
		ReleaseGroupID: o.MBReleaseGroupID,
		ReleaseID:      o.MBReleaseID,
		DiscID:         o.MBDiscID,
	}
}

// ScanFilter restricts which files a group's scan collects, for source
// directories that hold several encodings of the same music.
type ScanFilter struct {
	ExtFilters []string `toml:"ext_filters"`
}

// SongEntry is one declaration-order override from a group descriptor.
// Which fields may be set depends on the group kind; decoding enforces that.
type SongEntry struct {
	FileRelPath      string
	OriginMBID       string
	Fingerprint      string
	OverridePosition *int
	OverrideDiscIdx  *int
	OverrideTrackIdx *int
	Override         *metadata.SongOverride
}

// Group is one descriptor-rooted collection of songs, either an album or a
// compilation.
type Group struct {
	Kind       Kind
	Root       string
	Origin     Origin
	ScanFilter *ScanFilter

	// Compilation only.
	Title string

	// Album only.
	AlbumArtRelPath string
	AlbumOverride   *metadata.AlbumOverride

	Entries   []SongEntry
	SongFiles []string
}

// Name returns the display name used in logs and tables: the compilation
// title, or the album's override title, or the root directory name.
func (g *Group) Name() string {
	switch g.Kind {
	case KindCompilation:
		if strings.TrimSpace(g.Title) != "" {
			return g.Title
		}
	case KindAlbum:
		if g.AlbumOverride != nil && g.AlbumOverride.Title != nil && strings.TrimSpace(*g.AlbumOverride.Title) != "" {
			return *g.AlbumOverride.Title
		}
	}
	return filepath.Base(g.Root)
}

// ScanExtensions returns the extension set this group collects, lowercased
// and without dots: the group's own filter when present, else the supplied
// default list.
func (g *Group) ScanExtensions(defaults []string) map[string]struct{} {
	source := defaults
	if g.ScanFilter != nil && len(g.ScanFilter.ExtFilters) > 0 {
		source = g.ScanFilter.ExtFilters
	}
	exts := make(map[string]struct{}, len(source))
	for _, ext := range source {
		ext = strings.ToLower(strings.TrimSpace(ext))
		ext = strings.TrimPrefix(ext, ".")
		if ext != "" {
			exts[ext] = struct{}{}
		}
	}
	return exts
}

// Song is one assembled song and the per-song state the stages fill in.
type Song struct {
	RelPath string

	// Carried over from the descriptor by the assembler.
	OriginMBID       string
	Fingerprint      string
	DiscIdxOverride  *int
	TrackIdxOverride *int
	Override         *metadata.SongOverride

	// Computed by the pipeline.
	Tags     *metadata.TagRecord
	Source   *metadata.Source
	Record   *metadata.SongRecord
	Media    int
	Track    int
	Resolved *metadata.ResolvedSong
}

// GroupRun is the mutable state of one group moving through the pipeline.
// The assembler fills Songs, the index assigner fills Media/Track and Album,
// the resolution engine fills Resolved, and the planner fills Plan.
type GroupRun struct {
	Group *Group
	Songs []*Song
	Album *metadata.AlbumRecord
	Plan  *Plan
}

// NewGroupRun wraps a scanned group for pipeline processing.
func NewGroupRun(group *Group) (*GroupRun, error) {
	if group == nil {
		return nil, fmt.Errorf("group is required")
	}
	switch group.Kind {
	case KindAlbum, KindCompilation:
	default:
		return nil, fmt.Errorf("unknown group kind %q", group.Kind)
	}
	return &GroupRun{Group: group}, nil
}

// Plan is the planner's output for one group.
type Plan struct {
	Entries  []PlanEntry
	Playlist *PlaylistPlan
	AlbumArt string
}

// PlanEntry maps one song to its deduplicated output path, '/'-joined and
// relative to the library output root.
type PlanEntry struct {
	Song       *Song
	OutputPath string
}

// PlaylistPlan is the fully regenerated playlist for a compilation: the
// playlist name and the resolved output paths in final song order.
type PlaylistPlan struct {
	Name    string
	Entries []string
}
