package library

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"quaver/internal/metadata"
)

// GroupFileName is the descriptor file that marks a directory as a group root.
const GroupFileName = "music.quaver.toml"

type descriptorProbe struct {
	Type string `toml:"type"`
}

type compilationFile struct {
	Type       string                 `toml:"type"`
	Origin     Origin                 `toml:"origin"`
	ScanFilter *ScanFilter            `toml:"scan_filter"`
	Title      string                 `toml:"title"`
	Songs      []compilationSongEntry `toml:"songs"`
}

type compilationSongEntry struct {
	FileRelPath      string                 `toml:"file_rel_path"`
	OriginMBID       string                 `toml:"origin_mbid"`
	Fingerprint      string                 `toml:"fingerprint"`
	OverridePosition *int                   `toml:"override_position"`
	OverrideMetadata *metadata.SongOverride `toml:"override_metadata"`
}

type albumFile struct {
	Type            string                  `toml:"type"`
	Origin          Origin                  `toml:"origin"`
	ScanFilter      *ScanFilter             `toml:"scan_filter"`
	AlbumArtRelPath string                  `toml:"album_art_rel_path"`
	OverrideMeta    *metadata.AlbumOverride `toml:"override_metadata"`
	Songs           []albumSongEntry        `toml:"songs"`
}

type albumSongEntry struct {
	FileRelPath      string                 `toml:"file_rel_path"`
	OverrideDiscIdx  *int                   `toml:"override_disc_idx"`
	OverrideTrackIdx *int                   `toml:"override_track_idx"`
	OverrideMetadata *metadata.SongOverride `toml:"override_metadata"`
}

// LoadDescriptor parses a group descriptor file. The descriptor is a tagged
// union: the `type` field selects the schema, and fields that belong to the
// other variant are rejected rather than silently ignored.
func LoadDescriptor(path string) (*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}

	var probe descriptorProbe
	if err := toml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
	}

	switch Kind(strings.ToLower(strings.TrimSpace(probe.Type))) {
	case KindCompilation:
		return loadCompilation(path, data)
	case KindAlbum:
		return loadAlbum(path, data)
	default:
		return nil, fmt.Errorf("descriptor %s: type must be %q or %q (got %q)", path, KindAlbum, KindCompilation, probe.Type)
	}
}

func loadCompilation(path string, data []byte) (*Group, error) {
	var file compilationFile
	if err := decodeStrict(data, &file); err != nil {
		return nil, fmt.Errorf("parse compilation descriptor %s: %w", path, err)
	}
	if strings.TrimSpace(file.Title) == "" {
		return nil, fmt.Errorf("compilation descriptor %s: title must be set", path)
	}

	group := &Group{
		Kind:       KindCompilation,
		Origin:     file.Origin,
		ScanFilter: file.ScanFilter,
		Title:      strings.TrimSpace(file.Title),
	}
	for i, entry := range file.Songs {
		if strings.TrimSpace(entry.FileRelPath) == "" {
			return nil, fmt.Errorf("compilation descriptor %s: songs[%d].file_rel_path must be set", path, i)
		}
		if entry.OverridePosition != nil && *entry.OverridePosition < 0 {
			return nil, fmt.Errorf("compilation descriptor %s: songs[%d].override_position must not be negative", path, i)
		}
		group.Entries = append(group.Entries, SongEntry{
			FileRelPath:      entry.FileRelPath,
			OriginMBID:       strings.TrimSpace(entry.OriginMBID),
			Fingerprint:      strings.TrimSpace(entry.Fingerprint),
			OverridePosition: entry.OverridePosition,
			Override:         entry.OverrideMetadata,
		})
	}
	return group, nil
}

func loadAlbum(path string, data []byte) (*Group, error) {
	var file albumFile
	if err := decodeStrict(data, &file); err != nil {
		return nil, fmt.Errorf("parse album descriptor %s: %w", path, err)
	}

	group := &Group{
		Kind:            KindAlbum,
		Origin:          file.Origin,
		ScanFilter:      file.ScanFilter,
		AlbumArtRelPath: strings.TrimSpace(file.AlbumArtRelPath),
		AlbumOverride:   file.OverrideMeta,
	}
	for i, entry := range file.Songs {
		if strings.TrimSpace(entry.FileRelPath) == "" {
			return nil, fmt.Errorf("album descriptor %s: songs[%d].file_rel_path must be set", path, i)
		}
		if entry.OverrideDiscIdx != nil && *entry.OverrideDiscIdx < 1 {
			return nil, fmt.Errorf("album descriptor %s: songs[%d].override_disc_idx must be at least 1", path, i)
		}
		if entry.OverrideTrackIdx != nil && *entry.OverrideTrackIdx < 1 {
			return nil, fmt.Errorf("album descriptor %s: songs[%d].override_track_idx must be at least 1", path, i)
		}
		group.Entries = append(group.Entries, SongEntry{
			FileRelPath:      entry.FileRelPath,
			OverrideDiscIdx:  entry.OverrideDiscIdx,
			OverrideTrackIdx: entry.OverrideTrackIdx,
			Override:         entry.OverrideMetadata,
		})
	}
	return group, nil
}

func decodeStrict(data []byte, target any) error {
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(target)
	if err == nil {
		return nil
	}
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return fmt.Errorf("unknown fields for this group type:\n%s", strict.String())
	}
	return err
}
