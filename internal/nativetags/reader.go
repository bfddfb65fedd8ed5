package nativetags

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"

	"quaver/internal/logging"
	"quaver/internal/metadata"
)

// Reader extracts tag metadata embedded in audio files. Files whose tags
// cannot be parsed yield an empty record rather than an error so that a
// single damaged file never aborts its group.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logging.NewComponentLogger(logger, "nativetags")}
}

// Read returns the tag record for the file at path. Every field of the
// result is absent when the file is missing, unsupported, or damaged.
func (r *Reader) Read(path string) metadata.TagRecord {
	f, err := os.Open(path)
	if err != nil {
		r.logger.Debug("tag read skipped",
			logging.String(logging.FieldSong, path),
			logging.Error(err),
		)
		return metadata.TagRecord{}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// dhowden/tag chokes on some UTF-16 encoded ID3 frames; the
		// id3v2 library handles those.
		if strings.EqualFold(filepath.Ext(path), ".mp3") {
			if record, fbErr := readMP3Fallback(path); fbErr == nil {
				return record
			}
		}
		r.logger.Debug("tag read failed",
			logging.String(logging.FieldSong, path),
			logging.Error(err),
		)
		return metadata.TagRecord{}
	}

	record := metadata.TagRecord{
		Title: m.Title(),
		Album: m.Album(),
	}
	if artist := m.Artist(); artist != "" {
		record.Artists = []string{artist}
	}
	if albumArtist := m.AlbumArtist(); albumArtist != "" {
		record.AlbumArtists = []string{albumArtist}
	}
	record.TrackIdx, record.TrackCount = m.Track()
	record.DiscIdx, record.DiscCount = m.Disc()
	return record
}

// readMP3Fallback reads ID3 metadata using only the id3v2 library.
func readMP3Fallback(path string) (metadata.TagRecord, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return metadata.TagRecord{}, err
	}
	defer id3tag.Close()

	record := metadata.TagRecord{
		Title: id3tag.Title(),
		Album: id3tag.Album(),
	}
	if artist := id3tag.Artist(); artist != "" {
		record.Artists = []string{artist}
	}
	if albumArtist := textFrame(id3tag, "TPE2"); albumArtist != "" {
		record.AlbumArtists = []string{albumArtist}
	}
	record.TrackIdx, record.TrackCount = splitIndexTotal(textFrame(id3tag, "TRCK"))
	record.DiscIdx, record.DiscCount = splitIndexTotal(textFrame(id3tag, "TPOS"))
	return record, nil
}

// splitIndexTotal parses position strings like "5" or "5/10".
func splitIndexTotal(s string) (idx, total int) {
	if s == "" {
		return 0, 0
	}
	parts := strings.SplitN(s, "/", 2)
	idx, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return idx, total
}

func textFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}
