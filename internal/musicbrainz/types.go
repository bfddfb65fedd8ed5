// Package musicbrainz provides a client for the MusicBrainz web service.
package musicbrainz

import "quaver/internal/metadata"

// artistCredit represents one artist contribution on a release, track, or
// recording.
type artistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type releaseGroupRef struct {
	ID string `json:"id"`
}

type recordingRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// track is a raw track as it appears inside a medium.
type track struct {
	Position     int            `json:"position"`
	Title        string         `json:"title"`
	Recording    *recordingRef  `json:"recording"`
	ArtistCredit []artistCredit `json:"artist-credit"`
}

// medium represents one disc (or tape, or download) of a release.
type medium struct {
	Position   int     `json:"position"`
	Format     string  `json:"format"`
	TrackCount int     `json:"track-count"`
	Tracks     []track `json:"tracks"`
}

// releaseResponse is the payload of a release lookup.
type releaseResponse struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	ArtistCredit []artistCredit   `json:"artist-credit"`
	ReleaseGroup *releaseGroupRef `json:"release-group"`
	Media        []medium         `json:"media"`
}

// discResponse is the payload of a disc ID lookup. The same disc can appear
// on several releases.
type discResponse struct {
	Releases []releaseResponse `json:"releases"`
}

// recordingResponse is the payload of a recording lookup.
type recordingResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
}

// creditedArtists converts artist credits to cached artist entries. Each
// credit keeps its credited name when one is set, falling back to the
// artist's canonical name.
func creditedArtists(credits []artistCredit) []metadata.CachedArtist {
	if len(credits) == 0 {
		return nil
	}
	artists := make([]metadata.CachedArtist, 0, len(credits))
	for _, credit := range credits {
		name := credit.Name
		if name == "" {
			name = credit.Artist.Name
		}
		artists = append(artists, metadata.CachedArtist{
			ID:   credit.Artist.ID,
			Name: name,
		})
	}
	return artists
}

// albumFromRelease converts a raw release payload to an album record.
func albumFromRelease(r releaseResponse) *metadata.AlbumRecord {
	album := &metadata.AlbumRecord{
		ReleaseID: r.ID,
		Title:     r.Title,
		Artists:   creditedArtists(r.ArtistCredit),
	}
	if r.ReleaseGroup != nil {
		album.ReleaseGroupID = r.ReleaseGroup.ID
	}
	for _, m := range r.Media {
		converted := metadata.Medium{
			Position:   m.Position,
			Format:     m.Format,
			TrackCount: m.TrackCount,
		}
		for _, t := range m.Tracks {
			record := metadata.TrackRecord{
				Position: t.Position,
				Title:    t.Title,
				Artists:  creditedArtists(t.ArtistCredit),
			}
			if t.Recording != nil {
				record.RecordingID = t.Recording.ID
				if record.Title == "" {
					record.Title = t.Recording.Title
				}
			}
			converted.Tracks = append(converted.Tracks, record)
		}
		album.Media = append(album.Media, converted)
	}
	return album
}
