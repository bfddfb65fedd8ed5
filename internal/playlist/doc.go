// Package playlist writes compilation playlists as UTF-8 extended M3U
// files. Files are produced atomically and regenerated in full each run.
package playlist
