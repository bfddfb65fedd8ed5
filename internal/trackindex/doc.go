// Package trackindex fixes the source (media, track) pair for every song of
// an album group: native tag indices first, descriptor overrides second,
// sequential continuation last, with overflow past a medium's known track
// count carried into the next medium.
package trackindex
