// Package deriver combines the metadata cache and the MusicBrainz client
// into the lookup layer used during resolution. Results are cached on first
// derivation; later runs work offline.
package deriver
