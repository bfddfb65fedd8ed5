// Package nativetags reads the metadata embedded in audio files. It is the
// first resolution layer: values found here are overridden by cached lookup
// results and by per-group overrides.
package nativetags
