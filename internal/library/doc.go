// Package library models groups of source music files and discovers them on
// disk.
//
// A group is a directory holding a music.quaver.toml descriptor: a tagged
// union of album and compilation schemas carrying the user-authored origin,
// optional scan filter, and declaration-order song overrides. The scanner
// walks the configured search paths, claims each descriptor directory's
// subtree as one group, and collects its audio files by extension.
//
// The package also defines the per-song pipeline state (Song, GroupRun) and
// the planner's output types (Plan, PlaylistPlan) that stages fill in as a
// group moves through assembly, index assignment, resolution, and planning.
package library
