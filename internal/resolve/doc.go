// Package resolve merges each song's metadata layers into one authoritative
// record: native tags first, derived lookup results second, descriptor
// overrides last. Later layers overwrite only the fields they carry, and a
// missing layer never fails the merge.
package resolve
