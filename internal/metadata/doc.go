// Package metadata defines the metadata records that flow through the
// pipeline: native tag reads, user overrides, lookup sources with their
// cache keys, derived release structures, and the final resolved record per
// song. It also declares the Deriver capability along with NullDeriver, the
// explicit always-absent implementation.
package metadata
