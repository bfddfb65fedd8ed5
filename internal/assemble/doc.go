// Package assemble turns a scanned group into its ordered song list. The
// base order is byte-wise ascending over the root-relative paths; descriptor
// entries then reposition songs and attach overrides in declaration order.
package assemble
