// Package pathplan turns resolved metadata into the group's output layout:
// one collision-free relative path per song, a regenerated playlist for
// compilations, and a cover art path for albums that carry art. Planning is
// all-or-nothing per group; one bad component aborts the whole group's plan.
package pathplan
