// Package metacache stores derived metadata lookups so repeated planning
// runs do not hit the MusicBrainz service again.
package metacache
