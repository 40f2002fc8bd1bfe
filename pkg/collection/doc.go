// Package collection gathers a listener's top artists, tracks and albums
// and normalizes them into [museum.DisplayItem] tiles.
//
// # Aggregation
//
// [Aggregator.Aggregate] runs the three fetches concurrently. A failure in
// one fetch never aborts the others: it is logged, recorded as a [Failure]
// and contributes an empty list, so a listener always gets a (possibly
// partial) museum. Only cancellation of the caller's context is returned as
// an error.
//
// Results are concatenated in artist, track, album order. Items without
// artwork are dropped.
//
// # Albums
//
// There is no "top albums" endpoint. Albums are derived from a larger page
// of top tracks: each track's album is taken in order, duplicates are
// removed keeping the first occurrence, and the result is capped at the
// album limit. See [DedupeAlbums].
package collection
