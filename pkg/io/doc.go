// Package io reads and writes museum documents.
//
// # Overview
//
// A museum document is the JSON form of [museum.Museum]: the canvas, the
// seed the layout was computed with, the collected items and every
// placement. Saving a museum lets it be re-rendered later, in any format,
// without contacting the music API again:
//
//	museum build --format json -o wall.json
//	museum render wall.json --format png
//
// # Import
//
// Use [ImportFile] to read a document from a path ("-" reads standard
// input), or [ReadMuseum] to read from any io.Reader. Both validate the
// document: every placement must lie inside the canvas and carry a known
// category and an image.
//
// # Export
//
// Use [ExportFile] to write a document to a path, or [WriteMuseum] to write
// to any io.Writer. Output is indented JSON and round-trips through
// [ReadMuseum] unchanged.
//
// [museum.Museum]: github.com/matzehuels/museum/pkg/museum.Museum
package io
