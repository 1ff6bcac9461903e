// Package exiftool drives the external exiftool binary to migrate EXIF/XMP
// tag metadata from original captures onto derived rasters. The tool's
// output is discarded and failures are surfaced to the caller to log as a
// best-effort outcome, never to fail a conversion.
package exiftool
