// Package converter implements the batch pipeline: discover thermal
// captures in the input directory, decode each through the external
// radiometric decoder, write single-band float32 rasters, migrate metadata
// via exiftool, then move finished rasters to the output directory and
// delete exiftool backups.
//
// Processing is strictly sequential. Per-file failures are isolated: a
// corrupt capture is logged and skipped while the rest of the batch
// continues. Only discovery, locking, and decoder initialization abort a
// run.
package converter
