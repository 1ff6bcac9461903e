// Package geotiff writes and reads single-band 32-bit floating-point TIFF
// rasters, the output format for decoded temperature grids. The writer emits
// a minimal little-endian GeoTIFF-compatible layout (one strip, SampleFormat
// IEEE float) with optional pixel-scale and tiepoint tags derived from a
// GDAL-style affine geotransform. The reader decodes exactly that layout and
// exists mainly so tests and verification paths can round-trip outputs.
package geotiff
