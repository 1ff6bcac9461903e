// Package dirp wraps the external radiometric decoder that converts raw
// thermal JPEG captures into per-pixel Celsius temperature frames. The
// decoder and its calibration model are a closed-source vendor SDK; this
// package only drives the executable and validates the shape of what comes
// back.
package dirp
