package geotiff

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
)

// TIFF tag IDs used by the single-band float32 layout.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagSampleFormat    = 339
	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
)

const (
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12

	compressionNone      = 1
	photometricBlackZero = 1
	sampleFormatIEEEFP   = 3

	headerSize = 8
	entrySize  = 12
)

// WriteFile writes img to path as a little-endian single-band float32 TIFF.
func WriteFile(path string, img *Image) error {
	if err := img.validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Write encodes img as a little-endian TIFF: one strip, one band, 32 bits
// per sample, SampleFormat IEEE floating point. When img.Transform is set,
// GeoTIFF pixel-scale and tiepoint tags are emitted for north-up rasters.
func Write(w io.Writer, img *Image) error {
	if err := img.validate(); err != nil {
		return err
	}

	dataLen := uint32(len(img.Samples)) * 4
	ifdOffset := uint32(headerSize) + dataLen

	entries := 10
	if img.Transform != nil {
		entries += 2
	}
	// 2-byte entry count, entries, 4-byte next-IFD pointer.
	ifdLen := uint32(2 + entries*entrySize + 4)
	externalOffset := ifdOffset + ifdLen

	bw := bufio.NewWriter(w)

	// Header.
	bw.WriteString("II")
	writeU16(bw, 42)
	writeU32(bw, ifdOffset)

	// Pixel data, immediately after the header.
	for _, sample := range img.Samples {
		writeU32(bw, math.Float32bits(sample))
	}

	// IFD. Tags must appear in ascending ID order.
	writeU16(bw, uint16(entries))
	writeEntry(bw, tagImageWidth, typeLong, 1, uint32(img.Width))
	writeEntry(bw, tagImageLength, typeLong, 1, uint32(img.Height))
	writeEntry(bw, tagBitsPerSample, typeShort, 1, 32)
	writeEntry(bw, tagCompression, typeShort, 1, compressionNone)
	writeEntry(bw, tagPhotometric, typeShort, 1, photometricBlackZero)
	writeEntry(bw, tagStripOffsets, typeLong, 1, headerSize)
	writeEntry(bw, tagSamplesPerPixel, typeShort, 1, 1)
	writeEntry(bw, tagRowsPerStrip, typeLong, 1, uint32(img.Height))
	writeEntry(bw, tagStripByteCounts, typeLong, 1, dataLen)
	writeEntry(bw, tagSampleFormat, typeShort, 1, sampleFormatIEEEFP)
	if img.Transform != nil {
		writeEntry(bw, tagModelPixelScale, typeDouble, 3, externalOffset)
		writeEntry(bw, tagModelTiepoint, typeDouble, 6, externalOffset+3*8)
	}
	writeU32(bw, 0) // no next IFD

	if img.Transform != nil {
		gt := img.Transform
		// North-up: pixel scale is (t1, -t5, 0); tiepoint anchors pixel
		// (0,0,0) at model (t0, t3, 0).
		for _, v := range []float64{gt[1], -gt[5], 0} {
			writeU64(bw, math.Float64bits(v))
		}
		for _, v := range []float64{0, 0, 0, gt[0], gt[3], 0} {
			writeU64(bw, math.Float64bits(v))
		}
	}

	return bw.Flush()
}

func writeEntry(w io.Writer, tag, typ uint16, count, value uint32) {
	writeU16(w, tag)
	writeU16(w, typ)
	writeU32(w, count)
	// SHORT values occupy the low-order bytes of the value field.
	writeU32(w, value)
}

func writeU16(w io.Writer, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.Write(buf[:])
}

func writeU32(w io.Writer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func writeU64(w io.Writer, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}
