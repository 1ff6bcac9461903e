package geotiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// ReadFile decodes a single-band float32 TIFF previously produced by Write.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// Read decodes a single-band float32 TIFF from r.
func Read(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// maxPixels bounds raster allocation: 2^28 float32 samples is 1 GiB, far
// beyond any thermal sensor.
const maxPixels = 1 << 28

type field struct {
	typ   uint16
	count uint32
	value uint32
}

func decode(data []byte) (*Image, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("geotiff: truncated header")
	}
	if data[0] != 'I' || data[1] != 'I' {
		return nil, fmt.Errorf("geotiff: unsupported byte order %q", data[:2])
	}
	if binary.LittleEndian.Uint16(data[2:4]) != 42 {
		return nil, fmt.Errorf("geotiff: bad magic")
	}
	ifdOffset := binary.LittleEndian.Uint32(data[4:8])
	if int(ifdOffset)+2 > len(data) {
		return nil, fmt.Errorf("geotiff: IFD offset out of range")
	}

	entries := int(binary.LittleEndian.Uint16(data[ifdOffset : ifdOffset+2]))
	ifdEnd := int(ifdOffset) + 2 + entries*entrySize
	if ifdEnd > len(data) {
		return nil, fmt.Errorf("geotiff: truncated IFD")
	}

	fields := make(map[uint16]field, entries)
	for i := 0; i < entries; i++ {
		off := int(ifdOffset) + 2 + i*entrySize
		tag := binary.LittleEndian.Uint16(data[off : off+2])
		fields[tag] = field{
			typ:   binary.LittleEndian.Uint16(data[off+2 : off+4]),
			count: binary.LittleEndian.Uint32(data[off+4 : off+8]),
			value: binary.LittleEndian.Uint32(data[off+8 : off+12]),
		}
	}

	width, err := scalar(fields, tagImageWidth)
	if err != nil {
		return nil, err
	}
	height, err := scalar(fields, tagImageLength)
	if err != nil {
		return nil, err
	}
	if err := expect(fields, tagBitsPerSample, 32, "bits per sample"); err != nil {
		return nil, err
	}
	if err := expect(fields, tagSampleFormat, sampleFormatIEEEFP, "sample format"); err != nil {
		return nil, err
	}
	if spp, err := scalar(fields, tagSamplesPerPixel); err == nil && spp != 1 {
		return nil, fmt.Errorf("geotiff: expected a single band, got %d samples per pixel", spp)
	}
	if comp, err := scalar(fields, tagCompression); err == nil && comp != compressionNone {
		return nil, fmt.Errorf("geotiff: compression %d not supported", comp)
	}

	stripOffset, err := scalar(fields, tagStripOffsets)
	if err != nil {
		return nil, err
	}
	stripLen, err := scalar(fields, tagStripByteCounts)
	if err != nil {
		return nil, err
	}
	if f := fields[tagStripOffsets]; f.count != 1 {
		return nil, fmt.Errorf("geotiff: multi-strip rasters not supported")
	}

	// Dimension arithmetic is done in int64: 32-bit products can wrap for
	// hostile headers and trigger huge allocations below.
	pixels := int64(width) * int64(height)
	if pixels == 0 || pixels > maxPixels {
		return nil, fmt.Errorf("geotiff: unreasonable dimensions %dx%d", width, height)
	}
	want := pixels * 4
	if int64(stripLen) != want {
		return nil, fmt.Errorf("geotiff: strip holds %d bytes, want %d for %dx%d float32", stripLen, want, width, height)
	}
	if int(stripOffset)+int(stripLen) > len(data) {
		return nil, fmt.Errorf("geotiff: strip extends past end of file")
	}

	img := NewImage(int(width), int(height))
	raw := data[stripOffset : stripOffset+stripLen]
	for i := range img.Samples {
		img.Samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
	}

	if transform, ok, err := readTransform(data, fields); err != nil {
		return nil, err
	} else if ok {
		img.Transform = transform
	}

	return img, nil
}

func readTransform(data []byte, fields map[uint16]field) (*[6]float64, bool, error) {
	scaleField, haveScale := fields[tagModelPixelScale]
	tieField, haveTie := fields[tagModelTiepoint]
	if !haveScale || !haveTie {
		return nil, false, nil
	}
	scale, err := doubles(data, scaleField, 3)
	if err != nil {
		return nil, false, err
	}
	tie, err := doubles(data, tieField, 6)
	if err != nil {
		return nil, false, err
	}
	gt := [6]float64{tie[3], scale[0], 0, tie[4], 0, -scale[1]}
	return &gt, true, nil
}

func doubles(data []byte, f field, count uint32) ([]float64, error) {
	if f.typ != typeDouble || f.count != count {
		return nil, fmt.Errorf("geotiff: unexpected geo tag layout (type %d, count %d)", f.typ, f.count)
	}
	end := int(f.value) + int(count)*8
	if end > len(data) {
		return nil, fmt.Errorf("geotiff: geo tag values out of range")
	}
	out := make([]float64, count)
	for i := range out {
		off := int(f.value) + i*8
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off : off+8]))
	}
	return out, nil
}

func scalar(fields map[uint16]field, tag uint16) (uint32, error) {
	f, ok := fields[tag]
	if !ok {
		return 0, fmt.Errorf("geotiff: missing tag %d", tag)
	}
	switch f.typ {
	case typeShort:
		return f.value & 0xffff, nil
	case typeLong:
		return f.value, nil
	default:
		return 0, fmt.Errorf("geotiff: tag %d has unsupported type %d", tag, f.typ)
	}
}

func expect(fields map[uint16]field, tag uint16, want uint32, label string) error {
	got, err := scalar(fields, tag)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("geotiff: %s is %d, want %d", label, got, want)
	}
	return nil
}
