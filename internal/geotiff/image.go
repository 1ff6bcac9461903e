package geotiff

import "fmt"

// Image is a single-band float32 raster in row-major order. Transform, when
// set, is a GDAL-style affine geotransform mapping pixel coordinates to model
// space: x' = t[0] + px*t[1] + py*t[2], y' = t[3] + px*t[4] + py*t[5].
type Image struct {
	Width     int
	Height    int
	Samples   []float32
	Transform *[6]float64
}

// NewImage allocates a raster of the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		Width:   width,
		Height:  height,
		Samples: make([]float32, width*height),
	}
}

// At returns the sample at pixel (x, y). Panics on out-of-range coordinates,
// matching slice indexing semantics.
func (im *Image) At(x, y int) float32 {
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		panic(fmt.Sprintf("geotiff: pixel (%d, %d) out of range %dx%d", x, y, im.Width, im.Height))
	}
	return im.Samples[y*im.Width+x]
}

// Set assigns the sample at pixel (x, y).
func (im *Image) Set(x, y int, v float32) {
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		panic(fmt.Sprintf("geotiff: pixel (%d, %d) out of range %dx%d", x, y, im.Width, im.Height))
	}
	im.Samples[y*im.Width+x] = v
}

func (im *Image) validate() error {
	if im == nil {
		return fmt.Errorf("geotiff: nil image")
	}
	if im.Width <= 0 || im.Height <= 0 {
		return fmt.Errorf("geotiff: invalid dimensions %dx%d", im.Width, im.Height)
	}
	if len(im.Samples) != im.Width*im.Height {
		return fmt.Errorf("geotiff: sample count %d does not match %dx%d", len(im.Samples), im.Width, im.Height)
	}
	if im.Transform != nil && (im.Transform[2] != 0 || im.Transform[4] != 0) {
		return fmt.Errorf("geotiff: rotated geotransforms are not supported")
	}
	return nil
}
