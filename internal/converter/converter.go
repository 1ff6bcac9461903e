package converter

import (
	"context"
	"path/filepath"
	"strings"

	"kelvin/internal/geotiff"
	"kelvin/internal/logging"
	"kelvin/internal/services"
)

// InputSuffix marks a file as a radiometric thermal capture. The match is
// case-sensitive.
const InputSuffix = "_T.JPG"

// RasterExt is the extension of intermediate and final rasters.
const RasterExt = ".tif"

// Status classifies a per-file conversion outcome.
type Status string

const (
	StatusConverted Status = "converted"
	StatusFailed    Status = "failed"
)

// Result records the outcome of converting one input image.
type Result struct {
	File           string
	Status         Status
	Width          int
	Height         int
	MetadataCopied bool
	Err            error
}

// convertOne decodes a single capture, writes the intermediate raster beside
// it, and attempts the metadata copy. Decoder and raster-write failures are
// returned; metadata-copy failures are logged and absorbed.
func (b *Batch) convertOne(ctx context.Context, name string) Result {
	logger := logging.WithContext(ctx, b.logger)
	result := Result{File: name, Status: StatusFailed}

	srcPath := filepath.Join(b.cfg.Paths.InputDir, name)
	frame, err := b.decoder.Decode(ctx, srcPath, b.cfg.Decoder.ProcessingIndex)
	if err != nil {
		result.Err = services.Wrap(services.ErrExternalTool, "convert", "decode", "decoder cannot process file", err)
		return result
	}
	result.Width = frame.Width
	result.Height = frame.Height

	img := &geotiff.Image{
		Width:   frame.Width,
		Height:  frame.Height,
		Samples: frame.Celsius,
	}
	dstPath := rasterPath(srcPath)
	if err := geotiff.WriteFile(dstPath, img); err != nil {
		result.Err = services.Wrap(services.ErrTransient, "convert", "write raster", "cannot write temperature raster", err)
		return result
	}

	// Best effort: a capture without migrated tags is still a valid raster.
	if err := b.metadata.CopyTags(ctx, srcPath, dstPath); err != nil {
		logger.Warn("metadata copy failed, raster keeps no tags", logging.Error(err))
	} else {
		result.MetadataCopied = true
	}

	result.Status = StatusConverted
	return result
}

// rasterPath derives the intermediate raster path from an input path: same
// directory, same base name, raster extension.
func rasterPath(srcPath string) string {
	base := filepath.Base(srcPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(filepath.Dir(srcPath), stem+RasterExt)
}
