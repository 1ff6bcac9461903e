package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"kelvin/internal/fileutil"
	"kelvin/internal/logging"
	"kelvin/internal/services/exiftool"
)

// sweep re-scans the input directory after all conversions were attempted,
// moving finished rasters into the output directory and deleting exiftool
// backup files. The re-scan deliberately picks up rasters left behind by a
// prior interrupted run as well; relocation and deletion failures are
// isolated per file.
func (b *Batch) sweep(ctx context.Context, summary *Summary) {
	logger := logging.WithContext(ctx, b.logger)

	entries, err := os.ReadDir(b.cfg.Paths.InputDir)
	if err != nil {
		logger.Error("cannot re-scan input directory for sweep", logging.Error(err))
		summary.RelocationErrors++
		return
	}

	var rasters, backups []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, RasterExt):
			rasters = append(rasters, name)
		case strings.HasSuffix(name, exiftool.BackupSuffix):
			backups = append(backups, name)
		}
	}

	logger.Info("moving rasters to output directory", logging.Int("count", len(rasters)))
	for _, name := range rasters {
		src := filepath.Join(b.cfg.Paths.InputDir, name)
		dst := filepath.Join(b.cfg.Paths.OutputDir, name)
		if err := fileutil.MoveFile(src, dst); err != nil {
			summary.RelocationErrors++
			logger.Error("failed to move raster",
				logging.String(logging.FieldFile, name),
				logging.Error(err))
			continue
		}
		summary.MovedRasters++
	}

	logger.Info("deleting metadata tool backups", logging.Int("count", len(backups)))
	for _, name := range backups {
		if err := os.Remove(filepath.Join(b.cfg.Paths.InputDir, name)); err != nil {
			summary.RelocationErrors++
			logger.Error("failed to delete backup file",
				logging.String(logging.FieldFile, name),
				logging.Error(err))
			continue
		}
		summary.DeletedBackups++
	}
}
