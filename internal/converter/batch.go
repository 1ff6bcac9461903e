package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"kelvin/internal/config"
	"kelvin/internal/logging"
	"kelvin/internal/services"
	"kelvin/internal/services/dirp"
	"kelvin/internal/services/exiftool"
)

// Batch drives the sequential conversion of every thermal capture in the
// input directory, then relocates finished rasters and cleans up exiftool
// backups.
type Batch struct {
	cfg      *config.Config
	decoder  dirp.Client
	metadata exiftool.Client
	logger   *slog.Logger
	progress Progress

	lockPath string
	lock     *flock.Flock
}

// Summary aggregates the outcome of a batch run.
type Summary struct {
	Results          []Result
	Converted        int
	Failed           int
	MovedRasters     int
	DeletedBackups   int
	RelocationErrors int
}

// New constructs a batch using clients built from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Batch {
	decoder := dirp.NewCLI(
		dirp.WithBinary(cfg.Decoder.Binary),
		dirp.WithLibraryPath(cfg.Decoder.LibraryPath),
	)
	var metadata exiftool.Client = exiftool.Nop{}
	if cfg.ExifTool.Enabled {
		metadata = exiftool.NewCLI(exiftool.WithBinary(cfg.ExifTool.Binary))
	}
	return NewWithDependencies(cfg, logger, decoder, metadata, NewProgress(logger))
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, logger *slog.Logger, decoder dirp.Client, metadata exiftool.Client, progress Progress) *Batch {
	batchLogger := logger
	if batchLogger != nil {
		batchLogger = batchLogger.With(logging.String(logging.FieldComponent, "batch"))
	} else {
		batchLogger = logging.NewNop()
	}
	if progress == nil {
		progress = nopProgress{}
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "kelvin.lock")
	return &Batch{
		cfg:      cfg,
		decoder:  decoder,
		metadata: metadata,
		logger:   batchLogger,
		progress: progress,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// LockPath returns the path of the run lock file.
func (b *Batch) LockPath() string {
	return b.lockPath
}

// Run converts every matching capture in the input directory. Per-file
// failures are isolated and reported in the summary; only discovery, lock,
// and decoder-initialization problems abort the run.
func (b *Batch) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, b.logger)

	if err := b.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "ensure directories", "cannot create output directories", err)
	}

	ok, err := b.lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "acquire lock", "cannot acquire run lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "acquire lock", "another conversion run holds "+b.lockPath, nil)
	}
	defer func() {
		if err := b.lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	inputs, err := b.discover()
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	if len(inputs) == 0 {
		logger.Warn("no thermal images found in the input directory",
			logging.String("input_dir", b.cfg.Paths.InputDir))
		return summary, nil
	}

	if err := b.decoder.Init(ctx); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "init decoder", "decoder initialization failed", err)
	}

	logger.Info("converting thermal captures",
		logging.Int("count", len(inputs)),
		logging.String("input_dir", b.cfg.Paths.InputDir))

	b.progress.Start(len(inputs))
	for _, name := range inputs {
		fileCtx := services.WithFile(ctx, name)
		result := b.convertOne(fileCtx, name)
		summary.Results = append(summary.Results, result)
		if result.Err != nil {
			summary.Failed++
			logging.WithContext(fileCtx, b.logger).Error("conversion failed", logging.Error(result.Err))
		} else {
			summary.Converted++
		}
		b.progress.Advance(name)
	}
	b.progress.Finish()

	b.sweep(ctx, summary)

	logger.Info("batch complete",
		logging.Int("converted", summary.Converted),
		logging.Int("failed", summary.Failed),
		logging.Int("moved", summary.MovedRasters),
		logging.Int("backups_deleted", summary.DeletedBackups))
	return summary, nil
}

// discover lists input directory entries carrying the thermal capture
// suffix. A missing or unreadable input directory is fatal.
func (b *Batch) discover() ([]string, error) {
	entries, err := os.ReadDir(b.cfg.Paths.InputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "batch", "scan input", "cannot read input directory", err)
	}
	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), InputSuffix) {
			inputs = append(inputs, entry.Name())
		}
	}
	return inputs, nil
}
