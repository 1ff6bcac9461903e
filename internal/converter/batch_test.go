package converter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"kelvin/internal/config"
	"kelvin/internal/converter"
	"kelvin/internal/geotiff"
	"kelvin/internal/logging"
	"kelvin/internal/services"
	"kelvin/internal/services/dirp"
	"kelvin/internal/testsupport"
)

type fakeDecoder struct {
	initErr     error
	initCalls   int
	decodeCalls int
	frames      map[string]*dirp.Frame
	failures    map[string]error
}

func (f *fakeDecoder) Init(context.Context) error {
	f.initCalls++
	return f.initErr
}

func (f *fakeDecoder) Decode(_ context.Context, path string, _ int) (*dirp.Frame, error) {
	f.decodeCalls++
	name := filepath.Base(path)
	if err, ok := f.failures[name]; ok {
		return nil, err
	}
	frame, ok := f.frames[name]
	if !ok {
		return nil, errors.New("no frame registered for " + name)
	}
	return frame, nil
}

type fakeExiftool struct {
	calls         [][2]string
	err           error
	createBackups bool
}

func (f *fakeExiftool) CopyTags(_ context.Context, src, dst string) error {
	f.calls = append(f.calls, [2]string{src, dst})
	if f.err != nil {
		return f.err
	}
	if f.createBackups {
		if err := os.WriteFile(dst+"_original", []byte("backup"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func squareFrame(side int, base float32) *dirp.Frame {
	frame := &dirp.Frame{Width: side, Height: side, Celsius: make([]float32, side*side)}
	for i := range frame.Celsius {
		frame.Celsius[i] = base + float32(i)
	}
	return frame
}

func newTestBatch(t *testing.T, cfg *config.Config, decoder *fakeDecoder, tool *fakeExiftool) *converter.Batch {
	t.Helper()
	return converter.NewWithDependencies(cfg, logging.NewNop(), decoder, tool, nil)
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestRunEmptyInputWarnsWithoutError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInputFile(t, cfg, "notes.txt", "not a capture")
	testsupport.WriteInputFile(t, cfg, "lowercase_t.jpg", "wrong case suffix")

	decoder := &fakeDecoder{}
	batch := newTestBatch(t, cfg, decoder, &fakeExiftool{})
	summary, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Converted != 0 || summary.Failed != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	if decoder.initCalls != 0 {
		t.Fatalf("decoder should not be initialized for an empty batch, got %d calls", decoder.initCalls)
	}
	if _, err := os.Stat(cfg.Paths.OutputDir); err != nil {
		t.Fatalf("output directory should exist even for an empty batch: %v", err)
	}
	if names := listNames(t, cfg.Paths.OutputDir); len(names) != 0 {
		t.Fatalf("output directory should be empty, got %v", names)
	}
}

func TestNewBuildsRunnableBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithProcessingIndex(1),
		testsupport.WithExifToolDisabled(),
	)

	batch := converter.New(cfg, logging.NewNop())
	summary, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run on empty input returned error: %v", err)
	}
	if len(summary.Results) != 0 {
		t.Fatalf("expected no results for empty input, got %+v", summary.Results)
	}
}

func TestRunMissingInputDirIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.RemoveAll(cfg.Paths.InputDir); err != nil {
		t.Fatalf("remove input dir: %v", err)
	}

	batch := newTestBatch(t, cfg, &fakeDecoder{}, &fakeExiftool{})
	_, err := batch.Run(context.Background())
	if err == nil {
		t.Fatal("expected discovery error for missing input directory")
	}
	if !services.Fatal(err) {
		t.Fatalf("discovery error should be fatal, got %v", err)
	}
}

func TestRunConvertsIsolatesAndSweeps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	for _, name := range []string{"DJI_0001_T.JPG", "DJI_0002_T.JPG", "DJI_0003_T.JPG"} {
		testsupport.WriteInputFile(t, cfg, name, "capture")
	}

	decoder := &fakeDecoder{
		frames: map[string]*dirp.Frame{
			"DJI_0001_T.JPG": squareFrame(2, 20),
			"DJI_0003_T.JPG": squareFrame(3, -5),
		},
		failures: map[string]error{
			"DJI_0002_T.JPG": errors.New("corrupt radiometric payload"),
		},
	}
	tool := &fakeExiftool{createBackups: true}
	batch := newTestBatch(t, cfg, decoder, tool)

	summary, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Converted != 2 || summary.Failed != 1 {
		t.Fatalf("expected 2 converted and 1 failed, got %+v", summary)
	}
	if decoder.initCalls != 1 {
		t.Fatalf("decoder should be initialized exactly once, got %d", decoder.initCalls)
	}
	if decoder.decodeCalls != 3 {
		t.Fatalf("expected 3 decode attempts, got %d", decoder.decodeCalls)
	}

	var failed *converter.Result
	for i := range summary.Results {
		if summary.Results[i].File == "DJI_0002_T.JPG" {
			failed = &summary.Results[i]
		}
	}
	if failed == nil || failed.Err == nil {
		t.Fatalf("expected recorded failure for corrupt file, got %+v", summary.Results)
	}
	if !strings.Contains(failed.Err.Error(), "corrupt radiometric payload") {
		t.Fatalf("expected decoder detail in error, got %v", failed.Err)
	}

	outNames := listNames(t, cfg.Paths.OutputDir)
	if len(outNames) != 2 {
		t.Fatalf("expected exactly 2 output rasters, got %v", outNames)
	}
	for _, name := range []string{"DJI_0001_T.tif", "DJI_0003_T.tif"} {
		path := filepath.Join(cfg.Paths.OutputDir, name)
		img, err := geotiff.ReadFile(path)
		if err != nil {
			t.Fatalf("output raster %s unreadable: %v", name, err)
		}
		if img.Width != img.Height {
			t.Fatalf("raster %s has unexpected shape %dx%d", name, img.Width, img.Height)
		}
	}

	for _, name := range listNames(t, cfg.Paths.InputDir) {
		if strings.HasSuffix(name, converter.RasterExt) {
			t.Fatalf("input dir retains raster %s after sweep", name)
		}
		if strings.HasSuffix(name, "_original") {
			t.Fatalf("input dir retains backup %s after sweep", name)
		}
	}
	if summary.DeletedBackups != 2 {
		t.Fatalf("expected 2 deleted backups, got %d", summary.DeletedBackups)
	}
	if summary.MovedRasters != 2 {
		t.Fatalf("expected 2 moved rasters, got %d", summary.MovedRasters)
	}
}

func TestRunSweepPicksUpStaleRasters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInputFile(t, cfg, "DJI_0010_T.JPG", "capture")
	testsupport.WriteInputFile(t, cfg, "stale.tif", "left behind by a prior run")
	testsupport.WriteInputFile(t, cfg, "stale.tif_original", "old backup")

	decoder := &fakeDecoder{frames: map[string]*dirp.Frame{"DJI_0010_T.JPG": squareFrame(2, 0)}}
	batch := newTestBatch(t, cfg, decoder, &fakeExiftool{})

	summary, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.MovedRasters != 2 {
		t.Fatalf("expected the stale raster to be swept too, got %d moved", summary.MovedRasters)
	}
	if summary.DeletedBackups != 1 {
		t.Fatalf("expected the stale backup to be deleted, got %d", summary.DeletedBackups)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "stale.tif")); err != nil {
		t.Fatalf("stale raster should land in output dir: %v", err)
	}
}

func TestRunMetadataFailureIsBestEffort(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInputFile(t, cfg, "DJI_0020_T.JPG", "capture")

	decoder := &fakeDecoder{frames: map[string]*dirp.Frame{"DJI_0020_T.JPG": squareFrame(2, 15)}}
	tool := &fakeExiftool{err: errors.New("exiftool exploded")}
	batch := newTestBatch(t, cfg, decoder, tool)

	summary, err := batch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Converted != 1 || summary.Failed != 0 {
		t.Fatalf("metadata failure must not fail the conversion, got %+v", summary)
	}
	if summary.Results[0].MetadataCopied {
		t.Fatal("expected MetadataCopied=false after exiftool failure")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "DJI_0020_T.tif")); err != nil {
		t.Fatalf("raster should still be relocated: %v", err)
	}
}

func TestRunDecoderInitFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInputFile(t, cfg, "DJI_0030_T.JPG", "capture")

	decoder := &fakeDecoder{initErr: errors.New("libdirp missing")}
	batch := newTestBatch(t, cfg, decoder, &fakeExiftool{})

	if _, err := batch.Run(context.Background()); err == nil {
		t.Fatal("expected decoder init failure to abort the run")
	} else if !services.Fatal(err) {
		t.Fatalf("init failure should be fatal, got %v", err)
	}
}

func TestRunRejectsConcurrentBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteInputFile(t, cfg, "DJI_0040_T.JPG", "capture")

	batch := newTestBatch(t, cfg, &fakeDecoder{}, &fakeExiftool{})

	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("create log dir: %v", err)
	}
	held := flock.New(batch.LockPath())
	locked, err := held.TryLock()
	if err != nil {
		t.Fatalf("acquire test lock: %v", err)
	}
	if !locked {
		t.Fatal("test lock unexpectedly contended")
	}
	defer held.Unlock() //nolint:errcheck

	_, err = batch.Run(context.Background())
	if err == nil {
		t.Fatal("expected run to fail while lock is held")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for held lock, got %v", err)
	}
}
