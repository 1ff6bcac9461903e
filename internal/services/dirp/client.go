package dirp

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/jpeg"
)

var commandContext = exec.CommandContext

// Frame is a decoded radiometric frame: per-pixel Celsius values in
// row-major order.
type Frame struct {
	Width   int
	Height  int
	Celsius []float32
}

// Client defines radiometric decoding behaviour.
type Client interface {
	// Init probes the decoder once before a batch. Safe to call repeatedly.
	Init(ctx context.Context) error
	// Decode converts the radiometric JPEG at path into a temperature frame
	// using the given processing index.
	Decode(ctx context.Context, path string, processingIndex int) (*Frame, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default decoder binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithLibraryPath sets the directory holding the vendor shared library the
// decoder loads at startup.
func WithLibraryPath(path string) Option {
	return func(c *CLI) {
		c.libraryPath = path
	}
}

// CLI wraps the external radiometric decoder executable.
type CLI struct {
	binary      string
	libraryPath string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "dji_irp"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Init verifies the decoder binary is invocable and its shared library
// directory exists.
func (c *CLI) Init(ctx context.Context) error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("locate decoder binary %q: %w", c.binary, err)
	}
	if c.libraryPath != "" {
		info, err := os.Stat(c.libraryPath)
		if err != nil {
			return fmt.Errorf("decoder library path %q: %w", c.libraryPath, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("decoder library path %q is not a directory", c.libraryPath)
		}
	}
	return nil
}

// Decode runs the decoder on the given radiometric JPEG and returns the
// temperature frame. Frame dimensions come from the JPEG itself; the raw
// payload the decoder emits must match them exactly.
func (c *CLI) Decode(ctx context.Context, path string, processingIndex int) (*Frame, error) {
	if path == "" {
		return nil, errors.New("input path required")
	}
	if processingIndex < 0 {
		return nil, fmt.Errorf("processing index must not be negative, got %d", processingIndex)
	}

	width, height, err := jpegDimensions(path)
	if err != nil {
		return nil, fmt.Errorf("read image dimensions: %w", err)
	}

	rawFile, err := os.CreateTemp(filepath.Dir(path), ".dirp-*.raw")
	if err != nil {
		return nil, fmt.Errorf("create raw output: %w", err)
	}
	rawPath := rawFile.Name()
	rawFile.Close()
	defer os.Remove(rawPath)

	args := []string{
		"-s", path,
		"-a", "measure",
		"--measurefmt", "float32",
		"--index", strconv.Itoa(processingIndex),
		"-o", rawPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if c.libraryPath != "" {
		cmd.Env = append(os.Environ(), "LD_LIBRARY_PATH="+c.libraryPath)
	}
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(output.String())
		if detail != "" {
			return nil, fmt.Errorf("decoder failed: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("decoder failed: %w", err)
	}

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, fmt.Errorf("read decoder output: %w", err)
	}
	want := width * height * 4
	if len(raw) != want {
		return nil, fmt.Errorf("decoder emitted %d bytes, want %d for %dx%d float32", len(raw), want, width, height)
	}

	frame := &Frame{
		Width:   width,
		Height:  height,
		Celsius: make([]float32, width*height),
	}
	for i := range frame.Celsius {
		frame.Celsius[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
	}
	return frame, nil
}

func jpegDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

var _ Client = (*CLI)(nil)
