package exiftool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// BackupSuffix is appended by exiftool to the pre-modification copy of the
// destination file. The batch sweep deletes these.
const BackupSuffix = "_original"

// Client copies tag metadata between files.
type Client interface {
	// CopyTags copies all tags from src onto dst in place. Tool output is
	// discarded; callers treat failures as best-effort.
	CopyTags(ctx context.Context, src, dst string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default exiftool binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the exiftool executable.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "exiftool"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// CopyTags runs exiftool -tagsfromfile src dst. The tool writes a
// "<dst>_original" backup beside the destination as a side effect.
func (c *CLI) CopyTags(ctx context.Context, src, dst string) error {
	if strings.TrimSpace(src) == "" {
		return errors.New("source path required")
	}
	if strings.TrimSpace(dst) == "" {
		return errors.New("destination path required")
	}
	cmd := commandContext(ctx, c.binary, "-tagsfromfile", src, dst) //nolint:gosec
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("exiftool -tagsfromfile: %w", err)
	}
	return nil
}

var _ Client = (*CLI)(nil)

// Nop is a Client that does nothing, used when metadata migration is
// disabled in configuration.
type Nop struct{}

func (Nop) CopyTags(context.Context, string, string) error { return nil }

var _ Client = Nop{}
