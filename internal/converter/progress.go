package converter

import (
	"os"

	"log/slog"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"kelvin/internal/logging"
)

// Progress receives per-file advancement events during a batch run. Purely
// observational; nothing depends on it for correctness.
type Progress interface {
	Start(total int)
	Advance(name string)
	Finish()
}

// NewProgress returns a terminal progress bar when stderr is interactive,
// falling back to logged progress lines otherwise.
func NewProgress(logger *slog.Logger) Progress {
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return &barProgress{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &logProgress{logger: logger}
}

type barProgress struct {
	bar *progressbar.ProgressBar
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) Advance(string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

type logProgress struct {
	logger *slog.Logger
	total  int
	done   int
}

func (p *logProgress) Start(total int) {
	p.total = total
	p.done = 0
}

func (p *logProgress) Advance(name string) {
	p.done++
	percent := 0
	if p.total > 0 {
		percent = p.done * 100 / p.total
	}
	p.logger.Info("progress",
		logging.String(logging.FieldFile, name),
		logging.Int("done", p.done),
		logging.Int("total", p.total),
		logging.Int("percent", percent))
}

func (p *logProgress) Finish() {}

type nopProgress struct{}

func (nopProgress) Start(int)      {}
func (nopProgress) Advance(string) {}
func (nopProgress) Finish()        {}
