// Package generator produces fakes from C headers and scaffolds new
// modules, writing every file through an output.Writer.
package generator

import (
	"io"
	"log/slog"
	"time"

	"github.com/ssfrr/embody/internal/codegen/cparse"
	"github.com/ssfrr/embody/internal/codegen/output"
	"github.com/ssfrr/embody/internal/projectconfig"
)

type Generator struct {
	writer *output.Writer
	logger *slog.Logger

	parser cparse.Parser
	now    func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithParser replaces the parser that would otherwise be chosen from the
// configuration on every fake run.
func WithParser(p cparse.Parser) Option {
	return func(g *Generator) { g.parser = p }
}

// WithClock sets the clock used for copyright years.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func New(writer *output.Writer, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &Generator{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// File is one generated destination and what happened to it.
type File struct {
	Path   string
	Status output.Status
}

func (g *Generator) parserFor(cfg *projectconfig.Config) (cparse.Parser, error) {
	if g.parser != nil {
		return g.parser, nil
	}
	return cparse.New(cfg.Parser, cparse.Options{
		Preprocessor: cfg.Preprocessor,
		Preprocess:   cfg.Preprocess,
		Logger:       g.logger,
	})
}

func (g *Generator) write(path, content string) (File, error) {
	status, err := g.writer.Write(path, []byte(content))
	if err != nil {
		return File{}, err
	}
	return File{Path: path, Status: status}, nil
}
