// Package cparse turns C headers into the declaration tree of package ast.
//
// Two backends are available: a tree-sitter based parser, which reports the
// return type as a TYPE_REF child of each function declaration, and a
// structural scanner, which reports it on the declaration's typed field.
// Both can be fed preprocessed input.
package cparse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/ssfrr/embody/internal/codegen/ast"
)

// Parser produces a translation unit from a header file.
type Parser interface {
	Parse(ctx context.Context, path string, args []string) (*ast.TranslationUnit, error)
}

// Options configure a parser created by New.
type Options struct {
	// Preprocessor is the command used to preprocess headers. Defaults to "cpp".
	Preprocessor string
	// Preprocess forces preprocessing even without arguments.
	Preprocess bool

	Logger *slog.Logger
}

type backendFunc func(ctx context.Context, path string, src []byte) (*ast.TranslationUnit, error)

var backends = map[string]backendFunc{
	"treesitter": parseTreeSitter,
	"scan":       parseScan,
}

// DefaultBackend is used when no backend name is given.
const DefaultBackend = "treesitter"

// Backends lists the available backend names.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for k := range backends {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type parser struct {
	name    string
	backend backendFunc
	opts    Options
}

// New returns the parser backend registered under name.
func New(name string, opts Options) (Parser, error) {
	if name == "" {
		name = DefaultBackend
	}
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unsupported parser '%s' (supported: %v)", name, Backends())
	}
	if opts.Preprocessor == "" {
		opts.Preprocessor = "cpp"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &parser{name: name, backend: b, opts: opts}, nil
}

// Parse reads path, preprocesses it when args are given (or preprocessing
// is forced) and hands the result to the backend.
func (p *parser) Parse(ctx context.Context, path string, args []string) (*ast.TranslationUnit, error) {
	var src []byte
	var err error
	if len(args) > 0 || p.opts.Preprocess {
		p.opts.Logger.Debug("Preprocessing header", "file", path, "cpp", p.opts.Preprocessor, "args", args)
		src, err = Preprocess(ctx, p.opts.Preprocessor, path, args)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}

	tu, err := p.backend(ctx, path, stripCPlusPlus(src))
	if err != nil {
		return nil, fmt.Errorf("parse %s with %s: %w", path, p.name, err)
	}
	p.opts.Logger.Debug("Parsed header", "file", path, "parser", p.name,
		"nodes", len(tu.Children), "functions", len(tu.Functions()))
	return tu, nil
}
