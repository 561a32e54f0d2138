package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ssfrr/embody/internal/codegen/output"
	"github.com/ssfrr/embody/internal/codegen/signature"
	"github.com/ssfrr/embody/internal/codegen/templates"
	"github.com/ssfrr/embody/internal/projectconfig"
)

// FakeRequest names the header to fake and optional explicit destinations.
type FakeRequest struct {
	Header string
	// SourceOutput and HeaderOutput win over the prefix and directory rules.
	SourceOutput string
	HeaderOutput string
}

// FakeResult reports the generated pair.
type FakeResult struct {
	Source File
	Header File
	Funcs  []signature.FunctionSignature
}

// FakePaths returns where the fake source and header for req go under cfg.
func FakePaths(req FakeRequest, cfg *projectconfig.Config) (source, header string) {
	policy := output.Policy{Dir: cfg.FakeDir, Prefix: cfg.FakePrefix}

	policy.Output, policy.Ext = req.SourceOutput, ".c"
	source = policy.Resolve(req.Header)
	policy.Output, policy.Ext = req.HeaderOutput, ".h"
	header = policy.Resolve(req.Header)
	return source, header
}

// FakeIncludeGuard turns a fake header path into its include guard macro,
// e.g. "test/fakes/Fakeuart.h" becomes "FAKEUART_H".
func FakeIncludeGuard(path string) string {
	return strings.ToUpper(strings.ReplaceAll(filepath.Base(path), ".", "_"))
}

// GenerateFake parses req.Header and writes a fake header that includes it
// plus a source file with an empty body for every declared function. The
// header is parsed before anything is written.
func (g *Generator) GenerateFake(ctx context.Context, req FakeRequest, cfg *projectconfig.Config) (*FakeResult, error) {
	p, err := g.parserFor(cfg)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Generating fake", "header", req.Header)
	tu, err := p.Parse(ctx, req.Header, cfg.CPPArgs)
	if err != nil {
		return nil, err
	}
	funcs, err := signature.Extract(tu)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Extracted functions", "header", req.Header, "count", len(funcs))

	sourcePath, headerPath := FakePaths(req, cfg)

	headerText, err := templates.Render(templates.FakeHeader, templates.FakeHeaderContext{
		IncludeGuard: FakeIncludeGuard(headerPath),
		Header:       filepath.Base(req.Header),
	})
	if err != nil {
		return nil, err
	}
	sourceText, err := templates.Render(templates.FakeSource, templates.FakeSourceContext{
		FakeInclude: filepath.Base(headerPath),
		Funcs:       funcs,
	})
	if err != nil {
		return nil, err
	}

	res := &FakeResult{Funcs: funcs}
	if res.Header, err = g.write(headerPath, headerText); err != nil {
		return nil, fmt.Errorf("write fake header: %w", err)
	}
	if res.Source, err = g.write(sourcePath, sourceText); err != nil {
		return nil, fmt.Errorf("write fake source: %w", err)
	}
	g.logger.Info("Fake generation complete", "source", sourcePath, "header", headerPath, "functions", len(funcs))
	return res, nil
}
