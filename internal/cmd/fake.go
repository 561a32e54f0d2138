package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ssfrr/embody/internal/codegen/generator"
	"github.com/ssfrr/embody/internal/codegen/output"
	"github.com/ssfrr/embody/internal/projectconfig"
)

type Fake struct {
	Header    string   `arg:"" help:"C header to generate a fake for" type:"existingfile"`
	Outdir    string   `help:"Directory for the generated fake (overrides fake_dir)" type:"path"`
	Prefix    string   `help:"Prefix for the generated file names (overrides fake_prefix)"`
	CPPArg    []string `name:"cpp-arg" help:"Argument for the C preprocessor; implies preprocessing (overrides cpp_args)" sep:"none"`
	Parser    string   `help:"Parser backend: ${parsers} (overrides parser)"`
	SrcOut    string   `name:"src-out" help:"Explicit path for the fake source" type:"path"`
	HeaderOut string   `name:"header-out" help:"Explicit path for the fake header" type:"path"`
	Force     bool     `help:"Overwrite existing files without asking"`
	Diff      bool     `help:"Show a diff before asking to overwrite" default:"true" negatable:""`
}

func (f *Fake) overrides() projectconfig.Mapping {
	m := projectconfig.Mapping{}
	if f.Outdir != "" {
		m[projectconfig.KeyFakeDir] = f.Outdir
	}
	if f.Prefix != "" {
		m[projectconfig.KeyFakePrefix] = f.Prefix
	}
	if len(f.CPPArg) > 0 {
		m[projectconfig.KeyCPPArgs] = toList(f.CPPArg)
	}
	if f.Parser != "" {
		m[projectconfig.KeyParser] = f.Parser
	}
	return m
}

// toList converts flag values to the list shape YAML decoding produces.
func toList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Run is called by Kong when the fake command is executed.
func (f *Fake) Run(logger *slog.Logger, resolver *projectconfig.Resolver, confirm output.Confirmer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := resolver.WithOverrides(f.overrides()).Config()
	if err != nil {
		return err
	}

	w := output.NewWriter(confirm, logger, output.WithForce(f.Force), output.WithDiff(f.Diff))
	_, err = generator.New(w, logger).GenerateFake(ctx, generator.FakeRequest{
		Header:       f.Header,
		SourceOutput: f.SrcOut,
		HeaderOutput: f.HeaderOut,
	}, cfg)
	if err != nil {
		return fmt.Errorf("generate fake for %s: %w", f.Header, err)
	}
	return nil
}
