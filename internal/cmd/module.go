package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ssfrr/embody/internal/codegen/generator"
	"github.com/ssfrr/embody/internal/codegen/output"
	"github.com/ssfrr/embody/internal/projectconfig"
)

type Module struct {
	Name            string `arg:"" help:"Module name, used for file names and in the templates"`
	SrcDir          string `name:"src-dir" help:"Directory for the module source and header (overrides src_dir)" type:"path"`
	TestDir         string `name:"test-dir" help:"Directory for the module test (overrides test_dir)" type:"path"`
	Author          string `help:"Author named in the copyright block (overrides author)"`
	CopyrightHolder string `name:"copyright-holder" help:"Copyright holder when it is not the author (overrides copyright_holder)"`
	Force           bool   `help:"Overwrite existing files without asking"`

	SysInclude []string `name:"sys-include" sep:"none" help:"System header to include, repeatable (overrides sys_includes)"`
	Include    []string `name:"include" sep:"none" help:"Project header to include, repeatable (overrides project_includes)"`
	Define     []string `name:"define" sep:"none" placeholder:"NAME[=VALUE]" help:"Macro to define, repeatable (overrides defines)"`
	Type       []string `name:"type" sep:"none" help:"Type declaration without the semicolon, repeatable (overrides types)"`
	StaticData []string `name:"static-data" sep:"none" help:"Static variable declaration, repeatable (overrides static_data)"`
	Export     []string `name:"export" sep:"none" help:"Exported function prototype, repeatable (overrides exported_funcs)"`
	Static     []string `name:"static" sep:"none" help:"Static function prototype, repeatable (overrides static_funcs)"`
}

func (m *Module) overrides() projectconfig.Mapping {
	o := projectconfig.Mapping{}
	for key, v := range map[string]string{
		projectconfig.KeySrcDir:          m.SrcDir,
		projectconfig.KeyTestDir:         m.TestDir,
		projectconfig.KeyAuthor:          m.Author,
		projectconfig.KeyCopyrightHolder: m.CopyrightHolder,
	} {
		if v != "" {
			o[key] = v
		}
	}
	for key, v := range map[string][]string{
		projectconfig.KeySysIncludes:     m.SysInclude,
		projectconfig.KeyProjectIncludes: m.Include,
		projectconfig.KeyTypes:           m.Type,
		projectconfig.KeyStaticData:      m.StaticData,
		projectconfig.KeyExportedFuncs:   m.Export,
		projectconfig.KeyStaticFuncs:     m.Static,
	} {
		if len(v) > 0 {
			o[key] = toList(v)
		}
	}
	if len(m.Define) > 0 {
		defines := map[string]any{}
		for _, d := range m.Define {
			name, value, _ := strings.Cut(d, "=")
			defines[name] = value
		}
		o[projectconfig.KeyDefines] = defines
	}
	return o
}

// Run is called by Kong when the module command is executed.
func (m *Module) Run(logger *slog.Logger, resolver *projectconfig.Resolver, confirm output.Confirmer) error {
	cfg, err := resolver.WithOverrides(m.overrides()).Config()
	if err != nil {
		return err
	}

	w := output.NewWriter(confirm, logger, output.WithForce(m.Force), output.WithDiff(true))
	if _, err := generator.New(w, logger).GenerateModule(m.Name, cfg); err != nil {
		return fmt.Errorf("generate module %s: %w", m.Name, err)
	}
	return nil
}
