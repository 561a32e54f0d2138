package generator

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ssfrr/embody/internal/apperror"
	"github.com/ssfrr/embody/internal/codegen/templates"
	"github.com/ssfrr/embody/internal/projectconfig"
)

// ModuleResult reports the scaffolded files in write order.
type ModuleResult struct {
	Source File
	Header File
	Test   File
}

// ValidateModuleName rejects empty names and names containing whitespace.
func ValidateModuleName(name string) error {
	if name == "" || strings.IndexFunc(name, unicode.IsSpace) != -1 {
		return &apperror.InvalidModuleNameError{Name: name}
	}
	return nil
}

// ModulePaths returns the source, header and test paths for name. Unset
// directories fall back to the directory the configuration was resolved
// for, or the process working directory when that is unknown.
func ModulePaths(name string, cfg *projectconfig.Config) (source, header, test string) {
	fallback := cfg.WorkDir
	if fallback == "" {
		fallback = "."
	}
	src, tst := cfg.SrcDir, cfg.TestDir
	if src == "" {
		src = fallback
	}
	if tst == "" {
		tst = fallback
	}
	return filepath.Join(src, name+".c"),
		filepath.Join(src, name+".h"),
		filepath.Join(tst, "Test"+name+".cpp")
}

// GenerateModule scaffolds name.c, name.h and Testname.cpp from the module
// templates.
func (g *Generator) GenerateModule(name string, cfg *projectconfig.Config) (*ModuleResult, error) {
	if err := ValidateModuleName(name); err != nil {
		return nil, err
	}
	sourcePath, headerPath, testPath := ModulePaths(name, cfg)

	base := templates.ModuleContext{
		ModuleName:      name,
		ProjectName:     cfg.ProjectName,
		Author:          cfg.Author,
		CopyrightHolder: cfg.CopyrightHolder,
		Year:            g.now().Year(),
		Header:          name + ".h",
		SysIncludes:     cfg.SysIncludes,
		ProjectIncludes: cfg.ProjectIncludes,
		Types:           cfg.Types,
		StaticData:      cfg.StaticData,
		ExportedFuncs:   cfg.ExportedFuncs,
		StaticFuncs:     cfg.StaticFuncs,
	}
	for _, d := range cfg.Defines {
		base.Defines = append(base.Defines, templates.Define{Name: d.Name, Value: d.Value})
	}

	g.logger.Info("Generating module", "module", name)
	var res ModuleResult
	for _, f := range []struct {
		tmpl  string
		path  string
		guard bool
		self  bool
		dst   *File
	}{
		{templates.ModuleSource, sourcePath, false, true, &res.Source},
		{templates.ModuleHeader, headerPath, true, false, &res.Header},
		{templates.ModuleTest, testPath, false, false, &res.Test},
	} {
		ctx := base
		ctx.Filename = filepath.Base(f.path)
		ctx.UseIncludeGuard = f.guard
		if f.self {
			// The source includes its own header ahead of the configured ones.
			ctx.ProjectIncludes = append([]string{base.Header}, base.ProjectIncludes...)
		}
		text, err := templates.Render(f.tmpl, ctx)
		if err != nil {
			return nil, err
		}
		if *f.dst, err = g.write(f.path, text); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.tmpl, err)
		}
	}
	g.logger.Info("Module generation complete", "module", name, "source", sourcePath, "test", testPath)
	return &res, nil
}
