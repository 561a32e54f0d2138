// Package templates renders the embedded C source templates.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/ssfrr/embody/internal/codegen/signature"
)

// Template names.
const (
	FakeHeader   = "fake.h"
	FakeSource   = "fake.c"
	ModuleSource = "Template.c"
	ModuleHeader = "Template.h"
	ModuleTest   = "TestTemplate.cpp"
)

// ErrUnknownTemplate is returned by Render for names not in the set.
var ErrUnknownTemplate = errors.New("unknown template")

//go:embed files/*
var files embed.FS

var set = template.Must(template.New("embody").Funcs(Funcs()).ParseFS(files, "files/*"))

// FakeHeaderContext feeds fake.h.
type FakeHeaderContext struct {
	IncludeGuard string
	// Header is the base name of the header being faked.
	Header string
}

// FakeSourceContext feeds fake.c.
type FakeSourceContext struct {
	// FakeInclude is the base name of the generated fake header.
	FakeInclude string
	Funcs       []signature.FunctionSignature
}

// ModuleContext feeds Template.c, Template.h and TestTemplate.cpp.
type ModuleContext struct {
	ModuleName      string
	ProjectName     string
	Author          string
	CopyrightHolder string
	Year            int
	// Filename is the base name of the file being rendered.
	Filename string
	// Header is the base name of the module header the file includes.
	Header          string
	UseIncludeGuard bool

	// Section contents, rendered in order. Entries of Types, StaticData
	// and the function lists are written without their trailing semicolon.
	SysIncludes     []string
	ProjectIncludes []string
	Defines         []Define
	Types           []string
	StaticData      []string
	ExportedFuncs   []string
	StaticFuncs     []string
}

// Define is one object-like macro. An empty Value renders a bare #define.
type Define struct {
	Name  string
	Value string
}

// Funcs returns the helper functions available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"section_header": SectionHeader,
		"include_guard":  IncludeGuard,
	}
}

// SectionHeader boxes title in a C comment:
//
//	/************
//	 * Includes *
//	 ************/
func SectionHeader(title string) string {
	bar := strings.Repeat("*", len(title))
	return strings.Join([]string{
		"/**" + bar + "**",
		" * " + title + " *",
		" **" + bar + "**/",
	}, "\n")
}

// IncludeGuard formats a file name as an include guard macro, e.g.
// "Filled.h" becomes "__FILLED_H".
func IncludeGuard(filename string) string {
	return "__" + strings.ToUpper(strings.ReplaceAll(filename, ".", "_"))
}

// Render executes the named template with data.
func Render(name string, data any) (string, error) {
	t := set.Lookup(name)
	if t == nil || !renderable(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

// Names lists the renderable templates.
func Names() []string {
	return []string{FakeHeader, FakeSource, ModuleSource, ModuleHeader, ModuleTest}
}

func renderable(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}
