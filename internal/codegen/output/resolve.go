// Package output decides where generated files go and writes them,
// asking before it creates directories or replaces existing files.
package output

import (
	"path/filepath"
	"strings"
)

// Policy holds the inputs used to derive an output path from an input path.
type Policy struct {
	// Output is used verbatim when set.
	Output string
	// Dir replaces the input's directory when set.
	Dir string
	// Prefix is prepended to the input's base name.
	Prefix string
	// Ext replaces the input's final extension, e.g. ".c".
	Ext string
}

// Resolve derives the output path for input under p.
func (p Policy) Resolve(input string) string {
	return Resolve(input, p.Output, p.Dir, p.Prefix, p.Ext)
}

// Resolve returns explicitOutput when it is set. Otherwise the result is
// prefix + basename-without-extension + ext, placed in outputDir or, if that
// is empty, in the input's own directory.
func Resolve(input, explicitOutput, outputDir, prefix, ext string) string {
	if explicitOutput != "" {
		return explicitOutput
	}

	dir, base := filepath.Split(input)
	if i := strings.LastIndex(base, "."); i != -1 {
		base = base[:i]
	}
	if outputDir != "" {
		dir = outputDir
	}

	name := prefix + base + ext
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
