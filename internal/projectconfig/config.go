// Package projectconfig resolves embody's layered configuration.
//
// Values come from, in increasing precedence: the shipped defaults, the
// user's home directory, every directory from the project root down to the
// working directory, and explicit overrides. Scopes merge key by key without
// recursing into nested mappings.
package projectconfig

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ssfrr/embody/internal/apperror"
)

// Well-known keys.
const (
	KeyFakePrefix      = "fake_prefix"
	KeyFakeDir         = "fake_dir"
	KeyCPPArgs         = "cpp_args"
	KeyPreprocessor    = "cpp"
	KeyPreprocess      = "preprocess"
	KeyParser          = "parser"
	KeySrcDir          = "src_dir"
	KeyTestDir         = "test_dir"
	KeyProjectRoot     = "project_root"
	KeyProjectName     = "project_name"
	KeyAuthor          = "author"
	KeyCopyrightHolder = "copyright_holder"

	KeySysIncludes     = "sys_includes"
	KeyProjectIncludes = "project_includes"
	KeyDefines         = "defines"
	KeyTypes           = "types"
	KeyStaticData      = "static_data"
	KeyExportedFuncs   = "exported_funcs"
	KeyStaticFuncs     = "static_funcs"
)

// aliases map alternative spellings onto their canonical key.
var aliases = map[string]string{
	"fake_outdir":   KeyFakeDir,
	"fake_cpp_args": KeyCPPArgs,
}

// pathKeys hold paths that are resolved against the directory of the scope
// that set them.
var pathKeys = []string{KeyFakeDir, KeySrcDir, KeyTestDir, KeyProjectRoot}

// Mapping is a flat set of configuration values: strings, lists, scalars
// or nested mappings.
type Mapping map[string]any

// Merge layers mappings from lowest to highest precedence. Later mappings
// replace whole values of earlier ones.
func Merge(layers ...Mapping) Mapping {
	out := Mapping{}
	for _, m := range layers {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Config is the typed view of a resolved Mapping. Empty strings mean the
// value is unknown; see the field comments for how callers default them.
type Config struct {
	FakePrefix string
	// FakeDir is empty when fakes go next to the input header.
	FakeDir string
	CPPArgs []string
	// Preprocessor is the command run when CPPArgs is set or Preprocess is true.
	Preprocessor string
	Preprocess   bool
	// Parser names the cparse backend.
	Parser string

	SrcDir  string
	TestDir string

	// ProjectRoot is empty when no version control marker was found.
	ProjectRoot     string
	ProjectName     string
	Author          string
	CopyrightHolder string

	// Module section contents. Defines are sorted by name.
	SysIncludes     []string
	ProjectIncludes []string
	Defines         []Define
	Types           []string
	StaticData      []string
	ExportedFuncs   []string
	StaticFuncs     []string

	// WorkDir is the absolute directory the configuration was resolved for.
	WorkDir string

	// Raw is the merged mapping including filled defaults.
	Raw Mapping
	// Sources lists the files that contributed, lowest precedence first.
	Sources []string
}

// Define is one macro from the defines mapping.
type Define struct {
	Name  string
	Value string
}

func canonicalize(m Mapping, dir, home string) Mapping {
	out := Mapping{}
	for k, v := range m {
		if canon, ok := aliases[k]; ok {
			if _, set := m[canon]; set {
				continue
			}
			k = canon
		}
		out[k] = v
	}
	if dir == "" {
		return out
	}
	for _, k := range pathKeys {
		s, ok := out[k].(string)
		if !ok || s == "" {
			continue
		}
		out[k] = resolvePath(s, dir, home)
	}
	return out
}

func resolvePath(p, dir, home string) string {
	if home != "" && (p == "~" || strings.HasPrefix(p, "~/")) {
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

// decode builds the typed Config. origin names the file each key came from
// so type errors point at the right place.
func decode(m Mapping, origin map[string]string) (*Config, error) {
	cfg := &Config{Raw: m}
	str := func(key string, dst *string) error {
		v, ok := m[key]
		if !ok || v == nil {
			return nil
		}
		switch t := v.(type) {
		case string:
			*dst = t
		case int, int64, float64, bool:
			*dst = fmt.Sprint(t)
		default:
			return typeError(key, "a string", v, origin)
		}
		return nil
	}

	for key, dst := range map[string]*string{
		KeyFakePrefix:      &cfg.FakePrefix,
		KeyFakeDir:         &cfg.FakeDir,
		KeyPreprocessor:    &cfg.Preprocessor,
		KeyParser:          &cfg.Parser,
		KeySrcDir:          &cfg.SrcDir,
		KeyTestDir:         &cfg.TestDir,
		KeyProjectRoot:     &cfg.ProjectRoot,
		KeyProjectName:     &cfg.ProjectName,
		KeyAuthor:          &cfg.Author,
		KeyCopyrightHolder: &cfg.CopyrightHolder,
	} {
		if err := str(key, dst); err != nil {
			return nil, err
		}
	}

	switch v := m[KeyCPPArgs].(type) {
	case nil:
	case string:
		cfg.CPPArgs = strings.Fields(v)
	case []any:
		for _, a := range v {
			s, ok := a.(string)
			if !ok {
				return nil, typeError(KeyCPPArgs, "a list of strings", v, origin)
			}
			cfg.CPPArgs = append(cfg.CPPArgs, s)
		}
	default:
		return nil, typeError(KeyCPPArgs, "a string or list", v, origin)
	}

	for key, dst := range map[string]*[]string{
		KeySysIncludes:     &cfg.SysIncludes,
		KeyProjectIncludes: &cfg.ProjectIncludes,
		KeyTypes:           &cfg.Types,
		KeyStaticData:      &cfg.StaticData,
		KeyExportedFuncs:   &cfg.ExportedFuncs,
		KeyStaticFuncs:     &cfg.StaticFuncs,
	} {
		list, err := stringList(key, m[key], origin)
		if err != nil {
			return nil, err
		}
		*dst = list
	}

	switch v := m[KeyDefines].(type) {
	case nil:
	case map[string]any:
		for name, val := range v {
			d := Define{Name: name}
			switch t := val.(type) {
			case nil:
			case string, int, int64, float64, bool:
				d.Value = fmt.Sprint(t)
			default:
				return nil, typeError(KeyDefines, "a mapping of scalars", v, origin)
			}
			cfg.Defines = append(cfg.Defines, d)
		}
		sort.Slice(cfg.Defines, func(i, j int) bool { return cfg.Defines[i].Name < cfg.Defines[j].Name })
	default:
		return nil, typeError(KeyDefines, "a mapping", v, origin)
	}

	switch v := m[KeyPreprocess].(type) {
	case nil:
	case bool:
		cfg.Preprocess = v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, typeError(KeyPreprocess, "a boolean", v, origin)
		}
		cfg.Preprocess = b
	default:
		return nil, typeError(KeyPreprocess, "a boolean", v, origin)
	}

	return cfg, nil
}

// stringList accepts a single string as a one-element list. Entries may
// contain spaces, so strings are not split.
func stringList(key string, v any, origin map[string]string) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, typeError(key, "a list of strings", v, origin)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, typeError(key, "a string or list", v, origin)
	}
}

func typeError(key, want string, got any, origin map[string]string) error {
	return &apperror.ConfigParseError{
		Path: origin[key],
		Err:  fmt.Errorf("key %q: expected %s, got %T", key, want, got),
	}
}
