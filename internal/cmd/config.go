package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/ssfrr/embody/internal/configpaths"
	"github.com/ssfrr/embody/internal/projectconfig"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Show ConfigShow `cmd:"" help:"Print the effective project configuration"`
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigShow prints the merged configuration for the working directory.
type ConfigShow struct {
	Format  string `help:"Output format" enum:"yaml,toml,json" default:"yaml"`
	Sources bool   `help:"List the files consulted, lowest precedence first"`

	out io.Writer
}

func (c *ConfigShow) Run(resolver *projectconfig.Resolver) error {
	cfg, err := resolver.Config()
	if err != nil {
		return err
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	if c.Sources {
		scopes, err := resolver.Scopes()
		if err != nil {
			return err
		}
		for _, s := range scopes {
			state := "missing"
			if s.Exists {
				state = "loaded"
			}
			if _, err := fmt.Fprintf(out, "%-8s%s\n", state, s.Path); err != nil {
				return err
			}
		}
		return nil
	}

	data, err := marshal(c.Format, map[string]any(cfg.Raw))
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// ConfigInit scaffolds either a project config file or a settings file for
// the CLI itself.
type ConfigInit struct {
	CLI    bool   `name:"cli" help:"Write CLI settings instead of a project file"`
	Format string `help:"Output format for CLI settings" enum:"json,yaml,toml" default:"yaml"`
	Output string `help:"Destination file path (defaults to the project root, or the user config directory with --cli)" type:"path"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// Run writes the template. Project templates carry the currently resolved
// values so the file documents what is in effect.
func (c *ConfigInit) Run(logger *slog.Logger, resolver *projectconfig.Resolver) error {
	var dest, format string
	var root map[string]any
	if c.CLI {
		format = normalizeFormat(c.Format)
		if format == "" {
			return fmt.Errorf("unsupported format: %s", c.Format)
		}
		root = cliSettingsTemplate()
		dest = c.Output
		if dest == "" {
			p, err := configpaths.DefaultConfigPath(format)
			if err != nil {
				return fmt.Errorf("resolve settings path: %w", err)
			}
			dest = p
		}
	} else {
		cfg, err := resolver.Config()
		if err != nil {
			return err
		}
		format = "yaml"
		root = projectTemplate(cfg)
		dest = c.Output
		if dest == "" {
			dir := cfg.ProjectRoot
			if dir == "" {
				dir = "."
			}
			dest = filepath.Join(dir, projectconfig.FlatFile)
		}
	}

	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	data, err := marshal(format, root)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	logger.Info("Wrote configuration template", "file", dest)
	return nil
}

func projectTemplate(cfg *projectconfig.Config) map[string]any {
	rel := func(p, fallback string) string {
		if p == "" {
			return fallback
		}
		if cfg.ProjectRoot != "" {
			if r, err := filepath.Rel(cfg.ProjectRoot, p); err == nil && !strings.HasPrefix(r, "..") {
				return filepath.ToSlash(r)
			}
		}
		return p
	}
	args := cfg.CPPArgs
	if args == nil {
		args = []string{}
	}
	return map[string]any{
		projectconfig.KeyFakePrefix:      cfg.FakePrefix,
		projectconfig.KeyFakeDir:         rel(cfg.FakeDir, ""),
		projectconfig.KeyCPPArgs:         args,
		projectconfig.KeyParser:          cfg.Parser,
		projectconfig.KeySrcDir:          rel(cfg.SrcDir, "src"),
		projectconfig.KeyTestDir:         rel(cfg.TestDir, "test"),
		projectconfig.KeyAuthor:          cfg.Author,
		projectconfig.KeyCopyrightHolder: cfg.CopyrightHolder,
	}
}

// cliSettingsTemplate mirrors the flags of the generating commands so the
// file can be fed back through kong's configuration loaders.
func cliSettingsTemplate() map[string]any {
	root := map[string]any{
		"log": map[string]any{"level": "info", "file": ""},
	}
	for _, t := range []reflect.Type{reflect.TypeOf(Fake{}), reflect.TypeOf(Module{})} {
		for k, v := range buildMapFromStruct(t) {
			root[k] = v
		}
	}
	return root
}

func marshal(format string, v map[string]any) ([]byte, error) {
	switch normalizeFormat(format) {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(v)
	case "toml":
		return toml.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// snakeName matches the key kong's loaders look up for a field: the flag
// name with dashes as underscores.
func snakeName(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return strings.ReplaceAll(name, "-", "_")
	}
	var b strings.Builder
	r := []rune(f.Name)
	for i, c := range r {
		if unicode.IsUpper(c) {
			if i > 0 && (unicode.IsLower(r[i-1]) || (i+1 < len(r) && unicode.IsLower(r[i+1]))) {
				b.WriteByte('_')
			}
			c = unicode.ToLower(c)
		}
		b.WriteRune(c)
	}
	return b.String()
}

func buildMapFromStruct(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("arg"); ok {
			continue
		}
		if val := defaultValueForField(f.Type, f.Tag.Get("default")); val != nil {
			out[snakeName(f)] = val
		}
	}
	return out
}

func defaultValueForField(t reflect.Type, def string) any {
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, err := strconv.ParseBool(def)
		if err != nil {
			return false
		}
		return b
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return []string{}
		}
		return nil
	default:
		return nil
	}
}
