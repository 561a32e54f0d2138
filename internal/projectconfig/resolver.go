package projectconfig

import (
	_ "embed"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ssfrr/embody/internal/apperror"
)

// Per-scope file names. Within one scope the nested file wins over the flat
// one.
const (
	FlatFile   = ".embodyrc.yaml"
	NestedDir  = ".embody"
	NestedFile = "config.yaml"
)

// Markers are the directory entries that identify a project root.
var Markers = []string{".git", ".hg"}

//go:embed defaults.yaml
var defaultsYAML []byte

const defaultsName = "<defaults>"

// Options controls where a Resolver looks for configuration.
type Options struct {
	// WorkDir is the innermost scope. Empty means the process working directory.
	WorkDir string
	// HomeDir is the user scope. Empty means os.UserHomeDir; an unknown home
	// directory is skipped.
	HomeDir string
	// InstallDir holds an optional config shipped next to the executable.
	// Empty skips it.
	InstallDir string
	// Overrides take precedence over every file.
	Overrides Mapping
	// Author looks up the fallback author name.
	Author func() string
	Logger *slog.Logger
}

// Resolver computes the effective configuration once and caches it. Use
// Reload to pick up changed files.
type Resolver struct {
	opts Options

	once sync.Once
	cfg  *Config
	err  error
}

// NewResolver returns a resolver for opts. Nothing is read until Config is
// called.
func NewResolver(opts Options) *Resolver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Author == nil {
		opts.Author = currentAuthor
	}
	return &Resolver{opts: opts}
}

// Config returns the resolved configuration, reading the filesystem on the
// first call only.
func (r *Resolver) Config() (*Config, error) {
	r.once.Do(func() {
		r.cfg, r.err = r.resolve()
	})
	return r.cfg, r.err
}

// Reload discards every cached value and resolves again from scratch.
func (r *Resolver) Reload() (*Resolver, error) {
	fresh := NewResolver(r.opts)
	_, err := fresh.Config()
	return fresh, err
}

// WithOverrides returns an unresolved copy of r whose overrides are
// layered on top of the current ones.
func (r *Resolver) WithOverrides(m Mapping) *Resolver {
	opts := r.opts
	opts.Overrides = Merge(r.opts.Overrides, m)
	return NewResolver(opts)
}

type layer struct {
	name   string
	values Mapping
}

// ScopeFile is one config file a resolution consults.
type ScopeFile struct {
	Path   string
	Exists bool
}

// Scopes lists every file consulted, lowest precedence first, and whether
// it exists. The embedded defaults are not included.
func (r *Resolver) Scopes() ([]ScopeFile, error) {
	loc, err := r.locate()
	if err != nil {
		return nil, err
	}
	var out []ScopeFile
	for _, dir := range loc.dirs {
		for _, path := range ScopeFiles(dir) {
			_, err := os.Stat(path)
			out = append(out, ScopeFile{Path: path, Exists: err == nil})
		}
	}
	return out, nil
}

type location struct {
	workDir string
	home    string
	root    string
	found   bool
	// dirs are the scope directories, lowest precedence first.
	dirs []string
}

func (r *Resolver) locate() (*location, error) {
	workDir := r.opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, apperror.Filesystem("getwd", ".", err)
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, apperror.Filesystem("abs", workDir, err)
	}

	loc := &location{workDir: workDir, home: r.opts.HomeDir}
	if loc.home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			loc.home = h
		}
	}
	loc.root, loc.found = FindProjectRoot(workDir)

	var dirs []string
	if r.opts.InstallDir != "" {
		dirs = append(dirs, r.opts.InstallDir)
	}
	if loc.home != "" {
		dirs = append(dirs, loc.home)
	}
	seen := map[string]bool{}
	for _, dir := range append(dirs, chain(loc.root, loc.found, workDir)...) {
		if !seen[dir] {
			seen[dir] = true
			loc.dirs = append(loc.dirs, dir)
		}
	}
	return loc, nil
}

func (r *Resolver) resolve() (*Config, error) {
	loc, err := r.locate()
	if err != nil {
		return nil, err
	}
	workDir, home, root, found := loc.workDir, loc.home, loc.root, loc.found

	defaults, err := parseYAML(defaultsName, defaultsYAML)
	if err != nil {
		return nil, err
	}
	layers := []layer{{name: defaultsName, values: defaults}}
	for _, dir := range loc.dirs {
		ls, err := r.loadScope(dir, home)
		if err != nil {
			return nil, err
		}
		layers = append(layers, ls...)
	}
	if len(r.opts.Overrides) > 0 {
		layers = append(layers, layer{name: "<overrides>", values: canonicalize(r.opts.Overrides, workDir, home)})
	}

	merged := Mapping{}
	origin := map[string]string{}
	var sources []string
	for _, l := range layers {
		for k, v := range l.values {
			merged[k] = v
			origin[k] = l.name
		}
		sources = append(sources, l.name)
	}

	if found {
		setDefault(merged, KeyProjectRoot, root)
	}
	if s, ok := merged[KeyProjectRoot].(string); ok && s != "" {
		setDefault(merged, KeyProjectName, filepath.Base(s))
		setDefault(merged, KeySrcDir, filepath.Join(s, "src"))
		setDefault(merged, KeyTestDir, filepath.Join(s, "test"))
	}
	if _, ok := merged[KeyAuthor]; !ok {
		if a := r.opts.Author(); a != "" {
			merged[KeyAuthor] = a
		}
	}

	cfg, err := decode(merged, origin)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	cfg.WorkDir = workDir
	r.opts.Logger.Debug("Resolved configuration", "workdir", workDir, "project_root", cfg.ProjectRoot, "sources", len(sources))
	return cfg, nil
}

func setDefault(m Mapping, key string, v any) {
	if _, ok := m[key]; !ok {
		m[key] = v
	}
}

// FindProjectRoot walks from dir towards the filesystem root and returns
// the nearest directory that holds one of Markers.
func FindProjectRoot(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if hasMarker(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func hasMarker(dir string) bool {
	for _, m := range Markers {
		if _, err := os.Lstat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}

// chain lists the directories from root down to workDir. Without a root
// only workDir is a scope.
func chain(root string, found bool, workDir string) []string {
	if !found {
		return []string{workDir}
	}
	var dirs []string
	for dir := workDir; ; dir = filepath.Dir(dir) {
		dirs = append(dirs, dir)
		if dir == root || filepath.Dir(dir) == dir {
			break
		}
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

func (r *Resolver) loadScope(dir, home string) ([]layer, error) {
	var out []layer
	for _, path := range ScopeFiles(dir) {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, apperror.Filesystem("read", path, err)
		}
		m, err := parseYAML(path, data)
		if err != nil {
			return nil, err
		}
		r.opts.Logger.Debug("Loaded config scope", "file", path, "keys", len(m))
		out = append(out, layer{name: path, values: canonicalize(m, dir, home)})
	}
	return out, nil
}

func parseYAML(path string, data []byte) (Mapping, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &apperror.ConfigParseError{Path: path, Err: err}
	}
	return Mapping(m), nil
}

// ScopeFiles lists the config files consulted for dir, flat file first.
func ScopeFiles(dir string) []string {
	return []string{
		filepath.Join(dir, FlatFile),
		filepath.Join(dir, NestedDir, NestedFile),
	}
}

func currentAuthor() string {
	if u, err := user.Current(); err == nil {
		if name, _, _ := strings.Cut(u.Name, ","); strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
		if u.Username != "" {
			return u.Username
		}
	}
	return os.Getenv("USER")
}
