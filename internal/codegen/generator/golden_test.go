package generator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/ssfrr/embody/internal/codegen/cparse"
	"github.com/ssfrr/embody/internal/codegen/output"
	"github.com/ssfrr/embody/internal/projectconfig"
	htesting "github.com/ssfrr/embody/internal/testing"
)

// goldenCase is a txtar archive whose comment holds "key: value" settings,
// whose want/ files are the expected output and whose other files are
// inputs.
type goldenCase struct {
	name     string
	settings map[string]string
	inputs   []*txtar.File
	want     map[string]string
}

func loadGolden(t *testing.T, dir string) []goldenCase {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", dir, "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	var cases []goldenCase
	for _, p := range paths {
		ar, err := txtar.ParseFile(p)
		require.NoError(t, err)

		c := goldenCase{
			name:     strings.TrimSuffix(filepath.Base(p), ".txtar"),
			settings: map[string]string{},
			want:     map[string]string{},
		}
		for _, line := range strings.Split(string(ar.Comment), "\n") {
			if k, v, ok := strings.Cut(line, ": "); ok && !strings.Contains(k, " ") {
				c.settings[k] = strings.TrimSpace(v)
			}
		}
		for i := range ar.Files {
			f := &ar.Files[i]
			if rel, ok := strings.CutPrefix(f.Name, "want/"); ok {
				c.want[rel] = string(f.Data)
			} else {
				c.inputs = append(c.inputs, f)
			}
		}
		cases = append(cases, c)
	}
	return cases
}

func (c goldenCase) setting(key, def string) string {
	if v, ok := c.settings[key]; ok {
		return v
	}
	return def
}

// writeInputs places the inputs in a fresh directory and returns it with
// the set of input names.
func (c goldenCase) writeInputs(t *testing.T) (string, map[string]bool) {
	t.Helper()
	dir := t.TempDir()
	names := map[string]bool{}
	for _, f := range c.inputs {
		path := filepath.Join(dir, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
		names[filepath.ToSlash(f.Name)] = true
	}
	return dir, names
}

// collect returns every file under dir that is not an input.
func collect(t *testing.T, dir string, inputs map[string]bool) map[string]string {
	t.Helper()
	got := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if inputs[rel] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestFakeGolden(t *testing.T) {
	for _, c := range loadGolden(t, "fake") {
		for _, backend := range cparse.Backends() {
			t.Run(c.name+"/"+backend, func(t *testing.T) {
				require.NotEmpty(t, c.inputs)
				dir, inputs := c.writeInputs(t)

				cfg := &projectconfig.Config{
					FakePrefix:   c.setting("prefix", "Fake"),
					Parser:       backend,
					Preprocessor: "cpp",
				}
				if outdir := c.setting("outdir", ""); outdir != "" {
					cfg.FakeDir = filepath.Join(dir, outdir)
				}

				g := New(output.NewWriter(htesting.NewConfirmer(), nil), nil)
				_, err := g.GenerateFake(context.Background(), FakeRequest{Header: filepath.Join(dir, c.inputs[0].Name)}, cfg)
				require.NoError(t, err)

				if diff := cmp.Diff(c.want, collect(t, dir, inputs)); diff != "" {
					t.Errorf("generated files mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestModuleGolden(t *testing.T) {
	for _, c := range loadGolden(t, "module") {
		t.Run(c.name, func(t *testing.T) {
			dir, inputs := c.writeInputs(t)
			year, err := strconv.Atoi(c.setting("year", "2015"))
			require.NoError(t, err)

			cfg := &projectconfig.Config{
				SrcDir:          filepath.Join(dir, "src"),
				TestDir:         filepath.Join(dir, "test"),
				ProjectName:     c.setting("project", ""),
				Author:          c.setting("author", ""),
				CopyrightHolder: c.setting("holder", ""),
			}
			if inputs[projectconfig.FlatFile] {
				cfg = c.resolveConfig(t, dir)
			}
			clock := func() time.Time { return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC) }

			g := New(output.NewWriter(htesting.NewConfirmer(), nil), nil, WithClock(clock))
			_, err = g.GenerateModule(c.setting("name", c.name), cfg)
			require.NoError(t, err)

			if diff := cmp.Diff(c.want, collect(t, dir, inputs)); diff != "" {
				t.Errorf("generated files mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// resolveConfig reads the archive's project file through the resolver, with
// dir as project root and the author taken from the settings.
func (c goldenCase) resolveConfig(t *testing.T, dir string) *projectconfig.Config {
	t.Helper()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	cfg, err := projectconfig.NewResolver(projectconfig.Options{
		WorkDir: dir,
		HomeDir: t.TempDir(),
		Author:  func() string { return c.setting("author", "") },
	}).Config()
	require.NoError(t, err)
	return cfg
}
