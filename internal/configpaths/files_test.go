package configpaths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigDirHonoursXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME is not consulted on windows")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "embody"), dir)

	p, err := DefaultConfigPath("yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "embody", "config.yaml"), p)
}

func TestConfigCandidatePathsRoutesUserPath(t *testing.T) {
	tests := []struct {
		userPath string
		pick     func(j, y, t []string) []string
	}{
		{"/etc/embody.toml", func(_, _, t []string) []string { return t }},
		{"/etc/embody.yml", func(_, y, _ []string) []string { return y }},
		{"/etc/embody.json", func(j, _, _ []string) []string { return j }},
		{"/etc/embody.conf", func(j, _, _ []string) []string { return j }},
	}
	for _, tt := range tests {
		j, y, tm := ConfigCandidatePaths(tt.userPath)
		got := tt.pick(j, y, tm)
		require.NotEmpty(t, got, tt.userPath)
		assert.Equal(t, tt.userPath, got[0])
	}
}

func TestConfigCandidatePathsIncludesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	j, y, tm := ConfigCandidatePaths("")
	wd, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, []string{filepath.Join(dir, "embody.json"), filepath.Join(wd, "embody.json")}, j[0])
	assert.Len(t, y, 2*len(j))
	assert.Len(t, tm, len(j))
}
