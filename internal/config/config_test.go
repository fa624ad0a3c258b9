package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `ALIASES:
  laptop: host1
host1:
  file1: path/to/file1
  file2: path/to/file2
host2:
  _PATH: ~/path/to/somewhere/
  file2: another/path/to/file2
host3:
  file1: yet/another/path/to/file1
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"host1", "host2", "host3"}, cfg.Hosts())
	assert.True(t, cfg.HasHost("host2"))
	assert.False(t, cfg.HasHost("ALIASES"))

	host, ok := cfg.ResolveAlias("laptop")
	assert.True(t, ok)
	assert.Equal(t, "host1", host)
	_, ok = cfg.ResolveAlias("desktop")
	assert.False(t, ok)

	assert.Equal(t, []string{"file1", "file2"}, cfg.ElementsOf("host1"))
	assert.Equal(t, []string{"file2"}, cfg.ElementsOf("host2"), "_PATH is not an element")
	assert.Nil(t, cfg.ElementsOf("nohost"))

	override, ok := cfg.PathOverride("host2")
	assert.True(t, ok)
	assert.Equal(t, "~/path/to/somewhere/", override)
	_, ok = cfg.PathOverride("host1")
	assert.False(t, ok)

	path, err := cfg.ElementPath("host1", "file1")
	require.NoError(t, err)
	assert.Equal(t, "path/to/file1", path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_ParseErrors(t *testing.T) {
	cases := map[string]string{
		"not a mapping":       `- host1`,
		"scalar document":     `just a string`,
		"no hosts":            `ALIASES: {}`,
		"non-mapping section": "host1:\n  - file1\n",
		"empty path":          "host1:\n  file1: \"\"\n",
		"nested value":        "host1:\n  file1:\n    deep: path\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestElementPath_Missing(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	_, err = cfg.ElementPath("host2", "file1")
	assert.ErrorIs(t, err, ErrMissingElement)

	_, err = cfg.ElementPath("nohost", "file1")
	assert.ErrorIs(t, err, ErrMissingHost)
}

func TestDefaultPaths_FollowHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	assert.Equal(t, filepath.Join(tmp, ".sshsync", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join(tmp, ".sshsync", "sshsync.log"), DefaultLogPath())
	assert.Equal(t, filepath.Join(tmp, ".sshsync", "sshsync.lock"), DefaultLockPath())
}

func TestLoad_PreservesDeclarationOrder(t *testing.T) {
	cfg, err := Load(writeConfig(t, "zeta:\n  b: p/b\n  a: p/a\nalpha:\n  x: p/x\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha"}, cfg.Hosts())
	assert.Equal(t, []string{"b", "a"}, cfg.ElementsOf("zeta"))
}
