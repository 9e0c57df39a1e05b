package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/companion/compiler/emit"
	"github.com/syssam/companion/compiler/gen"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	v := newViper()
	v.Set("dir", dir)
	cfg, err := loadConfig(v, "")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, gen.DefaultTarget, cfg.Target)
	assert.Equal(t, emit.DefaultHeader, cfg.Header)
	assert.Equal(t, 300, cfg.Debounce)
	assert.Empty(t, cfg.ConfigFile)
	assert.Len(t, cfg.options(), 1)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `target: internal/values
suffixes:
  mutable: Draft
  adapter: Codec
workers: 2
json-log: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "companion.yaml"), []byte(yaml), 0o644))
	v := newViper()
	v.Set("dir", dir)
	cfg, err := loadConfig(v, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "companion.yaml"), cfg.ConfigFile)
	assert.Equal(t, "internal/values", cfg.Target)
	assert.Equal(t, map[string]string{"mutable": "Draft", "adapter": "Codec"}, cfg.Suffixes)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.JSONLog)

	c, err := gen.NewConfig(cfg.options()...)
	require.NoError(t, err)
	assert.Equal(t, "internal/values", c.Naming.Target)
	assert.Equal(t, "Draft", c.Naming.Suffixes[gen.RoleMutable])
	assert.Equal(t, "Codec", c.Naming.Suffixes[gen.RoleAdapter])
	assert.Equal(t, "", c.Naming.Suffixes[gen.RoleImmutable])
	assert.Equal(t, 2, c.Workers)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("COMPANION_TARGET", "gen")
	t.Setenv("COMPANION_JSON_LOG", "true")
	v := newViper()
	v.Set("dir", t.TempDir())
	cfg, err := loadConfig(v, "")
	require.NoError(t, err)
	assert.Equal(t, "gen", cfg.Target)
	assert.True(t, cfg.JSONLog)
}

func TestLoadConfigErrors(t *testing.T) {
	v := newViper()
	v.Set("dir", t.TempDir())
	_, err := loadConfig(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	v = newViper()
	v.Set("dir", filepath.Join(t.TempDir(), "missing"))
	_, err = loadConfig(v, "")
	assert.Error(t, err)
}
