package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.Schema.Location)
	assert.Equal(t, FormatYAML, cfg.Resolve.Output)
	assert.False(t, cfg.Resolve.ShouldInlineDefinitions())
	assert.False(t, cfg.Resolve.ShouldSkipQuality())
	assert.Equal(t, []string{DefaultLocation}, cfg.Lint.Locations)
	assert.Equal(t, DefaultTemplate, cfg.Init.Template)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "json output", modify: func(c *Config) { c.Resolve.Output = FormatJSON }},
		{name: "unknown output", modify: func(c *Config) { c.Resolve.Output = "toml" }, wantErr: true},
		{name: "unknown lint format", modify: func(c *Config) { c.Lint.Format = "html" }, wantErr: true},
		{name: "missing template", modify: func(c *Config) { c.Init.Template = "" }, wantErr: true},
		{name: "zero timeout", modify: func(c *Config) { c.HTTP.Timeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schema:
  location: ./schema.json
resolve:
  inline_definitions: true
  output: json
http:
  timeout: 5s
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "./schema.json", cfg.Schema.Location)
	assert.True(t, cfg.Resolve.ShouldInlineDefinitions())
	assert.Nil(t, cfg.Resolve.SkipQuality)
	assert.Equal(t, FormatJSON, cfg.Resolve.Output)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Empty(t, cfg.Init.Template)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("resolve: [\n"), 0o644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Resolve.SkipQuality = Bool(true)
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(nil)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg.Merge(&Config{
		Resolve: ResolveConfig{InlineDefinitions: Bool(true)},
		Lint:    LintConfig{Locations: []string{"contracts/**/*.yaml"}},
	})
	assert.True(t, cfg.Resolve.ShouldInlineDefinitions())
	assert.Equal(t, FormatYAML, cfg.Resolve.Output)
	assert.Equal(t, []string{"contracts/**/*.yaml"}, cfg.Lint.Locations)
	assert.Equal(t, DefaultTemplate, cfg.Init.Template)

	// zero values never reset what an earlier layer set
	cfg.Merge(&Config{})
	assert.True(t, cfg.Resolve.ShouldInlineDefinitions())

	cfg.Merge(&Config{Resolve: ResolveConfig{InlineDefinitions: Bool(false)}})
	assert.False(t, cfg.Resolve.ShouldInlineDefinitions())
	require.NotNil(t, cfg.Resolve.InlineDefinitions)
}

func TestMerge_DoesNotAlias(t *testing.T) {
	other := &Config{Resolve: ResolveConfig{SkipQuality: Bool(true)}}
	cfg := DefaultConfig()
	cfg.Merge(other)
	*other.Resolve.SkipQuality = false
	assert.True(t, cfg.Resolve.ShouldSkipQuality())
}

func TestLoader_Layering(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "contracts", "orders")
	require.NoError(t, os.MkdirAll(work, 0o755))

	user := filepath.Join(home, UserConfigDir, UserConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(user), 0o755))
	require.NoError(t, os.WriteFile(user, []byte("resolve:\n  output: json\ninit:\n  template: https://example.com/user.yaml\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile),
		[]byte("init:\n  template: https://example.com/project.yaml\n"), 0o644))

	l := NewLoader(nil)
	l.HomeDir = home
	l.WorkDir = work

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Resolve.Output)
	assert.Equal(t, "https://example.com/project.yaml", cfg.Init.Template)

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("resolve:\n  output: yaml\n"), 0o644))
	cfg, err = l.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Resolve.Output)

	_, err = l.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoader_ProjectTurnsSwitchOff(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()

	user := filepath.Join(home, UserConfigDir, UserConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(user), 0o755))
	require.NoError(t, os.WriteFile(user, []byte("resolve:\n  inline_definitions: true\n  skip_quality: true\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, ProjectConfigFile),
		[]byte("resolve:\n  inline_definitions: false\n"), 0o644))

	l := NewLoader(nil)
	l.HomeDir = home
	l.WorkDir = work

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Resolve.ShouldInlineDefinitions())
	assert.True(t, cfg.Resolve.ShouldSkipQuality())
}

func TestLoader_InvalidResult(t *testing.T) {
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, ProjectConfigFile), []byte("resolve:\n  output: toml\n"), 0o644))

	l := NewLoader(nil)
	l.HomeDir = t.TempDir()
	l.WorkDir = work
	_, err := l.Load("")
	assert.Error(t, err)
}

func TestEnsureUserConfig(t *testing.T) {
	l := NewLoader(nil)
	l.HomeDir = t.TempDir()
	path, created, err := l.EnsureUserConfig()
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(l.HomeDir, UserConfigDir, UserConfigFile), path)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	require.NoError(t, os.WriteFile(path, []byte("resolve:\n  output: json\n"), 0o644))
	_, created, err = l.EnsureUserConfig()
	require.NoError(t, err)
	assert.False(t, created)
	cfg, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Resolve.Output)
}
