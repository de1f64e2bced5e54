package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/regain3d/regain/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaths(t *testing.T) *Paths {
	t.Helper()
	dir := t.TempDir()
	return NewPathsWithOverrides(filepath.Join(dir, "config"), filepath.Join(dir, "cache"))
}

func TestDecode_Defaults(t *testing.T) {
	paths := testPaths(t)
	cfg, err := Decode(NewViper(paths))
	require.NoError(t, err)

	assert.Equal(t, DefaultVersion, cfg.Version)
	assert.Equal(t, paths.ProfilesDir, cfg.Profiles.Dir)
	assert.Equal(t, DefaultProfilesPath, cfg.Profiles.Path)
	assert.Empty(t, cfg.Profiles.Source)
	assert.True(t, cfg.EnableESP)
	assert.True(t, cfg.AutoBackup)
	assert.True(t, cfg.GenerateReport)
	assert.Equal(t, 0.9, cfg.DefaultSafetyFactor)
	assert.Equal(t, 4, cfg.Batch.Parallel)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTLDuration())
	assert.Equal(t, paths.LogFile, cfg.Log.Filename)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultLogMaxSize, cfg.Log.MaxSize)
	assert.True(t, cfg.Log.Compress)
}

func TestReadFile_OverridesDefaults(t *testing.T) {
	paths := testPaths(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  dir: /srv/profiles
  source: regain3d/regain-profiles
enable_esp: false
default_safety_factor: 0.8
batch:
  parallel: 2
log:
  level: debug
`), 0644))

	v := NewViper(paths)
	require.NoError(t, ReadFile(v, path))
	cfg, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/profiles", cfg.Profiles.Dir)
	assert.Equal(t, DefaultProfilesPath, cfg.Profiles.Path, "unset keys keep defaults")
	assert.False(t, cfg.EnableESP)
	assert.True(t, cfg.AutoBackup)
	assert.Equal(t, 0.8, cfg.DefaultSafetyFactor)
	assert.Equal(t, 2, cfg.Batch.Parallel)
	assert.Equal(t, "debug", cfg.Log.Level)

	owner, repo, err := cfg.ProfilesOwnerRepo()
	require.NoError(t, err)
	assert.Equal(t, "regain3d", owner)
	assert.Equal(t, "regain-profiles", repo)
}

func TestReadFile_Missing(t *testing.T) {
	v := NewViper(testPaths(t))
	assert.NoError(t, ReadFile(v, filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestReadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [unclosed\n"), 0644))

	err := ReadFile(NewViper(testPaths(t)), path)
	require.Error(t, err)
	var re *errors.RegainError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, errors.ErrConfigInvalid, re.Code)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REGAIN_BATCH_PARALLEL", "7")
	t.Setenv("REGAIN_ENABLE_ESP", "false")
	t.Setenv("REGAIN_PROFILES_DIR", "/env/profiles")

	cfg, err := Decode(NewViper(testPaths(t)))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Batch.Parallel)
	assert.False(t, cfg.EnableESP)
	assert.Equal(t, "/env/profiles", cfg.Profiles.Dir)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "valid source", mutate: func(c *Config) { c.Profiles.Source = "https://github.com/acme/profiles" }},
		{name: "bad source", mutate: func(c *Config) { c.Profiles.Source = "not a repo" }, wantErr: true},
		{name: "safety factor above one", mutate: func(c *Config) { c.DefaultSafetyFactor = 1.2 }, wantErr: true},
		{name: "negative safety factor", mutate: func(c *Config) { c.DefaultSafetyFactor = -0.1 }, wantErr: true},
		{name: "zero parallel", mutate: func(c *Config) { c.Batch.Parallel = 0 }, wantErr: true},
		{name: "bad ttl", mutate: func(c *Config) { c.Cache.TTL = "tomorrow" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadAndSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := &Config{
		Profiles:       ProfilesConfig{Dir: "/data/profiles", Source: "acme/profiles"},
		EnableESP:      true,
		AutoBackup:     false,
		GenerateReport: true,
		Cache:          CacheConfig{TTL: "12h"},
		Trusted:        []string{"acme"},
	}

	require.NoError(t, SaveTo(original, configPath))

	loaded, err := LoadFrom(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/data/profiles", loaded.Profiles.Dir)
	assert.Equal(t, "acme/profiles", loaded.Profiles.Source)
	assert.Equal(t, "12h", loaded.Cache.TTL)
	assert.False(t, loaded.AutoBackup)
	assert.True(t, loaded.EnableESP)
	assert.Equal(t, []string{"acme"}, loaded.Trusted)
	assert.True(t, loaded.IsTrustedSource("acme/profiles"))
}

func TestLoadNotFound(t *testing.T) {
	_, err := LoadFrom("/nonexistent/path/config.yaml")
	require.Error(t, err)

	var re *errors.RegainError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, errors.ErrConfigNotFound, re.Code)
}

func TestTTLDuration(t *testing.T) {
	tests := []struct {
		ttl  string
		want time.Duration
	}{
		{"24h", 24 * time.Hour},
		{"1h", time.Hour},
		{"30m", 30 * time.Minute},
		{"invalid", 24 * time.Hour},
		{"", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.ttl, func(t *testing.T) {
			c := CacheConfig{TTL: tt.ttl}
			assert.Equal(t, tt.want, c.TTLDuration())
		})
	}
}
