// Package integration provides end-to-end testing utilities for regain.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/regain3d/regain/internal/cache"
	"github.com/regain3d/regain/internal/config"
	"github.com/regain3d/regain/internal/service"
	"gopkg.in/yaml.v3"
)

// TestEnv provides an isolated test environment with overridden paths.
type TestEnv struct {
	t           *testing.T
	RootDir     string        // t.TempDir() root
	HomeDir     string        // Simulated $HOME
	ConfigDir   string        // ~/.config/regain
	CacheDir    string        // ~/.cache/regain
	ProfilesDir string        // ~/.config/regain/profiles
	WorkDir     string        // where G-code inputs are written
	Paths       *config.Paths // Configured paths pointing to temp dirs
}

// NewTestEnv creates an isolated test environment.
// All paths are configured to use temporary directories.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	rootDir := t.TempDir()
	homeDir := filepath.Join(rootDir, "home")
	configDir := filepath.Join(homeDir, ".config", "regain")
	cacheDir := filepath.Join(homeDir, ".cache", "regain")
	workDir := filepath.Join(rootDir, "prints")

	paths := config.NewPathsWithOverrides(configDir, cacheDir)

	for _, dir := range []string{configDir, cacheDir, paths.ProfilesDir, workDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return &TestEnv{
		t:           t,
		RootDir:     rootDir,
		HomeDir:     homeDir,
		ConfigDir:   configDir,
		CacheDir:    cacheDir,
		ProfilesDir: paths.ProfilesDir,
		WorkDir:     workDir,
		Paths:       paths,
	}
}

// SetupProfile writes a local profile file, relative to the profiles dir
// (e.g. "bambu/x1c.json").
func (e *TestEnv) SetupProfile(relPath, content string) error {
	fullPath := filepath.Join(e.ProfilesDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// SetupSyncedProfiles writes profiles to the cache (simulates `profiles sync`).
func (e *TestEnv) SetupSyncedProfiles(owner, repo string, files map[string]string) error {
	data := make(map[string][]byte, len(files))
	for rel, content := range files {
		data[rel] = []byte(content)
	}
	return cache.New(e.Paths).Write(owner, repo, data, &cache.Metadata{})
}

// SetupConfig writes config.yaml.
func (e *TestEnv) SetupConfig(cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(e.Paths.ConfigFile, data, 0644)
}

// LoadConfig reads config.yaml back the way the CLI does, falling back to
// defaults when none was written.
func (e *TestEnv) LoadConfig() (*config.Config, error) {
	v := config.NewViper(e.Paths)
	if err := config.ReadFile(v, e.Paths.ConfigFile); err != nil {
		return nil, err
	}
	return config.Decode(v)
}

// WriteGCode writes an input file into the work dir and returns its path.
func (e *TestEnv) WriteGCode(name, content string) (string, error) {
	path := filepath.Join(e.WorkDir, name)
	return path, os.WriteFile(path, []byte(content), 0644)
}

// NewService builds a service over this environment with profiles loaded.
func (e *TestEnv) NewService() (*service.Service, error) {
	cfg, err := e.LoadConfig()
	if err != nil {
		return nil, err
	}
	svc := service.New(cfg, service.WithPaths(e.Paths))
	if _, err := svc.LoadProfiles(); err != nil {
		return nil, err
	}
	return svc, nil
}

// RunProcess processes a work-dir file end to end.
func (e *TestEnv) RunProcess(name string, opts service.FileOptions) (*service.FileResult, error) {
	svc, err := e.NewService()
	if err != nil {
		return nil, err
	}
	return svc.ProcessFile(context.Background(), filepath.Join(e.WorkDir, name), opts)
}

// OutputPath returns the default optimized path of a work-dir input.
func (e *TestEnv) OutputPath(name string) string {
	return filepath.Join(e.WorkDir, name[:len(name)-len(filepath.Ext(name))]+service.SuffixOptimized)
}

// ReadOutput reads the optimized G-code written for a work-dir input.
func (e *TestEnv) ReadOutput(name string) (string, error) {
	content, err := os.ReadFile(e.OutputPath(name))
	if err != nil {
		return "", err
	}
	return string(content), nil
}
