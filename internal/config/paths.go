package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths provides all regain-related filesystem paths.
type Paths struct {
	ConfigDir   string // ~/.config/regain
	CacheDir    string // ~/.cache/regain
	ConfigFile  string // ~/.config/regain/config.yaml
	ProfilesDir string // ~/.config/regain/profiles
	LogFile     string // ~/.cache/regain/regain.log
}

// NewPaths creates Paths using ~/.config and ~/.cache directories.
// We use these paths explicitly for cross-platform consistency rather than
// platform-specific defaults (like ~/Library/Application Support on macOS).
func NewPaths() *Paths {
	home := os.Getenv("HOME")
	return NewPathsWithOverrides(
		filepath.Join(home, ".config", "regain"),
		filepath.Join(home, ".cache", "regain"),
	)
}

// NewPathsWithOverrides allows overriding directories for testing.
func NewPathsWithOverrides(configDir, cacheDir string) *Paths {
	return &Paths{
		ConfigDir:   configDir,
		CacheDir:    cacheDir,
		ConfigFile:  filepath.Join(configDir, "config.yaml"),
		ProfilesDir: filepath.Join(configDir, "profiles"),
		LogFile:     filepath.Join(cacheDir, "regain.log"),
	}
}

// SyncedProfilesDir returns the directory holding profiles synced from a repo.
func (p *Paths) SyncedProfilesDir(owner, repo string) string {
	return filepath.Join(p.CacheDir, fmt.Sprintf("%s-%s-profiles", owner, repo))
}

// SyncedProfilesMetaFile returns the metadata sidecar for synced profiles.
func (p *Paths) SyncedProfilesMetaFile(owner, repo string) string {
	return filepath.Join(p.CacheDir, fmt.Sprintf("%s-%s-profiles.meta.json", owner, repo))
}
