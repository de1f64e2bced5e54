package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/regain3d/regain/internal/config"
	"github.com/regain3d/regain/internal/errors"
)

const (
	profilesSuffix = "-profiles"
	metaSuffix     = ".meta.json"
)

// Cache manages locally synced profile trees.
type Cache struct {
	paths *config.Paths
}

// New creates a cache manager.
func New(paths *config.Paths) *Cache {
	return &Cache{paths: paths}
}

// Dir returns the directory holding the synced profiles of a repo.
func (c *Cache) Dir(owner, repo string) string {
	return c.paths.SyncedProfilesDir(owner, repo)
}

// Write replaces the synced profiles of a repo with files, keyed by path
// relative to the profiles root (e.g. "bambulab/x1c.json").
func (c *Cache) Write(owner, repo string, files map[string][]byte, meta *Metadata) error {
	dir := c.Dir(owner, repo)
	tmp := dir + ".tmp"

	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("failed to clear staging directory: %w", err)
	}

	for rel, data := range files {
		clean := filepath.Clean(filepath.FromSlash(rel))
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return fmt.Errorf("refusing to write outside the cache: %s", rel)
		}
		dst := filepath.Join(tmp, clean)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(tmp, 0755); err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove previous profiles: %w", err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		return fmt.Errorf("failed to install synced profiles: %w", err)
	}

	if meta.LastFetched.IsZero() {
		meta.LastFetched = time.Now()
	}
	meta.Owner = owner
	meta.Repo = repo
	meta.Files = len(files)

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.paths.SyncedProfilesMetaFile(owner, repo), metaBytes, 0644)
}

// Exists checks if synced profiles exist for a repo.
func (c *Cache) Exists(owner, repo string) bool {
	info, err := os.Stat(c.Dir(owner, repo))
	return err == nil && info.IsDir()
}

// Clear removes the synced profiles of a repo.
// Returns nil even if nothing was cached (idempotent operation).
func (c *Cache) Clear(owner, repo string) error {
	if err := os.RemoveAll(c.Dir(owner, repo)); err != nil {
		return fmt.Errorf("failed to remove synced profiles: %w", err)
	}
	if err := os.Remove(c.paths.SyncedProfilesMetaFile(owner, repo)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache metadata: %w", err)
	}
	return nil
}

// GetMetadata returns the sync metadata of a repo.
func (c *Cache) GetMetadata(owner, repo string) (*Metadata, error) {
	metaBytes, err := os.ReadFile(c.paths.SyncedProfilesMetaFile(owner, repo))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.CacheNotFound(owner + "/" + repo)
		}
		return nil, err
	}

	meta := &Metadata{}
	if err := json.Unmarshal(metaBytes, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.paths.CacheDir
}

// ListCached returns the metadata of every synced repo, ordered by
// owner/repo. Sidecars that cannot be decoded are skipped.
func (c *Cache) ListCached() ([]*Metadata, error) {
	matches, err := filepath.Glob(filepath.Join(c.paths.CacheDir, "*"+profilesSuffix+metaSuffix))
	if err != nil {
		return nil, err
	}

	list := []*Metadata{}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		meta := &Metadata{}
		if err := json.Unmarshal(data, meta); err != nil || meta.Owner == "" || meta.Repo == "" {
			continue
		}
		list = append(list, meta)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].RepoString() < list[j].RepoString()
	})
	return list, nil
}
